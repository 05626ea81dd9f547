package db

import (
	"context"
	"testing"
	"time"

	"github.com/NasaVasa/reservewatch/internal/config"
	"github.com/NasaVasa/reservewatch/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := Open(config.Config{DBDriver: "sqlite", DBPath: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(conn) })
	return conn
}

func dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	require.NoError(t, err)
	return d
}

func TestTriggerRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewTriggerRepository(openTestDB(t))

	target := dec(t, "10.000000000000000001")
	numeric := &domain.ReserveTrigger{
		ID:           "t-numeric",
		Currency:     "btc",
		TargetAmount: &target,
		Comparison:   domain.ComparisonLessThan,
		IsEnabled:    true,
		OnlyOnce:     true,
	}
	anyChange := &domain.ReserveTrigger{
		ID:         "t-any",
		Currency:   "eth",
		Comparison: domain.ComparisonAny,
		IsEnabled:  false,
	}
	require.NoError(t, repo.Create(ctx, numeric))
	require.NoError(t, repo.Create(ctx, anyChange))

	got, err := repo.Get(ctx, "t-numeric")
	require.NoError(t, err)
	assert.Equal(t, domain.ComparisonLessThan, got.Comparison)
	require.NotNil(t, got.TargetAmount)
	assert.True(t, got.TargetAmount.Equal(target))
	assert.True(t, got.OnlyOnce)

	got, err = repo.Get(ctx, "t-any")
	require.NoError(t, err)
	assert.Equal(t, domain.ComparisonAny, got.Comparison)
	assert.Nil(t, got.TargetAmount)

	enabled, err := repo.ListEnabled(ctx)
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	assert.Equal(t, "t-numeric", enabled[0].ID)

	require.NoError(t, repo.SetEnabled(ctx, "t-numeric", false))
	enabled, err = repo.ListEnabled(ctx)
	require.NoError(t, err)
	assert.Empty(t, enabled)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestTriggerRepositoryUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewTriggerRepository(openTestDB(t))

	target := dec(t, "5")
	trigger := &domain.ReserveTrigger{ID: "t1", Currency: "btc", TargetAmount: &target, Comparison: domain.ComparisonGreaterThan, IsEnabled: true}
	require.NoError(t, repo.Create(ctx, trigger))

	trigger.Comparison = domain.ComparisonAny
	trigger.TargetAmount = nil
	trigger.Currency = "xmr"
	require.NoError(t, repo.Update(ctx, trigger))

	got, err := repo.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "xmr", got.Currency)
	assert.Equal(t, domain.ComparisonAny, got.Comparison)
	assert.Nil(t, got.TargetAmount)

	require.NoError(t, repo.Delete(ctx, "t1"))
	_, err = repo.Get(ctx, "t1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "t1"), domain.ErrNotFound)
	assert.ErrorIs(t, repo.SetEnabled(ctx, "missing", true), domain.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &domain.ReserveTrigger{ID: "missing"}), domain.ErrNotFound)
}

func TestReserveRepositorySaveOverwritesPerCurrency(t *testing.T) {
	ctx := context.Background()
	repo := NewReserveRepository(openTestDB(t))
	now := time.Now().UTC()

	require.NoError(t, repo.Save(ctx, []domain.ReserveSnapshot{
		{Currency: "btc", Amount: dec(t, "1.5"), UpdatedAt: now},
		{Currency: "eth", Amount: dec(t, "20"), UpdatedAt: now},
	}))
	require.NoError(t, repo.Save(ctx, []domain.ReserveSnapshot{
		{Currency: "btc", Amount: dec(t, "10.0000000000000001"), UpdatedAt: now.Add(time.Minute)},
	}))
	require.NoError(t, repo.Save(ctx, nil))

	snapshots, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)

	reserves := domain.SnapshotsToReserves(snapshots)
	assert.Equal(t, "10.0000000000000001", reserves["btc"].String())
	assert.True(t, reserves["eth"].Equal(dec(t, "20")))

	require.NoError(t, repo.DeleteAll(ctx))
	snapshots, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, snapshots)
}

func TestOrderRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(openTestDB(t))

	order := &domain.Order{
		ID:           "ord-1",
		Token:        "secret",
		FromCurrency: "btc",
		ToCurrency:   "xmr",
		AmountFrom:   dec(t, "0.1"),
		AmountTo:     dec(t, "12.3"),
		Status:       domain.OrderStatusCodec.Decode("waiting"),
	}
	require.NoError(t, repo.Upsert(ctx, order))

	order.Status = domain.OrderStatusCodec.Decode("hold")
	order.UpdatedAt = time.Now().UTC()
	require.NoError(t, repo.UpdateStatus(ctx, order))

	got, err := repo.Get(ctx, "ord-1")
	require.NoError(t, err)
	assert.False(t, got.Status.IsKnown())
	assert.Equal(t, "hold", got.Status.Raw())
	assert.True(t, got.AmountTo.Equal(dec(t, "12.3")))

	orders, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	require.NoError(t, repo.Delete(ctx, "ord-1"))
	_, err = repo.Get(ctx, "ord-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, order), domain.ErrNotFound)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(config.Config{DBDriver: "oracle"}, zap.NewNop())
	assert.Error(t, err)
}
