package usecase

import (
	"testing"

	"github.com/NasaVasa/reservewatch/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	require.NoError(t, err)
	return d
}

func numericTrigger(t *testing.T, id, currency string, comparison domain.Comparison, target string) domain.ReserveTrigger {
	t.Helper()
	amount := mustDec(t, target)
	return domain.ReserveTrigger{ID: id, Currency: currency, Comparison: comparison, TargetAmount: &amount, IsEnabled: true}
}

// firesOver replays a sequence of reserves for one currency and returns the
// indexes at which the trigger fired.
func firesOver(t *testing.T, trigger domain.ReserveTrigger, sequence []string) []int {
	t.Helper()
	var fired []int
	previous := domain.Reserves{}
	for i, value := range sequence {
		current := domain.Reserves{trigger.Currency: mustDec(t, value)}
		if len(EvaluateTriggers(previous, current, []domain.ReserveTrigger{trigger})) > 0 {
			fired = append(fired, i)
		}
		previous = current
	}
	return fired
}

func TestEvaluateEdgeTriggering(t *testing.T) {
	trigger := numericTrigger(t, "gt", "btc", domain.ComparisonGreaterThan, "10")
	// 5 is the first observation and does not match, so it does not fire.
	assert.Equal(t, []int{1, 4}, firesOver(t, trigger, []string{"5", "12", "15", "8", "11"}))
}

func TestEvaluateLessThanEdges(t *testing.T) {
	trigger := numericTrigger(t, "lt", "btc", domain.ComparisonLessThan, "10")
	assert.Equal(t, []int{0, 3}, firesOver(t, trigger, []string{"3", "4", "10", "9.99", "1"}))
}

func TestEvaluateAnyChange(t *testing.T) {
	trigger := domain.ReserveTrigger{ID: "any", Currency: "eth", Comparison: domain.ComparisonAny, IsEnabled: true}
	// Index 0 fires because there is no prior observation.
	assert.Equal(t, []int{0, 2, 4}, firesOver(t, trigger, []string{"5", "5", "7", "7", "3"}))
}

func TestEvaluateAnyChangeIgnoresScale(t *testing.T) {
	trigger := domain.ReserveTrigger{ID: "any", Currency: "eth", Comparison: domain.ComparisonAny, IsEnabled: true}
	assert.Equal(t, []int{0}, firesOver(t, trigger, []string{"5", "5.000"}))
}

func TestEvaluateNoPriorObservation(t *testing.T) {
	anyChange := domain.ReserveTrigger{ID: "any", Currency: "xmr", Comparison: domain.ComparisonAny, IsEnabled: true}
	already := numericTrigger(t, "gt", "xmr", domain.ComparisonGreaterThan, "1")

	firings := EvaluateTriggers(domain.Reserves{}, domain.Reserves{"xmr": mustDec(t, "2")}, []domain.ReserveTrigger{anyChange, already})

	require.Len(t, firings, 2)
	assert.Equal(t, "any", firings[0].Trigger.ID)
	assert.Equal(t, "gt", firings[1].Trigger.ID)
	assert.Equal(t, "2", firings[0].Amount.String())
}

func TestEvaluateEqualityIsExact(t *testing.T) {
	trigger := numericTrigger(t, "eq", "btc", domain.ComparisonEqualTo, "10.000000000000000000")

	cases := []struct {
		value string
		fires bool
	}{
		{"10", true},
		{"10.00", true},
		{"10.0000000000000001", false},
		{"9.9999999999999999", false},
	}
	for _, tc := range cases {
		t.Run(tc.value, func(t *testing.T) {
			firings := EvaluateTriggers(domain.Reserves{"btc": mustDec(t, "1")}, domain.Reserves{"btc": mustDec(t, tc.value)}, []domain.ReserveTrigger{trigger})
			assert.Equal(t, tc.fires, len(firings) == 1)
		})
	}
}

func TestEvaluateSkipsDisabledAndUnlistedCurrencies(t *testing.T) {
	disabled := domain.ReserveTrigger{ID: "off", Currency: "btc", Comparison: domain.ComparisonAny}
	delisted := domain.ReserveTrigger{ID: "gone", Currency: "doge", Comparison: domain.ComparisonAny, IsEnabled: true}
	noTarget := domain.ReserveTrigger{ID: "broken", Currency: "btc", Comparison: domain.ComparisonGreaterThan, IsEnabled: true}

	firings := EvaluateTriggers(
		domain.Reserves{"doge": mustDec(t, "1")},
		domain.Reserves{"btc": mustDec(t, "1")},
		[]domain.ReserveTrigger{disabled, delisted, noTarget},
	)
	assert.Empty(t, firings)
}

func TestEvaluateOrdersByCurrencyThenTrigger(t *testing.T) {
	triggers := []domain.ReserveTrigger{
		{ID: "z1", Currency: "zec", Comparison: domain.ComparisonAny, IsEnabled: true},
		{ID: "b1", Currency: "btc", Comparison: domain.ComparisonAny, IsEnabled: true},
		{ID: "b2", Currency: "btc", Comparison: domain.ComparisonAny, IsEnabled: true},
	}
	current := domain.Reserves{"zec": mustDec(t, "1"), "btc": mustDec(t, "2"), "eth": mustDec(t, "3")}

	firings := EvaluateTriggers(nil, current, triggers)

	ids := make([]string, 0, len(firings))
	for _, f := range firings {
		ids = append(ids, f.Trigger.ID)
	}
	assert.Equal(t, []string{"b1", "b2", "z1"}, ids)
}
