package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/NasaVasa/reservewatch/internal/domain"
	"github.com/NasaVasa/reservewatch/internal/infra/metrics"
	"github.com/NasaVasa/reservewatch/internal/scheduler"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var ErrNotificationsDisabled = errors.New("notifications disabled")

type Notifier interface {
	// Enabled reports whether notifications can be shown at all.
	Enabled() bool
	// Notify shows a notification; a repeated tag replaces the previous one.
	Notify(ctx context.Context, tag, title, body string) error
}

type ReserveFetcher interface {
	FetchReserves(ctx context.Context) (domain.Reserves, error)
}

type CheckReport struct {
	Triggers   int
	Currencies int
	Fired      []Firing
	Skipped    bool
}

// ReserveCheck is one pass of the reserve alert job: fetch reserves, fire the
// triggers whose condition was entered, then persist.
type ReserveCheck struct {
	triggers domain.TriggerRepository
	reserves domain.ReserveRepository
	fetcher  ReserveFetcher
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time

	// mu keeps one check at a time across the periodic job, run-now and
	// synchronous callers; overlapping checks would share an old snapshot.
	mu sync.Mutex
}

func NewReserveCheck(triggers domain.TriggerRepository, reserves domain.ReserveRepository, fetcher ReserveFetcher, notifier Notifier, logger *zap.Logger) *ReserveCheck {
	return &ReserveCheck{
		triggers: triggers,
		reserves: reserves,
		fetcher:  fetcher,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Run adapts Check to the scheduler: disabled notifications stop the periodic
// job, any other failure asks for a retry.
func (c *ReserveCheck) Run(ctx context.Context) scheduler.Result {
	report, err := c.Check(ctx)
	switch {
	case errors.Is(err, ErrNotificationsDisabled):
		c.logger.Warn("reserve check stopped, notifications are disabled")
		return scheduler.Stop
	case err != nil:
		c.logger.Error("reserve check failed", zap.Error(err))
		return scheduler.Retry
	}
	c.logger.Info(
		"reserve check complete",
		zap.Int("triggers", report.Triggers),
		zap.Int("currencies", report.Currencies),
		zap.Int("fired", len(report.Fired)),
		zap.Bool("skipped", report.Skipped),
	)
	return scheduler.Success
}

func (c *ReserveCheck) Check(ctx context.Context) (CheckReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, span := otel.Tracer("reservewatch/usecase").Start(ctx, "reserve_check")
	defer span.End()

	if !c.notifier.Enabled() {
		return CheckReport{}, ErrNotificationsDisabled
	}

	triggers, err := c.triggers.ListEnabled(ctx)
	if err != nil {
		return CheckReport{}, fmt.Errorf("load triggers: %w", err)
	}
	report := CheckReport{Triggers: len(triggers)}
	if len(triggers) == 0 {
		report.Skipped = true
		return report, nil
	}

	snapshots, err := c.reserves.List(ctx)
	if err != nil {
		return report, fmt.Errorf("load reserves: %w", err)
	}
	previous := domain.SnapshotsToReserves(snapshots)

	start := time.Now()
	current, err := c.fetcher.FetchReserves(ctx)
	metrics.ReserveFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return report, fmt.Errorf("fetch reserves: %w", err)
	}
	report.Currencies = len(current)
	span.SetAttributes(attribute.Int("triggers", len(triggers)), attribute.Int("currencies", len(current)))

	report.Fired = EvaluateTriggers(previous, current, triggers)
	for _, firing := range report.Fired {
		c.notify(ctx, firing)
	}

	for _, firing := range report.Fired {
		if !firing.Trigger.OnlyOnce {
			continue
		}
		if err := c.triggers.SetEnabled(ctx, firing.Trigger.ID, false); err != nil {
			c.logger.Warn("failed to disable once-only trigger", zap.String("trigger_id", firing.Trigger.ID), zap.Error(err))
		}
	}

	if err := c.reserves.Save(ctx, snapshotsFrom(current, c.now().UTC())); err != nil {
		return report, fmt.Errorf("save reserves: %w", err)
	}
	span.SetAttributes(attribute.Int("fired", len(report.Fired)))
	return report, nil
}

func (c *ReserveCheck) notify(ctx context.Context, firing Firing) {
	trigger := firing.Trigger
	metrics.TriggersFiredTotal.WithLabelValues(trigger.Currency).Inc()
	title, body := reserveMessage(firing)
	if err := c.notifier.Notify(ctx, trigger.NotificationTag(), title, body); err != nil {
		metrics.NotificationFailuresTotal.Inc()
		c.logger.Warn("reserve notification failed", zap.String("trigger_id", trigger.ID), zap.Error(err))
		return
	}
	c.logger.Info(
		"reserve trigger fired",
		zap.String("trigger_id", trigger.ID),
		zap.String("currency", trigger.Currency),
		zap.String("amount", firing.Amount.String()),
	)
}

func reserveMessage(firing Firing) (string, string) {
	trigger := firing.Trigger
	currency := strings.ToUpper(trigger.Currency)
	title := currency + " reserve alert"
	if trigger.Comparison == domain.ComparisonAny || trigger.TargetAmount == nil {
		return title, fmt.Sprintf("%s reserve changed to %s", currency, firing.Amount.String())
	}
	return title, fmt.Sprintf(
		"%s reserve is now %s (%s %s)",
		currency,
		firing.Amount.String(),
		trigger.Comparison.String(),
		trigger.TargetAmount.String(),
	)
}

func snapshotsFrom(reserves domain.Reserves, at time.Time) []domain.ReserveSnapshot {
	snapshots := make([]domain.ReserveSnapshot, 0, len(reserves))
	for currency, amount := range reserves {
		snapshots = append(snapshots, domain.ReserveSnapshot{Currency: currency, Amount: amount, UpdatedAt: at})
	}
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].Currency < snapshots[j].Currency })
	return snapshots
}
