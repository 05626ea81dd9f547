package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NasaVasa/reservewatch/internal/domain"
	"github.com/NasaVasa/reservewatch/internal/infra/metrics"
	"github.com/NasaVasa/reservewatch/internal/scheduler"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var errAllLookupsFailed = errors.New("every order lookup failed")

type WatchReport struct {
	Pending int
	Changed []domain.Order
	Failed  int
}

// OrderWatch polls the status of tracked orders that are not final yet.
type OrderWatch struct {
	orders   domain.OrderRepository
	exchange OrderFetcher
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewOrderWatch(orders domain.OrderRepository, exchange OrderFetcher, notifier Notifier, logger *zap.Logger) *OrderWatch {
	return &OrderWatch{
		orders:   orders,
		exchange: exchange,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

func (w *OrderWatch) Run(ctx context.Context) scheduler.Result {
	report, err := w.Check(ctx)
	if err != nil {
		w.logger.Error("order update failed", zap.Error(err))
		return scheduler.Retry
	}
	w.logger.Info(
		"order update complete",
		zap.Int("pending", report.Pending),
		zap.Int("changed", len(report.Changed)),
		zap.Int("failed", report.Failed),
	)
	return scheduler.Success
}

func (w *OrderWatch) Check(ctx context.Context) (WatchReport, error) {
	ctx, span := otel.Tracer("reservewatch/usecase").Start(ctx, "order_watch")
	defer span.End()

	orders, err := w.orders.List(ctx)
	if err != nil {
		return WatchReport{}, fmt.Errorf("load orders: %w", err)
	}

	var report WatchReport
	for _, order := range orders {
		if domain.IsFinal(order.Status) {
			continue
		}
		report.Pending++

		fresh, err := w.exchange.GetOrder(ctx, order.ID, order.Token)
		if err != nil {
			report.Failed++
			w.logger.Warn("order lookup failed", zap.String("order_id", order.ID), zap.Error(err))
			continue
		}
		if fresh.Status.Raw() == order.Status.Raw() {
			continue
		}

		order.Status = fresh.Status
		order.AmountFrom = fresh.AmountFrom
		order.AmountTo = fresh.AmountTo
		order.UpdatedAt = w.now().UTC()
		if err := w.orders.UpdateStatus(ctx, &order); err != nil {
			report.Failed++
			w.logger.Warn("failed to persist order status", zap.String("order_id", order.ID), zap.Error(err))
			continue
		}

		metrics.OrderStatusChangesTotal.WithLabelValues(order.Status.Raw()).Inc()
		report.Changed = append(report.Changed, order)
		w.notify(ctx, order)
	}
	span.SetAttributes(attribute.Int("pending", report.Pending), attribute.Int("changed", len(report.Changed)))

	if report.Pending > 0 && report.Failed == report.Pending {
		return report, errAllLookupsFailed
	}
	return report, nil
}

func (w *OrderWatch) notify(ctx context.Context, order domain.Order) {
	if !w.notifier.Enabled() {
		return
	}
	title := fmt.Sprintf("Order %s", order.ID)
	body := fmt.Sprintf(
		"%s → %s: status %s",
		strings.ToUpper(order.FromCurrency),
		strings.ToUpper(order.ToCurrency),
		order.Status.String(),
	)
	if err := w.notifier.Notify(ctx, order.NotificationTag(), title, body); err != nil {
		metrics.NotificationFailuresTotal.Inc()
		w.logger.Warn("order notification failed", zap.String("order_id", order.ID), zap.Error(err))
	}
}
