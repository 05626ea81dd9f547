package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	WorkRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reservewatch",
			Name:      "work_runs_total",
			Help:      "Scheduled work executions by work name and result",
		},
		[]string{"work", "result"},
	)
	TriggersFiredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reservewatch",
			Name:      "triggers_fired_total",
			Help:      "Reserve triggers that fired, by currency",
		},
		[]string{"currency"},
	)
	ReserveFetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "reservewatch",
			Name:      "reserve_fetch_duration_seconds",
			Help:      "Latency of reserve fetches from the exchange",
			Buckets:   prometheus.DefBuckets,
		},
	)
	OrderStatusChangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reservewatch",
			Name:      "order_status_changes_total",
			Help:      "Observed order status transitions, by new status",
		},
		[]string{"status"},
	)
	NotificationFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "reservewatch",
			Name:      "notification_failures_total",
			Help:      "Notifications that at least one sink failed to deliver",
		},
	)
)

func init() {
	prometheus.MustRegister(WorkRunsTotal)
	prometheus.MustRegister(TriggersFiredTotal)
	prometheus.MustRegister(ReserveFetchDuration)
	prometheus.MustRegister(OrderStatusChangesTotal)
	prometheus.MustRegister(NotificationFailuresTotal)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
