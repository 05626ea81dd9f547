package httpapi

import (
	"net/http"
	"time"

	"github.com/NasaVasa/reservewatch/internal/infra/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Method(http.MethodGet, "/ws", h.feed)

	r.Route("/triggers", func(r chi.Router) {
		r.Get("/", h.ListTriggers)
		r.Post("/", h.CreateTrigger)
		r.Get("/{id}", h.GetTrigger)
		r.Put("/{id}", h.UpdateTrigger)
		r.Delete("/{id}", h.DeleteTrigger)
		r.Post("/{id}/enable", h.setTriggerEnabled(true))
		r.Post("/{id}/disable", h.setTriggerEnabled(false))
	})

	r.Get("/reserves", h.ListReserves)
	r.Delete("/reserves", h.ResetReserves)

	r.Get("/jobs", h.Jobs)
	r.Put("/reserve-check/schedule", h.ScheduleReserveCheck)
	r.Post("/reserve-check/run", h.RunReserveCheck)

	r.Get("/orders", h.ListOrders)
	r.Post("/orders", h.TrackOrder)
	r.Delete("/orders/{id}", h.UntrackOrder)
	r.Post("/orders/refresh", h.RefreshOrders)

	r.Get("/notifications", h.GetNotifications)
	r.Put("/notifications", h.SetNotifications)
	r.Delete("/notifications/{tag}", h.DismissNotification)

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info(
				"http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
