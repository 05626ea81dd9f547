package httpapi

import (
	"net/http"
	"time"

	"github.com/NasaVasa/reservewatch/internal/notify"
	"github.com/NasaVasa/reservewatch/internal/usecase"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Feed is the live notification stream served on /ws.
type Feed interface {
	http.Handler
	Latest() []notify.Notification
	Dismiss(tag string)
}

type Handler struct {
	triggers *usecase.TriggerUsecase
	orders   *usecase.OrderUsecase
	jobs     *usecase.Jobs
	feed     Feed
	logger   *zap.Logger
}

func NewHandler(triggers *usecase.TriggerUsecase, orders *usecase.OrderUsecase, jobs *usecase.Jobs, feed Feed, logger *zap.Logger) *Handler {
	return &Handler{triggers: triggers, orders: orders, jobs: jobs, feed: feed, logger: logger}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		WriteError(w, status, "internal error")
		return
	}
	WriteError(w, status, err.Error())
}

func (h *Handler) ListTriggers(w http.ResponseWriter, r *http.Request) {
	triggers, err := h.triggers.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := make([]triggerResponse, 0, len(triggers))
	for _, trigger := range triggers {
		resp = append(resp, newTriggerResponse(trigger))
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) CreateTrigger(w http.ResponseWriter, r *http.Request) {
	var req triggerRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	input, err := req.input()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	trigger, err := h.triggers.Create(r.Context(), input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info("trigger created", zap.String("trigger_id", trigger.ID), zap.String("condition", trigger.Condition()))
	WriteJSON(w, http.StatusCreated, newTriggerResponse(*trigger))
}

func (h *Handler) GetTrigger(w http.ResponseWriter, r *http.Request) {
	trigger, err := h.triggers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, newTriggerResponse(*trigger))
}

func (h *Handler) UpdateTrigger(w http.ResponseWriter, r *http.Request) {
	var req triggerRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	input, err := req.input()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	trigger, err := h.triggers.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, newTriggerResponse(*trigger))
}

func (h *Handler) DeleteTrigger(w http.ResponseWriter, r *http.Request) {
	if err := h.triggers.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setTriggerEnabled(enabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := h.triggers.SetEnabled(r.Context(), id, enabled); err != nil {
			h.fail(w, r, err)
			return
		}
		trigger, err := h.triggers.Get(r.Context(), id)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, newTriggerResponse(*trigger))
	}
}

func (h *Handler) ListReserves(w http.ResponseWriter, r *http.Request) {
	reserves, err := h.triggers.ListReserves(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := make([]reserveResponse, 0, len(reserves))
	for _, reserve := range reserves {
		resp = append(resp, reserveResponse{Currency: reserve.Currency, Amount: reserve.Amount.String(), UpdatedAt: reserve.UpdatedAt})
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) ResetReserves(w http.ResponseWriter, r *http.Request) {
	if err := h.triggers.ResetReserves(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Jobs(w http.ResponseWriter, r *http.Request) {
	infos := h.jobs.Status()
	resp := make([]jobResponse, 0, len(infos))
	for _, info := range infos {
		resp = append(resp, newJobResponse(info))
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) ScheduleReserveCheck(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	interval, err := time.ParseDuration(req.Interval)
	if err != nil || interval <= 0 {
		WriteError(w, http.StatusBadRequest, "interval must be a positive duration like 30m")
		return
	}
	var flex time.Duration
	if req.Flex != "" {
		flex, err = time.ParseDuration(req.Flex)
		if err != nil || flex < 0 {
			WriteError(w, http.StatusBadRequest, "flex must be a non-negative duration like 5m")
			return
		}
	}
	info := h.jobs.RescheduleReserveCheck(usecase.Schedule{Interval: interval, Flex: flex})
	h.logger.Info("reserve check rescheduled", zap.Duration("interval", info.Interval), zap.Duration("flex", info.Flex))
	WriteJSON(w, http.StatusOK, newJobResponse(info))
}

// RunReserveCheck queues a check, or runs it inline with ?wait=true.
func (h *Handler) RunReserveCheck(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("wait") != "true" {
		WriteJSON(w, http.StatusAccepted, map[string]bool{"queued": h.jobs.RunReserveCheckNow()})
		return
	}
	report, err := h.jobs.CheckNow(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := checkResponse{
		Triggers:   report.Triggers,
		Currencies: report.Currencies,
		Skipped:    report.Skipped,
		Fired:      make([]triggerResponse, 0, len(report.Fired)),
	}
	for _, firing := range report.Fired {
		resp.Fired = append(resp.Fired, newTriggerResponse(firing.Trigger))
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		resp = append(resp, newOrderResponse(order))
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) TrackOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	order, err := h.orders.Track(r.Context(), req.ID, req.Token)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, newOrderResponse(*order))
}

func (h *Handler) UntrackOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.Untrack(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RefreshOrders(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusAccepted, map[string]bool{"queued": h.jobs.RunOrderUpdateNow()})
}

func (h *Handler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	latest := h.feed.Latest()
	if latest == nil {
		latest = []notify.Notification{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"enabled": h.jobs.NotificationsEnabled(),
		"latest":  latest,
	})
}

func (h *Handler) SetNotifications(w http.ResponseWriter, r *http.Request) {
	var req notificationsRequest
	if err := decodeJSON(r, &req); err != nil || req.Enabled == nil {
		WriteError(w, http.StatusBadRequest, `body must be {"enabled": true|false}`)
		return
	}
	h.jobs.SetNotifications(*req.Enabled)
	WriteJSON(w, http.StatusOK, map[string]bool{"enabled": h.jobs.NotificationsEnabled()})
}

func (h *Handler) DismissNotification(w http.ResponseWriter, r *http.Request) {
	h.feed.Dismiss(chi.URLParam(r, "tag"))
	w.WriteHeader(http.StatusNoContent)
}
