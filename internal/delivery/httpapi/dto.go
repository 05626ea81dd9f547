package httpapi

import (
	"time"

	"github.com/NasaVasa/reservewatch/internal/domain"
	"github.com/NasaVasa/reservewatch/internal/scheduler"
	"github.com/NasaVasa/reservewatch/internal/usecase"
	"github.com/shopspring/decimal"
)

type triggerRequest struct {
	Currency     string           `json:"currency"`
	Comparison   string           `json:"comparison"`
	TargetAmount *decimal.Decimal `json:"target_amount"`
	OnlyOnce     bool             `json:"only_once"`
}

func (r triggerRequest) input() (usecase.TriggerInput, error) {
	parsed, err := usecase.ParseTriggerInput(r.Currency, r.Comparison, "", r.OnlyOnce)
	if err != nil {
		return usecase.TriggerInput{}, err
	}
	parsed.TargetAmount = r.TargetAmount
	return parsed, nil
}

type triggerResponse struct {
	ID           string    `json:"id"`
	Currency     string    `json:"currency"`
	Comparison   string    `json:"comparison"`
	Condition    string    `json:"condition"`
	TargetAmount *string   `json:"target_amount"`
	IsEnabled    bool      `json:"is_enabled"`
	OnlyOnce     bool      `json:"only_once"`
	CreatedAt    time.Time `json:"created_at"`
}

func newTriggerResponse(trigger domain.ReserveTrigger) triggerResponse {
	resp := triggerResponse{
		ID:         trigger.ID,
		Currency:   trigger.Currency,
		Comparison: trigger.Comparison.Symbol(),
		Condition:  trigger.Condition(),
		IsEnabled:  trigger.IsEnabled,
		OnlyOnce:   trigger.OnlyOnce,
		CreatedAt:  trigger.CreatedAt,
	}
	if trigger.TargetAmount != nil {
		target := trigger.TargetAmount.String()
		resp.TargetAmount = &target
	}
	return resp
}

type reserveResponse struct {
	Currency  string    `json:"currency"`
	Amount    string    `json:"amount"`
	UpdatedAt time.Time `json:"updated_at"`
}

type orderRequest struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

type orderResponse struct {
	ID           string    `json:"id"`
	FromCurrency string    `json:"from_currency"`
	ToCurrency   string    `json:"to_currency"`
	AmountFrom   string    `json:"amount_from"`
	AmountTo     string    `json:"amount_to"`
	Status       string    `json:"status"`
	StatusKnown  bool      `json:"status_known"`
	Final        bool      `json:"final"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func newOrderResponse(order domain.Order) orderResponse {
	return orderResponse{
		ID:           order.ID,
		FromCurrency: order.FromCurrency,
		ToCurrency:   order.ToCurrency,
		AmountFrom:   order.AmountFrom.String(),
		AmountTo:     order.AmountTo.String(),
		Status:       order.Status.Raw(),
		StatusKnown:  order.Status.IsKnown(),
		Final:        domain.IsFinal(order.Status),
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
	}
}

type scheduleRequest struct {
	Interval string `json:"interval"`
	Flex     string `json:"flex"`
}

type jobResponse struct {
	Name       string     `json:"name"`
	Periodic   bool       `json:"periodic"`
	Interval   string     `json:"interval,omitempty"`
	Flex       string     `json:"flex,omitempty"`
	NextRun    time.Time  `json:"next_run"`
	LastRun    *time.Time `json:"last_run,omitempty"`
	LastResult string     `json:"last_result,omitempty"`
	Running    bool       `json:"running"`
}

func newJobResponse(info scheduler.WorkInfo) jobResponse {
	resp := jobResponse{
		Name:     info.Name,
		Periodic: info.Periodic,
		NextRun:  info.NextRun,
		Running:  info.Running,
	}
	if info.Periodic {
		resp.Interval = info.Interval.String()
		resp.Flex = info.Flex.String()
	}
	if !info.LastRun.IsZero() {
		lastRun := info.LastRun
		resp.LastRun = &lastRun
		resp.LastResult = info.LastResult.String()
	}
	return resp
}

type checkResponse struct {
	Triggers   int               `json:"triggers"`
	Currencies int               `json:"currencies"`
	Skipped    bool              `json:"skipped"`
	Fired      []triggerResponse `json:"fired"`
}

type notificationsRequest struct {
	Enabled *bool `json:"enabled"`
}
