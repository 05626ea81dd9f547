package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus int

const (
	OrderStatusNew OrderStatus = iota
	OrderStatusWaiting
	OrderStatusConfirming
	OrderStatusExchanging
	OrderStatusSending
	OrderStatusDone
	OrderStatusExpired
	OrderStatusRefunded
	OrderStatusFailed
)

var OrderStatusCodec = NewCodec(map[OrderStatus]string{
	OrderStatusNew:        "new",
	OrderStatusWaiting:    "waiting",
	OrderStatusConfirming: "confirming",
	OrderStatusExchanging: "exchanging",
	OrderStatusSending:    "sending",
	OrderStatusDone:       "done",
	OrderStatusExpired:    "expired",
	OrderStatusRefunded:   "refunded",
	OrderStatusFailed:     "failed",
})

// IsFinal reports whether an order with this status can no longer change.
// Unknown statuses are never final so they keep being polled.
func IsFinal(status Codified[OrderStatus]) bool {
	value, ok := status.Value()
	if !ok {
		return false
	}
	switch value {
	case OrderStatusDone, OrderStatusExpired, OrderStatusRefunded, OrderStatusFailed:
		return true
	default:
		return false
	}
}

type Order struct {
	ID           string
	Token        string
	FromCurrency string
	ToCurrency   string
	AmountFrom   decimal.Decimal
	AmountTo     decimal.Decimal
	Status       Codified[OrderStatus]
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (o Order) NotificationTag() string {
	return "order:" + o.ID
}
