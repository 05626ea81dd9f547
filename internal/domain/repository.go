package domain

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

type TriggerRepository interface {
	Create(ctx context.Context, trigger *ReserveTrigger) error
	Get(ctx context.Context, id string) (*ReserveTrigger, error)
	List(ctx context.Context) ([]ReserveTrigger, error)
	ListEnabled(ctx context.Context) ([]ReserveTrigger, error)
	Update(ctx context.Context, trigger *ReserveTrigger) error
	SetEnabled(ctx context.Context, id string, enabled bool) error
	Delete(ctx context.Context, id string) error
}

type ReserveRepository interface {
	List(ctx context.Context) ([]ReserveSnapshot, error)
	// Save upserts one row per currency and leaves other currencies untouched.
	Save(ctx context.Context, snapshots []ReserveSnapshot) error
	DeleteAll(ctx context.Context) error
}

type OrderRepository interface {
	Upsert(ctx context.Context, order *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, order *Order) error
	Delete(ctx context.Context, id string) error
}
