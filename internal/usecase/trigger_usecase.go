package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/NasaVasa/reservewatch/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCurrency   = errors.New("invalid currency")
	ErrInvalidComparison = errors.New("invalid comparison")
	ErrInvalidTarget     = errors.New("invalid target amount")
	ErrTriggerNotFound   = errors.New("trigger not found")
)

// TriggerInput is the user-editable part of a reserve trigger.
type TriggerInput struct {
	Currency     string
	Comparison   domain.Comparison
	TargetAmount *decimal.Decimal
	OnlyOnce     bool
}

// ParseTriggerInput builds a TriggerInput from free-form text as typed into the
// bot or sent by the API. An empty amount is allowed only for "any".
func ParseTriggerInput(currency, comparison, amount string, onlyOnce bool) (TriggerInput, error) {
	cmp, err := domain.ParseComparison(strings.ToLower(strings.TrimSpace(comparison)))
	if err != nil {
		return TriggerInput{}, ErrInvalidComparison
	}
	input := TriggerInput{Currency: currency, Comparison: cmp, OnlyOnce: onlyOnce}
	amount = strings.TrimSpace(amount)
	if amount != "" {
		target, err := decimal.NewFromString(amount)
		if err != nil {
			return TriggerInput{}, ErrInvalidTarget
		}
		input.TargetAmount = &target
	}
	return input, nil
}

func (in TriggerInput) normalize() (TriggerInput, error) {
	in.Currency = strings.ToLower(strings.TrimSpace(in.Currency))
	if in.Currency == "" || strings.ContainsAny(in.Currency, " \t\n") {
		return in, ErrInvalidCurrency
	}
	if !in.Comparison.Valid() {
		return in, ErrInvalidComparison
	}
	if in.Comparison == domain.ComparisonAny {
		in.TargetAmount = nil
		return in, nil
	}
	if in.TargetAmount == nil || in.TargetAmount.IsNegative() {
		return in, ErrInvalidTarget
	}
	return in, nil
}

type TriggerUsecase struct {
	triggers domain.TriggerRepository
	reserves domain.ReserveRepository
	now      func() time.Time
}

func NewTriggerUsecase(triggers domain.TriggerRepository, reserves domain.ReserveRepository) *TriggerUsecase {
	return &TriggerUsecase{triggers: triggers, reserves: reserves, now: time.Now}
}

func (u *TriggerUsecase) Create(ctx context.Context, input TriggerInput) (*domain.ReserveTrigger, error) {
	input, err := input.normalize()
	if err != nil {
		return nil, err
	}

	trigger := &domain.ReserveTrigger{
		ID:           uuid.NewString(),
		Currency:     input.Currency,
		TargetAmount: input.TargetAmount,
		Comparison:   input.Comparison,
		IsEnabled:    true,
		OnlyOnce:     input.OnlyOnce,
		CreatedAt:    u.now().UTC(),
	}
	if err := u.triggers.Create(ctx, trigger); err != nil {
		return nil, err
	}

	return trigger, nil
}

func (u *TriggerUsecase) Get(ctx context.Context, id string) (*domain.ReserveTrigger, error) {
	trigger, err := u.triggers.Get(ctx, id)
	if err != nil {
		return nil, mapTriggerErr(err)
	}
	return trigger, nil
}

func (u *TriggerUsecase) List(ctx context.Context) ([]domain.ReserveTrigger, error) {
	return u.triggers.List(ctx)
}

// Update replaces the condition of an existing trigger. The enabled flag and
// creation time are kept.
func (u *TriggerUsecase) Update(ctx context.Context, id string, input TriggerInput) (*domain.ReserveTrigger, error) {
	input, err := input.normalize()
	if err != nil {
		return nil, err
	}

	trigger, err := u.triggers.Get(ctx, id)
	if err != nil {
		return nil, mapTriggerErr(err)
	}
	trigger.Currency = input.Currency
	trigger.Comparison = input.Comparison
	trigger.TargetAmount = input.TargetAmount
	trigger.OnlyOnce = input.OnlyOnce

	if err := u.triggers.Update(ctx, trigger); err != nil {
		return nil, mapTriggerErr(err)
	}

	return trigger, nil
}

func (u *TriggerUsecase) SetEnabled(ctx context.Context, id string, enabled bool) error {
	return mapTriggerErr(u.triggers.SetEnabled(ctx, id, enabled))
}

func (u *TriggerUsecase) Delete(ctx context.Context, id string) error {
	return mapTriggerErr(u.triggers.Delete(ctx, id))
}

// ListReserves returns the last observed reserve of every currency.
func (u *TriggerUsecase) ListReserves(ctx context.Context) ([]domain.ReserveSnapshot, error) {
	return u.reserves.List(ctx)
}

// ResetReserves forgets every observed reserve; the next check treats all
// currencies as seen for the first time.
func (u *TriggerUsecase) ResetReserves(ctx context.Context) error {
	return u.reserves.DeleteAll(ctx)
}

func mapTriggerErr(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return ErrTriggerNotFound
	}
	return err
}
