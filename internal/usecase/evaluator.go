package usecase

import (
	"sort"

	"github.com/NasaVasa/reservewatch/internal/domain"
	"github.com/shopspring/decimal"
)

// Firing is a trigger that must notify this tick, with the reserve that fired it.
type Firing struct {
	Trigger domain.ReserveTrigger
	Amount  decimal.Decimal
}

// EvaluateTriggers decides which triggers fire when reserves move from previous
// to current. Triggers are edge-triggered: a numeric trigger fires only when the
// reserve enters the matching relation to its target, and an any-change trigger
// only when the value differs. A currency without a previous observation counts
// as a change. Currencies missing from current are not evaluated.
//
// The result is ordered by currency, then by the order of triggers.
func EvaluateTriggers(previous, current domain.Reserves, triggers []domain.ReserveTrigger) []Firing {
	byCurrency := make(map[string][]domain.ReserveTrigger)
	for _, trigger := range triggers {
		if !trigger.IsEnabled {
			continue
		}
		byCurrency[trigger.Currency] = append(byCurrency[trigger.Currency], trigger)
	}

	currencies := make([]string, 0, len(current))
	for currency := range current {
		if _, ok := byCurrency[currency]; ok {
			currencies = append(currencies, currency)
		}
	}
	sort.Strings(currencies)

	var firings []Firing
	for _, currency := range currencies {
		newAmount := current[currency]
		oldAmount, seen := previous[currency]
		for _, trigger := range byCurrency[currency] {
			if shouldFire(trigger, seen, oldAmount, newAmount) {
				firings = append(firings, Firing{Trigger: trigger, Amount: newAmount})
			}
		}
	}
	return firings
}

func shouldFire(trigger domain.ReserveTrigger, seen bool, oldAmount, newAmount decimal.Decimal) bool {
	if trigger.Comparison == domain.ComparisonAny {
		return !seen || !newAmount.Equal(oldAmount)
	}
	if trigger.TargetAmount == nil {
		return false
	}
	target := *trigger.TargetAmount
	if !matches(newAmount, target, trigger.Comparison) {
		return false
	}
	return !seen || !matches(oldAmount, target, trigger.Comparison)
}

func matches(amount, target decimal.Decimal, comparison domain.Comparison) bool {
	return domain.Comparison(amount.Cmp(target)) == comparison
}
