package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReserveSnapshot struct {
	Currency  string
	Amount    decimal.Decimal
	UpdatedAt time.Time
}

// Reserves maps a lowercase currency code to its advertised reserve.
type Reserves map[string]decimal.Decimal

func SnapshotsToReserves(snapshots []ReserveSnapshot) Reserves {
	reserves := make(Reserves, len(snapshots))
	for _, snapshot := range snapshots {
		reserves[snapshot.Currency] = snapshot.Amount
	}
	return reserves
}
