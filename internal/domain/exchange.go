package domain

import (
	"context"
	"errors"
)

var (
	ErrFetchFailed   = errors.New("reserve fetch failed")
	ErrOrderNotFound = errors.New("order not found")
)

// ExchangeClient is the boundary to the exchange's public HTTP API.
type ExchangeClient interface {
	// FetchReserves returns the reserve of every target currency. It is all or
	// nothing: on error no partial mapping is returned.
	FetchReserves(ctx context.Context) (Reserves, error)
	GetOrder(ctx context.Context, id, token string) (*Order, error)
}
