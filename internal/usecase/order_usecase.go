package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/NasaVasa/reservewatch/internal/domain"
)

var (
	ErrInvalidOrder  = errors.New("order id and token are required")
	ErrOrderNotFound = errors.New("order not found")
)

type OrderFetcher interface {
	GetOrder(ctx context.Context, id, token string) (*domain.Order, error)
}

type OrderUsecase struct {
	orders   domain.OrderRepository
	exchange OrderFetcher
	now      func() time.Time
}

func NewOrderUsecase(orders domain.OrderRepository, exchange OrderFetcher) *OrderUsecase {
	return &OrderUsecase{orders: orders, exchange: exchange, now: time.Now}
}

// Track looks the order up once on the exchange and starts following it.
// Tracking an order again refreshes the stored copy.
func (u *OrderUsecase) Track(ctx context.Context, id, token string) (*domain.Order, error) {
	id = strings.TrimSpace(id)
	token = strings.TrimSpace(token)
	if id == "" || token == "" {
		return nil, ErrInvalidOrder
	}

	order, err := u.exchange.GetOrder(ctx, id, token)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	now := u.now().UTC()
	order.ID = id
	order.Token = token
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	if err := u.orders.Upsert(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

func (u *OrderUsecase) List(ctx context.Context) ([]domain.Order, error) {
	return u.orders.List(ctx)
}

func (u *OrderUsecase) Untrack(ctx context.Context, id string) error {
	if err := u.orders.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	return nil
}
