package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/NasaVasa/reservewatch/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Upsert(ctx context.Context, order *domain.Order) error {
	model := mapOrderToModel(*order)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "from_currency", "to_currency", "amount_from", "amount_to", "status", "updated_at"}),
	}).Create(&model).Error
	if err != nil {
		return err
	}
	order.CreatedAt = model.CreatedAt
	order.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	var model orderModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	order, err := mapOrderToDomain(model)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	var models []orderModel
	if err := r.db.WithContext(ctx).Order("created_at DESC, id").Find(&models).Error; err != nil {
		return nil, err
	}
	orders := make([]domain.Order, 0, len(models))
	for _, model := range models {
		order, err := mapOrderToDomain(model)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, order *domain.Order) error {
	result := r.db.WithContext(ctx).Model(&orderModel{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
		"status":      order.Status.Raw(),
		"amount_from": order.AmountFrom.String(),
		"amount_to":   order.AmountTo.String(),
		"updated_at":  order.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&orderModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func mapOrderToDomain(model orderModel) (domain.Order, error) {
	amountFrom, err := decimal.NewFromString(model.AmountFrom)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %s amount_from: %w", model.ID, err)
	}
	amountTo, err := decimal.NewFromString(model.AmountTo)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %s amount_to: %w", model.ID, err)
	}
	return domain.Order{
		ID:           model.ID,
		Token:        model.Token,
		FromCurrency: model.FromCurrency,
		ToCurrency:   model.ToCurrency,
		AmountFrom:   amountFrom,
		AmountTo:     amountTo,
		Status:       domain.OrderStatusCodec.Decode(model.Status),
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}, nil
}

func mapOrderToModel(order domain.Order) orderModel {
	return orderModel{
		ID:           order.ID,
		Token:        order.Token,
		FromCurrency: order.FromCurrency,
		ToCurrency:   order.ToCurrency,
		AmountFrom:   order.AmountFrom.String(),
		AmountTo:     order.AmountTo.String(),
		Status:       order.Status.Raw(),
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
	}
}
