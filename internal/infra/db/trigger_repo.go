package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/NasaVasa/reservewatch/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TriggerRepository struct {
	db *gorm.DB
}

func NewTriggerRepository(db *gorm.DB) *TriggerRepository {
	return &TriggerRepository{db: db}
}

func (r *TriggerRepository) Create(ctx context.Context, trigger *domain.ReserveTrigger) error {
	model := mapTriggerToModel(*trigger)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	trigger.CreatedAt = model.CreatedAt
	return nil
}

func (r *TriggerRepository) Get(ctx context.Context, id string) (*domain.ReserveTrigger, error) {
	var model reserveTriggerModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	trigger, err := mapTriggerToDomain(model)
	if err != nil {
		return nil, err
	}
	return &trigger, nil
}

func (r *TriggerRepository) List(ctx context.Context) ([]domain.ReserveTrigger, error) {
	var models []reserveTriggerModel
	if err := r.db.WithContext(ctx).Order("created_at, id").Find(&models).Error; err != nil {
		return nil, err
	}
	return mapTriggersToDomain(models)
}

func (r *TriggerRepository) ListEnabled(ctx context.Context) ([]domain.ReserveTrigger, error) {
	var models []reserveTriggerModel
	if err := r.db.WithContext(ctx).Where("is_enabled = ?", true).Order("created_at, id").Find(&models).Error; err != nil {
		return nil, err
	}
	return mapTriggersToDomain(models)
}

func (r *TriggerRepository) Update(ctx context.Context, trigger *domain.ReserveTrigger) error {
	model := mapTriggerToModel(*trigger)
	result := r.db.WithContext(ctx).Model(&reserveTriggerModel{}).Where("id = ?", trigger.ID).Updates(map[string]interface{}{
		"currency":      model.Currency,
		"target_amount": model.TargetAmount,
		"comparison":    model.Comparison,
		"is_enabled":    model.IsEnabled,
		"only_once":     model.OnlyOnce,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TriggerRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	result := r.db.WithContext(ctx).Model(&reserveTriggerModel{}).Where("id = ?", id).Update("is_enabled", enabled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TriggerRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&reserveTriggerModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func mapTriggersToDomain(models []reserveTriggerModel) ([]domain.ReserveTrigger, error) {
	triggers := make([]domain.ReserveTrigger, 0, len(models))
	for _, model := range models {
		trigger, err := mapTriggerToDomain(model)
		if err != nil {
			return nil, err
		}
		triggers = append(triggers, trigger)
	}
	return triggers, nil
}

func mapTriggerToDomain(model reserveTriggerModel) (domain.ReserveTrigger, error) {
	comparison, err := domain.ComparisonFromCode(model.Comparison)
	if err != nil {
		return domain.ReserveTrigger{}, fmt.Errorf("trigger %s: %w", model.ID, err)
	}
	var target *decimal.Decimal
	if model.TargetAmount != nil {
		value, err := decimal.NewFromString(*model.TargetAmount)
		if err != nil {
			return domain.ReserveTrigger{}, fmt.Errorf("trigger %s target: %w", model.ID, err)
		}
		target = &value
	}
	return domain.ReserveTrigger{
		ID:           model.ID,
		Currency:     model.Currency,
		TargetAmount: target,
		Comparison:   comparison,
		IsEnabled:    model.IsEnabled,
		OnlyOnce:     model.OnlyOnce,
		CreatedAt:    model.CreatedAt,
	}, nil
}

func mapTriggerToModel(trigger domain.ReserveTrigger) reserveTriggerModel {
	var target *string
	if trigger.TargetAmount != nil {
		value := trigger.TargetAmount.String()
		target = &value
	}
	return reserveTriggerModel{
		ID:           trigger.ID,
		Currency:     trigger.Currency,
		TargetAmount: target,
		Comparison:   trigger.Comparison.Code(),
		IsEnabled:    trigger.IsEnabled,
		OnlyOnce:     trigger.OnlyOnce,
		CreatedAt:    trigger.CreatedAt,
	}
}
