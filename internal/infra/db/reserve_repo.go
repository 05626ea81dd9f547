package db

import (
	"context"
	"fmt"

	"github.com/NasaVasa/reservewatch/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReserveRepository struct {
	db *gorm.DB
}

func NewReserveRepository(db *gorm.DB) *ReserveRepository {
	return &ReserveRepository{db: db}
}

func (r *ReserveRepository) List(ctx context.Context) ([]domain.ReserveSnapshot, error) {
	var models []reserveSnapshotModel
	if err := r.db.WithContext(ctx).Order("currency").Find(&models).Error; err != nil {
		return nil, err
	}
	snapshots := make([]domain.ReserveSnapshot, 0, len(models))
	for _, model := range models {
		amount, err := decimal.NewFromString(model.Amount)
		if err != nil {
			return nil, fmt.Errorf("reserve %s: %w", model.Currency, err)
		}
		snapshots = append(snapshots, domain.ReserveSnapshot{
			Currency:  model.Currency,
			Amount:    amount,
			UpdatedAt: model.UpdatedAt,
		})
	}
	return snapshots, nil
}

func (r *ReserveRepository) Save(ctx context.Context, snapshots []domain.ReserveSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	models := make([]reserveSnapshotModel, 0, len(snapshots))
	for _, snapshot := range snapshots {
		models = append(models, reserveSnapshotModel{
			Currency:  snapshot.Currency,
			Amount:    snapshot.Amount.String(),
			UpdatedAt: snapshot.UpdatedAt,
		})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "currency"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
	}).Create(&models).Error
}

func (r *ReserveRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&reserveSnapshotModel{}).Error
}
