package db

import "time"

// Amounts are stored as decimal strings so sqlite's numeric affinity can not
// round them.
type reserveSnapshotModel struct {
	Currency  string `gorm:"primaryKey;size:32"`
	Amount    string `gorm:"not null"`
	UpdatedAt time.Time
}

func (reserveSnapshotModel) TableName() string { return "reserve_snapshots" }

type reserveTriggerModel struct {
	ID           string  `gorm:"primaryKey;size:36"`
	Currency     string  `gorm:"size:32;not null;index:idx_triggers_enabled_currency,priority:2"`
	TargetAmount *string `gorm:""`
	Comparison   *int    `gorm:""`
	IsEnabled    bool    `gorm:"not null;index:idx_triggers_enabled_currency,priority:1"`
	OnlyOnce     bool    `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (reserveTriggerModel) TableName() string { return "reserve_triggers" }

type orderModel struct {
	ID           string `gorm:"primaryKey;size:64"`
	Token        string `gorm:"not null"`
	FromCurrency string `gorm:"size:32;not null"`
	ToCurrency   string `gorm:"size:32;not null"`
	AmountFrom   string `gorm:"not null"`
	AmountTo     string `gorm:"not null"`
	Status       string `gorm:"size:32;not null;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (orderModel) TableName() string { return "orders" }
