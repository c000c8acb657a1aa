package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Drug is a stocked medicine. Stock is counted in sale-form units.
// UnitCost, PosPrice and PrescriptionPrice are derived from PurchasePrice,
// UnitsPerPurchase and the two markups and are rewritten whenever any of
// those inputs change.
type Drug struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name               string          `gorm:"index;not null"`
	Category           string          `gorm:"index;not null"`
	PurchaseForm       string          `gorm:"not null"`
	SaleForm           string          `gorm:"not null"`
	PurchasePrice      decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	UnitsPerPurchase   int             `gorm:"not null;default:1"`
	PosMarkup          decimal.Decimal `gorm:"type:decimal(8,4);not null"`
	PrescriptionMarkup decimal.Decimal `gorm:"type:decimal(8,4);not null"`
	UnitCost           decimal.Decimal `gorm:"type:decimal(18,8);not null"`
	PosPrice           decimal.Decimal `gorm:"type:decimal(18,8);not null"`
	PrescriptionPrice  decimal.Decimal `gorm:"type:decimal(18,8);not null"`
	Strength           *string
	Unit               *string
	Stock              int `gorm:"not null;default:0"`
	MinStock           int `gorm:"not null;default:0"`
	ExpiryDate         *time.Time
	Active             bool `gorm:"not null;default:true"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// DrugCategory is a managed lookup for Drug.Category.
type DrugCategory struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"uniqueIndex;not null"`
	Description *string
	Active      bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DrugForm is a managed lookup for purchase and sale forms (box, tablet, vial).
type DrugForm struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
}
