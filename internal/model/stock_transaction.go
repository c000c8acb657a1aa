package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RestockStatus is the lifecycle state of a StockTransaction.
// pending → approved | rejected; both outcomes are terminal.
type RestockStatus string

const (
	RestockPending  RestockStatus = "pending"
	RestockApproved RestockStatus = "approved"
	RestockRejected RestockStatus = "rejected"
)

const StockTransactionIn = "in"

// StockTransaction is one restock line. SaleQuantity is always in sale-form
// units; PurchaseQuantity is its purchase-form equivalent.
type StockTransaction struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	DrugID           uuid.UUID  `gorm:"type:uuid;not null;index"`
	VendorID         *uuid.UUID `gorm:"type:uuid;index"`
	Type             string     `gorm:"type:varchar(10);not null;default:'in'"`
	PurchaseQuantity int        `gorm:"not null"`
	SaleQuantity     int        `gorm:"not null"`
	BatchNumber      *string
	ExpiryDate       *time.Time
	ReferenceNumber  *string       `gorm:"index"`
	CreatedBy        uuid.UUID     `gorm:"type:uuid;not null;index"`
	Status           RestockStatus `gorm:"type:varchar(20);not null;index"`
	ApprovedBy       *uuid.UUID    `gorm:"type:uuid"`
	ApprovedAt       *time.Time

	// Inline pricing edits made on the restock line, applied to the drug
	// when the line is approved. PurchasePrice is per purchase-form unit.
	PurchasePrice      *decimal.Decimal `gorm:"type:decimal(14,4)"`
	PosMarkup          *decimal.Decimal `gorm:"type:decimal(8,4)"`
	PrescriptionMarkup *decimal.Decimal `gorm:"type:decimal(8,4)"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Drug   *Drug   `gorm:"foreignKey:DrugID"`
	Vendor *Vendor `gorm:"foreignKey:VendorID"`
}

// HasPricingEdit reports whether the line carries an inline price or markup change.
func (s *StockTransaction) HasPricingEdit() bool {
	return s.PurchasePrice != nil || s.PosMarkup != nil || s.PrescriptionMarkup != nil
}
