package model

import (
	"time"

	"github.com/google/uuid"
)

// Movement kinds recorded in the stock ledger.
const (
	MovementRestock    = "restock"
	MovementDispense   = "dispense"
	MovementPosSale    = "pos_sale"
	MovementAdjustment = "adjustment"
)

// StockMovement is an append-only ledger entry for every change of Drug.Stock.
type StockMovement struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	DrugID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Kind        string     `gorm:"type:varchar(20);not null"`
	// Quantity is positive for stock in, negative for stock out.
	Quantity    int        `gorm:"not null"`
	StockBefore int        `gorm:"not null"`
	StockAfter  int        `gorm:"not null"`
	Reason      string
	ReferenceID *uuid.UUID `gorm:"type:uuid"`
	CreatedBy   uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt   time.Time

	Drug *Drug `gorm:"foreignKey:DrugID"`
}
