package model

import (
	"time"

	"github.com/google/uuid"
)

// Vendor supplies drugs. Vendors are never hard-deleted; deactivated vendors
// stay referenced by their past stock transactions.
type Vendor struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name          string    `gorm:"uniqueIndex;not null"`
	ContactPerson *string
	Phone         *string
	Email         *string
	Address       *string
	Active        bool `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
