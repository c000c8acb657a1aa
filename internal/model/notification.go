package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationRestockPending  = "restock_pending"
	NotificationRestockApproved = "restock_approved"
	NotificationRestockRejected = "restock_rejected"
	NotificationLowStock        = "low_stock"
)

// Notification is addressed to one user, or to every admin when UserID is nil.
type Notification struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID      *uuid.UUID `gorm:"type:uuid;index"`
	Type        string     `gorm:"type:varchar(30);not null"`
	Message     string     `gorm:"not null"`
	ReferenceID *uuid.UUID `gorm:"type:uuid;index"`
	IsRead      bool       `gorm:"not null;default:false"`
	CreatedAt   time.Time
}
