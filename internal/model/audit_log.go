package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog rows are immutable.
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID     *uuid.UUID `gorm:"type:uuid;index"`
	ActionType string     `gorm:"type:varchar(40);not null"`
	EntityType string     `gorm:"type:varchar(40);not null"`
	EntityID   *uuid.UUID `gorm:"type:uuid;index"`
	Details    string
	IPAddress  string
	CreatedAt  time.Time
}

func (AuditLog) TableName() string { return "audit_log" }
