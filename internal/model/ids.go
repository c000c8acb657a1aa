package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// assignID gives a row its primary key on the application side so that the
// same models work on Postgres and on the embedded SQLite database.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (d *Drug) BeforeCreate(*gorm.DB) error             { assignID(&d.ID); return nil }
func (c *DrugCategory) BeforeCreate(*gorm.DB) error     { assignID(&c.ID); return nil }
func (f *DrugForm) BeforeCreate(*gorm.DB) error         { assignID(&f.ID); return nil }
func (v *Vendor) BeforeCreate(*gorm.DB) error           { assignID(&v.ID); return nil }
func (s *StockTransaction) BeforeCreate(*gorm.DB) error { assignID(&s.ID); return nil }
func (m *StockMovement) BeforeCreate(*gorm.DB) error    { assignID(&m.ID); return nil }
func (n *Notification) BeforeCreate(*gorm.DB) error     { assignID(&n.ID); return nil }
func (a *AuditLog) BeforeCreate(*gorm.DB) error         { assignID(&a.ID); return nil }
func (u *User) BeforeCreate(*gorm.DB) error             { assignID(&u.ID); return nil }
