package repository

import (
	"context"

	"github.com/TheYates/bernat-medical-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditRepository interface {
	Create(ctx context.Context, a *model.AuditLog) error
	ListByEntity(ctx context.Context, entityType string, entityID *uuid.UUID, limit int) ([]model.AuditLog, error)
}

type auditRepo struct{ db *gorm.DB }

func NewAuditRepository(db *gorm.DB) AuditRepository { return &auditRepo{db: db} }

func (r *auditRepo) Create(ctx context.Context, a *model.AuditLog) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *auditRepo) ListByEntity(ctx context.Context, entityType string, entityID *uuid.UUID, limit int) ([]model.AuditLog, error) {
	var list []model.AuditLog
	q := r.db.WithContext(ctx).Model(&model.AuditLog{})
	if entityType != "" {
		q = q.Where("entity_type = ?", entityType)
	}
	if entityID != nil {
		q = q.Where("entity_id = ?", *entityID)
	}
	err := q.Order("created_at DESC").Limit(limit).Find(&list).Error
	return list, err
}
