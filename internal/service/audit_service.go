package service

import (
	"context"
	"encoding/json"

	"github.com/TheYates/bernat-medical-sub000/internal/model"
	"github.com/TheYates/bernat-medical-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Audit action types.
const (
	AuditRestockCreated  = "restock_created"
	AuditRestockApproved = "restock_approved"
	AuditRestockRejected = "restock_rejected"
	AuditStockDispensed  = "stock_dispensed"
	AuditStockAdjusted   = "stock_adjusted"
	AuditDrugCreated     = "drug_created"
	AuditDrugUpdated     = "drug_updated"
	AuditDrugDeactivated = "drug_deactivated"
	AuditVendorChanged   = "vendor_changed"
)

// AuditService records who did what. Recording never fails the caller.
type AuditService interface {
	Record(ctx context.Context, actor Actor, action, entityType string, entityID *uuid.UUID, details interface{})
	List(ctx context.Context, entityType string, entityID *uuid.UUID) ([]model.AuditLog, error)
}

type auditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) Record(ctx context.Context, actor Actor, action, entityType string, entityID *uuid.UUID, details interface{}) {
	entry := &model.AuditLog{
		ActionType: action,
		EntityType: entityType,
		EntityID:   entityID,
		IPAddress:  actor.IPAddress,
	}
	if actor.UserID != uuid.Nil {
		uid := actor.UserID
		entry.UserID = &uid
	}
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			entry.Details = string(b)
		}
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		log.Warn().Err(err).
			Str("action", action).
			Str("entity_type", entityType).
			Msg("audit: failed to record entry")
	}
}

func (s *auditService) List(ctx context.Context, entityType string, entityID *uuid.UUID) ([]model.AuditLog, error) {
	return s.repo.ListByEntity(ctx, entityType, entityID, 200)
}
