package service

import (
	"context"
	"time"

	"github.com/TheYates/bernat-medical-sub000/internal/dto"
	"github.com/TheYates/bernat-medical-sub000/internal/model"
	"github.com/TheYates/bernat-medical-sub000/internal/pricing"
	"github.com/TheYates/bernat-medical-sub000/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerEntry is one signed change of a drug's stock.
type LedgerEntry struct {
	DrugID      uuid.UUID
	Delta       int
	Kind        string
	Reason      string
	ReferenceID *uuid.UUID
	ActorID     uuid.UUID
}

// LedgerService owns drugs.stock. Every stock change goes through ApplyTx.
type LedgerService interface {
	// ApplyTx locks the drug row, rejects a negative balance and records a
	// StockMovement. Requires a live transaction.
	ApplyTx(tx *gorm.DB, e LedgerEntry) (*model.StockMovement, error)
	Dispense(ctx context.Context, actor Actor, drugID uuid.UUID, req dto.DispenseRequest) (*dto.StockLevelResponse, error)
	Adjust(ctx context.Context, actor Actor, drugID uuid.UUID, req dto.AdjustStockRequest) (*dto.StockLevelResponse, error)
	ListMovements(ctx context.Context, filter dto.StockMovementFilter) (*dto.StockMovementListResponse, error)
}

type ledgerService struct {
	drugs     repository.DrugRepository
	movements repository.StockMovementRepository
	audit     AuditService
}

func NewLedgerService(drugs repository.DrugRepository, movements repository.StockMovementRepository, audit AuditService) LedgerService {
	return &ledgerService{drugs: drugs, movements: movements, audit: audit}
}

// runTx executes fn inside a GORM transaction.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}

func (s *ledgerService) ApplyTx(tx *gorm.DB, e LedgerEntry) (*model.StockMovement, error) {
	if e.Delta == 0 {
		return nil, newError(ErrInvalidInput, "Stock change must not be zero")
	}
	drug, err := s.drugs.FindForUpdateTx(tx, e.DrugID)
	if err != nil {
		return nil, classify(err, "Drug")
	}

	if e.Delta > 0 && drug.Stock > pricing.MaxQuantity-e.Delta {
		return nil, newError(ErrInvalidInput, "Stock for %s cannot exceed %d units", drug.Name, pricing.MaxQuantity)
	}
	after := drug.Stock + e.Delta
	if after < 0 {
		return nil, newError(ErrInsufficientStock,
			"Insufficient stock for %s: %d available, %d requested", drug.Name, drug.Stock, -e.Delta)
	}
	if err := s.drugs.UpdateStockTx(tx, drug.ID, after); err != nil {
		return nil, classify(err, "Drug")
	}

	mov := &model.StockMovement{
		DrugID:      drug.ID,
		Kind:        e.Kind,
		Quantity:    e.Delta,
		StockBefore: drug.Stock,
		StockAfter:  after,
		Reason:      e.Reason,
		ReferenceID: e.ReferenceID,
		CreatedBy:   e.ActorID,
	}
	if err := s.movements.CreateTx(tx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

func (s *ledgerService) Dispense(ctx context.Context, actor Actor, drugID uuid.UUID, req dto.DispenseRequest) (*dto.StockLevelResponse, error) {
	if req.Quantity <= 0 {
		return nil, newError(ErrInvalidInput, "Quantity must be greater than zero")
	}
	if req.Kind != model.MovementDispense && req.Kind != model.MovementPosSale {
		return nil, newError(ErrInvalidInput, "Kind must be dispense or pos_sale")
	}
	var ref *uuid.UUID
	if req.ReferenceID != nil {
		id, err := uuid.Parse(*req.ReferenceID)
		if err != nil {
			return nil, newError(ErrInvalidInput, "Invalid reference id")
		}
		ref = &id
	}

	var mov *model.StockMovement
	err := runTx(ctx, s.drugs.DB(), func(tx *gorm.DB) error {
		drug, err := s.drugs.FindForUpdateTx(tx, drugID)
		if err != nil {
			return classify(err, "Drug")
		}
		if !drug.Active {
			return newError(ErrInvalidState, "Drug %s is inactive", drug.Name)
		}
		mov, err = s.ApplyTx(tx, LedgerEntry{
			DrugID:      drugID,
			Delta:       -req.Quantity,
			Kind:        req.Kind,
			Reason:      req.Reason,
			ReferenceID: ref,
			ActorID:     actor.UserID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor, AuditStockDispensed, "drug", &drugID, map[string]interface{}{
		"kind": req.Kind, "quantity": req.Quantity, "stockAfter": mov.StockAfter,
	})
	return &dto.StockLevelResponse{DrugID: drugID.String(), Stock: mov.StockAfter}, nil
}

func (s *ledgerService) Adjust(ctx context.Context, actor Actor, drugID uuid.UUID, req dto.AdjustStockRequest) (*dto.StockLevelResponse, error) {
	if !actor.IsAdmin() {
		return nil, newError(ErrForbidden, "Only admins can adjust stock")
	}
	if req.Delta == 0 {
		return nil, newError(ErrInvalidInput, "Stock change must not be zero")
	}

	var mov *model.StockMovement
	err := runTx(ctx, s.drugs.DB(), func(tx *gorm.DB) error {
		var err error
		mov, err = s.ApplyTx(tx, LedgerEntry{
			DrugID:  drugID,
			Delta:   req.Delta,
			Kind:    model.MovementAdjustment,
			Reason:  req.Reason,
			ActorID: actor.UserID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor, AuditStockAdjusted, "drug", &drugID, map[string]interface{}{
		"delta": req.Delta, "reason": req.Reason, "stockAfter": mov.StockAfter,
	})
	return &dto.StockLevelResponse{DrugID: drugID.String(), Stock: mov.StockAfter}, nil
}

func (s *ledgerService) ListMovements(ctx context.Context, filter dto.StockMovementFilter) (*dto.StockMovementListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	list, total, err := s.movements.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	data := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		r := dto.StockMovementResponse{
			ID:          m.ID.String(),
			DrugID:      m.DrugID.String(),
			Kind:        m.Kind,
			Quantity:    m.Quantity,
			StockBefore: m.StockBefore,
			StockAfter:  m.StockAfter,
			Reason:      m.Reason,
			CreatedBy:   m.CreatedBy.String(),
			CreatedAt:   m.CreatedAt.Format(time.RFC3339),
		}
		if m.Drug != nil {
			r.DrugName = m.Drug.Name
		}
		if m.ReferenceID != nil {
			ref := m.ReferenceID.String()
			r.ReferenceID = &ref
		}
		data = append(data, r)
	}
	return &dto.StockMovementListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}
