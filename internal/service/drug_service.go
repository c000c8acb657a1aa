package service

import (
	"context"
	"math"
	"time"

	"github.com/TheYates/bernat-medical-sub000/internal/dto"
	"github.com/TheYates/bernat-medical-sub000/internal/model"
	"github.com/TheYates/bernat-medical-sub000/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DrugService manages the drug catalogue. Stock is read-only here; it
// changes through LedgerService and RestockService.
type DrugService interface {
	Create(ctx context.Context, actor Actor, req dto.CreateDrugRequest) (*dto.DrugResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.DrugResponse, error)
	List(ctx context.Context, filter dto.DrugFilter) (*dto.DrugListResponse, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req dto.UpdateDrugRequest) (*dto.DrugResponse, error)
	SetActive(ctx context.Context, actor Actor, id uuid.UUID, active bool) error
}

type drugService struct {
	db      *gorm.DB
	repo    repository.DrugRepository
	catalog repository.CatalogRepository
	audit   AuditService
}

func NewDrugService(db *gorm.DB, repo repository.DrugRepository, catalog repository.CatalogRepository, audit AuditService) DrugService {
	return &drugService{db: db, repo: repo, catalog: catalog, audit: audit}
}

func parseDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return nil, newError(ErrInvalidInput, "Dates must be YYYY-MM-DD")
	}
	return &t, nil
}

// checkLookups makes sure category and forms name managed catalogue entries.
func (s *drugService) checkLookups(ctx context.Context, category string, forms ...string) error {
	if category != "" {
		c, err := s.catalog.FindCategoryByName(ctx, category)
		if err != nil || !c.Active {
			return newError(ErrInvalidInput, "Unknown drug category %q", category)
		}
	}
	for _, f := range forms {
		if f == "" {
			continue
		}
		if _, err := s.catalog.FindFormByName(ctx, f); err != nil {
			return newError(ErrInvalidInput, "Unknown drug form %q", f)
		}
	}
	return nil
}

func (s *drugService) Create(ctx context.Context, actor Actor, req dto.CreateDrugRequest) (*dto.DrugResponse, error) {
	if err := s.checkLookups(ctx, req.Category, req.PurchaseForm, req.SaleForm); err != nil {
		return nil, err
	}
	expiry, err := parseDate(req.ExpiryDate)
	if err != nil {
		return nil, err
	}

	d := &model.Drug{
		Name:         req.Name,
		Category:     req.Category,
		PurchaseForm: req.PurchaseForm,
		SaleForm:     req.SaleForm,
		Strength:     req.Strength,
		Unit:         req.Unit,
		MinStock:     req.MinStock,
		ExpiryDate:   expiry,
		Active:       true,
	}
	upp := req.UnitsPerPurchase
	if req.PurchaseForm == req.SaleForm {
		upp = 1
	}
	if err := repriceDrug(d, pricingChange{
		PurchasePrice:      &req.PurchasePrice,
		UnitsPerPurchase:   &upp,
		PosMarkup:          &req.PosMarkup,
		PrescriptionMarkup: &req.PrescriptionMarkup,
	}); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, classify(err, "Drug")
	}
	s.audit.Record(ctx, actor, AuditDrugCreated, "drug", &d.ID, map[string]interface{}{"name": d.Name})
	return drugToResponse(d), nil
}

func (s *drugService) GetByID(ctx context.Context, id uuid.UUID) (*dto.DrugResponse, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, classify(err, "Drug")
	}
	return drugToResponse(d), nil
}

func (s *drugService) List(ctx context.Context, filter dto.DrugFilter) (*dto.DrugListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	drugs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.DrugResponse, 0, len(drugs))
	for i := range drugs {
		data = append(data, *drugToResponse(&drugs[i]))
	}
	return &dto.DrugListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

// Update holds the drug row lock for the whole read-modify-write, the same
// lock restock approval takes.
func (s *drugService) Update(ctx context.Context, actor Actor, id uuid.UUID, req dto.UpdateDrugRequest) (*dto.DrugResponse, error) {
	var category, purchaseForm, saleForm string
	if req.Category != nil {
		category = *req.Category
	}
	if req.PurchaseForm != nil {
		purchaseForm = *req.PurchaseForm
	}
	if req.SaleForm != nil {
		saleForm = *req.SaleForm
	}
	if err := s.checkLookups(ctx, category, purchaseForm, saleForm); err != nil {
		return nil, err
	}
	expiry, err := parseDate(req.ExpiryDate)
	if err != nil {
		return nil, err
	}

	var d *model.Drug
	err = runTx(ctx, s.db, func(tx *gorm.DB) error {
		locked, err := s.repo.FindForUpdateTx(tx, id)
		if err != nil {
			return classify(err, "Drug")
		}
		d = locked

		if req.Name != nil {
			d.Name = *req.Name
		}
		if req.Category != nil {
			d.Category = *req.Category
		}
		if req.PurchaseForm != nil {
			d.PurchaseForm = *req.PurchaseForm
		}
		if req.SaleForm != nil {
			d.SaleForm = *req.SaleForm
		}
		if req.Strength != nil {
			d.Strength = req.Strength
		}
		if req.Unit != nil {
			d.Unit = req.Unit
		}
		if req.MinStock != nil {
			d.MinStock = *req.MinStock
		}
		if req.ExpiryDate != nil {
			d.ExpiryDate = expiry
		}

		change := pricingChange{
			PurchasePrice:      req.PurchasePrice,
			UnitsPerPurchase:   req.UnitsPerPurchase,
			PosMarkup:          req.PosMarkup,
			PrescriptionMarkup: req.PrescriptionMarkup,
		}
		if d.PurchaseForm == d.SaleForm && d.UnitsPerPurchase != 1 {
			one := 1
			change.UnitsPerPurchase = &one
		}
		if !change.empty() {
			if err := repriceDrug(d, change); err != nil {
				return err
			}
		}
		if err := s.repo.UpdateTx(tx, d); err != nil {
			return classify(err, "Drug")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actor, AuditDrugUpdated, "drug", &d.ID, req)
	return drugToResponse(d), nil
}

func (s *drugService) SetActive(ctx context.Context, actor Actor, id uuid.UUID, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return classify(err, "Drug")
	}
	if !active {
		s.audit.Record(ctx, actor, AuditDrugDeactivated, "drug", &id, nil)
	}
	return nil
}

func drugToResponse(d *model.Drug) *dto.DrugResponse {
	r := &dto.DrugResponse{
		ID:                 d.ID.String(),
		Name:               d.Name,
		Category:           d.Category,
		PurchaseForm:       d.PurchaseForm,
		SaleForm:           d.SaleForm,
		PurchasePrice:      d.PurchasePrice,
		UnitsPerPurchase:   d.UnitsPerPurchase,
		PosMarkup:          d.PosMarkup,
		PrescriptionMarkup: d.PrescriptionMarkup,
		UnitCost:           d.UnitCost,
		PosPrice:           d.PosPrice,
		PrescriptionPrice:  d.PrescriptionPrice,
		Strength:           d.Strength,
		Unit:               d.Unit,
		Stock:              d.Stock,
		MinStock:           d.MinStock,
		Active:             d.Active,
	}
	if d.ExpiryDate != nil {
		e := d.ExpiryDate.Format("2006-01-02")
		r.ExpiryDate = &e
	}
	return r
}

