package repository

import (
	"context"
	"strings"

	"github.com/TheYates/bernat-medical-sub000/internal/dto"
	"github.com/TheYates/bernat-medical-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DrugRepository defines the data access contract for drugs.
// Stock is only written through UpdateStockTx, called by the ledger.
type DrugRepository interface {
	Create(ctx context.Context, d *model.Drug) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Drug, error)
	List(ctx context.Context, filter dto.DrugFilter) ([]model.Drug, int64, error)
	ListLowStock(ctx context.Context) ([]model.Drug, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error

	// Used inside transactions; callers must pass the tx instance
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Drug, error)
	UpdateStockTx(tx *gorm.DB, id uuid.UUID, stock int) error
	UpdatePricingTx(tx *gorm.DB, d *model.Drug) error
	// UpdateTx saves every column except stock.
	UpdateTx(tx *gorm.DB, d *model.Drug) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type drugRepo struct{ db *gorm.DB }

func NewDrugRepository(db *gorm.DB) DrugRepository { return &drugRepo{db: db} }

func (r *drugRepo) DB() *gorm.DB { return r.db }

func (r *drugRepo) Create(ctx context.Context, d *model.Drug) error {
	return TranslateError(r.db.WithContext(ctx).Create(d).Error)
}

func (r *drugRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Drug, error) {
	var d model.Drug
	if err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *drugRepo) List(ctx context.Context, filter dto.DrugFilter) ([]model.Drug, int64, error) {
	var drugs []model.Drug
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Drug{})

	// Active filter: "false" = inactive, "all" = everything, anything else = active
	switch filter.Active {
	case "false":
		q = q.Where("active = ?", false)
	case "all":
	default:
		q = q.Where("active = ?", true)
	}

	if filter.Name != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Name)+"%")
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.LowStock {
		q = q.Where("stock <= min_stock")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("name ASC").Limit(filter.Limit).Offset(offset).Find(&drugs).Error
	return drugs, total, err
}

func (r *drugRepo) ListLowStock(ctx context.Context) ([]model.Drug, error) {
	var drugs []model.Drug
	err := r.db.WithContext(ctx).
		Where("active = ? AND min_stock > 0 AND stock <= min_stock", true).
		Order("name ASC").
		Find(&drugs).Error
	return drugs, err
}

func (r *drugRepo) UpdateTx(tx *gorm.DB, d *model.Drug) error {
	return TranslateError(tx.Omit("stock").Save(d).Error)
}

func (r *drugRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).Model(&model.Drug{}).Where("id = ?", id).Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindForUpdateTx reads the drug row with SELECT ... FOR UPDATE so concurrent
// writers serialise on it until tx ends.
func (r *drugRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Drug, error) {
	var d model.Drug
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&d, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *drugRepo) UpdateStockTx(tx *gorm.DB, id uuid.UUID, stock int) error {
	return TranslateError(tx.Model(&model.Drug{}).Where("id = ?", id).Update("stock", stock).Error)
}

// UpdatePricingTx writes the pricing inputs and the derived prices together.
func (r *drugRepo) UpdatePricingTx(tx *gorm.DB, d *model.Drug) error {
	return TranslateError(tx.Model(&model.Drug{}).Where("id = ?", d.ID).Updates(map[string]interface{}{
		"purchase_price":      d.PurchasePrice,
		"units_per_purchase":  d.UnitsPerPurchase,
		"pos_markup":          d.PosMarkup,
		"prescription_markup": d.PrescriptionMarkup,
		"unit_cost":           d.UnitCost,
		"pos_price":           d.PosPrice,
		"prescription_price":  d.PrescriptionPrice,
	}).Error)
}
