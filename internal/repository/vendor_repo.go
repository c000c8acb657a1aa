package repository

import (
	"context"

	"github.com/TheYates/bernat-medical-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VendorRepository interface {
	Create(ctx context.Context, v *model.Vendor) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Vendor, error)
	List(ctx context.Context, includeInactive bool) ([]model.Vendor, error)
	Update(ctx context.Context, v *model.Vendor) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error

	// FindActiveTx returns gorm.ErrRecordNotFound for unknown or deactivated vendors.
	FindActiveTx(tx *gorm.DB, id uuid.UUID) (*model.Vendor, error)
}

type vendorRepo struct{ db *gorm.DB }

func NewVendorRepository(db *gorm.DB) VendorRepository { return &vendorRepo{db: db} }

func (r *vendorRepo) Create(ctx context.Context, v *model.Vendor) error {
	return TranslateError(r.db.WithContext(ctx).Create(v).Error)
}

func (r *vendorRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Vendor, error) {
	var v model.Vendor
	if err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *vendorRepo) List(ctx context.Context, includeInactive bool) ([]model.Vendor, error) {
	var vendors []model.Vendor
	q := r.db.WithContext(ctx).Order("name ASC")
	if !includeInactive {
		q = q.Where("active = ?", true)
	}
	err := q.Find(&vendors).Error
	return vendors, err
}

func (r *vendorRepo) Update(ctx context.Context, v *model.Vendor) error {
	return TranslateError(r.db.WithContext(ctx).Save(v).Error)
}

func (r *vendorRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).Model(&model.Vendor{}).Where("id = ?", id).Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *vendorRepo) FindActiveTx(tx *gorm.DB, id uuid.UUID) (*model.Vendor, error) {
	var v model.Vendor
	if err := tx.Where("id = ? AND active = ?", id, true).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}
