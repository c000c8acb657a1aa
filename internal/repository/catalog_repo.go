package repository

import (
	"context"

	"github.com/TheYates/bernat-medical-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogRepository covers the drug category and drug form lookups.
type CatalogRepository interface {
	CreateCategory(ctx context.Context, c *model.DrugCategory) error
	ListCategories(ctx context.Context) ([]model.DrugCategory, error)
	FindCategoryByID(ctx context.Context, id uuid.UUID) (*model.DrugCategory, error)
	FindCategoryByName(ctx context.Context, name string) (*model.DrugCategory, error)
	UpdateCategory(ctx context.Context, c *model.DrugCategory) error
	DeactivateCategory(ctx context.Context, id uuid.UUID) error

	CreateForm(ctx context.Context, f *model.DrugForm) error
	ListForms(ctx context.Context) ([]model.DrugForm, error)
	FindFormByName(ctx context.Context, name string) (*model.DrugForm, error)
}

type catalogRepository struct{ db *gorm.DB }

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) CreateCategory(ctx context.Context, c *model.DrugCategory) error {
	return TranslateError(r.db.WithContext(ctx).Create(c).Error)
}

func (r *catalogRepository) ListCategories(ctx context.Context) ([]model.DrugCategory, error) {
	var list []model.DrugCategory
	err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error
	return list, err
}

func (r *catalogRepository) FindCategoryByID(ctx context.Context, id uuid.UUID) (*model.DrugCategory, error) {
	var c model.DrugCategory
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *catalogRepository) FindCategoryByName(ctx context.Context, name string) (*model.DrugCategory, error) {
	var c model.DrugCategory
	if err := r.db.WithContext(ctx).Where("lower(name) = lower(?)", name).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *catalogRepository) UpdateCategory(ctx context.Context, c *model.DrugCategory) error {
	return TranslateError(r.db.WithContext(ctx).Save(c).Error)
}

func (r *catalogRepository) DeactivateCategory(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.DrugCategory{}).Where("id = ?", id).Update("active", false).Error
}

func (r *catalogRepository) CreateForm(ctx context.Context, f *model.DrugForm) error {
	return TranslateError(r.db.WithContext(ctx).Create(f).Error)
}

func (r *catalogRepository) ListForms(ctx context.Context) ([]model.DrugForm, error) {
	var list []model.DrugForm
	err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error
	return list, err
}

func (r *catalogRepository) FindFormByName(ctx context.Context, name string) (*model.DrugForm, error) {
	var f model.DrugForm
	if err := r.db.WithContext(ctx).Where("lower(name) = lower(?)", name).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}
