package service

import (
	"context"
	"errors"

	"github.com/TheYates/bernat-medical-sub000/internal/dto"
	"github.com/TheYates/bernat-medical-sub000/internal/model"
	"github.com/TheYates/bernat-medical-sub000/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogService defines business operations for drug categories and forms.
type CatalogService interface {
	CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (dto.CategoryResponse, error)
	ListCategories(ctx context.Context) ([]dto.CategoryResponse, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (dto.CategoryResponse, error)
	DeactivateCategory(ctx context.Context, id uuid.UUID) error

	CreateForm(ctx context.Context, req dto.CreateFormRequest) (dto.FormResponse, error)
	ListForms(ctx context.Context) ([]dto.FormResponse, error)
}

type catalogService struct {
	repo repository.CatalogRepository
}

func NewCatalogService(repo repository.CatalogRepository) CatalogService {
	return &catalogService{repo: repo}
}

func mapCategory(c model.DrugCategory) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Active:      c.Active,
	}
}

func (s *catalogService) CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (dto.CategoryResponse, error) {
	// Check for duplicate name
	existing, err := s.repo.FindCategoryByName(ctx, req.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.CategoryResponse{}, err
	}
	if existing != nil {
		return dto.CategoryResponse{}, newError(ErrConflict, "A category with that name already exists")
	}

	c := &model.DrugCategory{
		Name:        req.Name,
		Description: req.Description,
		Active:      true,
	}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return dto.CategoryResponse{}, classify(err, "Category")
	}
	return mapCategory(*c), nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]dto.CategoryResponse, error) {
	list, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		result = append(result, mapCategory(c))
	}
	return result, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (dto.CategoryResponse, error) {
	c, err := s.repo.FindCategoryByID(ctx, id)
	if err != nil {
		return dto.CategoryResponse{}, classify(err, "Category")
	}

	if req.Name != nil && *req.Name != c.Name {
		existing, err := s.repo.FindCategoryByName(ctx, *req.Name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CategoryResponse{}, err
		}
		if existing != nil && existing.ID != id {
			return dto.CategoryResponse{}, newError(ErrConflict, "A category with that name already exists")
		}
		c.Name = *req.Name
	}
	if req.Description != nil {
		c.Description = req.Description
	}
	if req.Active != nil {
		c.Active = *req.Active
	}

	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return dto.CategoryResponse{}, classify(err, "Category")
	}
	return mapCategory(*c), nil
}

func (s *catalogService) DeactivateCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindCategoryByID(ctx, id); err != nil {
		return classify(err, "Category")
	}
	return s.repo.DeactivateCategory(ctx, id)
}

func (s *catalogService) CreateForm(ctx context.Context, req dto.CreateFormRequest) (dto.FormResponse, error) {
	if _, err := s.repo.FindFormByName(ctx, req.Name); err == nil {
		return dto.FormResponse{}, newError(ErrConflict, "A drug form with that name already exists")
	}
	f := &model.DrugForm{Name: req.Name}
	if err := s.repo.CreateForm(ctx, f); err != nil {
		return dto.FormResponse{}, classify(err, "Drug form")
	}
	return dto.FormResponse{ID: f.ID, Name: f.Name}, nil
}

func (s *catalogService) ListForms(ctx context.Context) ([]dto.FormResponse, error) {
	list, err := s.repo.ListForms(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.FormResponse, 0, len(list))
	for _, f := range list {
		result = append(result, dto.FormResponse{ID: f.ID, Name: f.Name})
	}
	return result, nil
}
