package dto

import "github.com/google/uuid"

type CreateCategoryRequest struct {
	Name        string  `json:"name"        validate:"required,min=2,max=80"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name"        validate:"omitempty,min=2,max=80"`
	Description *string `json:"description" validate:"omitempty,max=255"`
	Active      *bool   `json:"active"`
}

type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Active      bool      `json:"active"`
}

type CreateFormRequest struct {
	Name string `json:"name" validate:"required,min=1,max=40"`
}

type FormResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
