package dto

import (
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateDrugRequest struct {
	Name               string          `json:"name"               validate:"required,min=2,max=120"`
	Category           string          `json:"category"           validate:"required"`
	PurchaseForm       string          `json:"purchaseForm"       validate:"required"`
	SaleForm           string          `json:"saleForm"           validate:"required"`
	PurchasePrice      decimal.Decimal `json:"purchasePrice"      validate:"min=0"`
	UnitsPerPurchase   int             `json:"unitsPerPurchase"   validate:"required,gt=0"`
	PosMarkup          decimal.Decimal `json:"posMarkup"          validate:"min=0"`
	PrescriptionMarkup decimal.Decimal `json:"prescriptionMarkup" validate:"min=0"`
	Strength           *string         `json:"strength"`
	Unit               *string         `json:"unit"`
	MinStock           int             `json:"minStock"           validate:"min=0"`
	ExpiryDate         *string         `json:"expiryDate"         validate:"omitempty,datetime=2006-01-02"`
}

type UpdateDrugRequest struct {
	Name               *string          `json:"name"             validate:"omitempty,min=2,max=120"`
	Category           *string          `json:"category"`
	PurchaseForm       *string          `json:"purchaseForm"`
	SaleForm           *string          `json:"saleForm"`
	PurchasePrice      *decimal.Decimal `json:"purchasePrice"`
	UnitsPerPurchase   *int             `json:"unitsPerPurchase" validate:"omitempty,gt=0"`
	PosMarkup          *decimal.Decimal `json:"posMarkup"`
	PrescriptionMarkup *decimal.Decimal `json:"prescriptionMarkup"`
	Strength           *string          `json:"strength"`
	Unit               *string          `json:"unit"`
	MinStock           *int             `json:"minStock"         validate:"omitempty,min=0"`
	ExpiryDate         *string          `json:"expiryDate"       validate:"omitempty,datetime=2006-01-02"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type DrugFilter struct {
	Name     string `form:"name"`
	Category string `form:"category"`
	LowStock bool   `form:"lowStock"`
	Active   string `form:"active"` // "" = active, "false" = inactive, "all"
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DrugResponse struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Category           string          `json:"category"`
	PurchaseForm       string          `json:"purchaseForm"`
	SaleForm           string          `json:"saleForm"`
	PurchasePrice      decimal.Decimal `json:"purchasePrice"`
	UnitsPerPurchase   int             `json:"unitsPerPurchase"`
	PosMarkup          decimal.Decimal `json:"posMarkup"`
	PrescriptionMarkup decimal.Decimal `json:"prescriptionMarkup"`
	UnitCost           decimal.Decimal `json:"unitCost"`
	PosPrice           decimal.Decimal `json:"posPrice"`
	PrescriptionPrice  decimal.Decimal `json:"prescriptionPrice"`
	Strength           *string         `json:"strength"`
	Unit               *string         `json:"unit"`
	Stock              int             `json:"stock"`
	MinStock           int             `json:"minStock"`
	ExpiryDate         *string         `json:"expiryDate"`
	Active             bool            `json:"active"`
}

type DrugListResponse struct {
	Data       []DrugResponse `json:"data"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"totalPages"`
}
