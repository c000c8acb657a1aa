package dto

// DispenseRequest decrements stock for a prescription or a point-of-sale sale.
type DispenseRequest struct {
	Quantity    int     `json:"quantity"    validate:"required,gt=0,max=1000000"`
	Kind        string  `json:"kind"        validate:"required,oneof=dispense pos_sale"`
	Reason      string  `json:"reason"      validate:"max=200"`
	ReferenceID *string `json:"referenceId" validate:"omitempty,uuid"`
}

// AdjustStockRequest is an admin stock correction; Delta may be negative.
type AdjustStockRequest struct {
	Delta  int    `json:"delta"  validate:"required,ne=0"`
	Reason string `json:"reason" validate:"required,min=3,max=200"`
}

type StockMovementFilter struct {
	DrugID string `form:"drugId" validate:"omitempty,uuid"`
	Kind   string `form:"kind"`
	Page   int    `form:"page,default=1"    validate:"min=1"`
	Limit  int    `form:"limit,default=50"  validate:"min=1,max=500"`
}

type StockMovementResponse struct {
	ID          string  `json:"id"`
	DrugID      string  `json:"drugId"`
	DrugName    string  `json:"drugName"`
	Kind        string  `json:"kind"`
	Quantity    int     `json:"quantity"`
	StockBefore int     `json:"stockBefore"`
	StockAfter  int     `json:"stockAfter"`
	Reason      string  `json:"reason"`
	ReferenceID *string `json:"referenceId"`
	CreatedBy   string  `json:"createdBy"`
	CreatedAt   string  `json:"createdAt"`
}

type StockMovementListResponse struct {
	Data  []StockMovementResponse `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}

type StockLevelResponse struct {
	DrugID string `json:"drugId"`
	Stock  int    `json:"stock"`
}
