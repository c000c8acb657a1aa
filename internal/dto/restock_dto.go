package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// RestockItemRequest is one line of a restock. Quantity and PurchasePrice are
// expressed in the unit named by PurchaseUnit.
type RestockItemRequest struct {
	DrugID             string           `json:"drugId"       validate:"required,uuid"`
	PurchaseUnit       string           `json:"purchaseUnit" validate:"required,oneof=purchase sale"`
	Quantity           int              `json:"quantity"     validate:"required,gt=0,max=1000000"`
	BatchNumber        *string          `json:"batchNumber"  validate:"omitempty,max=64"`
	ExpiryDate         *string          `json:"expiryDate"   validate:"omitempty,datetime=2006-01-02"`
	PurchasePrice      *decimal.Decimal `json:"purchasePrice"`
	PosMarkup          *decimal.Decimal `json:"posMarkup"`
	PrescriptionMarkup *decimal.Decimal `json:"prescriptionMarkup"`
}

type CreateRestockBatchRequest struct {
	VendorID        string               `json:"vendorId"        validate:"required,uuid"`
	ReferenceNumber *string              `json:"referenceNumber" validate:"omitempty,max=64"`
	Items           []RestockItemRequest `json:"items"           validate:"required,min=1,dive"`
}

// CreateSingleRestockRequest is the legacy one-drug restock body; the drug id
// comes from the path.
type CreateSingleRestockRequest struct {
	VendorID           *string          `json:"vendorId"        validate:"omitempty,uuid"`
	ReferenceNumber    *string          `json:"referenceNumber" validate:"omitempty,max=64"`
	PurchaseUnit       string           `json:"purchaseUnit"    validate:"required,oneof=purchase sale"`
	Quantity           int              `json:"quantity"        validate:"required,gt=0,max=1000000"`
	BatchNumber        *string          `json:"batchNumber"     validate:"omitempty,max=64"`
	ExpiryDate         *string          `json:"expiryDate"      validate:"omitempty,datetime=2006-01-02"`
	PurchasePrice      *decimal.Decimal `json:"purchasePrice"`
	PosMarkup          *decimal.Decimal `json:"posMarkup"`
	PrescriptionMarkup *decimal.Decimal `json:"prescriptionMarkup"`
}

// Item converts the single-restock body into a batch line for drugID.
func (r CreateSingleRestockRequest) Item(drugID string) RestockItemRequest {
	return RestockItemRequest{
		DrugID:             drugID,
		PurchaseUnit:       r.PurchaseUnit,
		Quantity:           r.Quantity,
		BatchNumber:        r.BatchNumber,
		ExpiryDate:         r.ExpiryDate,
		PurchasePrice:      r.PurchasePrice,
		PosMarkup:          r.PosMarkup,
		PrescriptionMarkup: r.PrescriptionMarkup,
	}
}

type ResolveRestockRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MessageResponse struct {
	Message string `json:"message"`
}

type RestockBatchResponse struct {
	Message        string   `json:"message"`
	Status         string   `json:"status"`
	TransactionIDs []string `json:"transactionIds"`
}

// RestockTransactionView is a stock transaction joined with the names of its
// drug, vendor, requester and approver.
type RestockTransactionView struct {
	ID                uuid.UUID        `db:"id"                 json:"id"`
	DrugID            uuid.UUID        `db:"drug_id"            json:"drugId"`
	DrugName          string           `db:"drug_name"          json:"drugName"`
	PurchaseForm      string           `db:"purchase_form"      json:"purchaseForm"`
	SaleForm          string           `db:"sale_form"          json:"saleForm"`
	VendorID          *uuid.UUID       `db:"vendor_id"          json:"vendorId"`
	VendorName        *string          `db:"vendor_name"        json:"vendorName"`
	Type              string           `db:"type"               json:"type"`
	PurchaseQuantity  int              `db:"purchase_quantity"  json:"purchaseQuantity"`
	SaleQuantity      int              `db:"sale_quantity"      json:"saleQuantity"`
	BatchNumber       *string          `db:"batch_number"       json:"batchNumber"`
	ExpiryDate        *time.Time       `db:"expiry_date"        json:"expiryDate"`
	ReferenceNumber   *string          `db:"reference_number"   json:"referenceNumber"`
	// PurchasePrice is the price entered on the line, per purchase-form unit.
	// The other prices are the drug's current derived prices.
	PurchasePrice     *decimal.Decimal `db:"purchase_price"     json:"purchasePrice"`
	UnitCost          decimal.Decimal  `db:"unit_cost"          json:"unitCost"`
	PosPrice          decimal.Decimal  `db:"pos_price"          json:"posPrice"`
	PrescriptionPrice decimal.Decimal  `db:"prescription_price" json:"prescriptionPrice"`
	CreatedBy         uuid.UUID        `db:"created_by"         json:"createdBy"`
	CreatedByName     *string          `db:"created_by_name"    json:"createdByName"`
	Status            string           `db:"status"             json:"status"`
	ApprovedBy        *uuid.UUID       `db:"approved_by"        json:"approvedBy"`
	ApprovedByName    *string          `db:"approved_by_name"   json:"approvedByName"`
	ApprovedAt        *time.Time       `db:"approved_at"        json:"approvedAt"`
	CreatedAt         time.Time        `db:"created_at"         json:"createdAt"`
	
}

type PendingCountResponse struct {
	Pending int64 `json:"pending"`
}
