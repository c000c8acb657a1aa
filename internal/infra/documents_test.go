package infra

import (
	"os"
	"testing"
	"time"

	"github.com/TheYates/bernat-medical-sub000/internal/dto"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleRestockView() dto.RestockTransactionView {
	vendor := "MedSupply Ltd"
	ref := "INV-2024-001"
	requester := "Ama Mensah"
	approver := "Admin"
	approvedAt := time.Date(2024, 3, 2, 10, 30, 0, 0, time.UTC)
	approvedBy := uuid.New()
	price := decimal.RequireFromString("100")
	return dto.RestockTransactionView{
		ID:                uuid.New(),
		DrugID:            uuid.New(),
		DrugName:          "Paracetamol 500mg",
		PurchaseForm:      "box",
		SaleForm:          "tablet",
		VendorName:        &vendor,
		Type:              "in",
		PurchaseQuantity:  5,
		SaleQuantity:      50,
		ReferenceNumber:   &ref,
		PurchasePrice:     &price,
		UnitCost:          decimal.RequireFromString("10"),
		PosPrice:          decimal.RequireFromString("12.5"),
		PrescriptionPrice: decimal.RequireFromString("13.3333333"),
		CreatedBy:         uuid.New(),
		CreatedByName:     &requester,
		Status:            "approved",
		ApprovedBy:        &approvedBy,
		ApprovedByName:    &approver,
		ApprovedAt:        &approvedAt,
		CreatedAt:         approvedAt.Add(-time.Hour),
	}
}

func TestGenerateRestockVoucherPDF(t *testing.T) {
	dir := t.TempDir()
	view := sampleRestockView()

	path, err := GenerateRestockVoucherPDF(&view, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, len(data) > 4)
	assert.Equal(t, "%PDF", string(data[:4]))
	assert.Contains(t, path, view.ID.String())
}

func TestMoneyRoundsToCents(t *testing.T) {
	assert.Equal(t, "13.33", money(decimal.RequireFromString("13.3333333")))
	assert.Equal(t, "12.50", money(decimal.RequireFromString("12.5")))
}

func TestExportRestockHistoryXLSX(t *testing.T) {
	rows := []dto.RestockTransactionView{sampleRestockView(), sampleRestockView()}
	rows[1].Status = "rejected"

	buf, err := ExportRestockHistoryXLSX(rows)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue(restockHistorySheet, "C1")
	require.NoError(t, err)
	assert.Equal(t, "Drug", header)

	drug, _ := f.GetCellValue(restockHistorySheet, "C2")
	assert.Equal(t, "Paracetamol 500mg", drug)
	status, _ := f.GetCellValue(restockHistorySheet, "B3")
	assert.Equal(t, "rejected", status)
	saleQty, _ := f.GetCellValue(restockHistorySheet, "J2")
	assert.Equal(t, "50", saleQty)

	priceHeader, _ := f.GetCellValue(restockHistorySheet, "N1")
	assert.Equal(t, "Purchase Price", priceHeader)
	purchasePrice, _ := f.GetCellValue(restockHistorySheet, "N2")
	assert.Equal(t, "100", purchasePrice)
	posPrice, _ := f.GetCellValue(restockHistorySheet, "P2")
	assert.Equal(t, "12.5", posPrice)
	rxPrice, _ := f.GetCellValue(restockHistorySheet, "Q2")
	assert.Equal(t, "13.33", rxPrice, "prices are rounded to cents")

	rows[0].PurchasePrice = nil
	buf, err = ExportRestockHistoryXLSX(rows[:1])
	require.NoError(t, err)
	g, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer g.Close()
	empty, _ := g.GetCellValue(restockHistorySheet, "N2")
	assert.Empty(t, empty)
}
