package infra

import (
	"bytes"
	"fmt"

	"github.com/TheYates/bernat-medical-sub000/internal/dto"
	"github.com/TheYates/bernat-medical-sub000/internal/pricing"

	"github.com/xuri/excelize/v2"
)

const restockHistorySheet = "Restock History"

var restockHistoryHeaders = []string{
	"Resolved At", "Status", "Drug", "Vendor", "Reference", "Batch", "Expiry",
	"Purchase Qty", "Purchase Form", "Sale Qty", "Sale Form", "Requested By", "Resolved By",
	"Purchase Price", "Unit Cost", "POS Price", "Prescription Price",
}

// ExportRestockHistoryXLSX writes the resolved restock transactions to a
// single-sheet workbook with a frozen, filterable header row.
func ExportRestockHistoryXLSX(rows []dto.RestockTransactionView) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", restockHistorySheet); err != nil {
		return nil, fmt.Errorf("xlsx: rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("xlsx: header style: %w", err)
	}

	for i, h := range restockHistoryHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(restockHistorySheet, cell, h)
		f.SetCellStyle(restockHistorySheet, cell, cell, headerStyle)
	}

	for r, tx := range rows {
		resolvedAt := ""
		if tx.ApprovedAt != nil {
			resolvedAt = tx.ApprovedAt.Format("2006-01-02 15:04")
		}
		expiry := ""
		if tx.ExpiryDate != nil {
			expiry = tx.ExpiryDate.Format("2006-01-02")
		}
		var purchasePrice interface{}
		if tx.PurchasePrice != nil {
			purchasePrice = pricing.Round(*tx.PurchasePrice).InexactFloat64()
		}
		values := []interface{}{
			resolvedAt, tx.Status, tx.DrugName, deref(tx.VendorName), deref(tx.ReferenceNumber),
			deref(tx.BatchNumber), expiry, tx.PurchaseQuantity, tx.PurchaseForm,
			tx.SaleQuantity, tx.SaleForm, deref(tx.CreatedByName), deref(tx.ApprovedByName),
			purchasePrice, pricing.Round(tx.UnitCost).InexactFloat64(),
			pricing.Round(tx.PosPrice).InexactFloat64(), pricing.Round(tx.PrescriptionPrice).InexactFloat64(),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(restockHistorySheet, cell, v)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(restockHistoryHeaders))
	f.SetColWidth(restockHistorySheet, "A", lastCol, 16)
	f.AutoFilter(restockHistorySheet, "A1:"+lastCol+"1", []excelize.AutoFilterOptions{})
	f.SetPanes(restockHistorySheet, &excelize.Panes{Freeze: true, Split: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: write: %w", err)
	}
	return buf, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
