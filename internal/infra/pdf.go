package infra

// pdf.go: restock voucher generation using go-pdf/fpdf.
// One A5 page per resolved stock transaction with:
//   - Clinic header and voucher id
//   - Drug, vendor, batch and reference details
//   - Quantities in purchase and sale form
//   - Line purchase price and the drug's prices, rounded to cents
//   - Requester, approver and resolution timestamp
//
// The output file is saved to storagePath/restock_{id}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/TheYates/bernat-medical-sub000/internal/dto"
	"github.com/TheYates/bernat-medical-sub000/internal/pricing"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GenerateRestockVoucherPDF renders a voucher for a restock transaction.
// storagePath is created if needed. Returns the path of the generated file.
func GenerateRestockVoucherPDF(tx *dto.RestockTransactionView, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	filePath := filepath.Join(storagePath, fmt.Sprintf("restock_%s.pdf", tx.ID))

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "Pharmacy Restock Voucher", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, tx.ID.String(), "", 1, "C", false, 0, "")
	pdf.Ln(3)
	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(3)

	// ── Details ──────────────────────────────────────────────────────────────
	labelW := contentW * 0.38
	valueW := contentW - labelW
	row := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(labelW, 6, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(valueW, 6, value, "", 1, "L", false, 0, "")
	}

	row("Drug", tx.DrugName)
	row("Vendor", orDash(tx.VendorName))
	row("Reference", orDash(tx.ReferenceNumber))
	row("Batch", orDash(tx.BatchNumber))
	if tx.ExpiryDate != nil {
		row("Expiry", tx.ExpiryDate.Format("2006-01-02"))
	} else {
		row("Expiry", "-")
	}
	row("Quantity ("+tx.PurchaseForm+")", strconv.Itoa(tx.PurchaseQuantity))
	row("Quantity ("+tx.SaleForm+")", strconv.Itoa(tx.SaleQuantity))
	if tx.PurchasePrice != nil {
		row("Price per "+tx.PurchaseForm, money(*tx.PurchasePrice))
	}
	row("Unit cost", money(tx.UnitCost))
	row("POS price", money(tx.PosPrice))
	row("Prescription price", money(tx.PrescriptionPrice))

	pdf.Ln(2)
	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(2)

	row("Requested by", orDash(tx.CreatedByName))
	row("Requested at", tx.CreatedAt.Format("2006-01-02 15:04"))
	row("Status", tx.Status)
	row("Resolved by", orDash(tx.ApprovedByName))
	if tx.ApprovedAt != nil {
		row("Resolved at", tx.ApprovedAt.Format("2006-01-02 15:04"))
	}

	// ── Signature ────────────────────────────────────────────────────────────
	pdf.Ln(14)
	pdf.Line(pageW-70, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetX(pageW - 70)
	pdf.CellFormat(60, 5, "Received by", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func money(d decimal.Decimal) string {
	return pricing.Round(d).StringFixed(2)
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
