package pricing

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Unit identifies the form a quantity or price is expressed in.
type Unit string

const (
	UnitPurchase Unit = "purchase"
	UnitSale     Unit = "sale"
)

// MaxQuantity bounds any quantity the converters accept or produce.
const MaxQuantity = math.MaxInt32

// ParseUnit accepts "purchase" or "sale".
func ParseUnit(s string) (Unit, error) {
	switch Unit(s) {
	case UnitPurchase, UnitSale:
		return Unit(s), nil
	}
	return "", fmt.Errorf("%w: unknown unit %q", ErrInvalidInput, s)
}

// ToSaleUnits expresses quantity in sale-form units.
func ToSaleUnits(quantity int, unit Unit, unitsPerPurchase int) (int, error) {
	if err := checkQuantity(quantity, unitsPerPurchase); err != nil {
		return 0, err
	}
	switch unit {
	case UnitPurchase:
		if quantity > MaxQuantity/unitsPerPurchase {
			return 0, fmt.Errorf("%w: quantity must not exceed %d sale units", ErrInvalidInput, MaxQuantity)
		}
		return quantity * unitsPerPurchase, nil
	case UnitSale:
		return quantity, nil
	}
	return 0, fmt.Errorf("%w: unknown unit %q", ErrInvalidInput, unit)
}

// ToPurchaseUnits expresses quantity in purchase-form units. Sale quantities
// that are not a whole number of purchase units round up.
func ToPurchaseUnits(quantity int, unit Unit, unitsPerPurchase int) (int, error) {
	if err := checkQuantity(quantity, unitsPerPurchase); err != nil {
		return 0, err
	}
	switch unit {
	case UnitPurchase:
		return quantity, nil
	case UnitSale:
		return (quantity + unitsPerPurchase - 1) / unitsPerPurchase, nil
	}
	return 0, fmt.Errorf("%w: unknown unit %q", ErrInvalidInput, unit)
}

// ConvertPrice re-expresses a per-unit price when the selected unit changes.
func ConvertPrice(price decimal.Decimal, from, to Unit, unitsPerPurchase int) (decimal.Decimal, error) {
	if unitsPerPurchase <= 0 {
		return decimal.Zero, fmt.Errorf("%w: units per purchase must be greater than zero", ErrInvalidInput)
	}
	upp := decimal.NewFromInt(int64(unitsPerPurchase))
	switch {
	case from == to:
		return price, nil
	case from == UnitPurchase && to == UnitSale:
		return price.Div(upp), nil
	case from == UnitSale && to == UnitPurchase:
		return price.Mul(upp), nil
	}
	return decimal.Zero, fmt.Errorf("%w: cannot convert %q to %q", ErrInvalidInput, from, to)
}

func checkQuantity(quantity, unitsPerPurchase int) error {
	if unitsPerPurchase <= 0 {
		return fmt.Errorf("%w: units per purchase must be greater than zero", ErrInvalidInput)
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be greater than zero", ErrInvalidInput)
	}
	if quantity > MaxQuantity {
		return fmt.Errorf("%w: quantity must not exceed %d", ErrInvalidInput, MaxQuantity)
	}
	return nil
}

// Converter binds the unit ratio of one drug. When the purchase form equals
// the sale form there is nothing to convert and every call is the identity.
type Converter struct {
	UnitsPerPurchase int
	SameForm         bool
}

// ConverterFor builds the converter for a drug's forms and ratio.
func ConverterFor(purchaseForm, saleForm string, unitsPerPurchase int) Converter {
	return Converter{UnitsPerPurchase: unitsPerPurchase, SameForm: purchaseForm == saleForm}
}

// Quantities returns the purchase-form and sale-form equivalents of quantity.
func (c Converter) Quantities(quantity int, unit Unit) (purchaseQty, saleQty int, err error) {
	if c.SameForm {
		if err := checkQuantity(quantity, 1); err != nil {
			return 0, 0, err
		}
		return quantity, quantity, nil
	}
	saleQty, err = ToSaleUnits(quantity, unit, c.UnitsPerPurchase)
	if err != nil {
		return 0, 0, err
	}
	purchaseQty, err = ToPurchaseUnits(quantity, unit, c.UnitsPerPurchase)
	if err != nil {
		return 0, 0, err
	}
	return purchaseQty, saleQty, nil
}

// PurchasePrice converts a price entered in unit into a per-purchase-unit price.
func (c Converter) PurchasePrice(price decimal.Decimal, unit Unit) (decimal.Decimal, error) {
	if c.SameForm {
		return price, nil
	}
	return ConvertPrice(price, unit, UnitPurchase, c.UnitsPerPurchase)
}
