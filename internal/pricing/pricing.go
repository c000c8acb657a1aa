// Package pricing derives drug sale prices from the purchase price and converts
// quantities and prices between the purchase form (box, bottle) and the sale
// form (tablet, ml) of a drug.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput is returned for non-positive unit ratios, non-positive
// quantities and negative prices or markups.
var ErrInvalidInput = errors.New("pricing: invalid input")

var one = decimal.NewFromInt(1)

// Prices are the derived, stored price fields of a drug.
// Values are not rounded; use Round when presenting them.
type Prices struct {
	UnitCost          decimal.Decimal
	PosPrice          decimal.Decimal
	PrescriptionPrice decimal.Decimal
}

// ComputePrices derives unit cost and both sale prices.
// Markups are multipliers: 0.25 means a 25% markup over unit cost.
func ComputePrices(purchasePrice decimal.Decimal, unitsPerPurchase int, posMarkup, prescriptionMarkup decimal.Decimal) (Prices, error) {
	if unitsPerPurchase <= 0 {
		return Prices{}, fmt.Errorf("%w: units per purchase must be greater than zero", ErrInvalidInput)
	}
	if purchasePrice.IsNegative() {
		return Prices{}, fmt.Errorf("%w: purchase price cannot be negative", ErrInvalidInput)
	}
	if posMarkup.IsNegative() || prescriptionMarkup.IsNegative() {
		return Prices{}, fmt.Errorf("%w: markups cannot be negative", ErrInvalidInput)
	}

	unitCost := purchasePrice.Div(decimal.NewFromInt(int64(unitsPerPurchase)))
	return Prices{
		UnitCost:          unitCost,
		PosPrice:          unitCost.Mul(one.Add(posMarkup)),
		PrescriptionPrice: unitCost.Mul(one.Add(prescriptionMarkup)),
	}, nil
}

// Round rounds a price to cents for display.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
