package service

import (
	"github.com/TheYates/bernat-medical-sub000/internal/model"
	"github.com/TheYates/bernat-medical-sub000/internal/pricing"

	"github.com/shopspring/decimal"
)

// pricingChange is a proposed edit of a drug's pricing inputs. Nil fields keep
// the drug's current value.
type pricingChange struct {
	PurchasePrice      *decimal.Decimal
	UnitsPerPurchase   *int
	PosMarkup          *decimal.Decimal
	PrescriptionMarkup *decimal.Decimal
}

func (c pricingChange) empty() bool {
	return c.PurchasePrice == nil && c.UnitsPerPurchase == nil && c.PosMarkup == nil && c.PrescriptionMarkup == nil
}

// repriceDrug is the only writer of a drug's pricing fields: it applies c and
// recomputes unit cost and both sale prices. d is untouched on error.
func repriceDrug(d *model.Drug, c pricingChange) error {
	price, upp := d.PurchasePrice, d.UnitsPerPurchase
	pos, rx := d.PosMarkup, d.PrescriptionMarkup
	if c.PurchasePrice != nil {
		price = *c.PurchasePrice
	}
	if c.UnitsPerPurchase != nil {
		upp = *c.UnitsPerPurchase
	}
	if c.PosMarkup != nil {
		pos = *c.PosMarkup
	}
	if c.PrescriptionMarkup != nil {
		rx = *c.PrescriptionMarkup
	}

	p, err := pricing.ComputePrices(price, upp, pos, rx)
	if err != nil {
		return fromPricing(err)
	}

	d.PurchasePrice, d.UnitsPerPurchase = price, upp
	d.PosMarkup, d.PrescriptionMarkup = pos, rx
	d.UnitCost, d.PosPrice, d.PrescriptionPrice = p.UnitCost, p.PosPrice, p.PrescriptionPrice
	return nil
}
