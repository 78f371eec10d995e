package model

import (
	"math"

	"github.com/shopspring/decimal"
)

// PricingConfig holds the store-wide pricing parameters.
type PricingConfig struct {
	LaborRatePerCut       float64 `json:"laborRatePerCut"`       // currency per piece
	WasteAllowancePercent float64 `json:"wasteAllowancePercent"` // percent of material cost
	MarkupPercent         float64 `json:"markupPercent"`         // percent over subtotal
}

// DefaultPricing returns the pricing used when none has been saved.
func DefaultPricing() PricingConfig {
	return PricingConfig{
		LaborRatePerCut:       5.00,
		WasteAllowancePercent: 10,
		MarkupPercent:         25,
	}
}

// Validate rejects negative pricing parameters.
func (c PricingConfig) Validate() error {
	if c.LaborRatePerCut < 0 {
		return NewValidationError("laborRatePerCut", "labor rate must not be negative")
	}
	if c.WasteAllowancePercent < 0 {
		return NewValidationError("wasteAllowancePercent", "waste allowance must not be negative")
	}
	if c.MarkupPercent < 0 {
		return NewValidationError("markupPercent", "markup must not be negative")
	}
	return nil
}

// CostBreakdown is the priced result of a cut job quote.
type CostBreakdown struct {
	MaterialCost float64 `json:"materialCost"`
	LaborCost    float64 `json:"laborCost"`
	WasteCost    float64 `json:"wasteCost"`
	Subtotal     float64 `json:"subtotal"`
	TotalCost    float64 `json:"totalCost"`
}

var hundred = decimal.NewFromInt(100)

// Price computes the cost of cutting quantity pieces of length feet from m.
//
//	materialCost = unitCost * length * quantity
//	laborCost    = quantity * laborRatePerCut
//	wasteCost    = materialCost * wasteAllowancePercent / 100
//	totalCost    = (materialCost + laborCost + wasteCost) * (1 + markupPercent/100)
//
// Arithmetic is done in decimal and converted to float64 at the end.
// A nil material, a non-positive or non-finite length or a non-positive
// quantity yields a zero breakdown: there is not enough input to quote.
func Price(cfg PricingConfig, m *Material, length float64, quantity int) CostBreakdown {
	if m == nil || !(length > 0) || math.IsInf(length, 0) || quantity <= 0 {
		return CostBreakdown{}
	}

	qty := decimal.NewFromInt(int64(quantity))
	materialCost := decimal.NewFromFloat(m.UnitCost).Mul(decimal.NewFromFloat(length)).Mul(qty)
	laborCost := qty.Mul(decimal.NewFromFloat(cfg.LaborRatePerCut))
	wasteCost := materialCost.Mul(decimal.NewFromFloat(cfg.WasteAllowancePercent)).Div(hundred)
	subtotal := materialCost.Add(laborCost).Add(wasteCost)
	totalCost := subtotal.Mul(hundred.Add(decimal.NewFromFloat(cfg.MarkupPercent))).Div(hundred)

	return CostBreakdown{
		MaterialCost: materialCost.InexactFloat64(),
		LaborCost:    laborCost.InexactFloat64(),
		WasteCost:    wasteCost.InexactFloat64(),
		Subtotal:     subtotal.InexactFloat64(),
		TotalCost:    totalCost.InexactFloat64(),
	}
}

// PriceFromInput prices raw form strings. Unparsable input quotes zero.
func PriceFromInput(cfg PricingConfig, m *Material, length, quantity string) CostBreakdown {
	return Price(cfg, m, ParseNumber(length), ParseCount(quantity))
}

// Round2 rounds a currency amount to cents, half away from zero.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
