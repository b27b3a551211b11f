/*
Package pricing turns estimated costs into a quoted price.

PURPOSE:
  A quote starts from the cost of materials and labor taken off the bill of
  materials. The estimator then adds margin, extra costs, a discount and tax.
  The order of those steps is a business rule and changes the final figure,
  so the engine returns every intermediate value for a line-by-line breakdown.

CASCADE (fixed order):
  subtotal             = materials + labor
  marginAmount         = see MarginMode
  afterMargin          = subtotal + marginAmount
  afterAdditionalCosts = afterMargin + additionalCosts
  discountAmount       = afterAdditionalCosts * discount%
  afterDiscount        = afterAdditionalCosts - discountAmount
  taxAmount            = afterDiscount * tax%
  finalValue           = afterDiscount + taxAmount

MARGIN MODES:
  markup: margin as a percentage of cost.
          15% on 10,000 -> 1,500
  margin: margin as a percentage of the selling price.
          20% on 10,000 -> 10,000 / 0.8 - 10,000 = 2,500

PRECISION:
  All values are decimal.Decimal and are never rounded inside Compute.
  Result.Round is for display only.

SEE ALSO:
  - bom.go: Materials and labor subtotals from BOM lines
  - quote.go: Quotes, statuses and pricing profiles
*/
package pricing

import (
	"github.com/shopspring/decimal"
	"github.com/warp/panel-estimator/generic"
)

// =============================================================================
// MARGIN MODE
// =============================================================================

type MarginMode string

const (
	ModeMarkup MarginMode = "markup"
	ModeMargin MarginMode = "margin"
)

func (m MarginMode) Valid() bool {
	return m == ModeMarkup || m == ModeMargin
}

// =============================================================================
// INPUT / RESULT
// =============================================================================

type Input struct {
	MaterialsSubtotal decimal.Decimal
	LaborSubtotal     decimal.Decimal
	MarginPercent     decimal.Decimal
	MarginMode        MarginMode
	AdditionalCosts   decimal.Decimal
	DiscountPercent   decimal.Decimal
	TaxRatePercent    decimal.Decimal
}

type Result struct {
	Subtotal             decimal.Decimal
	MarginAmount         decimal.Decimal
	AfterMargin          decimal.Decimal
	AfterAdditionalCosts decimal.Decimal
	DiscountAmount       decimal.Decimal
	AfterDiscount        decimal.Decimal
	TaxAmount            decimal.Decimal
	FinalValue           decimal.Decimal
}

// Validate checks every input rule and reports the first violation.
func (in Input) Validate() error {
	nonNegative := []struct {
		field string
		value decimal.Decimal
	}{
		{"materials_subtotal", in.MaterialsSubtotal},
		{"labor_subtotal", in.LaborSubtotal},
		{"margin_percent", in.MarginPercent},
		{"additional_costs", in.AdditionalCosts},
		{"discount_percent", in.DiscountPercent},
		{"tax_rate_percent", in.TaxRatePercent},
	}
	for _, f := range nonNegative {
		if f.value.IsNegative() {
			return &generic.ValidationError{Field: f.field, Value: f.value, Reason: "must not be negative"}
		}
	}

	if !in.MarginMode.Valid() {
		return &generic.ValidationError{Field: "margin_mode", Value: in.MarginMode, Reason: "must be markup or margin"}
	}
	if in.MarginMode == ModeMargin && in.MarginPercent.GreaterThanOrEqual(generic.Hundred()) {
		return &generic.ValidationError{Field: "margin_percent", Value: in.MarginPercent, Reason: "must be below 100 in margin mode"}
	}
	if in.DiscountPercent.GreaterThanOrEqual(generic.Hundred()) {
		return &generic.ValidationError{Field: "discount_percent", Value: in.DiscountPercent, Reason: "must be below 100"}
	}
	return nil
}

// =============================================================================
// ENGINE
// =============================================================================

// Compute runs the pricing cascade. Invalid input returns a
// *generic.ValidationError and a zero Result.
func Compute(in Input) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}

	var r Result
	r.Subtotal = in.MaterialsSubtotal.Add(in.LaborSubtotal)
	r.MarginAmount = marginAmount(r.Subtotal, in.MarginPercent, in.MarginMode)
	r.AfterMargin = r.Subtotal.Add(r.MarginAmount)
	r.AfterAdditionalCosts = r.AfterMargin.Add(in.AdditionalCosts)
	r.DiscountAmount = r.AfterAdditionalCosts.Mul(generic.Percent(in.DiscountPercent))
	r.AfterDiscount = r.AfterAdditionalCosts.Sub(r.DiscountAmount)
	r.TaxAmount = r.AfterDiscount.Mul(generic.Percent(in.TaxRatePercent))
	r.FinalValue = r.AfterDiscount.Add(r.TaxAmount)
	return r, nil
}

func marginAmount(subtotal, percent decimal.Decimal, mode MarginMode) decimal.Decimal {
	rate := generic.Percent(percent)
	if mode == ModeMargin {
		// Price such that margin/price == rate.
		return subtotal.Div(decimal.NewFromInt(1).Sub(rate)).Sub(subtotal)
	}
	return subtotal.Mul(rate)
}

// =============================================================================
// PRESENTATION HELPERS
// =============================================================================

// Round returns a copy with every field rounded half away from zero to places.
// Each field is rounded from its full-precision value, so rounded fields may
// not add up exactly; that is accepted for display.
func (r Result) Round(places int32) Result {
	return Result{
		Subtotal:             r.Subtotal.Round(places),
		MarginAmount:         r.MarginAmount.Round(places),
		AfterMargin:          r.AfterMargin.Round(places),
		AfterAdditionalCosts: r.AfterAdditionalCosts.Round(places),
		DiscountAmount:       r.DiscountAmount.Round(places),
		AfterDiscount:        r.AfterDiscount.Round(places),
		TaxAmount:            r.TaxAmount.Round(places),
		FinalValue:           r.FinalValue.Round(places),
	}
}

// GrossMarginPercent is the margin as a share of the post-margin price.
// Zero when there is nothing to sell.
func (r Result) GrossMarginPercent() decimal.Decimal {
	if r.AfterMargin.IsZero() {
		return decimal.Zero
	}
	return r.MarginAmount.Div(r.AfterMargin).Mul(generic.Hundred())
}

// Lines returns the breakdown as ordered label/value rows.
func (r Result) Lines() []Line {
	return []Line{
		{Label: "Subtotal", Value: r.Subtotal},
		{Label: "Margin", Value: r.MarginAmount},
		{Label: "After margin", Value: r.AfterMargin},
		{Label: "After additional costs", Value: r.AfterAdditionalCosts},
		{Label: "Discount", Value: r.DiscountAmount.Neg()},
		{Label: "After discount", Value: r.AfterDiscount},
		{Label: "Tax", Value: r.TaxAmount},
		{Label: "Final value", Value: r.FinalValue},
	}
}

type Line struct {
	Label string
	Value decimal.Decimal
}
