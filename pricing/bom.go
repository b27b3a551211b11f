package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/panel-estimator/generic"
)

// =============================================================================
// BILL OF MATERIALS
// =============================================================================

type Category string

const (
	CategoryMaterial Category = "material"
	CategoryLabor    Category = "labor"
)

// BOMItem is one line of a panelboard bill of materials. Labor lines carry
// hours in Quantity and the hourly rate in UnitCost.
type BOMItem struct {
	PartNumber  string
	Description string
	Category    Category
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
}

func (i BOMItem) Total() decimal.Decimal {
	return i.Quantity.Mul(i.UnitCost)
}

func (i BOMItem) Validate() error {
	if i.Category != CategoryMaterial && i.Category != CategoryLabor {
		return &generic.ValidationError{Field: "category", Value: i.Category, Reason: "must be material or labor"}
	}
	if i.Quantity.IsNegative() {
		return &generic.ValidationError{Field: "quantity", Value: i.Quantity, Reason: "must not be negative"}
	}
	if i.UnitCost.IsNegative() {
		return &generic.ValidationError{Field: "unit_cost", Value: i.UnitCost, Reason: "must not be negative"}
	}
	return nil
}

// Subtotals holds the BOM totals fed into Input.
type Subtotals struct {
	Materials decimal.Decimal
	Labor     decimal.Decimal
}

// SubtotalsFromBOM sums material and labor lines separately.
func SubtotalsFromBOM(items []BOMItem) (Subtotals, error) {
	s := Subtotals{Materials: decimal.Zero, Labor: decimal.Zero}
	for n, item := range items {
		if err := item.Validate(); err != nil {
			return Subtotals{}, fmt.Errorf("bom line %d: %w", n+1, err)
		}
		switch item.Category {
		case CategoryMaterial:
			s.Materials = s.Materials.Add(item.Total())
		case CategoryLabor:
			s.Labor = s.Labor.Add(item.Total())
		}
	}
	return s, nil
}
