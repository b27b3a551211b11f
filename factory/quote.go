package factory

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/panel-estimator/pricing"
)

// =============================================================================
// PRICING INPUT
// =============================================================================

// InputJSON is the JSON form of a raw pricing input.
//
//	{"materials_subtotal": 8000, "labor_subtotal": 2000, "margin_percent": 15,
//	 "margin_mode": "markup", "additional_costs": 350,
//	 "discount_percent": 2, "tax_rate_percent": 10}
type InputJSON struct {
	MaterialsSubtotal decimal.Decimal `json:"materials_subtotal"`
	LaborSubtotal     decimal.Decimal `json:"labor_subtotal"`
	MarginPercent     decimal.Decimal `json:"margin_percent"`
	MarginMode        string          `json:"margin_mode,omitempty"`
	AdditionalCosts   decimal.Decimal `json:"additional_costs"`
	DiscountPercent   decimal.Decimal `json:"discount_percent"`
	TaxRatePercent    decimal.Decimal `json:"tax_rate_percent"`
}

// ParseInput decodes a pricing input. The input is validated by
// pricing.Compute, not here.
func ParseInput(data []byte) (pricing.Input, error) {
	var ij InputJSON
	if err := json.Unmarshal(data, &ij); err != nil {
		return pricing.Input{}, fmt.Errorf("failed to parse pricing input JSON: %w", err)
	}
	return ij.Input(), nil
}

// Input converts the JSON form. margin_mode defaults to markup.
func (ij InputJSON) Input() pricing.Input {
	return pricing.Input{
		MaterialsSubtotal: ij.MaterialsSubtotal,
		LaborSubtotal:     ij.LaborSubtotal,
		MarginPercent:     ij.MarginPercent,
		MarginMode:        marginMode(ij.MarginMode),
		AdditionalCosts:   ij.AdditionalCosts,
		DiscountPercent:   ij.DiscountPercent,
		TaxRatePercent:    ij.TaxRatePercent,
	}
}

// marginMode is the one place an omitted margin_mode becomes markup.
func marginMode(s string) pricing.MarginMode {
	if s == "" {
		return pricing.ModeMarkup
	}
	return pricing.MarginMode(s)
}

// =============================================================================
// QUOTES
// =============================================================================

type BOMItemJSON struct {
	PartNumber  string          `json:"part_number"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

func (it BOMItemJSON) Item() pricing.BOMItem {
	return pricing.BOMItem{
		PartNumber:  it.PartNumber,
		Description: it.Description,
		Category:    pricing.Category(it.Category),
		Quantity:    it.Quantity,
		UnitCost:    it.UnitCost,
	}
}

// BOMItems converts a list of JSON lines, keeping their order.
func BOMItems(items []BOMItemJSON) []pricing.BOMItem {
	out := make([]pricing.BOMItem, len(items))
	for i, it := range items {
		out[i] = it.Item()
	}
	return out
}

// QuoteJSON is a quote as kept in files. Params use the profile schema minus
// id and name.
type QuoteJSON struct {
	ID          string        `json:"id,omitempty"`
	ProjectName string        `json:"project_name"`
	ClientName  string        `json:"client_name"`
	Status      string        `json:"status,omitempty"`
	Items       []BOMItemJSON `json:"items"`
	Params      ProfileJSON   `json:"params"`
}

// ParseQuote decodes and validates a quote. A missing id gets a fresh UUID,
// a missing status means draft.
func ParseQuote(data []byte) (*pricing.Quote, error) {
	var qj QuoteJSON
	if err := json.Unmarshal(data, &qj); err != nil {
		return nil, fmt.Errorf("failed to parse quote JSON: %w", err)
	}

	q := &pricing.Quote{
		ID:          qj.ID,
		ProjectName: qj.ProjectName,
		ClientName:  qj.ClientName,
		Status:      pricing.Status(qj.Status),
		Items:       BOMItems(qj.Items),
		Params:      qj.Params.Params(),
	}
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.Status == "" {
		q.Status = pricing.StatusDraft
	}

	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("quote %q: %w", q.ID, err)
	}
	return q, nil
}
