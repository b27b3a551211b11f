/*
Package factory provides JSON to Go pricing profile conversion.

PURPOSE:
  Converts JSON pricing profiles into pricing.Profile values. Profiles are
  the presets an estimator picks when starting a quote ("Commercial, 15%
  markup, 8.25% tax"), so they are edited by people, stored as JSON, and
  turned into typed params here.

JSON SCHEMA:
  {
    "id": "commercial",
    "name": "Commercial switchboards",
    "margin_mode": "markup",
    "margin_percent": 15,
    "additional_costs": 350,
    "discount_percent": 0,
    "tax_rate_percent": 8.25
  }

  Numbers may also be given as strings ("8.25") to keep exact decimals.

KEY FEATURES:
  - Validates the profile with the pricing engine's own rules
  - Defaults margin_mode to markup
  - Round-trips: ToJSON(ParseProfile(s)) preserves every value

USAGE:
  f := factory.NewProfileFactory()
  profile, err := f.ParseProfile(jsonString)

SEE ALSO:
  - pricing/quote.go: Profile and Params
  - store/sqlite/sqlite.go: Stores profiles as JSON
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/panel-estimator/pricing"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ProfileJSON is the JSON representation of a pricing profile.
type ProfileJSON struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	MarginMode      string          `json:"margin_mode,omitempty"`
	MarginPercent   decimal.Decimal `json:"margin_percent"`
	AdditionalCosts decimal.Decimal `json:"additional_costs"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxRatePercent  decimal.Decimal `json:"tax_rate_percent"`
}

// =============================================================================
// PROFILE FACTORY
// =============================================================================

// ProfileFactory converts JSON profiles to pricing.Profile.
type ProfileFactory struct{}

func NewProfileFactory() *ProfileFactory {
	return &ProfileFactory{}
}

// ParseProfile parses and validates a JSON profile.
func (f *ProfileFactory) ParseProfile(jsonStr string) (*pricing.Profile, error) {
	var pj ProfileJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return nil, fmt.Errorf("failed to parse profile JSON: %w", err)
	}
	return f.FromJSON(pj)
}

// FromJSON converts ProfileJSON into a validated pricing.Profile.
func (f *ProfileFactory) FromJSON(pj ProfileJSON) (*pricing.Profile, error) {
	profile := &pricing.Profile{
		ID:     pj.ID,
		Name:   pj.Name,
		Params: pj.Params(),
	}
	if profile.Name == "" {
		profile.Name = profile.ID
	}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("profile %q: %w", pj.ID, err)
	}
	return profile, nil
}

// Params returns the pricing parameters of the profile schema. Quotes reuse
// this schema for their own params.
func (pj ProfileJSON) Params() pricing.Params {
	return pricing.Params{
		MarginMode:      marginMode(pj.MarginMode),
		MarginPercent:   pj.MarginPercent,
		AdditionalCosts: pj.AdditionalCosts,
		DiscountPercent: pj.DiscountPercent,
		TaxRatePercent:  pj.TaxRatePercent,
	}
}

// ToJSON converts a profile back to its JSON form.
func ToJSON(p pricing.Profile) ProfileJSON {
	return ProfileJSON{
		ID:              p.ID,
		Name:            p.Name,
		MarginMode:      string(p.Params.MarginMode),
		MarginPercent:   p.Params.MarginPercent,
		AdditionalCosts: p.Params.AdditionalCosts,
		DiscountPercent: p.Params.DiscountPercent,
		TaxRatePercent:  p.Params.TaxRatePercent,
	}
}

// MarshalProfile encodes a profile as a JSON string.
func MarshalProfile(p pricing.Profile) (string, error) {
	data, err := json.Marshal(ToJSON(p))
	if err != nil {
		return "", fmt.Errorf("failed to encode profile %q: %w", p.ID, err)
	}
	return string(data), nil
}

// =============================================================================
// PRESETS
// =============================================================================

// ProfilePresetJSON builds a profile JSON string. Used by demo scenarios.
func ProfilePresetJSON(id, name string, mode pricing.MarginMode, marginPercent, taxRatePercent float64) string {
	return fmt.Sprintf(`{
		"id": %q,
		"name": %q,
		"margin_mode": %q,
		"margin_percent": %v,
		"additional_costs": 0,
		"discount_percent": 0,
		"tax_rate_percent": %v
	}`, id, name, mode, marginPercent, taxRatePercent)
}
