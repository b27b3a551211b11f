/*
Package generic provides the value types shared by the estimation engines.

PURPOSE:
  The scheduling and pricing packages both need dates, date ranges, decimal
  arithmetic and a common error taxonomy. Those live here so the domain
  packages stay focused on their own rules and never import each other.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money helpers: decimal.Decimal is the only representation of money and
    percentages anywhere in the engines
  - Percent: converts "15" into the 0.15 factor used in the cascade

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal avoids binary floating-point drift across
     the pricing cascade
  2. No rounding inside the engines: rounding is a display concern
  3. Immutability: every helper returns a new value

USAGE:
  rate := generic.Percent(decimal.NewFromInt(15))  // 0.15
  margin := subtotal.Mul(rate)

SEE ALSO:
  - time.go: TimePoint and day parsing
  - period.go: Date ranges and weeks
  - errors.go: ValidationError and sentinels
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// DECIMAL HELPERS
// =============================================================================

var hundred = decimal.NewFromInt(100)

// Hundred returns the decimal constant 100.
func Hundred() decimal.Decimal { return hundred }

// Percent converts a percentage (e.g. 15) into a factor (0.15).
func Percent(p decimal.Decimal) decimal.Decimal {
	return p.Div(hundred)
}

