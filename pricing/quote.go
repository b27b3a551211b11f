package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/panel-estimator/generic"
)

// =============================================================================
// PARAMS / PROFILE - Pricing parameters on top of BOM costs
// =============================================================================

// Params are the pricing knobs a quote carries besides its BOM.
type Params struct {
	MarginMode      MarginMode
	MarginPercent   decimal.Decimal
	AdditionalCosts decimal.Decimal
	DiscountPercent decimal.Decimal
	TaxRatePercent  decimal.Decimal
}

// Profile is a named set of default Params, e.g. "Industrial 18% margin".
type Profile struct {
	ID     string
	Name   string
	Params Params
}

// Validate checks the profile's params against an empty cost base.
func (p Profile) Validate() error {
	if p.ID == "" {
		return &generic.ValidationError{Field: "id", Reason: "must not be empty"}
	}
	return p.Params.toInput(Subtotals{}).Validate()
}

// Apply copies the profile's params into a draft quote.
func (p Profile) Apply(q *Quote) error {
	if q.Status != StatusDraft {
		return fmt.Errorf("%w: profile can only be applied to a draft quote", generic.ErrInvalidTransition)
	}
	q.Params = p.Params
	q.ProfileID = p.ID
	return nil
}

func (p Params) toInput(s Subtotals) Input {
	return Input{
		MaterialsSubtotal: s.Materials,
		LaborSubtotal:     s.Labor,
		MarginMode:        p.MarginMode,
		MarginPercent:     p.MarginPercent,
		AdditionalCosts:   p.AdditionalCosts,
		DiscountPercent:   p.DiscountPercent,
		TaxRatePercent:    p.TaxRatePercent,
	}
}

// =============================================================================
// QUOTE
// =============================================================================

type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// transitions lists the allowed next statuses.
var transitions = map[Status][]Status{
	StatusDraft: {StatusSent, StatusRejected},
	StatusSent:  {StatusAccepted, StatusRejected, StatusDraft},
}

type Quote struct {
	ID          string
	ProjectName string
	ClientName  string
	Status      Status
	ProfileID   string
	Items       []BOMItem
	Params      Params
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Input builds the engine input from the quote's BOM and params.
func (q Quote) Input() (Input, error) {
	subtotals, err := SubtotalsFromBOM(q.Items)
	if err != nil {
		return Input{}, err
	}
	return q.Params.toInput(subtotals), nil
}

// Price computes the quote's breakdown. Nothing is cached on the quote.
func (q Quote) Price() (Result, error) {
	in, err := q.Input()
	if err != nil {
		return Result{}, err
	}
	return Compute(in)
}

func (q Quote) Validate() error {
	if q.ID == "" {
		return &generic.ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if q.ProjectName == "" {
		return &generic.ValidationError{Field: "project_name", Reason: "must not be empty"}
	}
	if _, ok := transitions[q.Status]; !ok && !q.Status.Terminal() {
		return &generic.ValidationError{Field: "status", Value: q.Status, Reason: "unknown status"}
	}
	_, err := q.Price()
	return err
}

// Editable reports whether items and params may still change.
func (q Quote) Editable() bool { return q.Status == StatusDraft }

func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Transition moves the quote to status to. A quote can only be sent when it
// prices cleanly.
func (q *Quote) Transition(to Status, at time.Time) error {
	allowed := false
	for _, next := range transitions[q.Status] {
		if next == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %s -> %s", generic.ErrInvalidTransition, q.Status, to)
	}
	if to == StatusSent {
		if _, err := q.Price(); err != nil {
			return err
		}
	}
	q.Status = to
	q.UpdatedAt = at
	return nil
}

// =============================================================================
// QUOTE STORE - Persistence port
// =============================================================================

// QuoteStore persists quotes and pricing profiles. Missing records return a
// *generic.NotFoundError.
type QuoteStore interface {
	SaveQuote(ctx context.Context, q Quote) error
	GetQuote(ctx context.Context, id string) (*Quote, error)
	ListQuotes(ctx context.Context) ([]Quote, error)

	SaveProfile(ctx context.Context, p Profile) error
	GetProfile(ctx context.Context, id string) (*Profile, error)
	ListProfiles(ctx context.Context) ([]Profile, error)
}
