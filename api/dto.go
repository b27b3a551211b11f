/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the domain model (schedule, pricing) from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients (some also accepted as input)
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

MONEY:
  decimal.Decimal fields accept JSON numbers or strings and are written as
  strings ("12774.3"), so no precision is lost in either direction.

REQUEST BODIES:
  Assignments, pricing inputs, BOM lines and params are decoded with the
  factory package's JSON types, the same shapes the CLI reads from files,
  so both surfaces apply the same defaults (margin_mode: markup).

VALIDATION:
  Validation is done by the domain packages, not in DTOs. DTOs are pure data
  carriers plus conversion helpers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/panel-estimator/factory"
	"github.com/warp/panel-estimator/generic"
	"github.com/warp/panel-estimator/pricing"
	"github.com/warp/panel-estimator/schedule"
)

// =============================================================================
// SCHEDULING
// =============================================================================

type EstimatorDTO struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email,omitempty"`
	DailyCapacityHours int    `json:"daily_capacity_hours"`
}

type AssignmentDTO struct {
	ID         string `json:"id"`
	ResourceID string `json:"resource_id"`
	Date       string `json:"date"`
	StartHour  int    `json:"start_hour"`
	Duration   int    `json:"duration"`
	ProjectID  string `json:"project_id,omitempty"`
	Title      string `json:"title,omitempty"`
	Conflicted bool   `json:"conflicted,omitempty"`
}

type ConflictPairDTO struct {
	First  string `json:"first"`
	Second string `json:"second"`
}

// DetectConflictsRequest is the body of the stateless detection endpoint.
type DetectConflictsRequest struct {
	Assignments []factory.AssignmentJSON `json:"assignments"`
}

type DetectConflictsResponse struct {
	Conflicts     []ConflictPairDTO `json:"conflicts"`
	ConflictedIDs []string          `json:"conflicted_ids"`
}

// CreateAssignmentRequest creates an assignment. ID is generated when empty.
type CreateAssignmentRequest struct {
	factory.AssignmentJSON
	AllowConflicts bool `json:"allow_conflicts"`
}

// MoveAssignmentRequest is a calendar drop.
type MoveAssignmentRequest struct {
	ResourceID     string `json:"resource_id"`
	Date           string `json:"date"`
	StartHour      int    `json:"start_hour"`
	AllowConflicts bool   `json:"allow_conflicts"`
}

type AssignmentResponse struct {
	Assignment AssignmentDTO     `json:"assignment"`
	Conflicts  []ConflictPairDTO `json:"conflicts"`
}

// BoardResponse is one calendar page. Previous and Next are the adjacent
// ranges of the same length, set only when both bounds are given.
type BoardResponse struct {
	From        string            `json:"from,omitempty"`
	To          string            `json:"to,omitempty"`
	Previous    *PeriodDTO        `json:"previous,omitempty"`
	Next        *PeriodDTO        `json:"next,omitempty"`
	Assignments []AssignmentDTO   `json:"assignments"`
	Conflicts   []ConflictPairDTO `json:"conflicts"`
}

type PeriodDTO struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type UtilizationDTO struct {
	ResourceID  string `json:"resource_id"`
	Name        string `json:"name,omitempty"`
	Date        string `json:"date"`
	BookedHours int    `json:"booked_hours"`
	Capacity    int    `json:"capacity"`
	Overbooked  bool   `json:"overbooked"`
}

type AuditRunDTO struct {
	ID              string            `json:"id"`
	RanAt           string            `json:"ran_at"`
	AssignmentCount int               `json:"assignment_count"`
	ConflictCount   int               `json:"conflict_count"`
	Conflicts       []ConflictPairDTO `json:"conflicts"`
	Error           string            `json:"error,omitempty"`
}

// =============================================================================
// PRICING
// =============================================================================

type PricingResultDTO struct {
	Subtotal             decimal.Decimal `json:"subtotal"`
	MarginAmount         decimal.Decimal `json:"margin_amount"`
	AfterMargin          decimal.Decimal `json:"after_margin"`
	AfterAdditionalCosts decimal.Decimal `json:"after_additional_costs"`
	DiscountAmount       decimal.Decimal `json:"discount_amount"`
	AfterDiscount        decimal.Decimal `json:"after_discount"`
	TaxAmount            decimal.Decimal `json:"tax_amount"`
	FinalValue           decimal.Decimal `json:"final_value"`
	GrossMarginPercent   decimal.Decimal `json:"gross_margin_percent"`
}

type BOMItemDTO struct {
	PartNumber  string          `json:"part_number"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type ParamsDTO struct {
	MarginMode      string          `json:"margin_mode"`
	MarginPercent   decimal.Decimal `json:"margin_percent"`
	AdditionalCosts decimal.Decimal `json:"additional_costs"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxRatePercent  decimal.Decimal `json:"tax_rate_percent"`
}

// QuoteRequest creates or replaces a quote. When ProfileID is set, the
// profile's params replace Params.
type QuoteRequest struct {
	ID          string                `json:"id,omitempty"`
	ProjectName string                `json:"project_name"`
	ClientName  string                `json:"client_name"`
	ProfileID   string                `json:"profile_id,omitempty"`
	Items       []factory.BOMItemJSON `json:"items"`
	Params      factory.ProfileJSON   `json:"params"`
}

type QuoteDTO struct {
	ID          string            `json:"id"`
	ProjectName string            `json:"project_name"`
	ClientName  string            `json:"client_name"`
	Status      string            `json:"status"`
	ProfileID   string            `json:"profile_id,omitempty"`
	Items       []BOMItemDTO      `json:"items"`
	Params      ParamsDTO         `json:"params"`
	Breakdown   *PricingResultDTO `json:"breakdown,omitempty"`
	PriceError  string            `json:"price_error,omitempty"`
	CreatedAt   string            `json:"created_at"`
	UpdatedAt   string            `json:"updated_at"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type ProfileDTO struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	MarginMode      string          `json:"margin_mode"`
	MarginPercent   decimal.Decimal `json:"margin_percent"`
	AdditionalCosts decimal.Decimal `json:"additional_costs"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxRatePercent  decimal.Decimal `json:"tax_rate_percent"`
}

// =============================================================================
// MISC
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string            `json:"error"`
	Details   string            `json:"details,omitempty"`
	Conflicts []ConflictPairDTO `json:"conflicts,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toEstimatorDTO(e schedule.Estimator) EstimatorDTO {
	return EstimatorDTO{ID: e.ID, Name: e.Name, Email: e.Email, DailyCapacityHours: e.Capacity()}
}

func (d EstimatorDTO) toDomain() schedule.Estimator {
	return schedule.Estimator{ID: d.ID, Name: d.Name, Email: d.Email, DailyCapacityHours: d.DailyCapacityHours}
}

func toAssignmentDTO(a schedule.Assignment, conflicted bool) AssignmentDTO {
	return AssignmentDTO{
		ID:         a.ID,
		ResourceID: a.ResourceID,
		Date:       a.Date,
		StartHour:  a.StartHour,
		Duration:   a.Duration,
		ProjectID:  a.ProjectID,
		Title:      a.Title,
		Conflicted: conflicted,
	}
}

func toPeriodDTO(p generic.Period) *PeriodDTO {
	return &PeriodDTO{From: p.Start.String(), To: p.End.String()}
}

func toPairDTOs(pairs []schedule.ConflictPair) []ConflictPairDTO {
	dtos := make([]ConflictPairDTO, len(pairs))
	for i, p := range pairs {
		dtos[i] = ConflictPairDTO{First: p.First, Second: p.Second}
	}
	return dtos
}

func toAuditRunDTO(run schedule.AuditRun) AuditRunDTO {
	return AuditRunDTO{
		ID:              run.ID,
		RanAt:           run.RanAt.UTC().Format(time.RFC3339),
		AssignmentCount: run.AssignmentCount,
		ConflictCount:   run.ConflictCount,
		Conflicts:       toPairDTOs(run.Pairs),
		Error:           run.Error,
	}
}

func toPricingResultDTO(r pricing.Result) PricingResultDTO {
	return PricingResultDTO{
		Subtotal:             r.Subtotal,
		MarginAmount:         r.MarginAmount,
		AfterMargin:          r.AfterMargin,
		AfterAdditionalCosts: r.AfterAdditionalCosts,
		DiscountAmount:       r.DiscountAmount,
		AfterDiscount:        r.AfterDiscount,
		TaxAmount:            r.TaxAmount,
		FinalValue:           r.FinalValue,
		GrossMarginPercent:   r.GrossMarginPercent(),
	}
}

func toParamsDTO(p pricing.Params) ParamsDTO {
	return ParamsDTO{
		MarginMode:      string(p.MarginMode),
		MarginPercent:   p.MarginPercent,
		AdditionalCosts: p.AdditionalCosts,
		DiscountPercent: p.DiscountPercent,
		TaxRatePercent:  p.TaxRatePercent,
	}
}

// toQuoteDTO renders a quote with its breakdown. A quote that does not price
// (invalid BOM line, bad params) is still returned, with PriceError set.
func toQuoteDTO(q pricing.Quote) QuoteDTO {
	items := make([]BOMItemDTO, len(q.Items))
	for i, it := range q.Items {
		items[i] = BOMItemDTO{
			PartNumber:  it.PartNumber,
			Description: it.Description,
			Category:    string(it.Category),
			Quantity:    it.Quantity,
			UnitCost:    it.UnitCost,
			LineTotal:   it.Total(),
		}
	}

	dto := QuoteDTO{
		ID:          q.ID,
		ProjectName: q.ProjectName,
		ClientName:  q.ClientName,
		Status:      string(q.Status),
		ProfileID:   q.ProfileID,
		Items:       items,
		Params:      toParamsDTO(q.Params),
		CreatedAt:   q.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   q.UpdatedAt.UTC().Format(time.RFC3339),
	}
	result, err := q.Price()
	if err != nil {
		dto.PriceError = err.Error()
	} else {
		breakdown := toPricingResultDTO(result)
		dto.Breakdown = &breakdown
	}
	return dto
}

func toProfileDTO(p pricing.Profile) ProfileDTO {
	return ProfileDTO{
		ID:              p.ID,
		Name:            p.Name,
		MarginMode:      string(p.Params.MarginMode),
		MarginPercent:   p.Params.MarginPercent,
		AdditionalCosts: p.Params.AdditionalCosts,
		DiscountPercent: p.Params.DiscountPercent,
		TaxRatePercent:  p.Params.TaxRatePercent,
	}
}
