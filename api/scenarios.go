/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	data for demos. Each scenario creates estimators, assignments, pricing
	profiles and quotes that demonstrate specific features.

AVAILABLE SCENARIOS:

	estimating-week:  Three estimators, a week of work, one double booking
	overbooked-day:   One estimator booked past capacity with stacked conflicts
	quote-pipeline:   Pricing profiles and quotes in every status
	full-demo:        All of the above

HOW SCENARIOS WORK:
 1. Reset store (clear all data)
 2. Create pricing profiles via factory
 3. Create estimators
 4. Schedule assignments (conflicts allowed, so they show on the board)
 5. Create quotes and walk them through the status workflow

Assignment dates are relative to the current week so the board is never
empty when a scenario is loaded.

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "estimating-week"}

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler and error mapping
  - factory/profile.go: Profile JSON definitions
*/
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
	"github.com/shopspring/decimal"
	"github.com/warp/panel-estimator/factory"
	"github.com/warp/panel-estimator/generic"
	"github.com/warp/panel-estimator/pricing"
	"github.com/warp/panel-estimator/schedule"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "estimating-week",
		Name:        "Estimating Week",
		Description: "Three estimators with a week of takeoffs and one double booking",
		Category:    "schedule",
	},
	{
		ID:          "overbooked-day",
		Name:        "Overbooked Day",
		Description: "One estimator booked past daily capacity with stacked conflicts",
		Category:    "schedule",
	},
	{
		ID:          "quote-pipeline",
		Name:        "Quote Pipeline",
		Description: "Pricing profiles and quotes in draft, sent, accepted and rejected",
		Category:    "pricing",
	},
	{
		ID:          "full-demo",
		Name:        "Full Demo",
		Description: "Scheduling and pricing data together",
		Category:    "demo",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, r, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, r, http.StatusOK, nil)
}

// LoadScenario resets the store and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Load(r.Context(), req.ScenarioID); err != nil {
		h.writeDomainError(w, r, "Failed to load scenario", err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// Load resets the store and seeds scenario id. Used by the HTTP handler and
// by cmd/server's -scenario flag.
func (h *Handler) Load(ctx context.Context, id string) error {
	loaders := map[string]func(context.Context) error{
		"estimating-week": h.loadEstimatingWeekScenario,
		"overbooked-day":  h.loadOverbookedDayScenario,
		"quote-pipeline":  h.loadQuotePipelineScenario,
		"full-demo":       h.loadFullDemoScenario,
	}
	load, ok := loaders[id]
	if !ok {
		return &generic.ValidationError{Field: "scenario_id", Value: id, Reason: "unknown scenario"}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(ctx); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	h.currentScenario = ""

	if err := load(ctx); err != nil {
		return fmt.Errorf("scenario %s: %w", id, err)
	}
	h.currentScenario = id
	h.Log.Info("scenario loaded", "scenario", id)
	return nil
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadEstimatingWeekScenario(ctx context.Context) error {
	if err := h.seedEstimators(ctx,
		schedule.Estimator{ID: "est-ana", Name: "Ana Ruiz", Email: "ana@example.com", DailyCapacityHours: 8},
		schedule.Estimator{ID: "est-ben", Name: "Ben Okafor", Email: "ben@example.com", DailyCapacityHours: 8},
		schedule.Estimator{ID: "est-chloe", Name: "Chloe Park", Email: "chloe@example.com", DailyCapacityHours: 6},
	); err != nil {
		return err
	}

	monday := generic.StartOfWeek(generic.Today())
	day := func(offset int) string { return monday.AddDays(offset).String() }

	return h.seedAssignments(ctx,
		schedule.Assignment{ID: "asg-101", ResourceID: "est-ana", Date: day(0), StartHour: 8, Duration: 4, ProjectID: "prj-hospital", Title: "Hospital MCC takeoff"},
		schedule.Assignment{ID: "asg-102", ResourceID: "est-ana", Date: day(0), StartHour: 13, Duration: 3, ProjectID: "prj-hospital", Title: "Hospital lighting panels"},
		schedule.Assignment{ID: "asg-103", ResourceID: "est-ben", Date: day(0), StartHour: 9, Duration: 6, ProjectID: "prj-plant", Title: "Water plant switchgear"},
		// Double booking on Tuesday: 9-13 and 11-14.
		schedule.Assignment{ID: "asg-104", ResourceID: "est-ana", Date: day(1), StartHour: 9, Duration: 4, ProjectID: "prj-school", Title: "School distribution boards"},
		schedule.Assignment{ID: "asg-105", ResourceID: "est-ana", Date: day(1), StartHour: 11, Duration: 3, ProjectID: "prj-retail", Title: "Retail fit-out review"},
		// Touching, not overlapping.
		schedule.Assignment{ID: "asg-106", ResourceID: "est-chloe", Date: day(2), StartHour: 8, Duration: 3, ProjectID: "prj-plant", Title: "Plant PLC panel BOM"},
		schedule.Assignment{ID: "asg-107", ResourceID: "est-chloe", Date: day(2), StartHour: 11, Duration: 3, ProjectID: "prj-plant", Title: "Plant VFD pricing"},
		schedule.Assignment{ID: "asg-108", ResourceID: "est-ben", Date: day(3), StartHour: 10, Duration: 5, ProjectID: "prj-datacenter", Title: "Data center PDU takeoff"},
		schedule.Assignment{ID: "asg-109", ResourceID: "est-chloe", Date: day(4), StartHour: 9, Duration: 2, ProjectID: "prj-school", Title: "School quote review"},
	)
}

func (h *Handler) loadOverbookedDayScenario(ctx context.Context) error {
	if err := h.seedEstimators(ctx,
		schedule.Estimator{ID: "est-dev", Name: "Dev Malhotra", Email: "dev@example.com", DailyCapacityHours: 8},
	); err != nil {
		return err
	}

	today := generic.Today().String()
	return h.seedAssignments(ctx,
		schedule.Assignment{ID: "asg-201", ResourceID: "est-dev", Date: today, StartHour: 7, Duration: 5, ProjectID: "prj-airport", Title: "Airport ATS panels"},
		schedule.Assignment{ID: "asg-202", ResourceID: "est-dev", Date: today, StartHour: 10, Duration: 4, ProjectID: "prj-airport", Title: "Airport metering"},
		schedule.Assignment{ID: "asg-203", ResourceID: "est-dev", Date: today, StartHour: 11, Duration: 2, ProjectID: "prj-mall", Title: "Mall tenant boards"},
		schedule.Assignment{ID: "asg-204", ResourceID: "est-dev", Date: today, StartHour: 15, Duration: 3, ProjectID: "prj-mall", Title: "Mall lighting control"},
	)
}

func (h *Handler) loadQuotePipelineScenario(ctx context.Context) error {
	presets := []string{
		factory.ProfilePresetJSON("commercial", "Commercial markup 15%", pricing.ModeMarkup, 15, 8),
		factory.ProfilePresetJSON("industrial", "Industrial margin 18%", pricing.ModeMargin, 18, 8.25),
		factory.ProfilePresetJSON("utility", "Utility tax-exempt 12%", pricing.ModeMarkup, 12, 0),
	}
	for _, preset := range presets {
		if err := h.createProfileFromJSON(ctx, preset); err != nil {
			return err
		}
	}

	switchboard := []pricing.BOMItem{
		{PartNumber: "ENC-2000", Description: "Switchboard enclosure 2000A", Category: pricing.CategoryMaterial, Quantity: decimal.NewFromInt(2), UnitCost: decimal.NewFromInt(2500)},
		{PartNumber: "MCCB-250", Description: "Molded case breaker 250A", Category: pricing.CategoryMaterial, Quantity: decimal.NewFromInt(20), UnitCost: decimal.NewFromInt(150)},
		{PartNumber: "LAB-ASSY", Description: "Panel assembly labor (h)", Category: pricing.CategoryLabor, Quantity: decimal.NewFromInt(40), UnitCost: decimal.NewFromInt(50)},
	}
	// 8000 materials + 2000 labor, 15% markup, 350 extra, 2% off, 10% tax = 12774.3
	worked := pricing.Params{
		MarginMode:      pricing.ModeMarkup,
		MarginPercent:   decimal.NewFromInt(15),
		AdditionalCosts: decimal.NewFromInt(350),
		DiscountPercent: decimal.NewFromInt(2),
		TaxRatePercent:  decimal.NewFromInt(10),
	}

	mcc := []pricing.BOMItem{
		{PartNumber: "MCC-BKT", Description: "MCC bucket, size 2 starter", Category: pricing.CategoryMaterial, Quantity: decimal.NewFromInt(12), UnitCost: decimal.RequireFromString("1875.40")},
		{PartNumber: "PLC-CPU", Description: "PLC controller", Category: pricing.CategoryMaterial, Quantity: decimal.NewFromInt(1), UnitCost: decimal.RequireFromString("3420.00")},
		{PartNumber: "LAB-WIRE", Description: "Control wiring labor (h)", Category: pricing.CategoryLabor, Quantity: decimal.RequireFromString("62.5"), UnitCost: decimal.NewFromInt(68)},
	}

	lighting := []pricing.BOMItem{
		{PartNumber: "LP-42", Description: "Lighting panelboard 42 circuit", Category: pricing.CategoryMaterial, Quantity: decimal.NewFromInt(6), UnitCost: decimal.RequireFromString("980.00")},
		{PartNumber: "LAB-TERM", Description: "Termination labor (h)", Category: pricing.CategoryLabor, Quantity: decimal.NewFromInt(24), UnitCost: decimal.NewFromInt(55)},
	}

	seeds := []struct {
		quote   pricing.Quote
		profile string
		path    []pricing.Status
	}{
		{
			quote: pricing.Quote{ID: "Q-1001", ProjectName: "Riverside Hospital switchboard", ClientName: "Northwind Electrical", Items: switchboard, Params: worked},
			path:  []pricing.Status{pricing.StatusSent},
		},
		{
			quote:   pricing.Quote{ID: "Q-1002", ProjectName: "Water plant MCC lineup", ClientName: "Contoso Utilities", Items: mcc},
			profile: "industrial",
			path:    []pricing.Status{pricing.StatusSent, pricing.StatusAccepted},
		},
		{
			quote:   pricing.Quote{ID: "Q-1003", ProjectName: "Eastside school lighting", ClientName: "Fabrikam Builders", Items: lighting},
			profile: "commercial",
		},
		{
			quote:   pricing.Quote{ID: "Q-1004", ProjectName: "Substation aux panels", ClientName: "Contoso Utilities", Items: lighting},
			profile: "utility",
			path:    []pricing.Status{pricing.StatusSent, pricing.StatusRejected},
		},
	}

	for _, s := range seeds {
		if err := h.seedQuote(ctx, s.quote, s.profile, s.path...); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadFullDemoScenario(ctx context.Context) error {
	if err := h.loadEstimatingWeekScenario(ctx); err != nil {
		return err
	}
	return h.loadQuotePipelineScenario(ctx)
}

// =============================================================================
// SEED HELPERS
// =============================================================================

func (h *Handler) seedEstimators(ctx context.Context, estimators ...schedule.Estimator) error {
	for _, e := range estimators {
		if err := e.Validate(); err != nil {
			return err
		}
		if err := h.Store.SaveEstimator(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// seedAssignments schedules through the planner with conflicts allowed, so
// demo double bookings are stored and show up on the board.
func (h *Handler) seedAssignments(ctx context.Context, assignments ...schedule.Assignment) error {
	for _, a := range assignments {
		if _, err := h.Planner.Schedule(ctx, a, true); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) createProfileFromJSON(ctx context.Context, jsonStr string) error {
	profile, err := h.ProfileFactory.ParseProfile(jsonStr)
	if err != nil {
		return err
	}
	return h.Store.SaveProfile(ctx, *profile)
}

func (h *Handler) seedQuote(ctx context.Context, q pricing.Quote, profileID string, path ...pricing.Status) error {
	now := h.Now().UTC()
	q.Status = pricing.StatusDraft
	q.CreatedAt = now
	q.UpdatedAt = now

	if profileID != "" {
		profile, err := h.Store.GetProfile(ctx, profileID)
		if err != nil {
			return err
		}
		if err := profile.Apply(&q); err != nil {
			return err
		}
	}
	if err := q.Validate(); err != nil {
		return fmt.Errorf("quote %s: %w", q.ID, err)
	}
	for _, to := range path {
		if err := q.Transition(to, now); err != nil {
			return fmt.Errorf("quote %s: %w", q.ID, err)
		}
	}
	return h.Store.SaveQuote(ctx, q)
}
