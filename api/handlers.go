/*
handlers.go - HTTP API handlers for the panel estimator

PURPOSE:
  Exposes the scheduling and pricing engines via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Scheduling:
    POST   /api/schedule/conflicts       Detect conflicts in a posted batch (stateless)
    GET    /api/schedule/utilization     Booked hours per estimator (?date=)
    GET    /api/schedule/audits          Background auditor history (?limit=)

  Estimators:
    GET    /api/estimators               List estimators
    POST   /api/estimators               Create estimator

  Assignments:
    GET    /api/assignments              Calendar board (?from=&to=&resource_id=)
    POST   /api/assignments              Schedule an assignment
    POST   /api/assignments/{id}/move    Drag-and-drop reschedule
    DELETE /api/assignments/{id}         Remove an assignment

  Pricing:
    POST   /api/pricing/compute          Run the pricing cascade on raw input
    GET    /api/profiles                 List pricing profiles
    POST   /api/profiles                 Create profile from JSON
    GET    /api/quotes                   List quotes with breakdowns
    POST   /api/quotes                   Create draft quote
    GET    /api/quotes/{id}              Get quote
    PUT    /api/quotes/{id}              Replace a draft quote
    POST   /api/quotes/{id}/status       Status transition
    GET    /api/quotes/{id}/export.xlsx  Download quote workbook

  Scenarios:
    GET    /api/scenarios                List demo scenarios
    GET    /api/scenarios/current        Currently loaded scenario (null if none)
    POST   /api/scenarios/load           Load a demo scenario

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: persistence for both engines (memory or sqlite)
  - Planner: store-backed scheduling rules
  - ProfileFactory: JSON to pricing.Profile conversion

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid transitions, malformed periods
  - 404: Record not found
  - 409: Scheduling conflicts (unless allow_conflicts), duplicate ids
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/warp/panel-estimator/export"
	"github.com/warp/panel-estimator/factory"
	"github.com/warp/panel-estimator/generic"
	"github.com/warp/panel-estimator/pricing"
	"github.com/warp/panel-estimator/schedule"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is everything the API persists. Both store/memory and store/sqlite
// satisfy it.
type Store interface {
	schedule.Store
	schedule.AuditStore
	pricing.QuoteStore
	Reset(ctx context.Context) error
}

// defaultAuditLimit caps GET /api/schedule/audits when no limit is given.
const defaultAuditLimit = 20

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store          Store
	Planner        *schedule.Planner
	ProfileFactory *factory.ProfileFactory
	Log            *slog.Logger

	// Now is the clock used for quote timestamps.
	Now func() time.Time

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store Store, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		Store:          store,
		Planner:        schedule.NewPlanner(store),
		ProfileFactory: factory.NewProfileFactory(),
		Log:            log,
		Now:            time.Now,
	}
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// DetectConflicts runs conflict detection over the posted assignments
// without touching the store.
func (h *Handler) DetectConflicts(w http.ResponseWriter, r *http.Request) {
	var req DetectConflictsRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	assignments := factory.Assignments(req.Assignments)

	pairs, err := schedule.DetectConflicts(assignments)
	if err != nil {
		h.writeDomainError(w, r, "Invalid assignments", err)
		return
	}

	ids := make([]string, 0)
	for _, a := range assignments {
		if len(schedule.ConflictsFor(pairs, a.ID)) > 0 {
			ids = append(ids, a.ID)
		}
	}

	writeJSON(w, r, http.StatusOK, DetectConflictsResponse{
		Conflicts:     toPairDTOs(pairs),
		ConflictedIDs: ids,
	})
}

// GetUtilization returns booked hours against capacity for one day.
func (h *Handler) GetUtilization(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = generic.Today().String()
	}

	rows, err := h.Planner.Utilization(r.Context(), date)
	if err != nil {
		h.writeDomainError(w, r, "Failed to compute utilization", err)
		return
	}

	dtos := make([]UtilizationDTO, len(rows))
	for i, u := range rows {
		dtos[i] = UtilizationDTO{
			ResourceID:  u.ResourceID,
			Name:        u.Name,
			Date:        u.Date,
			BookedHours: u.BookedHours,
			Capacity:    u.Capacity,
			Overbooked:  u.Overbooked,
		}
	}
	writeJSON(w, r, http.StatusOK, dtos)
}

// ListAudits returns the conflict auditor's run history, newest first.
func (h *Handler) ListAudits(w http.ResponseWriter, r *http.Request) {
	limit := defaultAuditLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, r, http.StatusBadRequest, "limit must be a non-negative integer", err)
			return
		}
		limit = n
	}

	runs, err := h.Store.ListAuditRuns(r.Context(), limit)
	if err != nil {
		h.writeDomainError(w, r, "Failed to list audit runs", err)
		return
	}

	dtos := make([]AuditRunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toAuditRunDTO(run)
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"runs": dtos})
}

// =============================================================================
// ESTIMATOR HANDLERS
// =============================================================================

func (h *Handler) ListEstimators(w http.ResponseWriter, r *http.Request) {
	estimators, err := h.Store.ListEstimators(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to list estimators", err)
		return
	}

	dtos := make([]EstimatorDTO, len(estimators))
	for i, e := range estimators {
		dtos[i] = toEstimatorDTO(e)
	}
	writeJSON(w, r, http.StatusOK, dtos)
}

func (h *Handler) CreateEstimator(w http.ResponseWriter, r *http.Request) {
	var req EstimatorDTO
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	e := req.toDomain()
	if err := e.Validate(); err != nil {
		h.writeDomainError(w, r, "Invalid estimator", err)
		return
	}

	ctx := r.Context()
	if _, err := h.Store.GetEstimator(ctx, e.ID); err == nil {
		h.writeDomainError(w, r, "Estimator already exists", fmt.Errorf("%w: %s", generic.ErrDuplicate, e.ID))
		return
	} else if !generic.IsNotFound(err) {
		h.writeDomainError(w, r, "Failed to check estimator", err)
		return
	}
	if err := h.Store.SaveEstimator(ctx, e); err != nil {
		h.writeDomainError(w, r, "Failed to create estimator", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toEstimatorDTO(e))
}

// =============================================================================
// ASSIGNMENT HANDLERS
// =============================================================================

// ListAssignments returns the calendar board for a date range. Each
// assignment carries a conflicted flag for highlighting.
func (h *Handler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	period, err := generic.ParsePeriod(q.Get("from"), q.Get("to"))
	if err != nil {
		h.writeDomainError(w, r, "Invalid date range", err)
		return
	}

	board, err := h.Planner.Board(r.Context(), period, q.Get("resource_id"))
	if err != nil {
		h.writeDomainError(w, r, "Failed to load assignments", err)
		return
	}

	conflicted := schedule.ConflictingIDs(board.Conflicts)
	dtos := make([]AssignmentDTO, len(board.Assignments))
	for i, a := range board.Assignments {
		dtos[i] = toAssignmentDTO(a, conflicted[a.ID])
	}

	resp := BoardResponse{
		From:        q.Get("from"),
		To:          q.Get("to"),
		Assignments: dtos,
		Conflicts:   toPairDTOs(board.Conflicts),
	}
	if !period.Start.IsZero() && !period.End.IsZero() {
		resp.Previous = toPeriodDTO(period.PreviousPeriod())
		resp.Next = toPeriodDTO(period.NextPeriod())
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// CreateAssignment schedules a new assignment. Conflicts are rejected with
// 409 unless allow_conflicts is set, in which case they are reported.
func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req CreateAssignmentRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	ctx := r.Context()
	if _, err := h.Store.GetAssignment(ctx, req.ID); err == nil {
		h.writeDomainError(w, r, "Assignment already exists", fmt.Errorf("%w: %s", generic.ErrDuplicate, req.ID))
		return
	} else if !generic.IsNotFound(err) {
		h.writeDomainError(w, r, "Failed to check assignment", err)
		return
	}

	a := req.Assignment()
	pairs, err := h.Planner.Schedule(ctx, a, req.AllowConflicts)
	if err != nil {
		h.writeDomainError(w, r, "Failed to schedule assignment", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, AssignmentResponse{
		Assignment: toAssignmentDTO(a, len(pairs) > 0),
		Conflicts:  toPairDTOs(pairs),
	})
}

// MoveAssignment reschedules an assignment to a new slot.
func (h *Handler) MoveAssignment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req MoveAssignmentRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	slot := schedule.Slot{ResourceID: req.ResourceID, Date: req.Date, StartHour: req.StartHour}
	moved, pairs, err := h.Planner.Move(r.Context(), id, slot, req.AllowConflicts)
	if err != nil {
		h.writeDomainError(w, r, "Failed to move assignment", err)
		return
	}

	writeJSON(w, r, http.StatusOK, AssignmentResponse{
		Assignment: toAssignmentDTO(*moved, len(pairs) > 0),
		Conflicts:  toPairDTOs(pairs),
	})
}

func (h *Handler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteAssignment(r.Context(), id); err != nil {
		h.writeDomainError(w, r, "Failed to delete assignment", err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// =============================================================================
// PRICING HANDLERS
// =============================================================================

// ComputePrice runs the pricing cascade on raw subtotals and parameters.
func (h *Handler) ComputePrice(w http.ResponseWriter, r *http.Request) {
	var req factory.InputJSON
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := pricing.Compute(req.Input())
	if err != nil {
		h.writeDomainError(w, r, "Invalid pricing input", err)
		return
	}
	writeJSON(w, r, http.StatusOK, toPricingResultDTO(result))
}

func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Store.ListProfiles(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to list profiles", err)
		return
	}

	dtos := make([]ProfileDTO, len(profiles))
	for i, p := range profiles {
		dtos[i] = toProfileDTO(p)
	}
	writeJSON(w, r, http.StatusOK, dtos)
}

// CreateProfile validates a JSON profile through the factory and stores it.
func (h *Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req factory.ProfileJSON
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	profile, err := h.ProfileFactory.FromJSON(req)
	if err != nil {
		h.writeDomainError(w, r, "Invalid profile configuration", err)
		return
	}

	ctx := r.Context()
	if _, err := h.Store.GetProfile(ctx, profile.ID); err == nil {
		h.writeDomainError(w, r, "Profile already exists", fmt.Errorf("%w: %s", generic.ErrDuplicate, profile.ID))
		return
	} else if !generic.IsNotFound(err) {
		h.writeDomainError(w, r, "Failed to check profile", err)
		return
	}
	if err := h.Store.SaveProfile(ctx, *profile); err != nil {
		h.writeDomainError(w, r, "Failed to create profile", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toProfileDTO(*profile))
}

// =============================================================================
// QUOTE HANDLERS
// =============================================================================

func (h *Handler) ListQuotes(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.Store.ListQuotes(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to list quotes", err)
		return
	}

	dtos := make([]QuoteDTO, len(quotes))
	for i, q := range quotes {
		dtos[i] = toQuoteDTO(q)
	}
	writeJSON(w, r, http.StatusOK, dtos)
}

func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	q, err := h.Store.GetQuote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, "Failed to get quote", err)
		return
	}
	writeJSON(w, r, http.StatusOK, toQuoteDTO(*q))
}

// CreateQuote creates a draft quote. A profile_id copies that profile's
// params over the posted ones.
func (h *Handler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	ctx := r.Context()
	if _, err := h.Store.GetQuote(ctx, req.ID); err == nil {
		h.writeDomainError(w, r, "Quote already exists", fmt.Errorf("%w: %s", generic.ErrDuplicate, req.ID))
		return
	} else if !generic.IsNotFound(err) {
		h.writeDomainError(w, r, "Failed to check quote", err)
		return
	}

	now := h.Now().UTC()
	q := pricing.Quote{
		ID:        req.ID,
		Status:    pricing.StatusDraft,
		CreatedAt: now,
	}
	if err := h.fillQuote(ctx, &q, req, now); err != nil {
		h.writeDomainError(w, r, "Invalid quote", err)
		return
	}
	if err := h.Store.SaveQuote(ctx, q); err != nil {
		h.writeDomainError(w, r, "Failed to create quote", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toQuoteDTO(q))
}

// UpdateQuote replaces items and params of a draft quote.
func (h *Handler) UpdateQuote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	q, err := h.Store.GetQuote(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, "Failed to get quote", err)
		return
	}
	if !q.Editable() {
		err := fmt.Errorf("%w: quote %s is %s", generic.ErrInvalidTransition, q.ID, q.Status)
		h.writeDomainError(w, r, "Only draft quotes can be edited", err)
		return
	}

	if err := h.fillQuote(ctx, q, req, h.Now().UTC()); err != nil {
		h.writeDomainError(w, r, "Invalid quote", err)
		return
	}
	if err := h.Store.SaveQuote(ctx, *q); err != nil {
		h.writeDomainError(w, r, "Failed to update quote", err)
		return
	}

	writeJSON(w, r, http.StatusOK, toQuoteDTO(*q))
}

// fillQuote copies the editable fields of req onto q and validates it.
func (h *Handler) fillQuote(ctx context.Context, q *pricing.Quote, req QuoteRequest, now time.Time) error {
	q.ProjectName = req.ProjectName
	q.ClientName = req.ClientName
	q.Items = factory.BOMItems(req.Items)
	q.Params = req.Params.Params()
	q.ProfileID = ""
	q.UpdatedAt = now

	if req.ProfileID != "" {
		profile, err := h.Store.GetProfile(ctx, req.ProfileID)
		if err != nil {
			return err
		}
		if err := profile.Apply(q); err != nil {
			return err
		}
	}
	return q.Validate()
}

// TransitionQuote moves a quote through draft -> sent -> accepted/rejected.
func (h *Handler) TransitionQuote(w http.ResponseWriter, r *http.Request) {
	const op = "api.TransitionQuote"

	var req StatusRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	q, err := h.Store.GetQuote(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, "Failed to get quote", err)
		return
	}

	from := q.Status
	if err := q.Transition(pricing.Status(req.Status), h.Now().UTC()); err != nil {
		h.writeDomainError(w, r, "Status change not allowed", err)
		return
	}
	if err := h.Store.SaveQuote(ctx, *q); err != nil {
		h.writeDomainError(w, r, "Failed to update quote", err)
		return
	}

	h.Log.Info("quote status changed",
		slog.String("op", op),
		slog.String("quote_id", q.ID),
		slog.String("from", string(from)),
		slog.String("to", string(q.Status)),
	)
	writeJSON(w, r, http.StatusOK, toQuoteDTO(*q))
}

// ExportQuote streams the quote as an .xlsx workbook.
func (h *Handler) ExportQuote(w http.ResponseWriter, r *http.Request) {
	q, err := h.Store.GetQuote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, "Failed to get quote", err)
		return
	}

	result, err := q.Price()
	if err != nil {
		h.writeDomainError(w, r, "Quote cannot be priced", err)
		return
	}

	data, err := export.QuoteWorkbook(*q, result)
	if err != nil {
		h.writeDomainError(w, r, "Failed to build workbook", err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "quote-"+q.ID+".xlsx"))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	render.Status(r, status)
	render.JSON(w, r, data)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, r, status, resp)
}

// writeDomainError maps domain errors onto HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, message string, err error) {
	var conflict *schedule.ConflictError
	switch {
	case errors.As(err, &conflict):
		writeJSON(w, r, http.StatusConflict, ErrorResponse{
			Error:     message,
			Details:   err.Error(),
			Conflicts: toPairDTOs(conflict.Pairs),
		})
	case generic.IsNotFound(err):
		writeError(w, r, http.StatusNotFound, message, err)
	case generic.IsDuplicate(err):
		writeError(w, r, http.StatusConflict, message, err)
	case generic.IsClientError(err):
		writeError(w, r, http.StatusBadRequest, message, err)
	default:
		h.Log.Error(message,
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeError(w, r, http.StatusInternalServerError, message, err)
	}
}
