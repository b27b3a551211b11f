package schedule

import (
	"context"
	"fmt"

	"github.com/warp/panel-estimator/generic"
)

// =============================================================================
// PLANNER - Store-backed scheduling operations
// =============================================================================

// Planner applies the scheduling rules to stored assignments. It is the
// stateful counterpart of the pure functions in this package: every check
// loads the estimator's day from the store and delegates to CheckPlacement.
type Planner struct {
	Store Store
}

func NewPlanner(store Store) *Planner {
	return &Planner{Store: store}
}

// ConflictError is returned when a write would create conflicts and the
// caller did not allow them.
type ConflictError struct {
	AssignmentID string
	Pairs        []ConflictPair
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("assignment %s conflicts with %d other assignment(s)", e.AssignmentID, len(e.Pairs))
}

// Schedule validates and stores a, returning its conflicts. When
// allowConflicts is false a conflicting assignment is not stored and a
// *ConflictError is returned.
func (p *Planner) Schedule(ctx context.Context, a Assignment, allowConflicts bool) ([]ConflictPair, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if _, err := p.Store.GetEstimator(ctx, a.ResourceID); err != nil {
		return nil, err
	}

	sameDay, err := p.sameDay(ctx, a.ResourceID, a.Date)
	if err != nil {
		return nil, err
	}
	pairs, err := CheckPlacement(sameDay, a)
	if err != nil {
		return nil, err
	}
	if len(pairs) > 0 && !allowConflicts {
		return pairs, &ConflictError{AssignmentID: a.ID, Pairs: pairs}
	}

	if err := p.Store.SaveAssignment(ctx, a); err != nil {
		return nil, fmt.Errorf("save assignment: %w", err)
	}
	return pairs, nil
}

// Move reschedules a stored assignment to slot.
func (p *Planner) Move(ctx context.Context, id string, to Slot, allowConflicts bool) (*Assignment, []ConflictPair, error) {
	current, err := p.Store.GetAssignment(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	moved := to.Place(*current)
	pairs, err := p.Schedule(ctx, moved, allowConflicts)
	if err != nil {
		return nil, pairs, err
	}
	return &moved, pairs, nil
}

// Board is a calendar view: the assignments in a period and their conflicts.
type Board struct {
	Period      generic.Period
	Assignments []Assignment
	Conflicts   []ConflictPair
}

// Board loads the assignments in period (optionally one estimator's) and runs
// detection over them.
func (p *Planner) Board(ctx context.Context, period generic.Period, resourceID string) (*Board, error) {
	all, err := p.Store.ListAssignments(ctx, period)
	if err != nil {
		return nil, err
	}
	if resourceID != "" {
		all = ForResource(all, resourceID)
	}
	SortAssignments(all)

	pairs, err := DetectConflicts(all)
	if err != nil {
		return nil, fmt.Errorf("stored assignments are invalid: %w", err)
	}
	return &Board{Period: period, Assignments: all, Conflicts: pairs}, nil
}

// Utilization reports booked hours for every estimator on date.
func (p *Planner) Utilization(ctx context.Context, date string) ([]Utilization, error) {
	day, err := generic.ParseDay(date)
	if err != nil {
		return nil, &generic.ValidationError{Field: "date", Value: date, Reason: "must be a YYYY-MM-DD date"}
	}
	estimators, err := p.Store.ListEstimators(ctx)
	if err != nil {
		return nil, err
	}
	assignments, err := p.Store.ListAssignments(ctx, generic.SingleDay(day))
	if err != nil {
		return nil, err
	}
	return DailyUtilization(assignments, estimators, date), nil
}

func (p *Planner) sameDay(ctx context.Context, resourceID, date string) ([]Assignment, error) {
	day, err := generic.ParseDay(date)
	if err != nil {
		return nil, err
	}
	assignments, err := p.Store.ListAssignments(ctx, generic.SingleDay(day))
	if err != nil {
		return nil, err
	}
	return ForResource(assignments, resourceID), nil
}
