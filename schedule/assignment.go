/*
Package schedule implements estimator scheduling rules.

PURPOSE:
  Estimators are booked onto projects in blocks of whole hours on a given
  day. The calendar lets a planner drag those blocks around; this package
  holds the rules behind the calendar so they can be tested without it:
  - validating an assignment
  - detecting overlapping assignments (conflict.go)
  - moving an assignment and reporting what the move collides with (reschedule.go)
  - booked-hours utilization per estimator (utilization.go)

KEY CONCEPTS IN THIS FILE (assignment.go):
  Assignment:
    One block of work: estimator + day + [StartHour, StartHour+Duration).
    The interval is half-open, so 9-11 and 11-13 do not overlap.

  Estimator:
    The resource being scheduled. Only its ID takes part in conflict
    detection; capacity is used for utilization.

SEE ALSO:
  - conflict.go: DetectConflicts
  - store.go: Persistence port
*/
package schedule

import (
	"github.com/warp/panel-estimator/generic"
)

// HoursPerDay bounds an assignment's interval. Assignments never cross midnight.
const HoursPerDay = 24

// DefaultDailyCapacity is used when an estimator has no explicit capacity.
const DefaultDailyCapacity = 8

// =============================================================================
// ESTIMATOR - The scheduled resource
// =============================================================================

type Estimator struct {
	ID                 string
	Name               string
	Email              string
	DailyCapacityHours int
}

// Capacity returns the estimator's bookable hours per day.
func (e Estimator) Capacity() int {
	if e.DailyCapacityHours <= 0 {
		return DefaultDailyCapacity
	}
	return e.DailyCapacityHours
}

func (e Estimator) Validate() error {
	if e.ID == "" {
		return &generic.ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if e.Name == "" {
		return &generic.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if e.DailyCapacityHours < 0 || e.DailyCapacityHours > HoursPerDay {
		return &generic.ValidationError{Field: "daily_capacity_hours", Value: e.DailyCapacityHours, Reason: "must be between 0 and 24"}
	}
	return nil
}

// =============================================================================
// ASSIGNMENT - A block of hours booked for one estimator on one day
// =============================================================================

type Assignment struct {
	ID         string
	ResourceID string
	Date       string // YYYY-MM-DD, compared by exact equality
	StartHour  int
	Duration   int

	// Descriptive fields, not used by conflict detection.
	ProjectID string
	Title     string
}

// End returns the exclusive end hour.
func (a Assignment) End() int { return a.StartHour + a.Duration }

// Validate checks the assignment invariants. Zero and negative durations are
// rejected rather than treated as non-overlapping.
func (a Assignment) Validate() error {
	if a.ID == "" {
		return &generic.ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if a.ResourceID == "" {
		return &generic.ValidationError{Field: "resource_id", Reason: "must not be empty"}
	}
	if _, err := generic.ParseDay(a.Date); err != nil {
		return &generic.ValidationError{Field: "date", Value: a.Date, Reason: "must be a YYYY-MM-DD date"}
	}
	if a.Duration <= 0 {
		return &generic.ValidationError{Field: "duration", Value: a.Duration, Reason: "must be at least 1 hour"}
	}
	if a.StartHour < 0 || a.StartHour >= HoursPerDay {
		return &generic.ValidationError{Field: "start_hour", Value: a.StartHour, Reason: "must be between 0 and 23"}
	}
	if a.End() > HoursPerDay {
		return &generic.ValidationError{Field: "duration", Value: a.Duration, Reason: "assignment must end by hour 24"}
	}
	return nil
}
