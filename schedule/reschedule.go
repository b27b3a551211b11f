package schedule

import (
	"sort"

	"github.com/warp/panel-estimator/generic"
)

// =============================================================================
// SLOT - Drop target on the calendar
// =============================================================================

// Slot is where an assignment is dropped: estimator row, day column, start hour.
// Duration is kept from the moved assignment.
type Slot struct {
	ResourceID string
	Date       string
	StartHour  int
}

// Place returns a copy of a moved to the slot.
func (s Slot) Place(a Assignment) Assignment {
	a.ResourceID = s.ResourceID
	a.Date = s.Date
	a.StartHour = s.StartHour
	return a
}

// CheckPlacement returns the conflicts candidate would have against existing.
// An existing assignment with the candidate's id is ignored, so the same call
// works for inserts and updates.
func CheckPlacement(existing []Assignment, candidate Assignment) ([]ConflictPair, error) {
	if err := candidate.Validate(); err != nil {
		return nil, err
	}
	pairs := []ConflictPair{}
	for _, a := range existing {
		if Overlaps(a, candidate) {
			pairs = append(pairs, NewConflictPair(a.ID, candidate.ID))
		}
	}
	sortPairs(pairs)
	return pairs, nil
}

// Reschedule moves assignment id to slot and returns the updated list along
// with the conflicts involving the moved assignment. existing is not modified.
// The move is returned even when it conflicts; whether to accept it is the
// caller's decision.
func Reschedule(existing []Assignment, id string, to Slot) ([]Assignment, []ConflictPair, error) {
	idx := -1
	for i, a := range existing {
		if a.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil, &generic.NotFoundError{Kind: "assignment", ID: id}
	}

	moved := to.Place(existing[idx])
	conflicts, err := CheckPlacement(existing, moved)
	if err != nil {
		return nil, nil, err
	}

	updated := make([]Assignment, len(existing))
	copy(updated, existing)
	updated[idx] = moved
	return updated, conflicts, nil
}

// =============================================================================
// FILTERS - Calendar views
// =============================================================================

// InPeriod keeps assignments whose day falls within p, ordered by day,
// estimator and start hour. Assignments with unparseable dates are dropped.
func InPeriod(assignments []Assignment, p generic.Period) []Assignment {
	out := []Assignment{}
	for _, a := range assignments {
		day, err := generic.ParseDay(a.Date)
		if err != nil {
			continue
		}
		if p.Contains(day) {
			out = append(out, a)
		}
	}
	SortAssignments(out)
	return out
}

// ForResource keeps the assignments of one estimator.
func ForResource(assignments []Assignment, resourceID string) []Assignment {
	out := []Assignment{}
	for _, a := range assignments {
		if a.ResourceID == resourceID {
			out = append(out, a)
		}
	}
	return out
}

// SortAssignments orders by date, estimator, start hour and id.
func SortAssignments(assignments []Assignment) {
	sort.Slice(assignments, func(i, j int) bool {
		a, b := assignments[i], assignments[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.ResourceID != b.ResourceID {
			return a.ResourceID < b.ResourceID
		}
		if a.StartHour != b.StartHour {
			return a.StartHour < b.StartHour
		}
		return a.ID < b.ID
	})
}
