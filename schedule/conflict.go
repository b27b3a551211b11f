package schedule

import (
	"fmt"
	"sort"

	"github.com/warp/panel-estimator/generic"
)

// =============================================================================
// CONFLICT PAIR
// =============================================================================

// ConflictPair is an unordered pair of overlapping assignment ids, stored
// with First < Second so (a,b) and (b,a) compare equal.
type ConflictPair struct {
	First  string
	Second string
}

// NewConflictPair orders the two ids canonically.
func NewConflictPair(a, b string) ConflictPair {
	if b < a {
		a, b = b, a
	}
	return ConflictPair{First: a, Second: b}
}

// Involves reports whether id is one side of the pair.
func (p ConflictPair) Involves(id string) bool {
	return p.First == id || p.Second == id
}

func (p ConflictPair) String() string {
	return fmt.Sprintf("(%s, %s)", p.First, p.Second)
}

// =============================================================================
// DETECTION
// =============================================================================

// Overlaps reports whether two distinct assignments collide: same estimator,
// same day, and intersecting half-open hour intervals.
func Overlaps(a, b Assignment) bool {
	if a.ID == b.ID {
		return false
	}
	if a.ResourceID != b.ResourceID || a.Date != b.Date {
		return false
	}
	return a.StartHour < b.End() && b.StartHour < a.End()
}

type slotKey struct {
	resourceID string
	date       string
}

// DetectConflicts returns every overlapping pair in assignments, sorted by
// First then Second. Invalid assignments and repeated ids fail the whole call
// with a *generic.ValidationError; there is no partial result.
func DetectConflicts(assignments []Assignment) ([]ConflictPair, error) {
	seen := make(map[string]bool, len(assignments))
	for i, a := range assignments {
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("assignment %d: %w", i, err)
		}
		if seen[a.ID] {
			return nil, &generic.ValidationError{Field: "id", Value: a.ID, Reason: "assignment ids must be unique"}
		}
		seen[a.ID] = true
	}

	// Only assignments sharing (estimator, day) can collide.
	groups := make(map[slotKey][]Assignment)
	for _, a := range assignments {
		k := slotKey{resourceID: a.ResourceID, date: a.Date}
		groups[k] = append(groups[k], a)
	}

	pairs := []ConflictPair{}
	for _, group := range groups {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				if Overlaps(group[i], group[j]) {
					pairs = append(pairs, NewConflictPair(group[i].ID, group[j].ID))
				}
			}
		}
	}

	sortPairs(pairs)
	return pairs, nil
}

func sortPairs(pairs []ConflictPair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].First != pairs[j].First {
			return pairs[i].First < pairs[j].First
		}
		return pairs[i].Second < pairs[j].Second
	})
}

// ConflictingIDs returns the set of ids that appear in any pair. The calendar
// uses it to highlight cards.
func ConflictingIDs(pairs []ConflictPair) map[string]bool {
	ids := make(map[string]bool, len(pairs)*2)
	for _, p := range pairs {
		ids[p.First] = true
		ids[p.Second] = true
	}
	return ids
}

// ConflictsFor filters pairs down to those involving id.
func ConflictsFor(pairs []ConflictPair, id string) []ConflictPair {
	out := []ConflictPair{}
	for _, p := range pairs {
		if p.Involves(id) {
			out = append(out, p)
		}
	}
	return out
}
