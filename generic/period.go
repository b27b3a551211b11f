package generic

// =============================================================================
// PERIOD - Inclusive date range used for calendar filtering
// =============================================================================

// Period is the inclusive range [Start, End] of calendar days.
//
// Examples:
//   - Week of 2025-05-12: Mon 12 - Sun 18
//   - A single day: Start == End
type Period struct {
	Start TimePoint
	End   TimePoint
}

// WeekOf returns the Monday-to-Sunday week containing day.
func WeekOf(day TimePoint) Period {
	start := StartOfWeek(day)
	return Period{Start: start, End: start.AddDays(6)}
}

// SingleDay returns the period covering only day.
func SingleDay(day TimePoint) Period {
	return Period{Start: day, End: day}
}

// ParsePeriod builds a period from two YYYY-MM-DD strings.
// An empty bound leaves that side of the period open.
func ParsePeriod(from, to string) (Period, error) {
	var p Period
	if from != "" {
		start, err := ParseDay(from)
		if err != nil {
			return Period{}, &ValidationError{Field: "from", Value: from, Reason: "must be a YYYY-MM-DD date"}
		}
		p.Start = start
	}
	if to != "" {
		end, err := ParseDay(to)
		if err != nil {
			return Period{}, &ValidationError{Field: "to", Value: to, Reason: "must be a YYYY-MM-DD date"}
		}
		p.End = end
	}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// Validate rejects periods that end before they start.
func (p Period) Validate() error {
	if !p.Start.IsZero() && !p.End.IsZero() && p.End.Before(p.Start) {
		return ErrInvalidPeriod
	}
	return nil
}

// Contains returns true if the day is within the period. A zero bound is
// treated as unbounded on that side.
func (p Period) Contains(t TimePoint) bool {
	if !p.Start.IsZero() && t.Before(p.Start) {
		return false
	}
	if !p.End.IsZero() && t.After(p.End) {
		return false
	}
	return true
}

// Days returns all days in a bounded period.
func (p Period) Days() []TimePoint {
	if p.Start.IsZero() || p.End.IsZero() {
		return nil
	}
	var days []TimePoint
	current := p.Start
	for current.BeforeOrEqual(p.End) {
		days = append(days, current)
		current = current.AddDays(1)
	}
	return days
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// NextPeriod returns the period of the same length following this one.
func (p Period) NextPeriod() Period {
	length := DaysBetween(p.Start, p.End)
	newStart := p.End.AddDays(1)
	return Period{Start: newStart, End: newStart.AddDays(length)}
}

// PreviousPeriod returns the period of the same length before this one.
func (p Period) PreviousPeriod() Period {
	length := DaysBetween(p.Start, p.End)
	newEnd := p.Start.AddDays(-1)
	return Period{Start: newEnd.AddDays(-length), End: newEnd}
}
