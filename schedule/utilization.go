package schedule

import "sort"

// Utilization is the booked hours of one estimator on one day.
type Utilization struct {
	ResourceID  string
	Name        string
	Date        string
	BookedHours int
	Capacity    int
	Overbooked  bool
}

// DailyUtilization sums booked hours per estimator for date. Every estimator
// is reported, including those with nothing booked; assignments for unknown
// estimators are reported with the default capacity. Overlapping hours are
// counted once per assignment, so a double-booked estimator shows more hours
// than the wall clock allows.
func DailyUtilization(assignments []Assignment, estimators []Estimator, date string) []Utilization {
	byID := make(map[string]*Utilization, len(estimators))
	for _, e := range estimators {
		byID[e.ID] = &Utilization{
			ResourceID: e.ID,
			Name:       e.Name,
			Date:       date,
			Capacity:   e.Capacity(),
		}
	}

	for _, a := range assignments {
		if a.Date != date {
			continue
		}
		u, ok := byID[a.ResourceID]
		if !ok {
			u = &Utilization{ResourceID: a.ResourceID, Date: date, Capacity: DefaultDailyCapacity}
			byID[a.ResourceID] = u
		}
		u.BookedHours += a.Duration
	}

	out := make([]Utilization, 0, len(byID))
	for _, u := range byID {
		u.Overbooked = u.BookedHours > u.Capacity
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ResourceID < out[j].ResourceID })
	return out
}
