package schedule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/panel-estimator/generic"
	"github.com/warp/panel-estimator/schedule"
)

// =============================================================================
// RESCHEDULE (drag and drop)
// =============================================================================

func TestReschedule_IntoFreeSlot_NoConflicts(t *testing.T) {
	// GIVEN: Two assignments on Monday for r1
	existing := []schedule.Assignment{
		asg("A", "r1", "2025-05-12", 9, 2),
		asg("B", "r1", "2025-05-12", 13, 2),
	}

	// WHEN: A is dragged to Tuesday 9:00
	updated, conflicts, err := schedule.Reschedule(existing, "A", schedule.Slot{ResourceID: "r1", Date: "2025-05-13", StartHour: 9})

	// THEN: A moved, duration kept, no conflicts, input untouched
	require.NoError(t, err)
	assert.Empty(t, conflicts)
	assert.Equal(t, asg("A", "r1", "2025-05-13", 9, 2), updated[0])
	assert.Equal(t, "2025-05-12", existing[0].Date)
}

func TestReschedule_OntoBookedSlot_ReportsConflict(t *testing.T) {
	// GIVEN: B booked 13-15
	existing := []schedule.Assignment{
		asg("A", "r1", "2025-05-12", 9, 2),
		asg("B", "r1", "2025-05-12", 13, 2),
	}

	// WHEN: A is dropped at 14:00
	updated, conflicts, err := schedule.Reschedule(existing, "A", schedule.Slot{ResourceID: "r1", Date: "2025-05-12", StartHour: 14})

	// THEN: The move is returned with the conflict for the caller to decide
	require.NoError(t, err)
	assert.Equal(t, []schedule.ConflictPair{pair("A", "B")}, conflicts)
	assert.Equal(t, 14, updated[0].StartHour)
}

func TestReschedule_OverlappingOwnOldPosition_NotAConflict(t *testing.T) {
	existing := []schedule.Assignment{asg("A", "r1", "2025-05-12", 9, 4)}

	_, conflicts, err := schedule.Reschedule(existing, "A", schedule.Slot{ResourceID: "r1", Date: "2025-05-12", StartHour: 10})

	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestReschedule_UnknownID_NotFound(t *testing.T) {
	_, _, err := schedule.Reschedule(nil, "missing", schedule.Slot{ResourceID: "r1", Date: "2025-05-12", StartHour: 9})

	assert.True(t, generic.IsNotFound(err))
}

func TestReschedule_PastMidnight_Rejected(t *testing.T) {
	existing := []schedule.Assignment{asg("A", "r1", "2025-05-12", 9, 4)}

	_, _, err := schedule.Reschedule(existing, "A", schedule.Slot{ResourceID: "r1", Date: "2025-05-12", StartHour: 22})

	assert.ErrorIs(t, err, generic.ErrValidation)
}

// =============================================================================
// CALENDAR FILTERS
// =============================================================================

func TestInPeriod_FiltersAndSorts(t *testing.T) {
	input := []schedule.Assignment{
		asg("late", "r1", "2025-05-19", 9, 1),
		asg("b", "r2", "2025-05-12", 8, 1),
		asg("a", "r1", "2025-05-12", 10, 1),
		asg("early", "r1", "2025-05-11", 9, 1),
		asg("c", "r1", "2025-05-12", 8, 1),
	}
	week := generic.WeekOf(generic.NewTimePoint(2025, 5, 14))

	got := schedule.InPeriod(input, week)

	ids := make([]string, len(got))
	for i, a := range got {
		ids[i] = a.ID
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestInPeriod_OpenPeriod_ReturnsAll(t *testing.T) {
	input := []schedule.Assignment{
		asg("a", "r1", "2025-05-12", 10, 1),
		asg("b", "r1", "2030-01-01", 10, 1),
	}

	assert.Len(t, schedule.InPeriod(input, generic.Period{}), 2)
}

func TestForResource(t *testing.T) {
	input := []schedule.Assignment{
		asg("a", "r1", "2025-05-12", 10, 1),
		asg("b", "r2", "2025-05-12", 10, 1),
	}

	got := schedule.ForResource(input, "r2")

	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
}

// =============================================================================
// UTILIZATION
// =============================================================================

func TestDailyUtilization(t *testing.T) {
	// GIVEN: Ana (8h) booked 5h+4h, Ben (6h) booked 2h, Chloe nothing, and an unknown estimator
	estimators := []schedule.Estimator{
		{ID: "ana", Name: "Ana", DailyCapacityHours: 8},
		{ID: "ben", Name: "Ben", DailyCapacityHours: 6},
		{ID: "chloe", Name: "Chloe"},
	}
	assignments := []schedule.Assignment{
		asg("1", "ana", "2025-05-12", 7, 5),
		asg("2", "ana", "2025-05-12", 10, 4),
		asg("3", "ben", "2025-05-12", 9, 2),
		asg("4", "ben", "2025-05-13", 9, 8),
		asg("5", "ghost", "2025-05-12", 9, 1),
	}

	// WHEN: Computing Monday's utilization
	got := schedule.DailyUtilization(assignments, estimators, "2025-05-12")

	// THEN: Everyone listed by id, Ana overbooked
	assert.Equal(t, []schedule.Utilization{
		{ResourceID: "ana", Name: "Ana", Date: "2025-05-12", BookedHours: 9, Capacity: 8, Overbooked: true},
		{ResourceID: "ben", Name: "Ben", Date: "2025-05-12", BookedHours: 2, Capacity: 6},
		{ResourceID: "chloe", Name: "Chloe", Date: "2025-05-12", BookedHours: 0, Capacity: schedule.DefaultDailyCapacity},
		{ResourceID: "ghost", Date: "2025-05-12", BookedHours: 1, Capacity: schedule.DefaultDailyCapacity},
	}, got)
}

func TestEstimator_Validate(t *testing.T) {
	assert.NoError(t, schedule.Estimator{ID: "e", Name: "E"}.Validate())
	assert.ErrorIs(t, schedule.Estimator{Name: "E"}.Validate(), generic.ErrValidation)
	assert.ErrorIs(t, schedule.Estimator{ID: "e"}.Validate(), generic.ErrValidation)
	assert.ErrorIs(t, schedule.Estimator{ID: "e", Name: "E", DailyCapacityHours: 25}.Validate(), generic.ErrValidation)
}
