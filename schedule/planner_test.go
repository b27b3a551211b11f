package schedule_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/panel-estimator/generic"
	"github.com/warp/panel-estimator/schedule"
	"github.com/warp/panel-estimator/store/memory"
)

func newTestPlanner(t *testing.T) (*schedule.Planner, *memory.Memory) {
	t.Helper()
	store := memory.NewMemory()
	ctx := context.Background()
	require.NoError(t, store.SaveEstimator(ctx, schedule.Estimator{ID: "r1", Name: "Ana"}))
	require.NoError(t, store.SaveEstimator(ctx, schedule.Estimator{ID: "r2", Name: "Ben", DailyCapacityHours: 4}))
	return schedule.NewPlanner(store), store
}

func TestPlanner_Schedule_ConflictRejectedByDefault(t *testing.T) {
	// GIVEN: r1 booked 9-12
	planner, store := newTestPlanner(t)
	ctx := context.Background()
	_, err := planner.Schedule(ctx, asg("A", "r1", "2025-05-12", 9, 3), false)
	require.NoError(t, err)

	// WHEN: Booking 10-12 without allowing conflicts
	pairs, err := planner.Schedule(ctx, asg("B", "r1", "2025-05-12", 10, 2), false)

	// THEN: ConflictError with the pair, nothing stored
	var conflict *schedule.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "B", conflict.AssignmentID)
	assert.Equal(t, []schedule.ConflictPair{pair("A", "B")}, conflict.Pairs)
	assert.Equal(t, conflict.Pairs, pairs)

	_, err = store.GetAssignment(ctx, "B")
	assert.True(t, generic.IsNotFound(err))
}

func TestPlanner_Schedule_ConflictAllowed(t *testing.T) {
	planner, store := newTestPlanner(t)
	ctx := context.Background()
	_, err := planner.Schedule(ctx, asg("A", "r1", "2025-05-12", 9, 3), false)
	require.NoError(t, err)

	pairs, err := planner.Schedule(ctx, asg("B", "r1", "2025-05-12", 10, 2), true)

	require.NoError(t, err)
	assert.Equal(t, []schedule.ConflictPair{pair("A", "B")}, pairs)
	stored, err := store.GetAssignment(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, 10, stored.StartHour)
}

func TestPlanner_Schedule_UnknownEstimator(t *testing.T) {
	planner, _ := newTestPlanner(t)

	_, err := planner.Schedule(context.Background(), asg("A", "nobody", "2025-05-12", 9, 3), false)

	assert.True(t, generic.IsNotFound(err))
}

func TestPlanner_Schedule_OtherEstimatorsIgnored(t *testing.T) {
	planner, _ := newTestPlanner(t)
	ctx := context.Background()
	_, err := planner.Schedule(ctx, asg("A", "r1", "2025-05-12", 9, 3), false)
	require.NoError(t, err)

	pairs, err := planner.Schedule(ctx, asg("B", "r2", "2025-05-12", 9, 3), false)

	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestPlanner_Move(t *testing.T) {
	// GIVEN: A 9-11 and B 13-15 on r1
	planner, store := newTestPlanner(t)
	ctx := context.Background()
	_, err := planner.Schedule(ctx, asg("A", "r1", "2025-05-12", 9, 2), false)
	require.NoError(t, err)
	_, err = planner.Schedule(ctx, asg("B", "r1", "2025-05-12", 13, 2), false)
	require.NoError(t, err)

	// WHEN: A is dropped onto B
	_, _, err = planner.Move(ctx, "A", schedule.Slot{ResourceID: "r1", Date: "2025-05-12", StartHour: 14}, false)

	// THEN: Rejected and A stays put
	var conflict *schedule.ConflictError
	require.ErrorAs(t, err, &conflict)
	stored, err := store.GetAssignment(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 9, stored.StartHour)

	// WHEN: A is moved to r2 instead
	moved, pairs, err := planner.Move(ctx, "A", schedule.Slot{ResourceID: "r2", Date: "2025-05-12", StartHour: 14}, false)

	// THEN: Stored in the new slot
	require.NoError(t, err)
	assert.Empty(t, pairs)
	assert.Equal(t, "r2", moved.ResourceID)
	stored, err = store.GetAssignment(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "r2", stored.ResourceID)
	assert.Equal(t, 14, stored.StartHour)
}

func TestPlanner_Move_UnknownAssignment(t *testing.T) {
	planner, _ := newTestPlanner(t)

	_, _, err := planner.Move(context.Background(), "missing", schedule.Slot{ResourceID: "r1", Date: "2025-05-12", StartHour: 9}, false)

	assert.True(t, generic.IsNotFound(err))
}

func TestPlanner_Board(t *testing.T) {
	// GIVEN: A conflict on Monday and an unrelated booking the next week
	planner, _ := newTestPlanner(t)
	ctx := context.Background()
	for _, a := range []schedule.Assignment{
		asg("A", "r1", "2025-05-12", 9, 3),
		asg("B", "r1", "2025-05-12", 10, 2),
		asg("C", "r2", "2025-05-13", 9, 1),
		asg("D", "r1", "2025-05-20", 9, 1),
	} {
		_, err := planner.Schedule(ctx, a, true)
		require.NoError(t, err)
	}

	// WHEN: Loading the week of May 12
	board, err := planner.Board(ctx, generic.WeekOf(generic.NewTimePoint(2025, 5, 12)), "")

	// THEN: Three assignments, one conflict
	require.NoError(t, err)
	assert.Len(t, board.Assignments, 3)
	assert.Equal(t, []schedule.ConflictPair{pair("A", "B")}, board.Conflicts)

	// WHEN: Filtering to r2
	board, err = planner.Board(ctx, generic.WeekOf(generic.NewTimePoint(2025, 5, 12)), "r2")

	require.NoError(t, err)
	require.Len(t, board.Assignments, 1)
	assert.Equal(t, "C", board.Assignments[0].ID)
	assert.Empty(t, board.Conflicts)
}

func TestPlanner_Utilization(t *testing.T) {
	planner, _ := newTestPlanner(t)
	ctx := context.Background()
	_, err := planner.Schedule(ctx, asg("A", "r2", "2025-05-12", 9, 5), false)
	require.NoError(t, err)

	rows, err := planner.Utilization(ctx, "2025-05-12")

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "r2", rows[1].ResourceID)
	assert.True(t, rows[1].Overbooked)
	assert.False(t, rows[0].Overbooked)

	_, err = planner.Utilization(ctx, "not-a-date")
	assert.ErrorIs(t, err, generic.ErrValidation)
}
