/*
scenarios_test.go - Tests for the demo scenarios and the conflict auditor

Tests for:
- Every scenario loads and produces the data it advertises
- Loading resets previous data
- The auditor records runs and notifies subscribers
*/
package api

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/panel-estimator/generic"
	"github.com/warp/panel-estimator/schedule"
	"github.com/warp/panel-estimator/store/memory"
)

// =============================================================================
// SCENARIOS
// =============================================================================

func TestScenarios_AllLoad(t *testing.T) {
	for _, s := range scenarios {
		t.Run(s.ID, func(t *testing.T) {
			_, router := newTestAPI(t)

			rec := do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: s.ID})

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			current := decode[ScenarioDTO](t, do(t, router, http.MethodGet, "/api/scenarios/current", nil))
			assert.Equal(t, s.ID, current.ID)
		})
	}
}

func TestScenario_Unknown(t *testing.T) {
	_, router := newTestAPI(t)

	rec := do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "nope"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(do(t, router, http.MethodGet, "/api/scenarios/current", nil).Body.String()))
}

func TestScenario_EstimatingWeek_OneDoubleBooking(t *testing.T) {
	h, router := newTestAPI(t)
	require.NoError(t, h.Load(context.Background(), "estimating-week"))

	week := generic.WeekOf(generic.Today())
	board := decode[BoardResponse](t, do(t, router, http.MethodGet,
		"/api/assignments?from="+week.Start.String()+"&to="+week.End.String(), nil))

	assert.Len(t, board.Assignments, 9)
	assert.Equal(t, []ConflictPairDTO{{First: "asg-104", Second: "asg-105"}}, board.Conflicts)

	estimators := decode[[]EstimatorDTO](t, do(t, router, http.MethodGet, "/api/estimators", nil))
	assert.Len(t, estimators, 3)
}

func TestScenario_OverbookedDay(t *testing.T) {
	h, router := newTestAPI(t)
	require.NoError(t, h.Load(context.Background(), "overbooked-day"))

	rows := decode[[]UtilizationDTO](t, do(t, router, http.MethodGet, "/api/schedule/utilization", nil))

	require.Len(t, rows, 1)
	assert.Equal(t, 14, rows[0].BookedHours)
	assert.True(t, rows[0].Overbooked)

	board := decode[BoardResponse](t, do(t, router, http.MethodGet, "/api/assignments?resource_id=est-dev", nil))
	assert.Equal(t, []ConflictPairDTO{
		{First: "asg-201", Second: "asg-202"},
		{First: "asg-201", Second: "asg-203"},
		{First: "asg-202", Second: "asg-203"},
	}, board.Conflicts)
}

func TestScenario_QuotePipeline(t *testing.T) {
	h, router := newTestAPI(t)
	require.NoError(t, h.Load(context.Background(), "quote-pipeline"))

	quotes := decode[[]QuoteDTO](t, do(t, router, http.MethodGet, "/api/quotes", nil))
	require.Len(t, quotes, 4)

	status := map[string]string{}
	for _, q := range quotes {
		status[q.ID] = q.Status
		assert.Empty(t, q.PriceError, q.ID)
	}
	assert.Equal(t, map[string]string{
		"Q-1001": "sent",
		"Q-1002": "accepted",
		"Q-1003": "draft",
		"Q-1004": "rejected",
	}, status)

	q := decode[QuoteDTO](t, do(t, router, http.MethodGet, "/api/quotes/Q-1001", nil))
	require.NotNil(t, q.Breakdown)
	assert.Equal(t, "12774.3", q.Breakdown.FinalValue.String())

	profiles := decode[[]ProfileDTO](t, do(t, router, http.MethodGet, "/api/profiles", nil))
	assert.Len(t, profiles, 3)
}

func TestScenario_LoadResetsPreviousData(t *testing.T) {
	h, router := newTestAPI(t)
	ctx := context.Background()
	require.NoError(t, h.Load(ctx, "full-demo"))

	require.NoError(t, h.Load(ctx, "overbooked-day"))

	quotes := decode[[]QuoteDTO](t, do(t, router, http.MethodGet, "/api/quotes", nil))
	assert.Empty(t, quotes)
	estimators := decode[[]EstimatorDTO](t, do(t, router, http.MethodGet, "/api/estimators", nil))
	assert.Len(t, estimators, 1)
}

// =============================================================================
// CONFLICT AUDITOR
// =============================================================================

func TestAuditor_RunOnce_RecordsAndNotifies(t *testing.T) {
	// GIVEN: A double booking written straight into the store
	store := memory.NewMemory()
	ctx := context.Background()
	require.NoError(t, store.SaveAssignment(ctx, schedule.Assignment{ID: "A", ResourceID: "r1", Date: "2025-05-12", StartHour: 9, Duration: 3}))
	require.NoError(t, store.SaveAssignment(ctx, schedule.Assignment{ID: "B", ResourceID: "r1", Date: "2025-05-12", StartHour: 10, Duration: 1}))

	auditor := NewConflictAuditor(store, nil)
	auditor.Now = func() time.Time { return time.Date(2025, 5, 12, 12, 0, 0, 0, time.UTC) }
	var notified []schedule.AuditRun
	auditor.OnAudit(func(run schedule.AuditRun) { notified = append(notified, run) })

	// WHEN: Auditing
	run := auditor.RunOnce(ctx)

	// THEN: The pair is recorded and subscribers see the same run
	assert.Equal(t, 2, run.AssignmentCount)
	assert.Equal(t, 1, run.ConflictCount)
	assert.Equal(t, []schedule.ConflictPair{{First: "A", Second: "B"}}, run.Pairs)
	assert.Empty(t, run.Error)
	require.Len(t, notified, 1)
	assert.Equal(t, run.ID, notified[0].ID)

	runs, err := store.ListAuditRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
}

func TestAuditor_InvalidStoredData_RecordsError(t *testing.T) {
	store := memory.NewMemory()
	ctx := context.Background()
	require.NoError(t, store.SaveAssignment(ctx, schedule.Assignment{ID: "A", ResourceID: "r1", Date: "2025-05-12", StartHour: 9, Duration: 0}))

	run := NewConflictAuditor(store, nil).RunOnce(ctx)

	assert.Contains(t, run.Error, "duration")
	assert.Equal(t, 0, run.ConflictCount)
	assert.NotNil(t, run.Pairs)
}

func TestAuditor_Run_StopsOnCancel(t *testing.T) {
	store := memory.NewMemory()
	auditor := NewConflictAuditor(store, nil)
	auditor.Interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	auditor.OnAudit(func(schedule.AuditRun) { cancel() })

	done := make(chan error, 1)
	go func() { done <- auditor.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("auditor did not stop after cancel")
	}

	runs, err := store.ListAuditRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1, "first pass runs immediately")
}

func TestAuditor_Disabled(t *testing.T) {
	auditor := NewConflictAuditor(memory.NewMemory(), nil)
	auditor.Enabled = false

	assert.NoError(t, auditor.Run(context.Background()))
}

func TestListAudits_Endpoint(t *testing.T) {
	h, router := newTestAPI(t)
	auditor := NewConflictAuditor(h.Store, nil)
	auditor.RunOnce(context.Background())
	auditor.RunOnce(context.Background())

	type auditsResponse struct {
		Runs []AuditRunDTO `json:"runs"`
	}
	body := decode[auditsResponse](t, do(t, router, http.MethodGet, "/api/schedule/audits?limit=1", nil))

	assert.Len(t, body.Runs, 1)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/schedule/audits?limit=-1", nil).Code)
}
