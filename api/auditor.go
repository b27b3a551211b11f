/*
auditor.go - Background conflict auditor

PURPOSE:
  Periodically re-runs conflict detection over every stored assignment and
  records the outcome. Assignments created with allow_conflicts, or written
  straight into the database, still surface here.

DESIGN:
  - Run blocks until its context is cancelled; cmd/server runs it next to
    the HTTP server under one errgroup
  - Each pass is recorded as a schedule.AuditRun in the AuditStore
  - Subscribers registered with OnAudit are called after every pass, in
    registration order, on the auditor goroutine
  - A failing pass is recorded with its error and does not stop the loop

CONFIGURATION:
  - Interval: How often to audit (default: 5 minutes)
  - Enabled: Whether the auditor runs at all (default: true)

USAGE:
  auditor := NewConflictAuditor(store, logger)
  auditor.OnAudit(func(run schedule.AuditRun) { ... })
  err := auditor.Run(ctx)

SEE ALSO:
  - handlers.go: ListAudits endpoint
  - schedule/conflict.go: DetectConflicts
*/
package api

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warp/panel-estimator/generic"
	"github.com/warp/panel-estimator/schedule"
)

// DefaultAuditInterval is used when no interval is configured.
const DefaultAuditInterval = 5 * time.Minute

// AuditStore is what the auditor reads and writes.
type AuditStore interface {
	ListAssignments(ctx context.Context, p generic.Period) ([]schedule.Assignment, error)
	SaveAuditRun(ctx context.Context, run schedule.AuditRun) error
}

// ConflictAuditor periodically audits stored assignments for conflicts.
type ConflictAuditor struct {
	Store    AuditStore
	Interval time.Duration
	Enabled  bool
	Log      *slog.Logger

	// Now is the clock stamped on audit runs.
	Now func() time.Time

	mu          sync.RWMutex
	subscribers []func(schedule.AuditRun)
}

// NewConflictAuditor creates an enabled auditor with the default interval.
func NewConflictAuditor(store AuditStore, log *slog.Logger) *ConflictAuditor {
	if log == nil {
		log = slog.Default()
	}
	return &ConflictAuditor{
		Store:    store,
		Interval: DefaultAuditInterval,
		Enabled:  true,
		Log:      log.With(slog.String("component", "auditor")),
		Now:      time.Now,
	}
}

// OnAudit registers fn to be called with every completed run.
func (a *ConflictAuditor) OnAudit(fn func(schedule.AuditRun)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.subscribers = append(a.subscribers, fn)
}

// Run audits immediately, then on every tick until ctx is done. It returns
// nil on cancellation.
func (a *ConflictAuditor) Run(ctx context.Context) error {
	if !a.Enabled {
		a.Log.Info("disabled, not starting")
		return nil
	}

	interval := a.Interval
	if interval <= 0 {
		interval = DefaultAuditInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.Log.Info("started", slog.Duration("interval", interval))
	a.RunOnce(ctx)

	for {
		select {
		case <-ticker.C:
			a.RunOnce(ctx)
		case <-ctx.Done():
			a.Log.Info("stopped")
			return nil
		}
	}
}

// RunOnce performs a single audit pass, stores it and notifies subscribers.
func (a *ConflictAuditor) RunOnce(ctx context.Context) schedule.AuditRun {
	run := schedule.AuditRun{
		ID:    uuid.NewString(),
		RanAt: a.Now().UTC(),
		Pairs: []schedule.ConflictPair{},
	}

	assignments, err := a.Store.ListAssignments(ctx, generic.Period{})
	if err == nil {
		run.AssignmentCount = len(assignments)
		var pairs []schedule.ConflictPair
		pairs, err = schedule.DetectConflicts(assignments)
		if err == nil {
			run.Pairs = pairs
			run.ConflictCount = len(pairs)
		}
	}
	if err != nil {
		run.Error = err.Error()
		a.Log.Error("audit failed", slog.String("run_id", run.ID), slog.String("error", err.Error()))
	} else if run.ConflictCount > 0 {
		a.Log.Warn("conflicts found",
			slog.String("run_id", run.ID),
			slog.Int("assignments", run.AssignmentCount),
			slog.Int("conflicts", run.ConflictCount),
		)
	} else {
		a.Log.Debug("no conflicts", slog.String("run_id", run.ID), slog.Int("assignments", run.AssignmentCount))
	}

	if err := a.Store.SaveAuditRun(ctx, run); err != nil {
		a.Log.Error("failed to record audit run", slog.String("run_id", run.ID), slog.String("error", err.Error()))
	}

	a.mu.RLock()
	subscribers := slices.Clone(a.subscribers)
	a.mu.RUnlock()
	for _, fn := range subscribers {
		fn(run)
	}
	return run
}
