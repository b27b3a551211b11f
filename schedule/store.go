package schedule

import (
	"context"
	"time"

	"github.com/warp/panel-estimator/generic"
)

// =============================================================================
// STORE - Persistence port for estimators and assignments
// =============================================================================

// Store persists estimators and assignments. Implementations:
//   - store/memory: in-memory, for tests and demo runs
//   - store/sqlite: SQLite
//
// Lookups of missing records return a *generic.NotFoundError.
type Store interface {
	SaveEstimator(ctx context.Context, e Estimator) error
	GetEstimator(ctx context.Context, id string) (*Estimator, error)
	ListEstimators(ctx context.Context) ([]Estimator, error)

	// SaveAssignment inserts or replaces by ID.
	SaveAssignment(ctx context.Context, a Assignment) error
	GetAssignment(ctx context.Context, id string) (*Assignment, error)
	DeleteAssignment(ctx context.Context, id string) error

	// ListAssignments returns assignments whose day falls in p. A zero
	// period returns everything.
	ListAssignments(ctx context.Context, p generic.Period) ([]Assignment, error)
}

// =============================================================================
// AUDIT RUNS - Results of the background conflict auditor
// =============================================================================

type AuditRun struct {
	ID              string
	RanAt           time.Time
	AssignmentCount int
	ConflictCount   int
	Pairs           []ConflictPair
	Error           string
}

// AuditStore records auditor runs, newest first on read.
type AuditStore interface {
	SaveAuditRun(ctx context.Context, run AuditRun) error
	ListAuditRuns(ctx context.Context, limit int) ([]AuditRun, error)
}
