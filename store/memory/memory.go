// Package memory provides an in-memory implementation of the store ports.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/panel-estimator/generic"
	"github.com/warp/panel-estimator/pricing"
	"github.com/warp/panel-estimator/schedule"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	estimators  map[string]schedule.Estimator
	assignments map[string]schedule.Assignment
	audits      []schedule.AuditRun
	quotes      map[string]pricing.Quote
	profiles    map[string]pricing.Profile
}

var (
	_ schedule.Store      = (*Memory)(nil)
	_ schedule.AuditStore = (*Memory)(nil)
	_ pricing.QuoteStore  = (*Memory)(nil)
)

func NewMemory() *Memory {
	m := &Memory{}
	m.resetLocked()
	return m
}

func (m *Memory) resetLocked() {
	m.estimators = make(map[string]schedule.Estimator)
	m.assignments = make(map[string]schedule.Assignment)
	m.audits = nil
	m.quotes = make(map[string]pricing.Quote)
	m.profiles = make(map[string]pricing.Profile)
}

// Reset drops all data.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
	return nil
}

// =============================================================================
// ESTIMATORS & ASSIGNMENTS
// =============================================================================

func (m *Memory) SaveEstimator(_ context.Context, e schedule.Estimator) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.estimators[e.ID] = e
	return nil
}

func (m *Memory) GetEstimator(_ context.Context, id string) (*schedule.Estimator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.estimators[id]
	if !ok {
		return nil, &generic.NotFoundError{Kind: "estimator", ID: id}
	}
	return &e, nil
}

func (m *Memory) ListEstimators(_ context.Context) ([]schedule.Estimator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]schedule.Estimator, 0, len(m.estimators))
	for _, e := range m.estimators {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) SaveAssignment(_ context.Context, a schedule.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments[a.ID] = a
	return nil
}

func (m *Memory) GetAssignment(_ context.Context, id string) (*schedule.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assignments[id]
	if !ok {
		return nil, &generic.NotFoundError{Kind: "assignment", ID: id}
	}
	return &a, nil
}

func (m *Memory) DeleteAssignment(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assignments[id]; !ok {
		return &generic.NotFoundError{Kind: "assignment", ID: id}
	}
	delete(m.assignments, id)
	return nil
}

func (m *Memory) ListAssignments(_ context.Context, p generic.Period) ([]schedule.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := make([]schedule.Assignment, 0, len(m.assignments))
	for _, a := range m.assignments {
		all = append(all, a)
	}
	return schedule.InPeriod(all, p), nil
}

// =============================================================================
// AUDIT RUNS
// =============================================================================

func (m *Memory) SaveAuditRun(_ context.Context, run schedule.AuditRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audits = append(m.audits, run)
	return nil
}

func (m *Memory) ListAuditRuns(_ context.Context, limit int) ([]schedule.AuditRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]schedule.AuditRun, 0, len(m.audits))
	for i := len(m.audits) - 1; i >= 0; i-- {
		if limit > 0 && len(result) == limit {
			break
		}
		result = append(result, m.audits[i])
	}
	return result, nil
}

// =============================================================================
// QUOTES & PROFILES
// =============================================================================

func (m *Memory) SaveQuote(_ context.Context, q pricing.Quote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q.Items = append([]pricing.BOMItem(nil), q.Items...)
	m.quotes[q.ID] = q
	return nil
}

func (m *Memory) GetQuote(_ context.Context, id string) (*pricing.Quote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quotes[id]
	if !ok {
		return nil, &generic.NotFoundError{Kind: "quote", ID: id}
	}
	q.Items = append([]pricing.BOMItem(nil), q.Items...)
	return &q, nil
}

func (m *Memory) ListQuotes(_ context.Context) ([]pricing.Quote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]pricing.Quote, 0, len(m.quotes))
	for _, q := range m.quotes {
		q.Items = append([]pricing.BOMItem(nil), q.Items...)
		result = append(result, q)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *Memory) SaveProfile(_ context.Context, p pricing.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.ID] = p
	return nil
}

func (m *Memory) GetProfile(_ context.Context, id string) (*pricing.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, &generic.NotFoundError{Kind: "profile", ID: id}
	}
	return &p, nil
}

func (m *Memory) ListProfiles(_ context.Context) ([]pricing.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]pricing.Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}
