/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements the persistence ports (schedule.Store, schedule.AuditStore,
  pricing.QuoteStore) using SQLite so the estimator calendar and quotes
  survive restarts.

KEY TABLES:
  estimators:   The scheduled resources
  assignments:  Hour blocks per estimator and day
  audit_runs:   Results of the background conflict auditor
  quotes:       Quote header, pricing params and BOM lines (items_json)
  profiles:     Pricing profiles stored as factory JSON (config_json)

DATA FORMATS:
  - Days are stored as YYYY-MM-DD text, so range filters compare strings
  - Money and percentages are stored as decimal text, never REAL
  - Timestamps are RFC3339 UTC

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of database/sql.

WAL MODE:
  File databases are opened with WAL (Write-Ahead Logging). ":memory:"
  databases are pinned to one connection, since every new connection to
  ":memory:" would see an empty database.

USAGE:
  store, err := sqlite.New("./data/estimator.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - schedule/store.go, pricing/quote.go: Interface definitions
  - store/memory: In-memory implementation for tests
  - factory/profile.go: Profile JSON encoding
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/panel-estimator/factory"
	"github.com/warp/panel-estimator/generic"
	"github.com/warp/panel-estimator/pricing"
	"github.com/warp/panel-estimator/schedule"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db       *sql.DB
	mu       sync.RWMutex
	profiles *factory.ProfileFactory
}

var (
	_ schedule.Store      = (*Store)(nil)
	_ schedule.AuditStore = (*Store)(nil)
	_ pricing.QuoteStore  = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	dsn := dbPath + "?_foreign_keys=on&_journal_mode=WAL"
	if dbPath == ":memory:" {
		dsn = dbPath + "?_foreign_keys=on"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db, profiles: factory.NewProfileFactory()}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS estimators (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		daily_capacity_hours INTEGER NOT NULL DEFAULT 8,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS assignments (
		id TEXT PRIMARY KEY,
		resource_id TEXT NOT NULL,
		date TEXT NOT NULL,
		start_hour INTEGER NOT NULL,
		duration INTEGER NOT NULL CHECK (duration > 0),
		project_id TEXT,
		title TEXT,
		updated_at TEXT NOT NULL
	);

	-- Calendar views and placement checks read one estimator-day at a time
	CREATE INDEX IF NOT EXISTS idx_assignments_resource_date
		ON assignments(resource_id, date);
	CREATE INDEX IF NOT EXISTS idx_assignments_date
		ON assignments(date);

	CREATE TABLE IF NOT EXISTS audit_runs (
		id TEXT PRIMARY KEY,
		ran_at TEXT NOT NULL,
		assignment_count INTEGER NOT NULL,
		conflict_count INTEGER NOT NULL,
		pairs_json TEXT,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_audit_runs_ran_at
		ON audit_runs(ran_at DESC);

	CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		config_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS quotes (
		id TEXT PRIMARY KEY,
		project_name TEXT NOT NULL,
		client_name TEXT,
		status TEXT NOT NULL,
		profile_id TEXT,
		margin_mode TEXT NOT NULL,
		margin_percent TEXT NOT NULL,
		additional_costs TEXT NOT NULL,
		discount_percent TEXT NOT NULL,
		tax_rate_percent TEXT NOT NULL,
		items_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_quotes_status
		ON quotes(status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"assignments", "estimators", "audit_runs", "quotes", "profiles"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// ESTIMATOR STORE
// =============================================================================

// SaveEstimator inserts or updates an estimator.
func (s *Store) SaveEstimator(ctx context.Context, e schedule.Estimator) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO estimators (id, name, email, daily_capacity_hours, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			daily_capacity_hours = excluded.daily_capacity_hours
	`

	_, err := s.db.ExecContext(ctx, query,
		e.ID, e.Name, nullString(e.Email), e.DailyCapacityHours,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetEstimator retrieves an estimator by ID.
func (s *Store) GetEstimator(ctx context.Context, id string) (*schedule.Estimator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var e schedule.Estimator
	var email sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, daily_capacity_hours FROM estimators WHERE id = ?",
		id,
	).Scan(&e.ID, &e.Name, &email, &e.DailyCapacityHours)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, &generic.NotFoundError{Kind: "estimator", ID: id}
	}
	if err != nil {
		return nil, err
	}
	e.Email = email.String
	return &e, nil
}

// ListEstimators returns all estimators ordered by ID.
func (s *Store) ListEstimators(ctx context.Context) ([]schedule.Estimator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, email, daily_capacity_hours FROM estimators ORDER BY id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	estimators := []schedule.Estimator{}
	for rows.Next() {
		var e schedule.Estimator
		var email sql.NullString
		if err := rows.Scan(&e.ID, &e.Name, &email, &e.DailyCapacityHours); err != nil {
			return nil, err
		}
		e.Email = email.String
		estimators = append(estimators, e)
	}
	return estimators, rows.Err()
}

// =============================================================================
// ASSIGNMENT STORE
// =============================================================================

// SaveAssignment inserts or replaces an assignment.
func (s *Store) SaveAssignment(ctx context.Context, a schedule.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO assignments (id, resource_id, date, start_hour, duration, project_id, title, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			resource_id = excluded.resource_id,
			date = excluded.date,
			start_hour = excluded.start_hour,
			duration = excluded.duration,
			project_id = excluded.project_id,
			title = excluded.title,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		a.ID, a.ResourceID, a.Date, a.StartHour, a.Duration,
		nullString(a.ProjectID), nullString(a.Title),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

const assignmentColumns = "id, resource_id, date, start_hour, duration, project_id, title"

// GetAssignment retrieves an assignment by ID.
func (s *Store) GetAssignment(ctx context.Context, id string) (*schedule.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+assignmentColumns+" FROM assignments WHERE id = ?", id)
	a, err := scanAssignment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &generic.NotFoundError{Kind: "assignment", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// DeleteAssignment removes an assignment.
func (s *Store) DeleteAssignment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM assignments WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &generic.NotFoundError{Kind: "assignment", ID: id}
	}
	return nil
}

// ListAssignments returns assignments within the period, ordered for the calendar.
func (s *Store) ListAssignments(ctx context.Context, p generic.Period) ([]schedule.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var where []string
	var args []any
	if !p.Start.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, p.Start.String())
	}
	if !p.End.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, p.End.String())
	}

	query := "SELECT " + assignmentColumns + " FROM assignments"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date, resource_id, start_hour, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := []schedule.Assignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAssignment(row scanner) (schedule.Assignment, error) {
	var a schedule.Assignment
	var projectID, title sql.NullString
	if err := row.Scan(&a.ID, &a.ResourceID, &a.Date, &a.StartHour, &a.Duration, &projectID, &title); err != nil {
		return schedule.Assignment{}, err
	}
	a.ProjectID = projectID.String
	a.Title = title.String
	return a, nil
}

// =============================================================================
// AUDIT RUN STORE
// =============================================================================

// sortableTime is fixed width so ORDER BY on the text column is chronological.
const sortableTime = "2006-01-02T15:04:05.000000000Z07:00"

type pairRecord struct {
	First  string `json:"first"`
	Second string `json:"second"`
}

// SaveAuditRun records one auditor pass.
func (s *Store) SaveAuditRun(ctx context.Context, run schedule.AuditRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pairs := make([]pairRecord, len(run.Pairs))
	for i, p := range run.Pairs {
		pairs[i] = pairRecord{First: p.First, Second: p.Second}
	}
	pairsJSON, err := json.Marshal(pairs)
	if err != nil {
		return fmt.Errorf("failed to encode conflict pairs: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_runs (id, ran_at, assignment_count, conflict_count, pairs_json, error)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		run.ID, run.RanAt.UTC().Format(sortableTime),
		run.AssignmentCount, run.ConflictCount, string(pairsJSON), nullString(run.Error),
	)
	if isUniqueConstraintError(err) {
		return fmt.Errorf("audit run %s: %w", run.ID, generic.ErrDuplicate)
	}
	return err
}

// ListAuditRuns returns the most recent runs first. limit <= 0 means all.
func (s *Store) ListAuditRuns(ctx context.Context, limit int) ([]schedule.AuditRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, ran_at, assignment_count, conflict_count, pairs_json, error
		FROM audit_runs
		ORDER BY ran_at DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []schedule.AuditRun{}
	for rows.Next() {
		var run schedule.AuditRun
		var ranAt string
		var pairsJSON, runErr sql.NullString
		if err := rows.Scan(&run.ID, &ranAt, &run.AssignmentCount, &run.ConflictCount, &pairsJSON, &runErr); err != nil {
			return nil, err
		}
		if run.RanAt, err = parseTime("ran_at", sortableTime, ranAt); err != nil {
			return nil, fmt.Errorf("audit run %s: %w", run.ID, err)
		}
		run.Error = runErr.String

		if pairsJSON.Valid && pairsJSON.String != "" {
			var pairs []pairRecord
			if err := json.Unmarshal([]byte(pairsJSON.String), &pairs); err != nil {
				return nil, fmt.Errorf("failed to decode conflict pairs of run %s: %w", run.ID, err)
			}
			for _, p := range pairs {
				run.Pairs = append(run.Pairs, schedule.ConflictPair{First: p.First, Second: p.Second})
			}
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// =============================================================================
// PROFILE STORE
// =============================================================================

// SaveProfile stores a profile as factory JSON.
func (s *Store) SaveProfile(ctx context.Context, p pricing.Profile) error {
	configJSON, err := factory.MarshalProfile(p)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, name, config_json, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			config_json = excluded.config_json,
			updated_at = excluded.updated_at
	`, p.ID, p.Name, configJSON, time.Now().UTC().Format(time.RFC3339))
	return err
}

// GetProfile retrieves a profile by ID.
func (s *Store) GetProfile(ctx context.Context, id string) (*pricing.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var configJSON string
	err := s.db.QueryRowContext(ctx, "SELECT config_json FROM profiles WHERE id = ?", id).Scan(&configJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &generic.NotFoundError{Kind: "profile", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return s.profiles.ParseProfile(configJSON)
}

// ListProfiles returns all profiles ordered by ID.
func (s *Store) ListProfiles(ctx context.Context) ([]pricing.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT config_json FROM profiles ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []pricing.Profile{}
	for rows.Next() {
		var configJSON string
		if err := rows.Scan(&configJSON); err != nil {
			return nil, err
		}
		p, err := s.profiles.ParseProfile(configJSON)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

// =============================================================================
// QUOTE STORE
// =============================================================================

type itemRecord struct {
	PartNumber  string          `json:"part_number"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// SaveQuote inserts or replaces a quote.
func (s *Store) SaveQuote(ctx context.Context, q pricing.Quote) error {
	items := make([]itemRecord, len(q.Items))
	for i, it := range q.Items {
		items[i] = itemRecord{
			PartNumber:  it.PartNumber,
			Description: it.Description,
			Category:    string(it.Category),
			Quantity:    it.Quantity,
			UnitCost:    it.UnitCost,
		}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode quote items: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO quotes (id, project_name, client_name, status, profile_id,
			margin_mode, margin_percent, additional_costs, discount_percent, tax_rate_percent,
			items_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			project_name = excluded.project_name,
			client_name = excluded.client_name,
			status = excluded.status,
			profile_id = excluded.profile_id,
			margin_mode = excluded.margin_mode,
			margin_percent = excluded.margin_percent,
			additional_costs = excluded.additional_costs,
			discount_percent = excluded.discount_percent,
			tax_rate_percent = excluded.tax_rate_percent,
			items_json = excluded.items_json,
			updated_at = excluded.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		q.ID, q.ProjectName, nullString(q.ClientName), string(q.Status), nullString(q.ProfileID),
		string(q.Params.MarginMode), q.Params.MarginPercent.String(), q.Params.AdditionalCosts.String(),
		q.Params.DiscountPercent.String(), q.Params.TaxRatePercent.String(),
		string(itemsJSON),
		q.CreatedAt.UTC().Format(time.RFC3339), q.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

const quoteColumns = `id, project_name, client_name, status, profile_id,
	margin_mode, margin_percent, additional_costs, discount_percent, tax_rate_percent,
	items_json, created_at, updated_at`

// GetQuote retrieves a quote by ID.
func (s *Store) GetQuote(ctx context.Context, id string) (*pricing.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+quoteColumns+" FROM quotes WHERE id = ?", id)
	q, err := scanQuote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &generic.NotFoundError{Kind: "quote", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// ListQuotes returns all quotes, newest first.
func (s *Store) ListQuotes(ctx context.Context) ([]pricing.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+quoteColumns+" FROM quotes ORDER BY created_at DESC, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quotes := []pricing.Quote{}
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

func scanQuote(row scanner) (pricing.Quote, error) {
	var q pricing.Quote
	var clientName, profileID sql.NullString
	var status, mode, margin, additional, discount, tax, itemsJSON, createdAt, updatedAt string

	if err := row.Scan(
		&q.ID, &q.ProjectName, &clientName, &status, &profileID,
		&mode, &margin, &additional, &discount, &tax,
		&itemsJSON, &createdAt, &updatedAt,
	); err != nil {
		return pricing.Quote{}, err
	}

	q.ClientName = clientName.String
	q.ProfileID = profileID.String
	q.Status = pricing.Status(status)
	q.Params.MarginMode = pricing.MarginMode(mode)

	decimals := []struct {
		column string
		raw    string
		dst    *decimal.Decimal
	}{
		{"margin_percent", margin, &q.Params.MarginPercent},
		{"additional_costs", additional, &q.Params.AdditionalCosts},
		{"discount_percent", discount, &q.Params.DiscountPercent},
		{"tax_rate_percent", tax, &q.Params.TaxRatePercent},
	}
	for _, d := range decimals {
		v, err := decimal.NewFromString(d.raw)
		if err != nil {
			return pricing.Quote{}, fmt.Errorf("quote %s: corrupt %s %q: %w", q.ID, d.column, d.raw, err)
		}
		*d.dst = v
	}

	var err error
	if q.CreatedAt, err = parseTime("created_at", time.RFC3339, createdAt); err != nil {
		return pricing.Quote{}, fmt.Errorf("quote %s: %w", q.ID, err)
	}
	if q.UpdatedAt, err = parseTime("updated_at", time.RFC3339, updatedAt); err != nil {
		return pricing.Quote{}, fmt.Errorf("quote %s: %w", q.ID, err)
	}

	var items []itemRecord
	if err := json.Unmarshal([]byte(itemsJSON), &items); err != nil {
		return pricing.Quote{}, fmt.Errorf("failed to decode items of quote %s: %w", q.ID, err)
	}
	for _, it := range items {
		q.Items = append(q.Items, pricing.BOMItem{
			PartNumber:  it.PartNumber,
			Description: it.Description,
			Category:    pricing.Category(it.Category),
			Quantity:    it.Quantity,
			UnitCost:    it.UnitCost,
		})
	}
	return q, nil
}

// Helper functions

func parseTime(column, layout, raw string) (time.Time, error) {
	t, err := time.Parse(layout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt %s %q: %w", column, raw, err)
	}
	return t, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
