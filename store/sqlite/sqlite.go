/*
Package sqlite provides a SQLite-backed implementation of payroll.Store.

PURPOSE:
  Keeps named rate regimes, saved schedules and the history of computed
  payroll runs. The engine never touches the database; handlers load
  inputs from here and append results.

APPEND-ONLY ENFORCEMENT:
  The runs table is a history:
  - No UPDATE statements on runs
  - No DELETE statements on runs (Reset aside)
  - A run id can be written once

KEY TABLES:
  regimes:   rate tables, decimals stored as TEXT
  schedules: schedule JSON as edited by the presentation layer
  runs:      frozen inputs and outputs, per-day breakdown as JSON

DECIMALS:
  Money is stored as TEXT and parsed back with decimal.NewFromString, so no
  value ever round-trips through float64.

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal().Err(err).Msg("open store")
  }
  defer store.Close()

SEE ALSO:
  - payroll/store.go: interface
  - payroll/store/memory.go: in-memory implementation for testing
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
	"github.com/warp/payroll-engine/payroll"
)

// ErrDuplicateRun is returned when a run id is appended twice.
var ErrDuplicateRun = errors.New("run already recorded")

// runTimeLayout keeps every fractional digit so created_at sorts as text.
const runTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements payroll.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ payroll.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
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

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS regimes (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		base_rate TEXT NOT NULL,
		night_rate TEXT NOT NULL,
		holiday_rate TEXT NOT NULL,
		weekend_rate TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS schedules (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Runs (append-only history)
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		schedule_id TEXT,
		regime_id TEXT,
		label TEXT,
		rates_json TEXT NOT NULL,
		withholding_json TEXT NOT NULL,
		gross TEXT NOT NULL,
		net TEXT NOT NULL,
		hours TEXT NOT NULL,
		worked_minutes INTEGER NOT NULL,
		days_json TEXT NOT NULL,
		anomalies_json TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at
		ON runs(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_schedule
		ON runs(schedule_id) WHERE schedule_id IS NOT NULL;
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// REGIMES
// =============================================================================

// SaveRegime inserts or replaces a regime.
func (s *Store) SaveRegime(ctx context.Context, r payroll.RegimeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO regimes (id, name, base_rate, night_rate, holiday_rate, weekend_rate, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Name,
		r.Rates.Base.String(), r.Rates.Night.String(), r.Rates.Holiday.String(), r.Rates.Weekend.String(),
		r.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save regime: %w", err)
	}
	return nil
}

func (s *Store) GetRegime(ctx context.Context, id string) (*payroll.RegimeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, base_rate, night_rate, holiday_rate, weekend_rate, created_at
		FROM regimes WHERE id = ?`, id)
	r, err := scanRegime(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, payroll.ErrRegimeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) ListRegimes(ctx context.Context) ([]payroll.RegimeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, base_rate, night_rate, holiday_rate, weekend_rate, created_at
		FROM regimes ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []payroll.RegimeRecord
	for rows.Next() {
		r, err := scanRegime(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRegime(row scanner) (payroll.RegimeRecord, error) {
	var r payroll.RegimeRecord
	var base, night, holiday, weekend, createdAt string
	if err := row.Scan(&r.ID, &r.Name, &base, &night, &holiday, &weekend, &createdAt); err != nil {
		return r, err
	}

	var err error
	if r.Rates.Base, err = decimal.NewFromString(base); err != nil {
		return r, fmt.Errorf("regime %s: base rate: %w", r.ID, err)
	}
	if r.Rates.Night, err = decimal.NewFromString(night); err != nil {
		return r, fmt.Errorf("regime %s: night rate: %w", r.ID, err)
	}
	if r.Rates.Holiday, err = decimal.NewFromString(holiday); err != nil {
		return r, fmt.Errorf("regime %s: holiday rate: %w", r.ID, err)
	}
	if r.Rates.Weekend, err = decimal.NewFromString(weekend); err != nil {
		return r, fmt.Errorf("regime %s: weekend rate: %w", r.ID, err)
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return r, nil
}

// =============================================================================
// SCHEDULES
// =============================================================================

func (s *Store) SaveSchedule(ctx context.Context, sched payroll.ScheduleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sched.CreatedAt.IsZero() {
		sched.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO schedules (id, name, config_json, created_at)
		VALUES (?, ?, ?, ?)`,
		sched.ID, sched.Name, sched.ConfigJSON, sched.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save schedule: %w", err)
	}
	return nil
}

func (s *Store) GetSchedule(ctx context.Context, id string) (*payroll.ScheduleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sched payroll.ScheduleRecord
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, config_json, created_at FROM schedules WHERE id = ?`, id,
	).Scan(&sched.ID, &sched.Name, &sched.ConfigJSON, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, payroll.ErrScheduleNotFound
	}
	if err != nil {
		return nil, err
	}
	sched.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &sched, nil
}

func (s *Store) ListSchedules(ctx context.Context) ([]payroll.ScheduleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, config_json, created_at FROM schedules ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []payroll.ScheduleRecord
	for rows.Next() {
		var sched payroll.ScheduleRecord
		var createdAt string
		if err := rows.Scan(&sched.ID, &sched.Name, &sched.ConfigJSON, &createdAt); err != nil {
			return nil, err
		}
		sched.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, sched)
	}
	return out, rows.Err()
}

// =============================================================================
// RUNS (append-only)
// =============================================================================

// AppendRun persists a run. This is the ONLY write for runs.
func (s *Store) AppendRun(ctx context.Context, run payroll.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ratesJSON, err := json.Marshal(run.Rates)
	if err != nil {
		return err
	}
	withholdingJSON, err := json.Marshal(run.Withholding)
	if err != nil {
		return err
	}
	daysJSON, err := json.Marshal(run.Days)
	if err != nil {
		return err
	}
	anomaliesJSON, err := json.Marshal(run.Anomalies)
	if err != nil {
		return err
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, schedule_id, regime_id, label, rates_json, withholding_json,
			gross, net, hours, worked_minutes, days_json, anomalies_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, nullString(run.ScheduleID), nullString(run.RegimeID), nullString(run.Label),
		string(ratesJSON), string(withholdingJSON),
		run.Gross.String(), run.Net.String(), run.Hours.String(), run.WorkedMinutes,
		string(daysJSON), string(anomaliesJSON),
		run.CreatedAt.UTC().Format(runTimeLayout),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicateRun
		}
		return fmt.Errorf("failed to append run: %w", err)
	}
	return nil
}

const runColumns = `id, schedule_id, regime_id, label, rates_json, withholding_json,
	gross, net, hours, worked_minutes, days_json, anomalies_json, created_at`

func (s *Store) GetRun(ctx context.Context, id string) (*payroll.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, payroll.ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns the newest runs first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]payroll.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []payroll.RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func scanRun(row scanner) (payroll.RunRecord, error) {
	var run payroll.RunRecord
	var scheduleID, regimeID, label, anomaliesJSON sql.NullString
	var ratesJSON, withholdingJSON, gross, net, hours, daysJSON, createdAt string

	err := row.Scan(&run.ID, &scheduleID, &regimeID, &label, &ratesJSON, &withholdingJSON,
		&gross, &net, &hours, &run.WorkedMinutes, &daysJSON, &anomaliesJSON, &createdAt)
	if err != nil {
		return run, err
	}

	run.ScheduleID = scheduleID.String
	run.RegimeID = regimeID.String
	run.Label = label.String

	if err := json.Unmarshal([]byte(ratesJSON), &run.Rates); err != nil {
		return run, fmt.Errorf("run %s: rates: %w", run.ID, err)
	}
	if err := json.Unmarshal([]byte(withholdingJSON), &run.Withholding); err != nil {
		return run, fmt.Errorf("run %s: withholding: %w", run.ID, err)
	}
	if err := json.Unmarshal([]byte(daysJSON), &run.Days); err != nil {
		return run, fmt.Errorf("run %s: days: %w", run.ID, err)
	}
	if anomaliesJSON.Valid && anomaliesJSON.String != "" {
		if err := json.Unmarshal([]byte(anomaliesJSON.String), &run.Anomalies); err != nil {
			return run, fmt.Errorf("run %s: anomalies: %w", run.ID, err)
		}
	}

	if run.Gross, err = decimal.NewFromString(gross); err != nil {
		return run, fmt.Errorf("run %s: gross: %w", run.ID, err)
	}
	if run.Net, err = decimal.NewFromString(net); err != nil {
		return run, fmt.Errorf("run %s: net: %w", run.ID, err)
	}
	if run.Hours, err = decimal.NewFromString(hours); err != nil {
		return run, fmt.Errorf("run %s: hours: %w", run.ID, err)
	}
	run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return run, nil
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset clears all data (for demo purposes).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM runs;
		DELETE FROM schedules;
		DELETE FROM regimes;
	`)
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
