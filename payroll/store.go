/*
store.go - Persistence interface for regimes, schedules and payroll runs

PURPOSE:
  The engine itself holds no state. Everything worth keeping between
  requests lives behind Store: named rate regimes, saved schedules, and the
  history of computed payroll runs.

APPEND-ONLY RUNS:
  A RunRecord is a frozen copy of one computation. Runs are appended and
  read, never updated or deleted (Reset aside, which wipes everything in
  development).

IMPLEMENTATIONS:
  - payroll/store/memory.go: in-memory, for tests
  - store/sqlite/sqlite.go:  SQLite

SEE ALSO:
  - api/handlers.go: the only writer
*/
package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RegimeRecord is a named rate table.
type RegimeRecord struct {
	ID        string
	Name      string
	Rates     RateTable
	CreatedAt time.Time
}

// ScheduleRecord is a saved schedule in its JSON form, so it can be
// reparsed with the factory and edited by the presentation layer.
type ScheduleRecord struct {
	ID         string
	Name       string
	ConfigJSON string
	CreatedAt  time.Time
}

// RunRecord freezes the inputs and outputs of one computation.
type RunRecord struct {
	ID         string
	ScheduleID string // empty for inline schedules
	RegimeID   string // empty for inline rates
	Label      string

	Rates       RateTable
	Withholding Withholding

	Gross         decimal.Decimal
	Net           decimal.Decimal
	Hours         decimal.Decimal
	WorkedMinutes int
	Days          []DayPay
	Anomalies     []Anomaly

	CreatedAt time.Time
}

// NewRunRecord captures a result.
func NewRunRecord(id string, rates RateTable, withholding Withholding, result Result) RunRecord {
	return RunRecord{
		ID:            id,
		Rates:         rates,
		Withholding:   withholding,
		Gross:         result.Gross,
		Net:           result.Net,
		Hours:         result.Hours,
		WorkedMinutes: result.WorkedMinutes,
		Days:          append([]DayPay(nil), result.Days...),
		Anomalies:     append([]Anomaly(nil), result.Anomalies...),
		CreatedAt:     time.Now().UTC(),
	}
}

// Store persists regimes, schedules and runs. Get methods return the
// matching Err*NotFound sentinel when nothing is stored under the id.
type Store interface {
	SaveRegime(ctx context.Context, r RegimeRecord) error
	GetRegime(ctx context.Context, id string) (*RegimeRecord, error)
	ListRegimes(ctx context.Context) ([]RegimeRecord, error)

	SaveSchedule(ctx context.Context, s ScheduleRecord) error
	GetSchedule(ctx context.Context, id string) (*ScheduleRecord, error)
	ListSchedules(ctx context.Context) ([]ScheduleRecord, error)

	// AppendRun is the only write for runs.
	AppendRun(ctx context.Context, run RunRecord) error
	GetRun(ctx context.Context, id string) (*RunRecord, error)
	// ListRuns returns the newest runs first; limit <= 0 means all.
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)

	// Reset removes everything. Development only.
	Reset(ctx context.Context) error
}
