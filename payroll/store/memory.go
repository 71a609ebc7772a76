// Package store provides payroll.Store implementations.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

var ErrDuplicateRun = errors.New("run already recorded")

type Memory struct {
	mu        sync.RWMutex
	regimes   map[string]payroll.RegimeRecord
	schedules map[string]payroll.ScheduleRecord
	runs      []payroll.RunRecord
	runIndex  map[string]int
}

func NewMemory() *Memory {
	return &Memory{
		regimes:   make(map[string]payroll.RegimeRecord),
		schedules: make(map[string]payroll.ScheduleRecord),
		runIndex:  make(map[string]int),
	}
}

var _ payroll.Store = (*Memory)(nil)

func (m *Memory) SaveRegime(_ context.Context, r payroll.RegimeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regimes[r.ID] = r
	return nil
}

func (m *Memory) GetRegime(_ context.Context, id string) (*payroll.RegimeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.regimes[id]
	if !ok {
		return nil, payroll.ErrRegimeNotFound
	}
	return &r, nil
}

func (m *Memory) ListRegimes(_ context.Context) ([]payroll.RegimeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]payroll.RegimeRecord, 0, len(m.regimes))
	for _, r := range m.regimes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) SaveSchedule(_ context.Context, s payroll.ScheduleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedules[s.ID] = s
	return nil
}

func (m *Memory) GetSchedule(_ context.Context, id string) (*payroll.ScheduleRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.schedules[id]
	if !ok {
		return nil, payroll.ErrScheduleNotFound
	}
	return &s, nil
}

func (m *Memory) ListSchedules(_ context.Context) ([]payroll.ScheduleRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]payroll.ScheduleRecord, 0, len(m.schedules))
	for _, s := range m.schedules {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// AppendRun adds a run. Append-only.
func (m *Memory) AppendRun(_ context.Context, run payroll.RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.runIndex[run.ID]; exists {
		return ErrDuplicateRun
	}
	m.runIndex[run.ID] = len(m.runs)
	m.runs = append(m.runs, run)
	return nil
}

func (m *Memory) GetRun(_ context.Context, id string) (*payroll.RunRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.runIndex[id]
	if !ok {
		return nil, payroll.ErrRunNotFound
	}
	run := m.runs[i]
	return &run, nil
}

func (m *Memory) ListRuns(_ context.Context, limit int) ([]payroll.RunRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.runs)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]payroll.RunRecord, 0, n)
	for i := len(m.runs) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.runs[i])
	}
	return out, nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regimes = make(map[string]payroll.RegimeRecord)
	m.schedules = make(map[string]payroll.ScheduleRecord)
	m.runs = nil
	m.runIndex = make(map[string]int)
	return nil
}
