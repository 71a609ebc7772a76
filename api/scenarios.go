/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
  Provides pre-built scenarios that populate the database with realistic
  data for demos. Each scenario stores the reference regime, one or more
  schedules, and a computed run for each schedule.

AVAILABLE SCENARIOS:
  reference-4b:  Monday to Friday, 18:50→02:00 (gross 599.00)
  seven-day:     Monday to Sunday, 09:00→17:00, weekend on Sat/Sun
  holiday-week:  4B week with a holiday, flexible time and a clamped day

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Save the reference regime
 3. Save the scenario schedules (normalized JSON)
 4. Compute each schedule with the reference withholding, append a run

USAGE VIA API:
  POST /api/scenarios/load
  {"scenario_id": "reference-4b"}

NOTE:
  Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: compute and storage helpers
  - regimes/presets.go: rates, withholding and week templates
*/
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/warp/payroll-engine/clock"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/regimes"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "reference-4b",
		Name:        "Turno 4B",
		Description: "Five night shifts 18:50-02:00 at the reference rates",
	},
	{
		ID:          "seven-day",
		Name:        "Seven-Day Week",
		Description: "Daytime shifts every day, weekend premium on Saturday and Sunday",
	},
	{
		ID:          "holiday-week",
		Name:        "Holiday Week",
		Description: "4B week with a holiday, flexible minutes and one clamped day",
	},
}

var scenarioLoaders = map[string]func(h *Handler, ctx context.Context) error{
	"reference-4b": (*Handler).loadReference4BScenario,
	"seven-day":    (*Handler).loadSevenDayScenario,
	"holiday-week": (*Handler).loadHolidayWeekScenario,
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	current := h.currentScenario
	h.mu.RUnlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario resets the database and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	load, ok := scenarioLoaders[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(ctx); err != nil {
		h.fail(w, r, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	if err := load(h, ctx); err != nil {
		h.fail(w, r, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}
	h.currentScenario = req.ScenarioID

	zerolog.Ctx(ctx).Info().Str("scenario", req.ScenarioID).Msg("scenario loaded")
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase wipes all regimes, schedules and runs.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		h.fail(w, r, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadReference4BScenario(ctx context.Context) error {
	if err := h.Store.SaveRegime(ctx, regimes.ReferenceRegime()); err != nil {
		return err
	}
	return h.seedSchedule(ctx, regimes.Turno4BJSON("turno-4b", "Turno 4B"), "Turno 4B, plain week")
}

func (h *Handler) loadSevenDayScenario(ctx context.Context) error {
	if err := h.Store.SaveRegime(ctx, regimes.ReferenceRegime()); err != nil {
		return err
	}
	shift := clock.NewShift(clock.MustParse("09:00"), clock.MustParse("17:00"))
	return h.seedSchedule(ctx, regimes.SevenDayJSON("seven-day", "Seven-day week", shift), "Seven-day week")
}

func (h *Handler) loadHolidayWeekScenario(ctx context.Context) error {
	if err := h.Store.SaveRegime(ctx, regimes.ReferenceRegime()); err != nil {
		return err
	}

	// The form's own vocabulary: Spanish weekdays and flexible markers.
	sj := factory.ScheduleJSON{
		ID:   "holiday-week",
		Name: "4B with holiday",
		Days: []factory.DayJSON{
			{Weekday: "lunes", Entrance: regimes.Turno4BEntrance, Exit: regimes.Turno4BExit},
			{Weekday: "martes", Entrance: regimes.Turno4BEntrance, Exit: regimes.Turno4BExit, Flexible: "azul"},
			{Weekday: "miércoles", Entrance: regimes.Turno4BEntrance, Exit: regimes.Turno4BExit, Holiday: true},
			{Weekday: "jueves", Entrance: regimes.Turno4BEntrance, Exit: regimes.Turno4BExit, FlexibleMinutes: -30},
			{Weekday: "viernes", Entrance: "23:00", Exit: "01:00", FlexibleMinutes: -180},
		},
	}
	return h.seedSchedule(ctx, sj, "Holiday week")
}

// seedSchedule validates sj, stores it normalized, and appends a run
// computed at the reference rates and withholding.
func (h *Handler) seedSchedule(ctx context.Context, sj factory.ScheduleJSON, label string) error {
	schedule, err := h.Factory.Schedule(sj)
	if err != nil {
		return err
	}
	if _, err := h.saveSchedule(ctx, factory.ScheduleToJSON(sj.ID, sj.Name, schedule)); err != nil {
		return err
	}

	rates, withholding := regimes.ReferenceRates(), regimes.ReferenceWithholding()
	result := h.Engine.Compute(schedule, rates, withholding)
	logAnomalies(ctx, result)

	run := payroll.NewRunRecord(uuid.NewString(), rates, withholding, result)
	run.ScheduleID = sj.ID
	run.RegimeID = regimes.ReferenceRegimeID
	run.Label = label
	return h.Store.AppendRun(ctx, run)
}
