/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes the payroll engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the factory and the engine.

ENDPOINTS:
  Computation:
    POST   /api/payroll/compute          Compute an inline schedule
    GET    /api/payroll/cache            Result cache statistics
    POST   /api/night-minutes            Duration and night minutes of a shift

  Regimes:
    GET    /api/regimes                  List rate regimes
    POST   /api/regimes                  Create or replace a regime
    GET    /api/regimes/{id}             Get a regime

  Schedules:
    GET    /api/schedules                List saved schedules
    POST   /api/schedules                Save a schedule
    GET    /api/schedules/{id}           Get a schedule
    POST   /api/schedules/{id}/compute   Compute a saved schedule

  Runs:
    GET    /api/runs?limit=N             Run history, newest first
    GET    /api/runs/export.csv          Run history as CSV, one row per day
    GET    /api/runs/{id}                Get a run
    GET    /api/runs/{id}/payslip.pdf    Render a run as PDF

  Scenarios:
    GET    /api/scenarios                List demo scenarios
    GET    /api/scenarios/current        Currently loaded scenario
    POST   /api/scenarios/load           Load a demo scenario
    POST   /api/scenarios/reset          Wipe the database

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store:   regimes, schedules and the append-only run history
  - Factory: JSON to engine input conversion
  - Engine:  memoizing wrapper around payroll.Engine

RATES AND WITHHOLDING:
  There are no built-in defaults. A computation takes either inline rates or
  the id of a stored regime, and always an explicit withholding. Missing
  either is a 400.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed JSON, invalid time literal, negative rate, bad withholding
  - 404: Regime, schedule or run not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/warp/payroll-engine/clock"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/payroll"
)

var (
	errMissingRates       = errors.New("regime_id or rates is required")
	errMissingWithholding = errors.New("withholding is required")
	errInvalidLimit       = errors.New("limit must be a non-negative integer")
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   payroll.Store
	Factory *factory.PayrollFactory
	Engine  *payroll.Cache

	// Track currently loaded scenario
	mu              sync.RWMutex
	currentScenario string
}

// NewHandler creates a new handler. A nil cache gets a default one.
func NewHandler(store payroll.Store, cache *payroll.Cache) *Handler {
	if cache == nil {
		cache = payroll.NewCache(nil, 0)
	}
	return &Handler{
		Store:   store,
		Factory: factory.NewPayrollFactory(),
		Engine:  cache,
	}
}

// =============================================================================
// COMPUTATION ENDPOINTS
// =============================================================================

// ComputePayroll computes an inline schedule, optionally saving the run.
func (h *Handler) ComputePayroll(w http.ResponseWriter, r *http.Request) {
	var req ComputeRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	schedule, err := h.Factory.Schedule(req.Schedule)
	if err != nil {
		h.fail(w, r, "Invalid schedule", err)
		return
	}

	h.computeAndRespond(w, r, computation{
		schedule:    schedule,
		scheduleID:  req.Schedule.ID,
		regimeID:    req.RegimeID,
		rates:       req.Rates,
		withholding: req.Withholding,
		save:        req.Save,
		label:       req.Label,
	})
}

// CacheStats reports the result cache counters.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	stats := h.Engine.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": stats.Entries,
		"hits":    stats.Hits,
		"misses":  stats.Misses,
	})
}

// NightMinutes returns the duration and night overlap of one shift.
func (h *Handler) NightMinutes(w http.ResponseWriter, r *http.Request) {
	var req NightMinutesRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	shift, err := clock.ParseShift(req.Entrance, req.Exit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid time literal", err)
		return
	}

	writeJSON(w, http.StatusOK, NightMinutesDTO{
		Entrance:        shift.Start.String(),
		Exit:            shift.End.String(),
		CrossesMidnight: shift.CrossesMidnight(),
		DurationMinutes: shift.Duration(),
		NightMinutes:    clock.NightMinutes(shift),
	})
}

// computation gathers what computeAndRespond needs from either compute
// endpoint.
type computation struct {
	schedule    payroll.WeeklySchedule
	scheduleID  string
	regimeID    string
	rates       *factory.RateTableJSON
	withholding *factory.WithholdingJSON
	save        bool
	label       string
}

func (h *Handler) computeAndRespond(w http.ResponseWriter, r *http.Request, c computation) {
	ctx := r.Context()

	rates, regimeID, err := h.resolveRates(ctx, c.regimeID, c.rates)
	if err != nil {
		h.fail(w, r, "Invalid rates", err)
		return
	}
	if c.withholding == nil {
		writeError(w, http.StatusBadRequest, "Invalid withholding", errMissingWithholding)
		return
	}
	withholding, err := h.Factory.Withholding(*c.withholding)
	if err != nil {
		h.fail(w, r, "Invalid withholding", err)
		return
	}

	result := h.Engine.Compute(c.schedule, rates, withholding)
	logAnomalies(ctx, result)

	dto := toResultDTO(result)
	if !c.save {
		writeJSON(w, http.StatusOK, dto)
		return
	}

	run := payroll.NewRunRecord(uuid.NewString(), rates, withholding, result)
	run.ScheduleID = c.scheduleID
	run.RegimeID = regimeID
	run.Label = c.label
	if err := h.Store.AppendRun(ctx, run); err != nil {
		h.fail(w, r, "Failed to save run", err)
		return
	}

	zerolog.Ctx(ctx).Info().
		Str("run_id", run.ID).
		Str("gross", money(run.Gross)).
		Str("net", money(run.Net)).
		Msg("payroll run saved")

	dto.RunID = run.ID
	writeJSON(w, http.StatusCreated, dto)
}

// resolveRates prefers inline rates; otherwise it loads the regime. The
// returned regime id is empty when inline rates were used.
func (h *Handler) resolveRates(ctx context.Context, regimeID string, inline *factory.RateTableJSON) (payroll.RateTable, string, error) {
	if inline != nil {
		rates, err := h.Factory.Rates(*inline)
		return rates, "", err
	}
	if strings.TrimSpace(regimeID) == "" {
		return payroll.RateTable{}, "", errMissingRates
	}
	regime, err := h.Store.GetRegime(ctx, regimeID)
	if err != nil {
		return payroll.RateTable{}, "", err
	}
	return regime.Rates, regime.ID, nil
}

func logAnomalies(ctx context.Context, result payroll.Result) {
	logger := zerolog.Ctx(ctx)
	for _, a := range result.Anomalies {
		logger.Warn().
			Str("kind", string(a.Kind)).
			Int("day", a.Index).
			Str("weekday", weekdayName(a.Weekday)).
			Int("shift_minutes", a.ShiftMinutes).
			Int("flexible_minutes", a.FlexibleMinutes).
			Msg("paid duration clamped to zero")
	}
}

// =============================================================================
// REGIME ENDPOINTS
// =============================================================================

// ListRegimes returns all rate regimes.
func (h *Handler) ListRegimes(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListRegimes(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list regimes", err)
		return
	}

	dtos := make([]RegimeDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, toRegimeDTO(rec))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateRegime stores a rate regime. Posting an existing id replaces it.
func (h *Handler) CreateRegime(w http.ResponseWriter, r *http.Request) {
	var req CreateRegimeRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	rates, err := h.Factory.Rates(*req.Rates)
	if err != nil {
		h.fail(w, r, "Invalid rates", err)
		return
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	}
	record := payroll.RegimeRecord{
		ID:        id,
		Name:      req.Name,
		Rates:     rates,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Store.SaveRegime(r.Context(), record); err != nil {
		h.fail(w, r, "Failed to save regime", err)
		return
	}

	writeJSON(w, http.StatusCreated, toRegimeDTO(record))
}

// GetRegime returns one regime.
func (h *Handler) GetRegime(w http.ResponseWriter, r *http.Request) {
	record, err := h.Store.GetRegime(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Regime not found", err)
		return
	}
	writeJSON(w, http.StatusOK, toRegimeDTO(*record))
}

// =============================================================================
// SCHEDULE ENDPOINTS
// =============================================================================

// ListSchedules returns all saved schedules.
func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListSchedules(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list schedules", err)
		return
	}

	dtos := make([]ScheduleDTO, 0, len(records))
	for _, rec := range records {
		dto, err := toScheduleDTO(rec)
		if err != nil {
			// Skip rows that no longer parse rather than failing the list.
			zerolog.Ctx(r.Context()).Warn().Err(err).Str("schedule_id", rec.ID).Msg("unreadable schedule")
			continue
		}
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateSchedule validates and stores a schedule. The stored form is
// normalized: markers are folded into flexible_minutes and derived weekend
// flags are written out.
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req factory.ScheduleJSON
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	schedule, err := h.Factory.Schedule(req)
	if err != nil {
		h.fail(w, r, "Invalid schedule", err)
		return
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = id
	}

	record, err := h.saveSchedule(r.Context(), factory.ScheduleToJSON(id, name, schedule))
	if err != nil {
		h.fail(w, r, "Failed to save schedule", err)
		return
	}

	dto, err := toScheduleDTO(*record)
	if err != nil {
		h.fail(w, r, "Failed to read schedule", err)
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

func (h *Handler) saveSchedule(ctx context.Context, sj factory.ScheduleJSON) (*payroll.ScheduleRecord, error) {
	config, err := json.Marshal(sj)
	if err != nil {
		return nil, err
	}
	record := payroll.ScheduleRecord{
		ID:         sj.ID,
		Name:       sj.Name,
		ConfigJSON: string(config),
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.Store.SaveSchedule(ctx, record); err != nil {
		return nil, err
	}
	return &record, nil
}

// GetSchedule returns one saved schedule.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	record, err := h.Store.GetSchedule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Schedule not found", err)
		return
	}

	dto, err := toScheduleDTO(*record)
	if err != nil {
		h.fail(w, r, "Failed to read schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// ComputeSchedule computes a saved schedule with the given rates.
func (h *Handler) ComputeSchedule(w http.ResponseWriter, r *http.Request) {
	var req ComputeScheduleRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	record, err := h.Store.GetSchedule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Schedule not found", err)
		return
	}

	schedule, err := h.Factory.ParseSchedule(record.ConfigJSON)
	if err != nil {
		// Stored schedules were validated on the way in.
		writeError(w, http.StatusInternalServerError, "Stored schedule is unreadable", err)
		return
	}

	h.computeAndRespond(w, r, computation{
		schedule:    schedule,
		scheduleID:  record.ID,
		regimeID:    req.RegimeID,
		rates:       req.Rates,
		withholding: req.Withholding,
		save:        req.Save,
		label:       req.Label,
	})
}

func toScheduleDTO(rec payroll.ScheduleRecord) (ScheduleDTO, error) {
	var sj factory.ScheduleJSON
	if err := json.Unmarshal([]byte(rec.ConfigJSON), &sj); err != nil {
		return ScheduleDTO{}, fmt.Errorf("schedule %s: %w", rec.ID, err)
	}
	return ScheduleDTO{
		ID:        rec.ID,
		Name:      rec.Name,
		Schedule:  sj,
		CreatedAt: rec.CreatedAt,
	}, nil
}

// =============================================================================
// RUN ENDPOINTS
// =============================================================================

// ListRuns returns the run history, newest first.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", errInvalidLimit)
			return
		}
		limit = n
	}

	runs, err := h.Store.ListRuns(r.Context(), limit)
	if err != nil {
		h.fail(w, r, "Failed to list runs", err)
		return
	}

	dtos := make([]RunDTO, 0, len(runs))
	for _, run := range runs {
		dtos = append(dtos, toRunDTO(run))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetRun returns one run.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.Store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Run not found", err)
		return
	}
	writeJSON(w, http.StatusOK, toRunDTO(*run))
}

// GetPayslip renders a run as a PDF payslip.
func (h *Handler) GetPayslip(w http.ResponseWriter, r *http.Request) {
	run, err := h.Store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Run not found", err)
		return
	}

	pdf, err := renderPayslip(*run)
	if err != nil {
		h.fail(w, r, "Failed to render payslip", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="payslip-%s.pdf"`, run.ID))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// fail picks the status from the error: 404 for missing records, 400 for
// bad input, 500 for everything else.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg(message)
	}
	writeError(w, status, message, err)
}

func statusFor(err error) int {
	switch {
	case payroll.IsNotFound(err):
		return http.StatusNotFound
	case factory.IsClientError(err),
		errors.Is(err, errMissingRates),
		errors.Is(err, errMissingWithholding):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
