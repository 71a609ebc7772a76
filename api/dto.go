/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine types from the external API contract. Money leaves the API as
  two-decimal strings so clients never see binary floating point.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Computation:
    ComputeRequest, ComputeScheduleRequest, ResultDTO, DayPayDTO, AnomalyDTO

  Clock:
    NightMinutesRequest, NightMinutesDTO

  Regimes / Schedules / Runs:
    CreateRegimeRequest, RegimeDTO, ScheduleDTO, RunDTO

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Presence checks are validate tags, enforced by decodeRequest
  (validation.go). Value checks (time literals, rates, percentages) belong to
  the factory and the engine types.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/payroll.go: ScheduleJSON, RateTableJSON, WithholdingJSON
*/
package api

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// ComputeRequest computes an inline schedule. Either Rates or RegimeID must
// be given; Withholding is always required.
type ComputeRequest struct {
	Schedule    factory.ScheduleJSON     `json:"schedule"`
	RegimeID    string                   `json:"regime_id,omitempty" validate:"required_without=Rates"`
	Rates       *factory.RateTableJSON   `json:"rates,omitempty"`
	Withholding *factory.WithholdingJSON `json:"withholding,omitempty" validate:"required"`
	Save        bool                     `json:"save,omitempty"`
	Label       string                   `json:"label,omitempty"`
}

// ComputeScheduleRequest computes a stored schedule.
type ComputeScheduleRequest struct {
	RegimeID    string                   `json:"regime_id,omitempty" validate:"required_without=Rates"`
	Rates       *factory.RateTableJSON   `json:"rates,omitempty"`
	Withholding *factory.WithholdingJSON `json:"withholding,omitempty" validate:"required"`
	Save        bool                     `json:"save,omitempty"`
	Label       string                   `json:"label,omitempty"`
}

type NightMinutesRequest struct {
	Entrance string `json:"entrance" validate:"required"`
	Exit     string `json:"exit" validate:"required"`
}

type CreateRegimeRequest struct {
	ID    string                 `json:"id,omitempty"`
	Name  string                 `json:"name" validate:"required"`
	Rates *factory.RateTableJSON `json:"rates" validate:"required"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ResultDTO is a computation result. RunID is set when the run was saved.
type ResultDTO struct {
	Gross         string       `json:"gross"`
	Net           string       `json:"net"`
	Withheld      string       `json:"withheld"`
	Hours         string       `json:"hours"`
	WorkedMinutes int          `json:"worked_minutes"`
	Days          []DayPayDTO  `json:"days"`
	Anomalies     []AnomalyDTO `json:"anomalies"`
	RunID         string       `json:"run_id,omitempty"`
}

// DayPayDTO is one day of the breakdown, rounded for display only.
type DayPayDTO struct {
	Index         int    `json:"index"`
	Weekday       string `json:"weekday"`
	Worked        bool   `json:"worked"`
	ShiftMinutes  int    `json:"shift_minutes"`
	WorkedMinutes int    `json:"worked_minutes"`
	NightMinutes  int    `json:"night_minutes"`
	Base          string `json:"base"`
	Night         string `json:"night"`
	Holiday       string `json:"holiday"`
	Weekend       string `json:"weekend"`
	Total         string `json:"total"`
}

type AnomalyDTO struct {
	Kind            string `json:"kind"`
	Index           int    `json:"index"`
	Weekday         string `json:"weekday"`
	ShiftMinutes    int    `json:"shift_minutes"`
	FlexibleMinutes int    `json:"flexible_minutes"`
	Message         string `json:"message"`
}

type NightMinutesDTO struct {
	Entrance        string `json:"entrance"`
	Exit            string `json:"exit"`
	CrossesMidnight bool   `json:"crosses_midnight"`
	DurationMinutes int    `json:"duration_minutes"`
	NightMinutes    int    `json:"night_minutes"`
}

type RegimeDTO struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Rates     factory.RateTableJSON `json:"rates"`
	CreatedAt time.Time             `json:"created_at"`
}

type ScheduleDTO struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Schedule  factory.ScheduleJSON `json:"schedule"`
	CreatedAt time.Time            `json:"created_at"`
}

// RunDTO is a stored payroll run.
type RunDTO struct {
	ID          string                  `json:"id"`
	ScheduleID  string                  `json:"schedule_id,omitempty"`
	RegimeID    string                  `json:"regime_id,omitempty"`
	Label       string                  `json:"label,omitempty"`
	Rates       factory.RateTableJSON   `json:"rates"`
	Withholding factory.WithholdingJSON `json:"withholding"`
	Result      ResultDTO               `json:"result"`
	CreatedAt   time.Time               `json:"created_at"`
}

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func weekdayName(wd time.Weekday) string {
	return strings.ToLower(wd.String())
}

func toResultDTO(r payroll.Result) ResultDTO {
	return ResultDTO{
		Gross:         money(r.Gross),
		Net:           money(r.Net),
		Withheld:      money(r.Withheld()),
		Hours:         money(r.Hours),
		WorkedMinutes: r.WorkedMinutes,
		Days:          toDayPayDTOs(r.Days),
		Anomalies:     toAnomalyDTOs(r.Anomalies),
	}
}

func toDayPayDTOs(days []payroll.DayPay) []DayPayDTO {
	dtos := make([]DayPayDTO, 0, len(days))
	for _, d := range days {
		dtos = append(dtos, DayPayDTO{
			Index:         d.Index,
			Weekday:       weekdayName(d.Weekday),
			Worked:        d.Worked,
			ShiftMinutes:  d.ShiftMinutes,
			WorkedMinutes: d.WorkedMinutes,
			NightMinutes:  d.NightMinutes,
			Base:          money(d.Base),
			Night:         money(d.Night),
			Holiday:       money(d.Holiday),
			Weekend:       money(d.Weekend),
			Total:         money(d.Total()),
		})
	}
	return dtos
}

func toAnomalyDTOs(anomalies []payroll.Anomaly) []AnomalyDTO {
	dtos := make([]AnomalyDTO, 0, len(anomalies))
	for _, a := range anomalies {
		dtos = append(dtos, AnomalyDTO{
			Kind:            string(a.Kind),
			Index:           a.Index,
			Weekday:         weekdayName(a.Weekday),
			ShiftMinutes:    a.ShiftMinutes,
			FlexibleMinutes: a.FlexibleMinutes,
			Message:         a.String(),
		})
	}
	return dtos
}

func toRegimeDTO(r payroll.RegimeRecord) RegimeDTO {
	return RegimeDTO{
		ID:        r.ID,
		Name:      r.Name,
		Rates:     factory.RatesToJSON(r.Rates),
		CreatedAt: r.CreatedAt,
	}
}

func toRunDTO(run payroll.RunRecord) RunDTO {
	return RunDTO{
		ID:          run.ID,
		ScheduleID:  run.ScheduleID,
		RegimeID:    run.RegimeID,
		Label:       run.Label,
		Rates:       factory.RatesToJSON(run.Rates),
		Withholding: factory.WithholdingToJSON(run.Withholding),
		Result: ResultDTO{
			Gross:         money(run.Gross),
			Net:           money(run.Net),
			Withheld:      money(run.Gross.Sub(run.Net)),
			Hours:         money(run.Hours),
			WorkedMinutes: run.WorkedMinutes,
			Days:          toDayPayDTOs(run.Days),
			Anomalies:     toAnomalyDTOs(run.Anomalies),
			RunID:         run.ID,
		},
		CreatedAt: run.CreatedAt,
	}
}
