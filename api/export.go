package api

import (
	"net/http"
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog"
	"github.com/warp/payroll-engine/payroll"
)

// runDayRow is one line of the CSV export: a single day of a single run.
// Weekly totals repeat on every line of the run so the file can be pivoted
// without a join.
type runDayRow struct {
	RunID         string `csv:"run_id"`
	CreatedAt     string `csv:"created_at"`
	Label         string `csv:"label"`
	ScheduleID    string `csv:"schedule_id"`
	Day           int    `csv:"day"`
	Weekday       string `csv:"weekday"`
	WorkedMinutes int    `csv:"worked_minutes"`
	NightMinutes  int    `csv:"night_minutes"`
	Base          string `csv:"base"`
	Night         string `csv:"night"`
	Holiday       string `csv:"holiday"`
	Weekend       string `csv:"weekend"`
	DayTotal      string `csv:"day_total"`
	RunGross      string `csv:"run_gross"`
	RunNet        string `csv:"run_net"`
}

// ExportRuns writes the run history as CSV, one row per day, newest run
// first. Accepts the same limit parameter as ListRuns.
func (h *Handler) ExportRuns(w http.ResponseWriter, r *http.Request) {
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

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="payroll-runs.csv"`)
	w.WriteHeader(http.StatusOK)
	if err := gocsv.Marshal(runDayRows(runs), w); err != nil {
		// Headers are already sent; all that is left is to log it.
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("csv export failed")
	}
}

func runDayRows(runs []payroll.RunRecord) []*runDayRow {
	rows := make([]*runDayRow, 0)
	for _, run := range runs {
		for _, d := range run.Days {
			rows = append(rows, &runDayRow{
				RunID:         run.ID,
				CreatedAt:     run.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
				Label:         run.Label,
				ScheduleID:    run.ScheduleID,
				Day:           d.Index,
				Weekday:       weekdayName(d.Weekday),
				WorkedMinutes: d.WorkedMinutes,
				NightMinutes:  d.NightMinutes,
				Base:          money(d.Base),
				Night:         money(d.Night),
				Holiday:       money(d.Holiday),
				Weekend:       money(d.Weekend),
				DayTotal:      money(d.Total()),
				RunGross:      money(run.Gross),
				RunNet:        money(run.Net),
			})
		}
	}
	return rows
}
