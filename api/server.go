/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:      Unique ID per request for tracing
  2. RequestLogger:  zerolog access log, request-scoped logger in context
  3. Recoverer:      Panic recovery (500 instead of crash)
  4. CORS:           Cross-origin requests for the form frontend

ROUTE GROUPS:
  /api/payroll/*        Inline computation, cache stats
  /api/night-minutes    Shift inspection
  /api/regimes/*        Rate regimes
  /api/schedules/*      Saved schedules
  /api/runs/*           Run history and payslips
  /api/scenarios/*      Demo scenarios
  /*                    Static files (frontend), if built

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - logging.go: Request logger
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

const staticDir = "./web/dist"

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, logger zerolog.Logger, origins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/payroll", func(r chi.Router) {
			r.Post("/compute", h.ComputePayroll)
			r.Get("/cache", h.CacheStats)
		})

		r.Post("/night-minutes", h.NightMinutes)

		r.Route("/regimes", func(r chi.Router) {
			r.Get("/", h.ListRegimes)
			r.Post("/", h.CreateRegime)
			r.Get("/{id}", h.GetRegime)
		})

		r.Route("/schedules", func(r chi.Router) {
			r.Get("/", h.ListSchedules)
			r.Post("/", h.CreateSchedule)
			r.Get("/{id}", h.GetSchedule)
			r.Post("/{id}/compute", h.ComputeSchedule)
		})

		r.Route("/runs", func(r chi.Router) {
			r.Get("/", h.ListRuns)
			r.Get("/export.csv", h.ExportRuns)
			r.Get("/{id}", h.GetRun)
			r.Get("/{id}/payslip.pdf", h.GetPayslip)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	if _, err := os.Stat(staticDir); err == nil {
		fileServer := http.FileServer(http.Dir(staticDir))
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			if _, err := os.Stat(filepath.Join(staticDir, r.URL.Path)); os.IsNotExist(err) {
				// SPA routing: serve index.html
				http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
				return
			}
			fileServer.ServeHTTP(w, r)
		})
	} else {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Payroll Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Payroll Engine API</h1>
<ul>
<li><a href="/api/regimes">/api/regimes</a> - Rate regimes</li>
<li><a href="/api/schedules">/api/schedules</a> - Saved schedules</li>
<li><a href="/api/runs">/api/runs</a> - Run history</li>
<li><a href="/api/scenarios">/api/scenarios</a> - Demo scenarios</li>
</ul>
</body>
</html>`))
		})
	}

	return r
}
