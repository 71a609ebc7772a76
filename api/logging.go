package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// RequestLogger logs one line per request and puts a logger carrying the
// request id into the request context, where handlers pick it up with
// zerolog.Ctx. It must run after middleware.RequestID.
func RequestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLogger := logger.With().
				Str("request_id", middleware.GetReqID(r.Context())).
				Logger()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				status := ww.Status()
				var event *zerolog.Event
				switch {
				case status >= 500:
					event = reqLogger.Error()
				case status >= 400:
					event = reqLogger.Warn()
				default:
					event = reqLogger.Info()
				}
				event.Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", status).
					Int("bytes", ww.BytesWritten()).
					Dur("latency", time.Since(start)).
					Msg("request processed")
			}()

			next.ServeHTTP(ww, r.WithContext(reqLogger.WithContext(r.Context())))
		})
	}
}
