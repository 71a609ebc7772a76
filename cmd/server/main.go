/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the payroll engine server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, flags)
  2. Initialize the zerolog logger
  3. Initialize SQLite store
  4. Create the result cache and API handler
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port        HTTP server port (default: 8080)
  -db          SQLite database path (default: payroll.db)
               Use ":memory:" for in-memory database
  -log-level   debug, info, warn, error (default: info)
  -pretty      Human-readable console logs
  -cache-size  Max memoized payroll results (default: 1024)

ENVIRONMENT:
  PAYROLL_PORT, PAYROLL_DB, PAYROLL_LOG_LEVEL, PAYROLL_PRETTY_LOGS,
  PAYROLL_CORS_ORIGINS (comma separated), PAYROLL_CACHE_SIZE.
  A .env file in the working directory is loaded first. Flags win.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  ./server -db="./data/payroll.db"
  ./server -db=":memory:" -pretty -log-level=debug

SEE ALSO:
  - config/config.go: Configuration loading
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/payroll-engine/api"
	"github.com/warp/payroll-engine/config"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		// The logger is not configured yet.
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(2)
	}

	logger := config.InitLogger(cfg.LogLevel, cfg.PrettyLogs)

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Str("db", cfg.DBPath).Msg("failed to initialize database")
	}
	defer store.Close()

	cache := payroll.NewCache(nil, cfg.CacheSize)
	handler := api.NewHandler(store, cache)
	router := api.NewRouter(handler, logger, cfg.CORSOrigins)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("addr", cfg.Addr()).
			Str("db", cfg.DBPath).
			Int("cache_size", cfg.CacheSize).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	stats := cache.Stats()
	logger.Info().
		Uint64("cache_hits", stats.Hits).
		Uint64("cache_misses", stats.Misses).
		Msg("server stopped")
}
