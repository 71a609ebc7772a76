// Package config loads server configuration from flags, the environment
// and an optional .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the server settings. Rates and withholding are not here:
// they are inputs of each computation.
type Config struct {
	Port        int
	DBPath      string
	LogLevel    string
	PrettyLogs  bool
	CORSOrigins []string
	CacheSize   int
}

var ErrInvalidPort = errors.New("port must be between 1 and 65535")

// Load reads configuration. Precedence, highest first: command-line flags,
// environment variables, .env, defaults.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        envInt("PAYROLL_PORT", 8080),
		DBPath:      envString("PAYROLL_DB", "payroll.db"),
		LogLevel:    envString("PAYROLL_LOG_LEVEL", "info"),
		PrettyLogs:  envBool("PAYROLL_PRETTY_LOGS", false),
		CORSOrigins: envList("PAYROLL_CORS_ORIGINS", []string{"http://localhost:5173", "http://localhost:8080"}),
		CacheSize:   envInt("PAYROLL_CACHE_SIZE", 1024),
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, `SQLite database path (":memory:" for in-memory)`)
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.BoolVar(&cfg.PrettyLogs, "pretty", cfg.PrettyLogs, "human-readable console logs")
	fs.IntVar(&cfg.CacheSize, "cache-size", cfg.CacheSize, "max memoized payroll results")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPort, cfg.Port)
	}
	return cfg, nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key))); err == nil {
		return v
	}
	return def
}

func envList(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
