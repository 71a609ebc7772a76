package config

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "payroll.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 1024, cfg.CacheSize)
	assert.NotEmpty(t, cfg.CORSOrigins)
}

func TestLoad_EnvironmentThenFlags(t *testing.T) {
	t.Setenv("PAYROLL_PORT", "9090")
	t.Setenv("PAYROLL_DB", ":memory:")
	t.Setenv("PAYROLL_CORS_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, ":memory:", cfg.DBPath)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)

	cfg, err = Load([]string{"-port", "3000", "-log-level", "debug"})
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_RejectsBadPort(t *testing.T) {
	_, err := Load([]string{"-port", "70000"})
	assert.ErrorIs(t, err, ErrInvalidPort)
}

func TestInitLogger_LevelAndOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := initLogger(&buf, "warn", false)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	logger.Info().Msg("hidden")
	logger.Warn().Str("day", "monday").Msg("clamped")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"day":"monday"`)
	assert.Contains(t, buf.String(), `"level":"warn"`)

	initLogger(&buf, "nonsense", false)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
