package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "impact.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.InDelta(t, 10, cfg.Server.RateLimit, 0.001)
	assert.Equal(t, 20, cfg.Server.RateBurst)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "experience-transformation-design", cfg.Methodology.DefaultID)
	assert.Empty(t, cfg.Methodology.Dir)
	assert.True(t, cfg.Engine.Parallel)
	assert.Equal(t, "engagement_cost", cfg.Engine.EngagementCostField)
	assert.InDelta(t, 0.10, cfg.Merge.DiscrepancyThreshold, 0.001)
	assert.Equal(t, 365, cfg.Confidence.HalfLifeDays)
	assert.InDelta(t, 0.2, cfg.Confidence.Floor, 0.001)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/impact
log:
  level: debug
  format: console
server:
  port: 9090
engine:
  parallel: false
merge:
  discrepancy_threshold: 0.25
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/impact", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.False(t, cfg.Engine.Parallel)
	assert.InDelta(t, 0.25, cfg.Merge.DiscrepancyThreshold, 0.001)
	// Defaults still apply for unset values
	assert.Equal(t, "engagement_cost", cfg.Engine.EngagementCostField)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: postgres
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("IMPACT_STORE_DRIVER", "sqlite")
	t.Setenv("IMPACT_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	t.Cleanup(func() { os.Unsetenv("IMPACT_SERVER_PORT") }) //nolint:errcheck

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("IMPACT_SERVER_PORT=3000\n"), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.DatabaseURL = "impact.db"
	cfg.Server.Port = 8080
	cfg.Server.RateLimit = 10
	cfg.Server.RateBurst = 20
	cfg.Merge.DiscrepancyThreshold = 0.1
	cfg.Confidence.HalfLifeDays = 365
	cfg.Confidence.Floor = 0.2
	return cfg
}

func TestValidate_AllModesPassWithDefaults(t *testing.T) {
	cfg := validDefaults()
	for _, mode := range []string{"calculate", "store", "serve"} {
		assert.NoError(t, cfg.Validate(mode), mode)
	}
}

func TestValidateStore_Missing(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "mysql"
	cfg.Store.DatabaseURL = ""

	err := cfg.Validate("store")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be sqlite or postgres")
	assert.Contains(t, err.Error(), "store.database_url is required")

	// calculate never touches the store
	assert.NoError(t, cfg.Validate("calculate"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateServe_RateBurst(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.RateBurst = 0

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate_burst")

	cfg.Server.RateLimit = 0
	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidateBounds(t *testing.T) {
	cfg := validDefaults()
	cfg.Merge.DiscrepancyThreshold = -0.1
	cfg.Confidence.Floor = 1.5

	err := cfg.Validate("calculate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "merge.discrepancy_threshold")
	assert.Contains(t, err.Error(), "confidence.floor")
}
