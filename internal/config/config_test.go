package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storage-cycles/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  port: 9090
  cors_origins: ["https://example.com"]
metrics:
  enabled: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://example.com"}, cfg.Server.CORSOrigins)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadDefaults(t *testing.T) {
	path := writeFile(t, "config.yaml", "{}\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("APP_SERVER__PORT", "7777")
	path := writeFile(t, "config.yaml", "server:\n  port: 9090\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7777, cfg.Server.Port)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeFile(t, "config.toml", "port = 1\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadPresetAndMerge(t *testing.T) {
	path := writeFile(t, "preset.yaml", `
name: standard-400
storage:
  capacity_kwh: 400
  c_rate: 0.5
  efficiency: 0.9
  depth_of_discharge: 0.9
  soc_min: 0.05
  soc_max: 0.95
  metering: monthly_demand_max
`)
	base, err := LoadPreset(path)
	require.NoError(t, err)
	assert.InDelta(t, 400, base.CapacityKWh, 1e-12)
	require.NoError(t, base.Validate())

	merged := MergeStorage(base, model.StorageParams{
		CapacityKWh: 800,
		Metering:    model.MeteringTransformerCapacity,
	})
	assert.InDelta(t, 800, merged.CapacityKWh, 1e-12, "override wins")
	assert.InDelta(t, 0.5, merged.CRate, 1e-12, "zero fields keep the base")
	assert.Equal(t, model.MeteringTransformerCapacity, merged.Metering)
}
