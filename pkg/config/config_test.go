package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestLoadConfigYAMLPartialGetsDefaults(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
features:
  short_window: 6
projection:
  window: 100
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, 6, cfg.Features.ShortWindow)
	assert.Equal(t, def.Features.MidWindow, cfg.Features.MidWindow)
	assert.Equal(t, def.Features.LongWindow, cfg.Features.LongWindow)
	assert.Equal(t, def.Features.BandLow, cfg.Features.BandLow)
	assert.Equal(t, 100, cfg.Projection.Window)
	assert.Equal(t, def.Scoring, cfg.Scoring)
	assert.Equal(t, def.Calibration, cfg.Calibration)
}

func TestLoadConfigJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
  "scoring": {
    "vibration_weight": 1.0,
    "midpoint": 0.5
  }
}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, 1.0, cfg.Scoring.VibrationWeight)
	assert.Equal(t, 0.5, cfg.Scoring.Midpoint)
	// Fields not named in the file keep their defaults.
	assert.Equal(t, def.Scoring.TemperatureWeight, cfg.Scoring.TemperatureWeight)
	assert.Equal(t, def.Scoring.StrainWeight, cfg.Scoring.StrainWeight)
	assert.Equal(t, def.Scoring.BandpowerWeight, cfg.Scoring.BandpowerWeight)
	assert.Equal(t, def.Scoring.Steepness, cfg.Scoring.Steepness)
	assert.Equal(t, def.Scoring.TemperatureScale, cfg.Scoring.TemperatureScale)
}

func TestLoadConfigExplicitZeroIsHonored(t *testing.T) {
	// A present zero weight or midpoint is a real setting, not an absent
	// field; only unnamed fields pick up defaults.
	path := writeConfig(t, "config.yaml", `
scoring:
  temperature_weight: 0
  midpoint: 0
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, 0.0, cfg.Scoring.TemperatureWeight)
	assert.Equal(t, 0.0, cfg.Scoring.Midpoint)
	assert.Equal(t, def.Scoring.VibrationWeight, cfg.Scoring.VibrationWeight)
	assert.Equal(t, def.Scoring.BandpowerWeight, cfg.Scoring.BandpowerWeight)
}

func TestLoadConfigInvalidAggregatesErrors(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
features:
  short_window: 300
  mid_window: 200
calibration:
  green_percentile: 0.99
  yellow_percentile: 0.95
  orange_percentile: 0.80
`)

	_, err := LoadConfig(path)
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs.Errors, 2)

	fields := []string{verrs.Errors[0].Field, verrs.Errors[1].Field}
	assert.Contains(t, fields, "features")
	assert.Contains(t, fields, "calibration")
	assert.NotEmpty(t, verrs.Errors[0].Suggestion)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoadConfigMalformed(t *testing.T) {
	path := writeConfig(t, "config.yaml", "features: [not, a, mapping")
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "failed to parse config")
}
