// Package config loads and validates the immutable pipeline configuration:
// window sizes, channel weights, logistic parameters, calibration percentiles,
// and the projection window.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/TheClassicTechno/LiveWire-sub000/pkg/calibration"
	"github.com/TheClassicTechno/LiveWire-sub000/pkg/features"
	"github.com/TheClassicTechno/LiveWire-sub000/pkg/projection"
	"github.com/TheClassicTechno/LiveWire-sub000/pkg/scoring"
)

// Config is the full pipeline configuration. It is set at construction time
// and immutable thereafter; a fitted pipeline persists it alongside the
// learned thresholds so a reloaded pipeline scores identically.
type Config struct {
	Features    features.Config    `yaml:"features" json:"features"`
	Scoring     scoring.Config     `yaml:"scoring" json:"scoring"`
	Calibration calibration.Config `yaml:"calibration" json:"calibration"`
	Projection  projection.Config  `yaml:"projection" json:"projection"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() *Config {
	return &Config{
		Features:    features.DefaultConfig(),
		Scoring:     scoring.DefaultConfig(),
		Calibration: calibration.DefaultConfig(),
		Projection:  projection.DefaultConfig(),
	}
}

// rawScoring distinguishes absent scoring fields from explicit zeros, the
// same way rawReading handles optional channels at the CLI boundary: a nil
// pointer keeps the default, a present zero is honored. Steepness and the
// scales are value fields because zero is never a usable value for them.
type rawScoring struct {
	VibrationWeight   *float64 `yaml:"vibration_weight" json:"vibration_weight"`
	TemperatureWeight *float64 `yaml:"temperature_weight" json:"temperature_weight"`
	StrainWeight      *float64 `yaml:"strain_weight" json:"strain_weight"`
	BandpowerWeight   *float64 `yaml:"bandpower_weight" json:"bandpower_weight"`
	WindWeight        *float64 `yaml:"wind_weight" json:"wind_weight"`
	AgeWeight         *float64 `yaml:"age_weight" json:"age_weight"`
	Midpoint          *float64 `yaml:"midpoint" json:"midpoint"`

	Steepness        float64 `yaml:"steepness" json:"steepness"`
	VibrationScale   float64 `yaml:"vibration_scale" json:"vibration_scale"`
	TemperatureScale float64 `yaml:"temperature_scale" json:"temperature_scale"`
	StrainScale      float64 `yaml:"strain_scale" json:"strain_scale"`
	WindScale        float64 `yaml:"wind_scale" json:"wind_scale"`
}

// apply overlays the fields present in the file onto dst.
func (r *rawScoring) apply(dst *scoring.Config) {
	for _, f := range []struct {
		dst *float64
		src *float64
	}{
		{&dst.VibrationWeight, r.VibrationWeight},
		{&dst.TemperatureWeight, r.TemperatureWeight},
		{&dst.StrainWeight, r.StrainWeight},
		{&dst.BandpowerWeight, r.BandpowerWeight},
		{&dst.WindWeight, r.WindWeight},
		{&dst.AgeWeight, r.AgeWeight},
		{&dst.Midpoint, r.Midpoint},
	} {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
	// Zeros here fall back to defaults in applyDefaults.
	dst.Steepness = r.Steepness
	dst.VibrationScale = r.VibrationScale
	dst.TemperatureScale = r.TemperatureScale
	dst.StrainScale = r.StrainScale
	dst.WindScale = r.WindScale
}

// rawConfig mirrors Config with optional sections.
type rawConfig struct {
	Features    *features.Config    `yaml:"features" json:"features"`
	Scoring     *rawScoring         `yaml:"scoring" json:"scoring"`
	Calibration *calibration.Config `yaml:"calibration" json:"calibration"`
	Projection  *projection.Config  `yaml:"projection" json:"projection"`
}

// LoadConfig loads configuration from a file, fills missing sections and
// fields with defaults, and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Determine format by extension
	ext := strings.ToLower(filepath.Ext(path))

	raw := &rawConfig{}
	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, raw)
	case ".json":
		err = json.Unmarshal(data, raw)
	default:
		// Try YAML first, then JSON
		err = yaml.Unmarshal(data, raw)
		if err != nil {
			err = json.Unmarshal(data, raw)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config := DefaultConfig()
	if raw.Features != nil {
		config.Features = *raw.Features
	}
	if raw.Scoring != nil {
		raw.Scoring.apply(&config.Scoring)
	}
	if raw.Calibration != nil {
		config.Calibration = *raw.Calibration
	}
	if raw.Projection != nil {
		config.Projection = *raw.Projection
	}
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyDefaults fills fields whose zero value is never meaningful: window
// lengths, percentiles, the logistic steepness, and the channel scales.
// Weights and the midpoint are handled by rawScoring, where an explicit zero
// is a real setting.
func (c *Config) applyDefaults() {
	def := DefaultConfig()

	if c.Features.ShortWindow == 0 {
		c.Features.ShortWindow = def.Features.ShortWindow
	}
	if c.Features.MidWindow == 0 {
		c.Features.MidWindow = def.Features.MidWindow
	}
	if c.Features.LongWindow == 0 {
		c.Features.LongWindow = def.Features.LongWindow
	}
	if c.Features.BandWindow == 0 {
		c.Features.BandWindow = def.Features.BandWindow
	}
	if c.Features.BandLow == 0 && c.Features.BandHigh == 0 {
		c.Features.BandLow = def.Features.BandLow
		c.Features.BandHigh = def.Features.BandHigh
	}

	s := &c.Scoring
	if s.Steepness == 0 {
		s.Steepness = def.Scoring.Steepness
	}
	if s.VibrationScale == 0 {
		s.VibrationScale = def.Scoring.VibrationScale
	}
	if s.TemperatureScale == 0 {
		s.TemperatureScale = def.Scoring.TemperatureScale
	}
	if s.StrainScale == 0 {
		s.StrainScale = def.Scoring.StrainScale
	}
	if s.WindScale == 0 {
		s.WindScale = def.Scoring.WindScale
	}

	if c.Calibration.GreenPercentile == 0 {
		c.Calibration.GreenPercentile = def.Calibration.GreenPercentile
	}
	if c.Calibration.YellowPercentile == 0 {
		c.Calibration.YellowPercentile = def.Calibration.YellowPercentile
	}
	if c.Calibration.OrangePercentile == 0 {
		c.Calibration.OrangePercentile = def.Calibration.OrangePercentile
	}
	if c.Projection.Window == 0 {
		c.Projection.Window = def.Projection.Window
	}
}

// Validate checks every section and aggregates failures with suggestions.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if err := c.Features.Validate(); err != nil {
		errs.Add(NewValidationError("features", err.Error(),
			"windows are sample counts and must satisfy short < mid < long"))
	}
	if err := c.Scoring.Validate(); err != nil {
		errs.Add(NewValidationError("scoring", err.Error(),
			"weights must be finite and steepness positive"))
	}
	if err := c.Calibration.Validate(); err != nil {
		errs.Add(NewValidationError("calibration", err.Error(),
			"percentiles are fractions in (0,1) and must increase"))
	}
	if err := c.Projection.Validate(); err != nil {
		errs.Add(NewValidationError("projection", err.Error(),
			"the projection window is a sample count of at least 2"))
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
