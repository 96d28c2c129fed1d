// Package scoring combines a feature vector into one bounded health-risk
// score via a weighted linear combination passed through a logistic squash.
package scoring

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/TheClassicTechno/LiveWire-sub000/pkg/features"
)

// Config holds the channel weights and logistic parameters. These are the
// model's defining behavior, not incidental details: they are persisted with
// the fitted pipeline and must reproduce identical scores after reload.
type Config struct {
	VibrationWeight   float64 `yaml:"vibration_weight" json:"vibration_weight"`
	TemperatureWeight float64 `yaml:"temperature_weight" json:"temperature_weight"`
	StrainWeight      float64 `yaml:"strain_weight" json:"strain_weight"`
	BandpowerWeight   float64 `yaml:"bandpower_weight" json:"bandpower_weight"`

	// Weights for the optional channels. Zero by default so assets without
	// wind or age data score identically to the stock model.
	WindWeight float64 `yaml:"wind_weight" json:"wind_weight"`
	AgeWeight  float64 `yaml:"age_weight" json:"age_weight"`

	// Per-channel scale factors divide the raw stress deltas before
	// weighting. Channels report in different physical units; a channel's
	// scale is the swing, in its own units, that counts as one unit of
	// stress. Bandpower is squared vibration units and is divided by the
	// vibration scale squared.
	VibrationScale   float64 `yaml:"vibration_scale" json:"vibration_scale"`
	TemperatureScale float64 `yaml:"temperature_scale" json:"temperature_scale"`
	StrainScale      float64 `yaml:"strain_scale" json:"strain_scale"`
	WindScale        float64 `yaml:"wind_scale" json:"wind_scale"`

	// score = 1 / (1 + exp(-steepness * (z - midpoint)))
	Steepness float64 `yaml:"steepness" json:"steepness"`
	Midpoint  float64 `yaml:"midpoint" json:"midpoint"`
}

// DefaultConfig returns the stock weights and logistic. The midpoint sits
// above the healthy operating point (stress deltas near zero) so calm assets
// land well inside the green zone rather than at the logistic's center.
// Vibration and strain sensors report near unit scale; temperature and wind
// swing tens of units under normal operation, so one stress unit is a
// ten-unit delta for them.
func DefaultConfig() Config {
	return Config{
		VibrationWeight:   0.50,
		TemperatureWeight: 0.30,
		StrainWeight:      0.20,
		BandpowerWeight:   0.60,
		VibrationScale:    1.0,
		TemperatureScale:  10.0,
		StrainScale:       1.0,
		WindScale:         10.0,
		Steepness:         1.0,
		Midpoint:          1.0,
	}
}

// Validate rejects degenerate weight configurations.
func (c Config) Validate() error {
	for _, w := range []struct {
		name  string
		value float64
	}{
		{"vibration_weight", c.VibrationWeight},
		{"temperature_weight", c.TemperatureWeight},
		{"strain_weight", c.StrainWeight},
		{"bandpower_weight", c.BandpowerWeight},
		{"wind_weight", c.WindWeight},
		{"age_weight", c.AgeWeight},
		{"midpoint", c.Midpoint},
	} {
		if math.IsNaN(w.value) || math.IsInf(w.value, 0) {
			return fmt.Errorf("%s must be finite, got %v", w.name, w.value)
		}
	}
	if !(c.Steepness > 0) || math.IsInf(c.Steepness, 0) {
		return fmt.Errorf("steepness must be a positive finite value, got %v", c.Steepness)
	}
	for _, s := range []struct {
		name  string
		value float64
	}{
		{"vibration_scale", c.VibrationScale},
		{"temperature_scale", c.TemperatureScale},
		{"strain_scale", c.StrainScale},
		{"wind_scale", c.WindScale},
	} {
		if !(s.value > 0) || math.IsInf(s.value, 0) {
			return fmt.Errorf("%s must be a positive finite value, got %v", s.name, s.value)
		}
	}
	return nil
}

// Scorer maps warm feature vectors to scores in [0,1].
type Scorer struct {
	logger *zap.Logger
	cfg    Config
}

// NewScorer validates the config and returns a scorer.
func NewScorer(logger *zap.Logger, cfg Config) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring config: %w", err)
	}
	return &Scorer{logger: logger, cfg: cfg}, nil
}

// Config returns the scorer's configuration.
func (s *Scorer) Config() Config { return s.cfg }

// Score computes the bounded risk score for a feature vector. The second
// return is false when the vector has not warmed; a non-warm vector has no
// score, which is not the same as a healthy one.
func (s *Scorer) Score(v features.Vector) (float64, bool) {
	if !v.Warm || !v.Vibration.StressValid || !v.BandpowerValid {
		return 0, false
	}

	z := s.cfg.VibrationWeight*v.Vibration.Stress/s.cfg.VibrationScale +
		s.cfg.TemperatureWeight*v.Temperature.Stress/s.cfg.TemperatureScale +
		s.cfg.StrainWeight*v.Strain.Stress/s.cfg.StrainScale +
		s.cfg.BandpowerWeight*v.Bandpower/(s.cfg.VibrationScale*s.cfg.VibrationScale)

	if v.Wind != nil && v.Wind.StressValid {
		z += s.cfg.WindWeight * v.Wind.Stress / s.cfg.WindScale
	}
	if v.HasAge {
		z += s.cfg.AgeWeight * v.AgeYears
	}

	return logistic(z, s.cfg.Steepness, s.cfg.Midpoint), true
}

// logistic squashes any finite z into (0,1).
func logistic(z, steepness, midpoint float64) float64 {
	return 1.0 / (1.0 + math.Exp(-steepness*(z-midpoint)))
}
