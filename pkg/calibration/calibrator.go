// Package calibration learns ordinal risk-zone cut points from the score
// distribution of a trusted healthy-baseline period. Calibrating on data that
// will later be scored is a correctness violation: the pipeline fits once on
// baseline input and reuses the resulting thresholds for every scoring call.
package calibration

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/TheClassicTechno/LiveWire-sub000/pkg/domain"
)

// Config holds the baseline percentiles that become the zone cut points.
type Config struct {
	GreenPercentile  float64 `yaml:"green_percentile" json:"green_percentile"`
	YellowPercentile float64 `yaml:"yellow_percentile" json:"yellow_percentile"`
	OrangePercentile float64 `yaml:"orange_percentile" json:"orange_percentile"`
}

// DefaultConfig returns the stock 80/95/99 percentiles.
func DefaultConfig() Config {
	return Config{
		GreenPercentile:  0.80,
		YellowPercentile: 0.95,
		OrangePercentile: 0.99,
	}
}

// Validate checks percentile ordering and bounds.
func (c Config) Validate() error {
	if !(c.GreenPercentile > 0 && c.GreenPercentile < c.YellowPercentile &&
		c.YellowPercentile < c.OrangePercentile && c.OrangePercentile < 1) {
		return fmt.Errorf("percentiles must satisfy 0 < green < yellow < orange < 1, got %g/%g/%g",
			c.GreenPercentile, c.YellowPercentile, c.OrangePercentile)
	}
	return nil
}

// Thresholds are the learned zone cut points: strictly increasing, immutable
// once fit, and threaded explicitly through every score/zone/save/load call.
// The zero value is unfit and unusable.
type Thresholds struct {
	GreenMax  float64 `json:"green_max" yaml:"green_max"`
	YellowMax float64 `json:"yellow_max" yaml:"yellow_max"`
	OrangeMax float64 `json:"orange_max" yaml:"orange_max"`
}

// Validate reports whether the thresholds are strictly increasing and finite.
func (t Thresholds) Validate() error {
	for _, v := range []float64{t.GreenMax, t.YellowMax, t.OrangeMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("thresholds must be finite, got %+v", t)
		}
	}
	if !(t.GreenMax < t.YellowMax && t.YellowMax < t.OrangeMax) {
		return fmt.Errorf("thresholds must be strictly increasing, got %+v", t)
	}
	return nil
}

// Zone maps a score to its risk zone. A zero (unfit) Thresholds value is a
// fatal error, never a silent default.
func (t Thresholds) Zone(score float64) (domain.Zone, error) {
	if t == (Thresholds{}) {
		return "", domain.ErrCalibrationNotFit
	}
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrCalibrationNotFit, err)
	}
	switch {
	case score < t.GreenMax:
		return domain.ZoneGreen, nil
	case score < t.YellowMax:
		return domain.ZoneYellow, nil
	case score < t.OrangeMax:
		return domain.ZoneOrange, nil
	default:
		return domain.ZoneRed, nil
	}
}

// Calibrator derives thresholds from baseline score distributions.
type Calibrator struct {
	logger *zap.Logger
	cfg    Config
}

// NewCalibrator validates the config and returns a calibrator.
func NewCalibrator(logger *zap.Logger, cfg Config) (*Calibrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid calibration config: %w", err)
	}
	return &Calibrator{logger: logger, cfg: cfg}, nil
}

// Fit computes percentile cut points over the baseline score distribution.
// Near-degenerate distributions (heavy ties) are nudged by the smallest
// increments that restore strict ordering.
func (c *Calibrator) Fit(baselineScores []float64) (Thresholds, error) {
	if len(baselineScores) == 0 {
		return Thresholds{}, fmt.Errorf("cannot calibrate on an empty baseline")
	}
	for i, s := range baselineScores {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return Thresholds{}, fmt.Errorf("baseline score %d is non-finite: %v", i, s)
		}
	}

	sorted := make([]float64, len(baselineScores))
	copy(sorted, baselineScores)
	sort.Float64s(sorted)

	t := Thresholds{
		GreenMax:  stat.Quantile(c.cfg.GreenPercentile, stat.Empirical, sorted, nil),
		YellowMax: stat.Quantile(c.cfg.YellowPercentile, stat.Empirical, sorted, nil),
		OrangeMax: stat.Quantile(c.cfg.OrangePercentile, stat.Empirical, sorted, nil),
	}

	// Ties collapse percentiles onto the same value; separate them so the
	// strictly-increasing invariant holds.
	if t.YellowMax <= t.GreenMax {
		t.YellowMax = math.Nextafter(t.GreenMax, math.Inf(1))
	}
	if t.OrangeMax <= t.YellowMax {
		t.OrangeMax = math.Nextafter(t.YellowMax, math.Inf(1))
	}

	if err := t.Validate(); err != nil {
		return Thresholds{}, fmt.Errorf("calibration produced invalid thresholds: %w", err)
	}

	c.logger.Info("calibrated zone thresholds",
		zap.Int("baseline_samples", len(baselineScores)),
		zap.Float64("green_max", t.GreenMax),
		zap.Float64("yellow_max", t.YellowMax),
		zap.Float64("orange_max", t.OrangeMax),
	)
	return t, nil
}
