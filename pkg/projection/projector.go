// Package projection estimates hours remaining until an asset's score trend
// crosses the critical (orange_max) threshold. This is a transparent linear
// extrapolation over recent history, deliberately not a forecasting model.
package projection

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/TheClassicTechno/LiveWire-sub000/pkg/domain"
)

// Config holds the trailing window length, in samples, that the trend line is
// fit over.
type Config struct {
	Window int `yaml:"window" json:"window"`
}

// DefaultConfig returns the stock 288-point window (~1 day at 5-minute
// sampling).
func DefaultConfig() Config {
	return Config{Window: 288}
}

// Validate checks the window length.
func (c Config) Validate() error {
	if c.Window < 2 {
		return fmt.Errorf("projection window must be at least 2, got %d", c.Window)
	}
	return nil
}

// Point is one scored observation in an asset's history.
type Point struct {
	Timestamp time.Time
	Score     float64
}

// Projector fits an ordinary least squares line over the trailing score
// window and extrapolates to the critical threshold.
type Projector struct {
	cfg Config
}

// NewProjector validates the config and returns a projector.
func NewProjector(cfg Config) (*Projector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid projection config: %w", err)
	}
	return &Projector{cfg: cfg}, nil
}

// TimeLeft returns the projected hours until the score trend crosses critical.
// Boundary semantics, in priority order:
//   - the newest score already at or above critical yields exactly 0;
//   - a flat or improving trend (slope <= 0) yields +Inf, which signals "no
//     imminent breach", not an error;
//   - fewer than two points carries no trend evidence and also yields +Inf.
//
// Points must be in time order; only the trailing window is used.
func (p *Projector) TimeLeft(points []Point, critical float64) domain.Hours {
	if len(points) == 0 {
		return domain.InfiniteHours()
	}

	if points[len(points)-1].Score >= critical {
		return 0
	}
	if len(points) < 2 {
		return domain.InfiniteHours()
	}

	window := points
	if len(window) > p.cfg.Window {
		window = window[len(window)-p.cfg.Window:]
	}

	// Hours relative to the newest point, so the intercept is the fitted
	// score "now" and the crossing solves directly in hours from now.
	newest := window[len(window)-1].Timestamp
	xs := make([]float64, len(window))
	ys := make([]float64, len(window))
	for i, pt := range window {
		xs[i] = pt.Timestamp.Sub(newest).Hours()
		ys[i] = pt.Score
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	if slope <= 0 {
		return domain.InfiniteHours()
	}

	t := (critical - intercept) / slope
	if t < 0 {
		return 0
	}
	return domain.Hours(t)
}
