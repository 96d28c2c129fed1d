// Package features converts a time-ordered sequence of raw readings for one
// asset into multi-scale smoothed, volatility, trend, and spectral features.
package features

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/TheClassicTechno/LiveWire-sub000/pkg/domain"
)

// Config holds the window sizes and spectral band for feature extraction.
// Windows are sample counts; the band is expressed in cycles per sample over
// a uniform grid.
type Config struct {
	ShortWindow int `yaml:"short_window" json:"short_window"`
	MidWindow   int `yaml:"mid_window" json:"mid_window"`
	LongWindow  int `yaml:"long_window" json:"long_window"`

	BandWindow int     `yaml:"band_window" json:"band_window"`
	BandLow    float64 `yaml:"band_low" json:"band_low"`
	BandHigh   float64 `yaml:"band_high" json:"band_high"`
}

// DefaultConfig returns the stock windows: short ~1 hour, mid ~1 day, long
// ~1 week at a 5-minute sampling interval.
func DefaultConfig() Config {
	return Config{
		ShortWindow: 12,
		MidWindow:   288,
		LongWindow:  2016,
		BandWindow:  64,
		BandLow:     0.1,
		BandHigh:    0.4,
	}
}

// Validate checks window ordering and band bounds.
func (c Config) Validate() error {
	if c.ShortWindow < 2 {
		return fmt.Errorf("short_window must be at least 2, got %d", c.ShortWindow)
	}
	if !(c.ShortWindow < c.MidWindow && c.MidWindow < c.LongWindow) {
		return fmt.Errorf("windows must satisfy short < mid < long, got %d/%d/%d",
			c.ShortWindow, c.MidWindow, c.LongWindow)
	}
	if c.BandWindow < 4 {
		return fmt.Errorf("band_window must be at least 4, got %d", c.BandWindow)
	}
	if !(c.BandLow >= 0 && c.BandLow < c.BandHigh && c.BandHigh <= 0.5) {
		return fmt.Errorf("band must satisfy 0 <= low < high <= 0.5 cycles/sample, got [%g, %g]",
			c.BandLow, c.BandHigh)
	}
	return nil
}

// WarmupSamples is the number of samples required before every feature in the
// vector is available.
func (c Config) WarmupSamples() int {
	if c.BandWindow > c.LongWindow {
		return c.BandWindow
	}
	return c.LongWindow
}

// ChannelFeatures are the smoothed values for one sensor channel.
type ChannelFeatures struct {
	Short float64
	Mid   float64
	Long  float64

	// Stress is the short EWMA minus the long EWMA: deviation from the
	// asset's own established baseline. It is only meaningful once the long
	// window has warmed; StressValid distinguishes "unavailable" from "zero
	// stress".
	Stress      float64
	StressValid bool
}

// Vector is the derived feature set for one reading position.
type Vector struct {
	Index int

	Vibration   ChannelFeatures
	Temperature ChannelFeatures
	Strain      ChannelFeatures

	// Wind is nil when the reading stream never reported wind speed.
	Wind *ChannelFeatures

	AgeYears float64
	HasAge   bool

	// Short-window volatility and local rate of change of the vibration
	// channel.
	ShortStd        float64
	ShortStdValid   bool
	ShortSlope      float64
	ShortSlopeValid bool

	// Energy of the vibration channel within the configured frequency band.
	Bandpower      float64
	BandpowerValid bool

	// Warm is true once every window (including the spectral one) has enough
	// history. Downstream scoring must not interpret a non-warm vector.
	Warm bool
}

// ewma is the standard recurrence S_t = alpha*x_t + (1-alpha)*S_{t-1} with
// alpha = 2/(N+1), seeded by the first observed value.
type ewma struct {
	alpha  float64
	window int
	value  float64
	n      int
}

func newEWMA(window int) ewma {
	return ewma{alpha: 2.0 / (float64(window) + 1.0), window: window}
}

func (e *ewma) push(x float64) {
	if e.n == 0 {
		e.value = x
	} else {
		e.value = e.alpha*x + (1-e.alpha)*e.value
	}
	e.n++
}

func (e *ewma) warm() bool { return e.n >= e.window }

type channelState struct {
	short ewma
	mid   ewma
	long  ewma
}

func newChannelState(cfg Config) channelState {
	return channelState{
		short: newEWMA(cfg.ShortWindow),
		mid:   newEWMA(cfg.MidWindow),
		long:  newEWMA(cfg.LongWindow),
	}
}

func (s *channelState) push(x float64) {
	s.short.push(x)
	s.mid.push(x)
	s.long.push(x)
}

func (s *channelState) features() ChannelFeatures {
	f := ChannelFeatures{
		Short: s.short.value,
		Mid:   s.mid.value,
		Long:  s.long.value,
	}
	if s.long.warm() {
		f.Stress = s.short.value - s.long.value
		f.StressValid = true
	}
	return f
}

// Extractor accumulates rolling state for a single asset. It assumes a
// uniform sample grid; irregular series must go through Resample first. State
// is strictly per-asset: never feed readings from different assets into the
// same extractor.
type Extractor struct {
	cfg  Config
	n    int
	vib  channelState
	temp channelState
	strn channelState
	wind *channelState

	// Trailing vibration samples, capped at the larger of the short and
	// spectral windows.
	vibTail []float64
	tailCap int
}

// NewExtractor creates a fresh per-asset extractor. The config must already
// be validated.
func NewExtractor(cfg Config) *Extractor {
	tailCap := cfg.ShortWindow
	if cfg.BandWindow > tailCap {
		tailCap = cfg.BandWindow
	}
	return &Extractor{
		cfg:     cfg,
		vib:     newChannelState(cfg),
		temp:    newChannelState(cfg),
		strn:    newChannelState(cfg),
		tailCap: tailCap,
		vibTail: make([]float64, 0, tailCap),
	}
}

// Push consumes the next reading in time order and returns the feature vector
// at that position. Features whose windows lack history are marked
// unavailable rather than defaulting to zero.
func (e *Extractor) Push(r domain.Reading) Vector {
	e.vib.push(r.Vibration)
	e.temp.push(r.Temperature)
	e.strn.push(r.Strain)

	if r.WindSpeed != nil {
		if e.wind == nil {
			ws := newChannelState(e.cfg)
			e.wind = &ws
		}
		e.wind.push(*r.WindSpeed)
	}

	if len(e.vibTail) == e.tailCap {
		copy(e.vibTail, e.vibTail[1:])
		e.vibTail = e.vibTail[:e.tailCap-1]
	}
	e.vibTail = append(e.vibTail, r.Vibration)

	v := Vector{
		Index:       e.n,
		Vibration:   e.vib.features(),
		Temperature: e.temp.features(),
		Strain:      e.strn.features(),
	}
	e.n++

	if e.wind != nil {
		wf := e.wind.features()
		v.Wind = &wf
	}
	if r.AgeYears != nil {
		v.AgeYears = *r.AgeYears
		v.HasAge = true
	}

	if short := e.shortTail(); short != nil {
		v.ShortStd = stat.StdDev(short, nil)
		v.ShortStdValid = true

		xs := make([]float64, len(short))
		for i := range xs {
			xs[i] = float64(i)
		}
		_, slope := stat.LinearRegression(xs, short, nil, false)
		v.ShortSlope = slope
		v.ShortSlopeValid = true
	}

	if len(e.vibTail) >= e.cfg.BandWindow {
		window := e.vibTail[len(e.vibTail)-e.cfg.BandWindow:]
		v.Bandpower = bandpower(window, e.cfg.BandLow, e.cfg.BandHigh)
		v.BandpowerValid = true
	}

	v.Warm = e.n >= e.cfg.WarmupSamples()
	return v
}

// Count returns the number of samples consumed so far.
func (e *Extractor) Count() int { return e.n }

func (e *Extractor) shortTail() []float64 {
	if len(e.vibTail) < e.cfg.ShortWindow {
		return nil
	}
	return e.vibTail[len(e.vibTail)-e.cfg.ShortWindow:]
}
