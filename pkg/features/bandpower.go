package features

import (
	"fmt"
	"math/cmplx"
	"time"

	"gonum.org/v1/gonum/dsp/fourier"
)

// bandpower computes the energy of the window within [low, high] cycles per
// sample. The window must lie on a uniform time grid; Resample handles
// irregular series upstream. Power is normalized by the squared window length
// so the value is scale-stable across window sizes.
func bandpower(window []float64, low, high float64) float64 {
	n := len(window)
	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, window)

	var power float64
	for k, c := range coeffs {
		freq := float64(k) / float64(n)
		if freq < low || freq > high {
			continue
		}
		mag := cmplx.Abs(c)
		power += mag * mag
	}
	return power / float64(n*n)
}

// Resample linearly interpolates an irregularly sampled series onto a uniform
// grid with the given interval, starting at the first timestamp. The spectral
// bandpower feature requires evenly spaced samples; callers with irregular
// ingestion must resample before feature extraction.
func Resample(times []time.Time, values []float64, interval time.Duration) ([]time.Time, []float64, error) {
	if len(times) != len(values) {
		return nil, nil, fmt.Errorf("times and values length mismatch: %d vs %d", len(times), len(values))
	}
	if len(times) < 2 {
		return nil, nil, fmt.Errorf("resampling needs at least 2 samples, got %d", len(times))
	}
	if interval <= 0 {
		return nil, nil, fmt.Errorf("resample interval must be positive, got %v", interval)
	}
	for i := 1; i < len(times); i++ {
		if !times[i].After(times[i-1]) {
			return nil, nil, fmt.Errorf("timestamps must be strictly increasing, violated at index %d", i)
		}
	}

	var (
		outTimes  []time.Time
		outValues []float64
		src       = 0
	)
	for t := times[0]; !t.After(times[len(times)-1]); t = t.Add(interval) {
		for src < len(times)-2 && times[src+1].Before(t) {
			src++
		}
		t0, t1 := times[src], times[src+1]
		v0, v1 := values[src], values[src+1]
		frac := float64(t.Sub(t0)) / float64(t1.Sub(t0))
		if frac < 0 {
			frac = 0
		}
		if frac > 1 {
			frac = 1
		}
		outTimes = append(outTimes, t)
		outValues = append(outValues, v0+frac*(v1-v0))
	}
	return outTimes, outValues, nil
}
