package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TheClassicTechno/LiveWire-sub000/pkg/features"
)

func warmVector(vibStress, tempStress, strainStress, bandpower float64) features.Vector {
	return features.Vector{
		Vibration:      features.ChannelFeatures{Stress: vibStress, StressValid: true},
		Temperature:    features.ChannelFeatures{Stress: tempStress, StressValid: true},
		Strain:         features.ChannelFeatures{Stress: strainStress, StressValid: true},
		Bandpower:      bandpower,
		BandpowerValid: true,
		Warm:           true,
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 0.50, cfg.VibrationWeight)
	assert.Equal(t, 0.30, cfg.TemperatureWeight)
	assert.Equal(t, 0.20, cfg.StrainWeight)
	assert.Equal(t, 0.60, cfg.BandpowerWeight)
	assert.Equal(t, 0.0, cfg.WindWeight)
	assert.Equal(t, 0.0, cfg.AgeWeight)
	assert.Equal(t, 1.0, cfg.VibrationScale)
	assert.Equal(t, 10.0, cfg.TemperatureScale)
	assert.Equal(t, 1.0, cfg.StrainScale)
	assert.Equal(t, 10.0, cfg.WindScale)
	require.NoError(t, cfg.Validate())
}

func TestConfigValidateRejectsDegenerate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"NaN weight", func(c *Config) { c.VibrationWeight = math.NaN() }},
		{"infinite weight", func(c *Config) { c.BandpowerWeight = math.Inf(1) }},
		{"zero steepness", func(c *Config) { c.Steepness = 0 }},
		{"negative steepness", func(c *Config) { c.Steepness = -2 }},
		{"infinite midpoint", func(c *Config) { c.Midpoint = math.Inf(-1) }},
		{"zero scale", func(c *Config) { c.TemperatureScale = 0 }},
		{"negative scale", func(c *Config) { c.VibrationScale = -1 }},
		{"NaN scale", func(c *Config) { c.WindScale = math.NaN() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())

			_, err := NewScorer(zap.NewNop(), cfg)
			assert.Error(t, err)
		})
	}
}

func TestScoreKnownValue(t *testing.T) {
	scorer, err := NewScorer(zap.NewNop(), DefaultConfig())
	require.NoError(t, err)

	// A 10-degree temperature delta is one stress unit at the stock scale:
	// z = 0.5*1/1 + 0.3*10/10 + 0.2*1/1 + 0.6*1/1 = 1.6; score = 1/(1+e^-(1.6-1.0))
	score, ok := scorer.Score(warmVector(1, 10, 1, 1))
	require.True(t, ok)
	assert.InDelta(t, 1.0/(1.0+math.Exp(-0.6)), score, 1e-12)
}

func TestScoreScalesNormalizeChannelUnits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TemperatureScale = 5.0
	scorer, err := NewScorer(zap.NewNop(), cfg)
	require.NoError(t, err)

	// Halving the scale doubles the stress contribution for the same delta.
	loose, _ := mustScore(t, scorer, warmVector(0, 2.5, 0, 0))
	stock, err := NewScorer(zap.NewNop(), DefaultConfig())
	require.NoError(t, err)
	tight, _ := mustScore(t, stock, warmVector(0, 2.5, 0, 0))
	assert.Greater(t, loose, tight)
}

func mustScore(t *testing.T, s *Scorer, v features.Vector) (float64, bool) {
	t.Helper()
	score, ok := s.Score(v)
	require.True(t, ok)
	return score, ok
}

func TestCalmTemperatureSwingsScoreLow(t *testing.T) {
	scorer, err := NewScorer(zap.NewNop(), DefaultConfig())
	require.NoError(t, err)

	// Stress deltas observed on a healthy asset whose temperature wanders
	// across a ten-degree operating range must not push the score past 0.3:
	// degrees are tens-of-units raw and would otherwise dominate the sum.
	for _, tempStress := range []float64{-2.5, -1, 0, 1, 2.5} {
		score, ok := scorer.Score(warmVector(0.04, tempStress, 0.005, 0.001))
		require.True(t, ok)
		assert.Less(t, score, 0.3, "temperature stress %g", tempStress)
	}
}

func TestScoreBoundedForExtremeInputs(t *testing.T) {
	scorer, err := NewScorer(zap.NewNop(), DefaultConfig())
	require.NoError(t, err)

	extremes := []float64{-1e9, -1e3, -1, 0, 1, 1e3, 1e9}
	for _, v := range extremes {
		score, ok := scorer.Score(warmVector(v, v, v, math.Abs(v)))
		require.True(t, ok)
		assert.GreaterOrEqual(t, score, 0.0, "stress %g", v)
		assert.LessOrEqual(t, score, 1.0, "stress %g", v)
	}
}

func TestScoreMonotoneInStress(t *testing.T) {
	scorer, err := NewScorer(zap.NewNop(), DefaultConfig())
	require.NoError(t, err)

	prev := -1.0
	for stress := -2.0; stress <= 2.0; stress += 0.25 {
		score, ok := scorer.Score(warmVector(stress, 0, 0, 0))
		require.True(t, ok)
		assert.Greater(t, score, prev)
		prev = score
	}
}

func TestScoreRefusesNonWarmVector(t *testing.T) {
	scorer, err := NewScorer(zap.NewNop(), DefaultConfig())
	require.NoError(t, err)

	v := warmVector(5, 5, 5, 5)
	v.Warm = false
	_, ok := scorer.Score(v)
	assert.False(t, ok, "a non-warm vector has no score, not a healthy one")

	v = warmVector(5, 5, 5, 5)
	v.Vibration.StressValid = false
	_, ok = scorer.Score(v)
	assert.False(t, ok)
}

func TestOptionalChannelsContributeOnlyWhenWeighted(t *testing.T) {
	cfg := DefaultConfig()
	scorer, err := NewScorer(zap.NewNop(), cfg)
	require.NoError(t, err)

	v := warmVector(0.5, 0, 0, 0)
	baselineScore, ok := scorer.Score(v)
	require.True(t, ok)

	// With zero weights, wind and age must not move the score.
	wind := features.ChannelFeatures{Stress: 10, StressValid: true}
	v.Wind = &wind
	v.AgeYears = 80
	v.HasAge = true
	score, ok := scorer.Score(v)
	require.True(t, ok)
	assert.Equal(t, baselineScore, score)

	// With a positive wind weight the same vector scores higher.
	cfg.WindWeight = 0.4
	weighted, err := NewScorer(zap.NewNop(), cfg)
	require.NoError(t, err)
	score, ok = weighted.Score(v)
	require.True(t, ok)
	assert.Greater(t, score, baselineScore)
}
