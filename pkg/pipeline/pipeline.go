// Package pipeline composes feature extraction, risk scoring, threshold
// calibration, and failure-time projection into a fit/score/persist lifecycle.
// A pipeline is Unfit until Fit learns zone thresholds from a healthy
// baseline; Score is then callable repeatedly, independently per asset.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/TheClassicTechno/LiveWire-sub000/pkg/calibration"
	"github.com/TheClassicTechno/LiveWire-sub000/pkg/config"
	"github.com/TheClassicTechno/LiveWire-sub000/pkg/domain"
	"github.com/TheClassicTechno/LiveWire-sub000/pkg/features"
	"github.com/TheClassicTechno/LiveWire-sub000/pkg/projection"
	"github.com/TheClassicTechno/LiveWire-sub000/pkg/scoring"
)

// Pipeline orchestrates the scoring components for any number of assets.
// Rolling feature state is never shared between assets and, in batch mode, is
// recomputed from the supplied history on every Score call.
type Pipeline struct {
	logger *zap.Logger
	cfg    *config.Config

	scorer     *scoring.Scorer
	calibrator *calibration.Calibrator
	projector  *projection.Projector

	// Learned once by Fit, immutable afterwards until explicit retrain.
	mu         sync.RWMutex
	thresholds *calibration.Thresholds

	// OTEL instrumentation
	readingsScored metric.Int64Counter
	scoringTime    metric.Float64Histogram
	averageScore   metric.Float64Gauge
}

// New creates an unfit pipeline with the given configuration. Fit must be
// called before Score.
func New(logger *zap.Logger, cfg *config.Config) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	scorer, err := scoring.NewScorer(logger, cfg.Scoring)
	if err != nil {
		return nil, err
	}
	calibrator, err := calibration.NewCalibrator(logger, cfg.Calibration)
	if err != nil {
		return nil, err
	}
	projector, err := projection.NewProjector(cfg.Projection)
	if err != nil {
		return nil, err
	}

	meter := otel.Meter("livewire.pipeline")

	readingsScored, err := meter.Int64Counter(
		"pipeline_readings_scored_total",
		metric.WithDescription("Total number of readings scored"),
	)
	if err != nil {
		logger.Warn("Failed to create readings scored counter", zap.Error(err))
	}

	scoringTime, err := meter.Float64Histogram(
		"pipeline_score_duration_ms",
		metric.WithDescription("Time taken by a Score call in milliseconds"),
	)
	if err != nil {
		logger.Warn("Failed to create scoring time histogram", zap.Error(err))
	}

	averageScore, err := meter.Float64Gauge(
		"pipeline_average_score",
		metric.WithDescription("Average score of the last batch (0=healthy, 1=critical)"),
	)
	if err != nil {
		logger.Warn("Failed to create average score gauge", zap.Error(err))
	}

	return &Pipeline{
		logger:         logger,
		cfg:            cfg,
		scorer:         scorer,
		calibrator:     calibrator,
		projector:      projector,
		readingsScored: readingsScored,
		scoringTime:    scoringTime,
		averageScore:   averageScore,
	}, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() *config.Config { return p.cfg }

// Thresholds returns the learned thresholds and whether Fit has run.
func (p *Pipeline) Thresholds() (calibration.Thresholds, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.thresholds == nil {
		return calibration.Thresholds{}, false
	}
	return *p.thresholds, true
}

// Fit learns zone thresholds from a trusted healthy-baseline period. The
// baseline must be disjoint from data scored later: calibrating on the
// evaluation set invalidates the zones. Per-asset rolling buffers are not
// retained beyond this call. Calling Fit again retrains from scratch.
func (p *Pipeline) Fit(ctx context.Context, baseline []domain.Reading) error {
	groups, err := groupByAsset(baseline)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		return fmt.Errorf("cannot fit on an empty baseline")
	}

	var (
		mu     sync.Mutex
		scores []float64
		wg     sync.WaitGroup
	)
	for _, g := range groups {
		wg.Add(1)
		go func(g assetGroup) {
			defer wg.Done()
			extractor := features.NewExtractor(p.cfg.Features)
			local := make([]float64, 0, len(g.indices))
			for _, idx := range g.indices {
				vec := extractor.Push(baseline[idx])
				if score, ok := p.scorer.Score(vec); ok {
					local = append(local, score)
				}
			}
			mu.Lock()
			scores = append(scores, local...)
			mu.Unlock()
		}(g)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	if len(scores) == 0 {
		return fmt.Errorf("baseline produced no warm samples: need at least %d readings per asset",
			p.cfg.Features.WarmupSamples())
	}

	thresholds, err := p.calibrator.Fit(scores)
	if err != nil {
		return fmt.Errorf("threshold calibration failed: %w", err)
	}

	p.mu.Lock()
	p.thresholds = &thresholds
	p.mu.Unlock()

	p.logger.Info("pipeline fit complete",
		zap.Int("baseline_readings", len(baseline)),
		zap.Int("assets", len(groups)),
		zap.Int("warm_scores", len(scores)),
	)
	return nil
}

// Score augments each reading with its score, zone, and projected time to
// breach. Rolling statistics are recomputed from each asset's full supplied
// history within the call; no state carries over between Score calls. Inputs
// are not mutated, and the output preserves input order. Assets are processed
// in parallel; rolling state is strictly per-asset.
func (p *Pipeline) Score(ctx context.Context, readings []domain.Reading) ([]domain.ScoredReading, error) {
	p.mu.RLock()
	thresholds := p.thresholds
	p.mu.RUnlock()
	if thresholds == nil {
		return nil, domain.ErrCalibrationNotFit
	}

	start := time.Now()
	defer func() {
		if p.scoringTime != nil {
			p.scoringTime.Record(ctx, time.Since(start).Seconds()*1000)
		}
	}()

	groups, err := groupByAsset(readings)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ScoredReading, len(readings))
	errCh := make(chan error, len(groups))
	var wg sync.WaitGroup
	for _, g := range groups {
		wg.Add(1)
		go func(g assetGroup) {
			defer wg.Done()
			if err := p.scoreAsset(readings, g, *thresholds, out); err != nil {
				errCh <- err
			}
		}(g)
	}
	wg.Wait()
	close(errCh)
	if err := <-errCh; err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sum float64
	var warm int64
	for _, sr := range out {
		if sr.Warm {
			sum += sr.Score
			warm++
		}
	}
	if p.readingsScored != nil {
		p.readingsScored.Add(ctx, int64(len(out)), metric.WithAttributes(
			attribute.Int("assets", len(groups)),
		))
	}
	if p.averageScore != nil && warm > 0 {
		p.averageScore.Record(ctx, sum/float64(warm))
	}

	return out, nil
}

// scoreAsset walks one asset's history in time order, filling output slots at
// the original input indices.
func (p *Pipeline) scoreAsset(readings []domain.Reading, g assetGroup, thresholds calibration.Thresholds, out []domain.ScoredReading) error {
	extractor := features.NewExtractor(p.cfg.Features)
	history := make([]projection.Point, 0, len(g.indices))

	for _, idx := range g.indices {
		r := readings[idx]
		vec := extractor.Push(r)

		score, ok := p.scorer.Score(vec)
		if !ok {
			// Still warming up: the zone is explicitly pending, never green.
			out[idx] = domain.ScoredReading{
				Reading:  r,
				Zone:     domain.ZonePending,
				TimeLeft: domain.InfiniteHours(),
			}
			continue
		}

		zone, err := thresholds.Zone(score)
		if err != nil {
			return fmt.Errorf("zone lookup for asset %s: %w", g.id, err)
		}

		history = append(history, projection.Point{Timestamp: r.Timestamp, Score: score})
		out[idx] = domain.ScoredReading{
			Reading:  r,
			Score:    score,
			Zone:     zone,
			TimeLeft: p.projector.TimeLeft(history, thresholds.OrangeMax),
			Warm:     true,
		}
	}
	return nil
}

// assetGroup is the input positions belonging to one asset, in input order.
type assetGroup struct {
	id      string
	indices []int
}

// groupByAsset validates every reading and splits the batch per asset while
// preserving input order. Timestamps must be strictly increasing within an
// asset; violations are rejected, never reordered.
func groupByAsset(readings []domain.Reading) ([]assetGroup, error) {
	byID := make(map[string]int)
	var groups []assetGroup
	lastSeen := make(map[string]time.Time)

	for i, r := range readings {
		if err := r.Validate(i); err != nil {
			return nil, err
		}
		if prev, ok := lastSeen[r.AssetID]; ok && !r.Timestamp.After(prev) {
			return nil, &domain.MalformedInputError{
				Index:   i,
				AssetID: r.AssetID,
				Field:   "timestamp",
				Reason:  fmt.Sprintf("timestamp %s is not after previous reading at %s", r.Timestamp.Format(time.RFC3339Nano), prev.Format(time.RFC3339Nano)),
			}
		}
		lastSeen[r.AssetID] = r.Timestamp

		gi, ok := byID[r.AssetID]
		if !ok {
			gi = len(groups)
			byID[r.AssetID] = gi
			groups = append(groups, assetGroup{id: r.AssetID})
		}
		groups[gi].indices = append(groups[gi].indices, i)
	}
	return groups, nil
}
