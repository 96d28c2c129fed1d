package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/TheClassicTechno/LiveWire-sub000/pkg/domain"
	"github.com/TheClassicTechno/LiveWire-sub000/pkg/features"
	"github.com/TheClassicTechno/LiveWire-sub000/pkg/projection"
)

// Session is the incremental scoring variant. Unlike Pipeline.Score, which
// recomputes rolling state from the full supplied history on every call, a
// session carries per-asset rolling buffers across Process calls. Buffers are
// an explicit map owned by the session, never module-level state, and score
// history is capped at the projection window to bound memory. Access is
// mutex-guarded: one writer per asset is the caller's discipline, the session
// only guarantees the map itself stays consistent.
type Session struct {
	pipe       *Pipeline
	mu         sync.Mutex
	assetState map[string]*assetState
}

type assetState struct {
	extractor *features.Extractor
	history   []projection.Point
	last      time.Time
}

// NewSession creates an incremental scoring session. The pipeline must be
// fit; the session reads its thresholds and never mutates them.
func (p *Pipeline) NewSession() (*Session, error) {
	if _, ok := p.Thresholds(); !ok {
		return nil, domain.ErrCalibrationNotFit
	}
	return &Session{
		pipe:       p,
		assetState: make(map[string]*assetState),
	}, nil
}

// Process scores a single reading against the asset's carried-forward rolling
// state. Readings must arrive in strict time order per asset; an earlier or
// equal timestamp is rejected as malformed, never reordered.
func (s *Session) Process(ctx context.Context, r domain.Reading) (domain.ScoredReading, error) {
	if err := ctx.Err(); err != nil {
		return domain.ScoredReading{}, err
	}
	if err := r.Validate(0); err != nil {
		return domain.ScoredReading{}, err
	}

	thresholds, ok := s.pipe.Thresholds()
	if !ok {
		return domain.ScoredReading{}, domain.ErrCalibrationNotFit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, exists := s.assetState[r.AssetID]
	if !exists {
		state = &assetState{extractor: features.NewExtractor(s.pipe.cfg.Features)}
		s.assetState[r.AssetID] = state
	}
	if !state.last.IsZero() && !r.Timestamp.After(state.last) {
		return domain.ScoredReading{}, &domain.MalformedInputError{
			AssetID: r.AssetID,
			Field:   "timestamp",
			Reason: fmt.Sprintf("timestamp %s is not after previous reading at %s",
				r.Timestamp.Format(time.RFC3339Nano), state.last.Format(time.RFC3339Nano)),
		}
	}
	state.last = r.Timestamp

	vec := state.extractor.Push(r)
	score, warm := s.pipe.scorer.Score(vec)
	if !warm {
		return domain.ScoredReading{
			Reading:  r,
			Zone:     domain.ZonePending,
			TimeLeft: domain.InfiniteHours(),
		}, nil
	}

	zone, err := thresholds.Zone(score)
	if err != nil {
		return domain.ScoredReading{}, err
	}

	state.history = append(state.history, projection.Point{Timestamp: r.Timestamp, Score: score})
	if window := s.pipe.cfg.Projection.Window; len(state.history) > window {
		state.history = state.history[len(state.history)-window:]
	}

	return domain.ScoredReading{
		Reading:  r,
		Score:    score,
		Zone:     zone,
		TimeLeft: s.pipe.projector.TimeLeft(state.history, thresholds.OrangeMax),
		Warm:     true,
	}, nil
}

// Reset drops the rolling state for one asset; the next reading starts a
// fresh warm-up.
func (s *Session) Reset(assetID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.assetState, assetID)
	s.pipe.logger.Debug("session state reset", zap.String("asset_id", assetID))
}

// Evict is Reset under the name callers use when shedding idle assets.
func (s *Session) Evict(assetID string) { s.Reset(assetID) }

// Assets lists the asset ids with live rolling state, sorted for stable
// output.
func (s *Session) Assets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.assetState))
	for id := range s.assetState {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
