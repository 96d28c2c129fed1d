package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TheClassicTechno/LiveWire-sub000/pkg/calibration"
	"github.com/TheClassicTechno/LiveWire-sub000/pkg/config"
	"github.com/TheClassicTechno/LiveWire-sub000/pkg/domain"
)

// schemaVersion is bumped whenever the artifact layout changes incompatibly.
// Load rejects any other version outright.
const schemaVersion = 1

// artifact is the persisted form of a fitted pipeline: the learned thresholds
// plus the configuration that produced them. A reloaded pipeline must score
// identical input identically, so nothing else is needed.
type artifact struct {
	SchemaVersion int                     `json:"schema_version"`
	ArtifactID    string                  `json:"artifact_id"`
	CreatedAt     time.Time               `json:"created_at"`
	Config        *config.Config          `json:"config"`
	Thresholds    *calibration.Thresholds `json:"thresholds"`
}

// Save persists the fitted thresholds and configuration to path. Saving an
// unfit pipeline is an error.
func (p *Pipeline) Save(path string) error {
	thresholds, ok := p.Thresholds()
	if !ok {
		return fmt.Errorf("cannot save: %w", domain.ErrCalibrationNotFit)
	}

	art := artifact{
		SchemaVersion: schemaVersion,
		ArtifactID:    uuid.NewString(),
		CreatedAt:     time.Now().UTC(),
		Config:        p.cfg,
		Thresholds:    &thresholds,
	}

	data, err := json.MarshalIndent(art, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}

	p.logger.Info("pipeline saved",
		zap.String("path", path),
		zap.String("artifact_id", art.ArtifactID),
	)
	return nil
}

// Load restores a fitted pipeline from a saved artifact. Incompatible or
// incomplete artifacts are rejected whole; nothing is partially applied.
func Load(path string, logger *zap.Logger) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	var art artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, &domain.PersistenceMismatchError{Path: path, Reason: fmt.Sprintf("not a valid artifact: %v", err)}
	}
	if art.SchemaVersion != schemaVersion {
		return nil, &domain.PersistenceMismatchError{
			Path:    path,
			Version: art.SchemaVersion,
			Reason:  fmt.Sprintf("unsupported schema version, want %d", schemaVersion),
		}
	}
	if art.Config == nil || art.Thresholds == nil {
		return nil, &domain.PersistenceMismatchError{
			Path:    path,
			Version: art.SchemaVersion,
			Reason:  "artifact is missing config or thresholds",
		}
	}
	if err := art.Thresholds.Validate(); err != nil {
		return nil, &domain.PersistenceMismatchError{
			Path:    path,
			Version: art.SchemaVersion,
			Reason:  err.Error(),
		}
	}

	p, err := New(logger, art.Config)
	if err != nil {
		return nil, &domain.PersistenceMismatchError{
			Path:    path,
			Version: art.SchemaVersion,
			Reason:  fmt.Sprintf("persisted config is invalid: %v", err),
		}
	}
	p.thresholds = art.Thresholds

	logger.Info("pipeline loaded",
		zap.String("path", path),
		zap.String("artifact_id", art.ArtifactID),
	)
	return p, nil
}
