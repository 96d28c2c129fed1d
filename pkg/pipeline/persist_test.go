package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TheClassicTechno/LiveWire-sub000/pkg/domain"
)

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSaveWritesVersionedArtifact(t *testing.T) {
	pipe := fitPipeline(t)

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, pipe.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var art map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &art))
	assert.Contains(t, art, "schema_version")
	assert.Contains(t, art, "artifact_id")
	assert.Contains(t, art, "created_at")
	assert.Contains(t, art, "config")
	assert.Contains(t, art, "thresholds")

	var version int
	require.NoError(t, json.Unmarshal(art["schema_version"], &version))
	assert.Equal(t, schemaVersion, version)
}

func TestLoadRejectsBadArtifacts(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "thresholds: nope"},
		{"wrong schema version", `{"schema_version": 99, "config": {}, "thresholds": {"green_max": 0.2, "yellow_max": 0.4, "orange_max": 0.6}}`},
		{"missing thresholds", `{"schema_version": 1, "config": {}}`},
		{"missing config", `{"schema_version": 1, "thresholds": {"green_max": 0.2, "yellow_max": 0.4, "orange_max": 0.6}}`},
		{"non-increasing thresholds", `{"schema_version": 1, "config": {}, "thresholds": {"green_max": 0.6, "yellow_max": 0.4, "orange_max": 0.2}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeArtifact(t, tt.content)

			_, err := Load(path, zap.NewNop())
			var mismatch *domain.PersistenceMismatchError
			require.ErrorAs(t, err, &mismatch)
			assert.Equal(t, path, mismatch.Path)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"), zap.NewNop())
	assert.ErrorContains(t, err, "failed to read artifact")
}
