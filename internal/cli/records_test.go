package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheClassicTechno/LiveWire-sub000/pkg/domain"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadRecordsCSV(t *testing.T) {
	path := writeTempFile(t, "readings.csv", `asset_id,timestamp,vibration,temperature,strain,wind_speed,age_years
bridge-1,2025-01-06T00:00:00Z,0.12,20.5,0.101,4.2,18
bridge-1,2025-01-06T00:05:00Z,0.14,20.6,0.102,,
`)

	readings, err := readRecords(path)
	require.NoError(t, err)
	require.Len(t, readings, 2)

	first := readings[0]
	assert.Equal(t, "bridge-1", first.AssetID)
	assert.Equal(t, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), first.Timestamp)
	assert.Equal(t, 0.12, first.Vibration)
	assert.Equal(t, 20.5, first.Temperature)
	assert.Equal(t, 0.101, first.Strain)
	require.NotNil(t, first.WindSpeed)
	assert.Equal(t, 4.2, *first.WindSpeed)
	require.NotNil(t, first.AgeYears)
	assert.Equal(t, 18.0, *first.AgeYears)

	// Empty optional cells mean the channel was not reported.
	assert.Nil(t, readings[1].WindSpeed)
	assert.Nil(t, readings[1].AgeYears)
}

func TestReadRecordsCSVErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{
			name: "missing required column",
			content: `asset_id,timestamp,vibration,temperature
bridge-1,2025-01-06T00:00:00Z,0.12,20.5
`,
			field: "strain",
		},
		{
			name: "non-numeric sensor value",
			content: `asset_id,timestamp,vibration,temperature,strain
bridge-1,2025-01-06T00:00:00Z,high,20.5,0.1
`,
			field: "vibration",
		},
		{
			name: "bad timestamp",
			content: `asset_id,timestamp,vibration,temperature,strain
bridge-1,yesterday,0.12,20.5,0.1
`,
			field: "timestamp",
		},
		{
			name: "missing asset id",
			content: `asset_id,timestamp,vibration,temperature,strain
,2025-01-06T00:00:00Z,0.12,20.5,0.1
`,
			field: "asset_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempFile(t, "readings.csv", tt.content)
			_, err := readRecords(path)

			var malformed *domain.MalformedInputError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, tt.field, malformed.Field)
		})
	}
}

func TestReadRecordsJSON(t *testing.T) {
	path := writeTempFile(t, "readings.json", `[
  {"asset_id": "bridge-1", "timestamp": "2025-01-06T00:00:00Z", "vibration": 0.12, "temperature": 20.5, "strain": 0.101, "wind_speed": 4.2},
  {"asset_id": "bridge-1", "timestamp": "2025-01-06T00:05:00Z", "vibration": 0.14, "temperature": 20.6, "strain": 0.102}
]`)

	readings, err := readRecords(path)
	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.Equal(t, 0.12, readings[0].Vibration)
	require.NotNil(t, readings[0].WindSpeed)
	assert.Equal(t, 4.2, *readings[0].WindSpeed)
	assert.Nil(t, readings[1].WindSpeed)
	assert.Nil(t, readings[1].AgeYears)
}

func TestReadRecordsJSONMissingField(t *testing.T) {
	// A zero-valued field is fine; an absent one is malformed.
	path := writeTempFile(t, "readings.json", `[
  {"asset_id": "bridge-1", "timestamp": "2025-01-06T00:00:00Z", "vibration": 0.12, "temperature": 20.5}
]`)

	_, err := readRecords(path)
	var malformed *domain.MalformedInputError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "strain", malformed.Field)
	assert.Equal(t, 0, malformed.Index)
}

func TestReadRecordsUnsupportedExtension(t *testing.T) {
	path := writeTempFile(t, "readings.parquet", "")
	_, err := readRecords(path)
	assert.ErrorContains(t, err, "unsupported readings format")
}
