package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/TheClassicTechno/LiveWire-sub000/pkg/domain"
)

// readRecords parses a readings file by extension. Malformed records are
// rejected at this boundary with the MalformedInput taxonomy; they are never
// coerced or skipped.
func readRecords(path string) ([]domain.Reading, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".json":
		return readJSON(path)
	default:
		return nil, fmt.Errorf("unsupported readings format %q: want .csv or .json", filepath.Ext(path))
	}
}

// rawReading distinguishes absent JSON fields from zero values.
type rawReading struct {
	AssetID     *string  `json:"asset_id"`
	Timestamp   *string  `json:"timestamp"`
	Vibration   *float64 `json:"vibration"`
	Temperature *float64 `json:"temperature"`
	Strain      *float64 `json:"strain"`
	WindSpeed   *float64 `json:"wind_speed"`
	AgeYears    *float64 `json:"age_years"`
}

func readJSON(path string) ([]domain.Reading, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var raws []rawReading
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	readings := make([]domain.Reading, 0, len(raws))
	for i, raw := range raws {
		for _, field := range []struct {
			name    string
			present bool
		}{
			{"asset_id", raw.AssetID != nil},
			{"timestamp", raw.Timestamp != nil},
			{"vibration", raw.Vibration != nil},
			{"temperature", raw.Temperature != nil},
			{"strain", raw.Strain != nil},
		} {
			if !field.present {
				return nil, &domain.MalformedInputError{Index: i, Field: field.name, Reason: "missing required field"}
			}
		}
		ts, err := time.Parse(time.RFC3339, *raw.Timestamp)
		if err != nil {
			return nil, &domain.MalformedInputError{
				Index: i, AssetID: *raw.AssetID, Field: "timestamp",
				Reason: fmt.Sprintf("not an RFC3339 instant: %v", err),
			}
		}
		readings = append(readings, domain.Reading{
			AssetID:     *raw.AssetID,
			Timestamp:   ts,
			Vibration:   *raw.Vibration,
			Temperature: *raw.Temperature,
			Strain:      *raw.Strain,
			WindSpeed:   raw.WindSpeed,
			AgeYears:    raw.AgeYears,
		})
	}
	return readings, nil
}

func readCSV(path string) ([]domain.Reading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s is empty: expected a header row", path)
	}

	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"asset_id", "timestamp", "vibration", "temperature", "strain"} {
		if _, ok := cols[required]; !ok {
			return nil, &domain.MalformedInputError{Field: required, Reason: "missing required column"}
		}
	}

	readings := make([]domain.Reading, 0, len(rows)-1)
	for i, row := range rows[1:] {
		get := func(name string) (string, bool) {
			idx, ok := cols[name]
			if !ok || idx >= len(row) {
				return "", false
			}
			return strings.TrimSpace(row[idx]), true
		}

		assetID, _ := get("asset_id")
		if assetID == "" {
			return nil, &domain.MalformedInputError{Index: i, Field: "asset_id", Reason: "missing asset identifier"}
		}

		tsRaw, _ := get("timestamp")
		ts, err := time.Parse(time.RFC3339, tsRaw)
		if err != nil {
			return nil, &domain.MalformedInputError{
				Index: i, AssetID: assetID, Field: "timestamp",
				Reason: fmt.Sprintf("not an RFC3339 instant: %v", err),
			}
		}

		reading := domain.Reading{AssetID: assetID, Timestamp: ts}
		for _, ch := range []struct {
			name string
			dst  *float64
		}{
			{"vibration", &reading.Vibration},
			{"temperature", &reading.Temperature},
			{"strain", &reading.Strain},
		} {
			raw, _ := get(ch.name)
			if raw == "" {
				return nil, &domain.MalformedInputError{Index: i, AssetID: assetID, Field: ch.name, Reason: "missing required field"}
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, &domain.MalformedInputError{
					Index: i, AssetID: assetID, Field: ch.name,
					Reason: fmt.Sprintf("non-numeric sensor value %q", raw),
				}
			}
			*ch.dst = v
		}

		for _, opt := range []struct {
			name string
			dst  **float64
		}{
			{"wind_speed", &reading.WindSpeed},
			{"age_years", &reading.AgeYears},
		} {
			raw, ok := get(opt.name)
			if !ok || raw == "" {
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, &domain.MalformedInputError{
					Index: i, AssetID: assetID, Field: opt.name,
					Reason: fmt.Sprintf("non-numeric sensor value %q", raw),
				}
			}
			*opt.dst = &v
		}

		readings = append(readings, reading)
	}
	return readings, nil
}

// writeScored writes the augmented records as indented JSON.
func writeScored(path string, scored []domain.ScoredReading) error {
	data, err := json.MarshalIndent(scored, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode scored records: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
