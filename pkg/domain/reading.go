package domain

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Reading is one multi-channel sensor sample for a single asset. Readings are
// supplied by an external ingestion layer and consumed read-only by the
// scoring core.
type Reading struct {
	AssetID     string    `json:"asset_id"`
	Timestamp   time.Time `json:"timestamp"`
	Vibration   float64   `json:"vibration"`
	Temperature float64   `json:"temperature"`
	Strain      float64   `json:"strain"`

	// Optional channels. A nil pointer means the channel was not reported,
	// which is different from a reported zero.
	WindSpeed *float64 `json:"wind_speed,omitempty"`
	AgeYears  *float64 `json:"age_years,omitempty"`
}

// Validate checks the per-record requirements of the input contract. Ordering
// against previous readings for the same asset is checked by the caller, which
// owns the per-asset sequence.
func (r Reading) Validate(index int) error {
	if r.AssetID == "" {
		return &MalformedInputError{Index: index, Field: "asset_id", Reason: "missing asset identifier"}
	}
	if r.Timestamp.IsZero() {
		return &MalformedInputError{Index: index, AssetID: r.AssetID, Field: "timestamp", Reason: "missing timestamp"}
	}
	for _, ch := range []struct {
		name  string
		value float64
	}{
		{"vibration", r.Vibration},
		{"temperature", r.Temperature},
		{"strain", r.Strain},
	} {
		if !isFinite(ch.value) {
			return &MalformedInputError{Index: index, AssetID: r.AssetID, Field: ch.name, Reason: "non-finite sensor value"}
		}
	}
	if r.WindSpeed != nil && !isFinite(*r.WindSpeed) {
		return &MalformedInputError{Index: index, AssetID: r.AssetID, Field: "wind_speed", Reason: "non-finite sensor value"}
	}
	if r.AgeYears != nil && !isFinite(*r.AgeYears) {
		return &MalformedInputError{Index: index, AssetID: r.AssetID, Field: "age_years", Reason: "non-finite sensor value"}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Zone is the ordinal risk category derived from a score via calibrated
// thresholds. ZonePending marks a reading whose rolling windows have not
// warmed up yet; it is deliberately distinct from ZoneGreen so that "still
// warming up" can never be read as "healthy".
type Zone string

const (
	ZonePending Zone = "pending"
	ZoneGreen   Zone = "green"
	ZoneYellow  Zone = "yellow"
	ZoneOrange  Zone = "orange"
	ZoneRed     Zone = "red"
)

// Hours is a duration in hours that may be +Inf ("no imminent breach").
// Standard JSON cannot carry infinities, so Hours encodes +Inf as the string
// "inf" and round-trips it losslessly.
type Hours float64

// InfiniteHours signals that the fitted trend never crosses the critical
// threshold.
func InfiniteHours() Hours { return Hours(math.Inf(1)) }

// IsInf reports whether the value is +Inf.
func (h Hours) IsInf() bool { return math.IsInf(float64(h), 1) }

// MarshalJSON encodes +Inf as "inf" and finite values as plain numbers.
func (h Hours) MarshalJSON() ([]byte, error) {
	if h.IsInf() {
		return []byte(`"inf"`), nil
	}
	if !isFinite(float64(h)) {
		return nil, fmt.Errorf("hours value %v is not representable", float64(h))
	}
	return []byte(strconv.FormatFloat(float64(h), 'g', -1, 64)), nil
}

// UnmarshalJSON accepts either a plain number or the "inf" sentinel.
func (h *Hours) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte(`"inf"`)) || bytes.Equal(data, []byte(`"+inf"`)) {
		*h = InfiniteHours()
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid hours value %q: %w", string(data), err)
	}
	*h = Hours(v)
	return nil
}

// ScoredReading is the output record: the input reading augmented with the
// health-risk score, the calibrated zone, and the projected hours until the
// score trend crosses the critical threshold.
//
// Warm reports whether all rolling windows had enough history at this
// position. When Warm is false the score, zone, and time-left are unavailable:
// Zone is ZonePending and Score must not be interpreted.
type ScoredReading struct {
	Reading

	Score    float64 `json:"score"`
	Zone     Zone    `json:"zone"`
	TimeLeft Hours   `json:"time_left_hours"`
	Warm     bool    `json:"warm"`
}
