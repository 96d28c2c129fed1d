package domain

import (
	"errors"
	"fmt"
)

// ErrCalibrationNotFit is returned when scoring or zone lookup is attempted
// before thresholds have been learned from a baseline. There is no fallback to
// guessed defaults.
var ErrCalibrationNotFit = errors.New("calibration not fit: learn thresholds from a baseline before scoring")

// MalformedInputError rejects a record that violates the input contract:
// missing required field, non-finite sensor value, or a timestamp earlier than
// the previous record for the same asset. Malformed records are never coerced
// or dropped, since silent coercion corrupts rolling statistics irrecoverably.
type MalformedInputError struct {
	Index   int
	AssetID string
	Field   string
	Reason  string
}

func (e *MalformedInputError) Error() string {
	if e.AssetID == "" {
		return fmt.Sprintf("malformed input at record %d: field %q: %s", e.Index, e.Field, e.Reason)
	}
	return fmt.Sprintf("malformed input at record %d (asset %s): field %q: %s", e.Index, e.AssetID, e.Field, e.Reason)
}

// PersistenceMismatchError rejects a persisted artifact whose schema or
// version is incompatible. Load never partially applies an artifact.
type PersistenceMismatchError struct {
	Path    string
	Version int
	Reason  string
}

func (e *PersistenceMismatchError) Error() string {
	return fmt.Sprintf("persistence mismatch for %s (schema_version %d): %s", e.Path, e.Version, e.Reason)
}
