package oracle

import (
	"bytes"
	"encoding/json"
	"fmt"

	"tripsentry/internal/trip"
)

// Decode parses raw generative output into a draft plan under a strict
// schema: unknown fields, mistyped values and structural gaps are all
// generation failures. Nothing is silently defaulted.
func Decode(name string, raw []byte) (trip.Plan, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var plan trip.Plan
	if err := dec.Decode(&plan); err != nil {
		return trip.Plan{}, &GenerationError{Oracle: name, Err: fmt.Errorf("parse draft: %w", err)}
	}
	if dec.More() {
		return trip.Plan{}, &GenerationError{Oracle: name, Err: fmt.Errorf("trailing data after draft")}
	}
	if err := trip.CheckDraft(plan); err != nil {
		return trip.Plan{}, &GenerationError{Oracle: name, Err: err}
	}
	return plan, nil
}
