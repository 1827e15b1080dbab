// Package oracle is the boundary to the generative planner. The core treats
// it as a black box that must hand back a schema-valid draft plan; anything
// malformed surfaces as a GenerationError and never reaches validation.
package oracle

import (
	"context"
	"fmt"

	"tripsentry/internal/environ"
	"tripsentry/internal/trip"
)

// Oracle turns a natural-language intent plus an environment snapshot into a
// draft plan.
type Oracle interface {
	Name() string
	Generate(ctx context.Context, intent string, profile trip.UserProfile, env environ.Snapshot) (trip.Plan, error)
}

// GenerationError wraps any failure to obtain a well-formed draft from the
// oracle: transport errors, unparseable output, schema violations.
type GenerationError struct {
	Oracle string
	Err    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("oracle %s: generation failed: %v", e.Oracle, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
