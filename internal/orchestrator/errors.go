package orchestrator

import (
	"fmt"

	"tripsentry/internal/trip"
)

// NotFoundError reports an operation against an unknown plan id.
type NotFoundError struct {
	PlanID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("plan %s not found", e.PlanID)
}

// InvalidStateError reports an operation against the wrong lifecycle state.
// It always carries both the state the plan is in and the state the operation
// requires.
type InvalidStateError struct {
	PlanID   string
	Current  trip.Status
	Required trip.Status
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("plan %s is %s, operation requires %s", e.PlanID, e.Current, e.Required)
}
