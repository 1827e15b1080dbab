package trip

// Status is the lifecycle state of a plan.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusValidating Status = "validating"
	StatusVerified   Status = "verified"
	StatusActive     Status = "active"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// transitions is the legal edge set of the lifecycle graph. ACTIVE doubles as
// the monitoring state; whether a watchdog is running is tracked by the
// orchestrator's monitor registry, not by a separate status.
var transitions = map[Status][]Status{
	StatusDraft:      {StatusValidating, StatusCancelled},
	StatusValidating: {StatusVerified, StatusDraft},
	StatusVerified:   {StatusActive, StatusCancelled},
	StatusActive:     {StatusActive, StatusCompleted, StatusCancelled},
}

// CanTransition reports whether moving from one status to another is legal.
// A plan may re-enter ACTIVE from ACTIVE: that is the replan commit.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// Known reports whether the status is one of the defined lifecycle states.
func (s Status) Known() bool {
	switch s {
	case StatusDraft, StatusValidating, StatusVerified, StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}
