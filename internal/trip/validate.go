package trip

import (
	"fmt"
	"strings"
)

// SchemaError captures a single field-specific problem in a draft plan.
type SchemaError struct {
	Field   string
	Message string
}

func (e SchemaError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// SchemaErrors aggregates every structural problem found in a draft.
type SchemaErrors []SchemaError

func (errs SchemaErrors) Error() string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "\n")
}

// CheckDraft verifies that a plan produced by the generative oracle is
// structurally sound before any business validation runs. Any problem here is a
// generation failure: the plan must not be defaulted into shape downstream.
func CheckDraft(p Plan) error {
	var errs SchemaErrors

	if strings.TrimSpace(p.ID) == "" {
		errs = append(errs, SchemaError{Field: "plan_id", Message: "is required"})
	}
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, SchemaError{Field: "name", Message: "is required"})
	}
	if len(p.MainItinerary) == 0 {
		errs = append(errs, SchemaError{Field: "main_itinerary", Message: "must include at least one activity"})
	}

	seen := make(map[string]bool, len(p.MainItinerary))
	for i, act := range p.MainItinerary {
		field := fmt.Sprintf("main_itinerary[%d]", i)
		errs = append(errs, checkActivity(field, act)...)
		if act.ID != "" {
			if seen[act.ID] {
				errs = append(errs, SchemaError{Field: field + ".activity_id", Message: fmt.Sprintf("duplicate id %q", act.ID)})
			}
			seen[act.ID] = true
		}
	}
	for i, act := range p.Alternatives {
		errs = append(errs, checkActivity(fmt.Sprintf("alternatives[%d]", i), act)...)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func checkActivity(field string, a Activity) SchemaErrors {
	var errs SchemaErrors

	if strings.TrimSpace(a.ID) == "" {
		errs = append(errs, SchemaError{Field: field + ".activity_id", Message: "is required"})
	}
	if strings.TrimSpace(a.Name) == "" {
		errs = append(errs, SchemaError{Field: field + ".name", Message: "is required"})
	}
	if a.Type != TypeIndoor && a.Type != TypeOutdoor {
		errs = append(errs, SchemaError{Field: field + ".type", Message: fmt.Sprintf("must be %q or %q", TypeIndoor, TypeOutdoor)})
	}
	if a.Location.Lat < -90 || a.Location.Lat > 90 {
		errs = append(errs, SchemaError{Field: field + ".location.lat", Message: "must be within [-90, 90]"})
	}
	if a.Location.Lng < -180 || a.Location.Lng > 180 {
		errs = append(errs, SchemaError{Field: field + ".location.lng", Message: "must be within [-180, 180]"})
	}
	if a.Budget.Amount < 0 {
		errs = append(errs, SchemaError{Field: field + ".budget.amount", Message: "must not be negative"})
	}
	if a.RiskScore < 0 || a.RiskScore > 1 {
		errs = append(errs, SchemaError{Field: field + ".risk_score", Message: "must be within [0, 1]"})
	}
	start, end, err := a.TimeSlot.Minutes()
	if err != nil {
		errs = append(errs, SchemaError{Field: field + ".time_slot", Message: err.Error()})
	} else if start > end {
		errs = append(errs, SchemaError{Field: field + ".time_slot", Message: "start must not be after end"})
	}
	if a.ExecStatus != "" {
		switch a.ExecStatus {
		case ExecPending, ExecInProgress, ExecCompleted, ExecCancelled:
		default:
			errs = append(errs, SchemaError{Field: field + ".exec_status", Message: fmt.Sprintf("unknown value %q", a.ExecStatus)})
		}
	}
	return errs
}
