package trip

import (
	"fmt"
	"time"
)

// ActivityType classifies an activity by exposure.
type ActivityType string

const (
	TypeIndoor  ActivityType = "indoor"
	TypeOutdoor ActivityType = "outdoor"
)

// ExecStatus tracks execution progress of a single activity.
type ExecStatus string

const (
	ExecPending    ExecStatus = "pending"
	ExecInProgress ExecStatus = "in_progress"
	ExecCompleted  ExecStatus = "completed"
	ExecCancelled  ExecStatus = "cancelled"
)

// GeoLocation is a point with a human-readable address.
type GeoLocation struct {
	Lat     float64 `json:"lat" yaml:"lat"`
	Lng     float64 `json:"lng" yaml:"lng"`
	Address string  `json:"address" yaml:"address"`
}

// BudgetLine is the cost attached to one activity.
type BudgetLine struct {
	Amount   float64 `json:"amount" yaml:"amount"`
	Currency string  `json:"currency" yaml:"currency"`
	Category string  `json:"category" yaml:"category"`
}

// TimeSlot is a wall-clock window in HH:MM, start at or before end.
type TimeSlot struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// Minutes parses the slot into minutes-since-midnight values.
func (t TimeSlot) Minutes() (start, end int, err error) {
	start, err = parseClock(t.Start)
	if err != nil {
		return 0, 0, fmt.Errorf("parse slot start %q: %w", t.Start, err)
	}
	end, err = parseClock(t.End)
	if err != nil {
		return 0, 0, fmt.Errorf("parse slot end %q: %w", t.End, err)
	}
	return start, end, nil
}

func parseClock(v string) (int, error) {
	parsed, err := time.Parse("15:04", v)
	if err != nil {
		return 0, err
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// Activity is one scheduled, located, budgeted unit of a plan.
type Activity struct {
	ID          string            `json:"activity_id" yaml:"activity_id"`
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	TimeSlot    TimeSlot          `json:"time_slot" yaml:"time_slot"`
	Location    GeoLocation       `json:"location" yaml:"location"`
	Budget      BudgetLine        `json:"budget" yaml:"budget"`
	Type        ActivityType      `json:"type" yaml:"type"`
	Constraints map[string]string `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	RiskScore   float64           `json:"risk_score" yaml:"risk_score"`
	ExecStatus  ExecStatus        `json:"exec_status" yaml:"exec_status"`
}

// SearchText returns the lowercase-comparable text a keyword check should see:
// name, description and every constraint key/value.
func (a Activity) SearchText() string {
	text := a.Name + " " + a.Description
	for k, v := range a.Constraints {
		text += " " + k + " " + v
	}
	return text
}

// Plan is the root object describing an itinerary and its lifecycle.
type Plan struct {
	ID             string     `json:"plan_id" yaml:"plan_id"`
	Name           string     `json:"name" yaml:"name"`
	Status         Status     `json:"status" yaml:"status"`
	MainItinerary  []Activity `json:"main_itinerary" yaml:"main_itinerary"`
	Alternatives   []Activity `json:"alternatives,omitempty" yaml:"alternatives,omitempty"`
	ReasoningTrail []string   `json:"reasoning_trail,omitempty" yaml:"reasoning_trail,omitempty"`
	CreatedAt      time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" yaml:"updated_at"`
}

// Clone returns a deep copy. Mutations on the copy never show through to the
// original, which is what lets the orchestrator hand plans to concurrent readers.
func (p Plan) Clone() Plan {
	out := p
	out.MainItinerary = cloneActivities(p.MainItinerary)
	out.Alternatives = cloneActivities(p.Alternatives)
	if p.ReasoningTrail != nil {
		out.ReasoningTrail = append([]string(nil), p.ReasoningTrail...)
	}
	return out
}

func cloneActivities(in []Activity) []Activity {
	if in == nil {
		return nil
	}
	out := make([]Activity, len(in))
	for i, a := range in {
		out[i] = a
		if a.Constraints != nil {
			out[i].Constraints = make(map[string]string, len(a.Constraints))
			for k, v := range a.Constraints {
				out[i].Constraints[k] = v
			}
		}
	}
	return out
}

// UserProfile carries the constraints a plan is validated against.
type UserProfile struct {
	ID                  string         `json:"user_id" yaml:"user_id"`
	BudgetLimit         float64        `json:"budget_limit" yaml:"budget_limit"`
	Preferences         []string       `json:"preferences" yaml:"preferences"`
	SensitiveToRain     bool           `json:"sensitive_to_rain" yaml:"sensitive_to_rain"`
	DietaryRestrictions []string       `json:"dietary_restrictions,omitempty" yaml:"dietary_restrictions,omitempty"`
	Mobility            *MobilityNeeds `json:"mobility_constraints,omitempty" yaml:"mobility_constraints,omitempty"`
}

// MobilityNeeds is the optional mobility constraint set.
type MobilityNeeds struct {
	WheelchairAccessible bool    `json:"wheelchair_accessible" yaml:"wheelchair_accessible"`
	MaxWalkingDistanceKM float64 `json:"max_walking_distance_km,omitempty" yaml:"max_walking_distance_km,omitempty"`
}

// DefaultProfile is used when a caller gives no profile at all.
func DefaultProfile() UserProfile {
	return UserProfile{
		ID:          "anonymous",
		BudgetLimit: 200.0,
		Preferences: []string{"food", "art"},
	}
}
