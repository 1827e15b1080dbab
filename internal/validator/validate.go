// Package validator checks a plan against a user profile and scores its
// quality. Violations block verification; warnings are advisory only.
package validator

import (
	"fmt"
	"strings"

	"tripsentry/internal/trip"
)

const (
	budgetBufferPercent = 0.10
	budgetWarnFraction  = 0.95
	minTransitionMins   = 15
	maxDailyActivities  = 8
)

// wrapperKeywords mark pseudo-activities (transport legs, budget envelopes)
// that are excluded from the daily-activity count but still overlap-checked.
var wrapperKeywords = []string{"transportation", "travel budget", "general", "overall"}

// Result is the outcome of one validation pass. It is produced fresh each
// call and never mutated afterward.
type Result struct {
	IsValid    bool           `json:"is_valid"`
	Violations []string       `json:"violations"`
	Warnings   []string       `json:"warnings"`
	Score      float64        `json:"score"`
	Details    map[string]any `json:"details,omitempty"`
}

// Validate runs every constraint check and the quality scorer. The check
// order is fixed so that the violation and warning lists are deterministic.
func Validate(plan trip.Plan, profile trip.UserProfile) Result {
	var violations, warnings []string
	details := make(map[string]any)

	v, w, breakdown := checkBudget(plan, profile)
	violations = append(violations, v...)
	warnings = append(warnings, w...)
	details["budget_breakdown"] = breakdown

	v, w = checkTimeConflicts(plan)
	violations = append(violations, v...)
	warnings = append(warnings, w...)

	if len(profile.DietaryRestrictions) > 0 {
		v, w = checkDietary(plan, profile.DietaryRestrictions)
		violations = append(violations, v...)
		warnings = append(warnings, w...)
	}

	if profile.Mobility != nil {
		warnings = append(warnings, checkMobility(plan, *profile.Mobility)...)
	}

	if profile.SensitiveToRain {
		warnings = append(warnings, checkWeatherSensitivity(plan)...)
	}

	return Result{
		IsValid:    len(violations) == 0,
		Violations: violations,
		Warnings:   warnings,
		Score:      Score(plan, profile.Preferences),
		Details:    details,
	}
}

// checkBudget sums all activity costs, adds a 10% safety buffer and compares
// the result against the profile ceiling. The per-category breakdown is kept
// for diagnostics.
func checkBudget(plan trip.Plan, profile trip.UserProfile) (violations, warnings []string, breakdown map[string]float64) {
	breakdown = make(map[string]float64)
	total := 0.0
	for _, act := range plan.MainItinerary {
		breakdown[act.Budget.Category] += act.Budget.Amount
		total += act.Budget.Amount
	}

	buffer := total * budgetBufferPercent
	withBuffer := total + buffer
	breakdown["subtotal"] = total
	breakdown["buffer"] = buffer
	breakdown["total_with_buffer"] = withBuffer
	breakdown["user_limit"] = profile.BudgetLimit

	switch {
	case withBuffer > profile.BudgetLimit:
		overage := withBuffer - profile.BudgetLimit
		violations = append(violations, fmt.Sprintf(
			"budget exceeded: $%.2f with buffer (limit $%.2f, over by $%.2f)",
			withBuffer, profile.BudgetLimit, overage))
	case withBuffer > profile.BudgetLimit*budgetWarnFraction:
		warnings = append(warnings, fmt.Sprintf(
			"budget usage high: $%.2f is above 95%% of the $%.2f limit",
			withBuffer, profile.BudgetLimit))
	}
	return violations, warnings, breakdown
}

func isWrapper(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range wrapperKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// checkTimeConflicts walks adjacent itinerary pairs in execution order. A
// negative gap is a violation, a gap under 15 minutes a warning. Wrapper
// pseudo-activities stay in the overlap scan but not in the daily count.
func checkTimeConflicts(plan trip.Plan) (violations, warnings []string) {
	countable := 0
	for _, act := range plan.MainItinerary {
		if !isWrapper(act.Name) {
			countable++
		}
	}
	if countable > maxDailyActivities {
		warnings = append(warnings, fmt.Sprintf(
			"schedule may be too packed: %d activities (recommended max %d)",
			countable, maxDailyActivities))
	}

	type timed struct {
		name       string
		start, end int
	}
	var parsed []timed
	for i, act := range plan.MainItinerary {
		start, end, err := act.TimeSlot.Minutes()
		if err != nil {
			warnings = append(warnings, fmt.Sprintf(
				"could not parse time slot for activity %d (%s)", i+1, act.Name))
			continue
		}
		parsed = append(parsed, timed{name: act.Name, start: start, end: end})
	}

	for i := 0; i+1 < len(parsed); i++ {
		cur, next := parsed[i], parsed[i+1]
		gap := next.start - cur.end
		if gap < 0 {
			violations = append(violations, fmt.Sprintf(
				"time overlap: %q ends after %q starts", cur.name, next.name))
		} else if gap < minTransitionMins {
			warnings = append(warnings, fmt.Sprintf(
				"tight schedule: only %d minutes between %q and %q (recommended %d+)",
				gap, cur.name, next.name, minTransitionMins))
		}
	}
	return violations, warnings
}

var foodKeywords = []string{"restaurant", "cafe", "food"}

func isFoodActivity(act trip.Activity) bool {
	if act.Budget.Category == "food" {
		return true
	}
	lower := strings.ToLower(act.Name + " " + act.Description)
	for _, kw := range foodKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// checkDietary requires every restriction string to literally appear in the
// combined text of each food-related activity. A plan with restrictions but no
// food activities at all gets a warning rather than a silent pass.
func checkDietary(plan trip.Plan, restrictions []string) (violations, warnings []string) {
	var food []trip.Activity
	for _, act := range plan.MainItinerary {
		if isFoodActivity(act) {
			food = append(food, act)
		}
	}

	if len(food) == 0 {
		warnings = append(warnings, fmt.Sprintf(
			"no food activities found, but dietary restrictions specified: %s",
			strings.Join(restrictions, ", ")))
		return nil, warnings
	}

	for _, act := range food {
		text := strings.ToLower(act.SearchText())
		for _, restriction := range restrictions {
			if !strings.Contains(text, strings.ToLower(restriction)) {
				violations = append(violations, fmt.Sprintf(
					"activity %q may not meet dietary requirement: %s", act.Name, restriction))
			}
		}
	}
	return violations, warnings
}

// checkMobility only warns: an activity that does not confirm accessibility is
// unverified, not proven non-compliant.
func checkMobility(plan trip.Plan, needs trip.MobilityNeeds) (warnings []string) {
	if needs.WheelchairAccessible {
		for _, act := range plan.MainItinerary {
			if confirmed(act.Constraints["wheelchair_accessible"]) {
				continue
			}
			warnings = append(warnings, fmt.Sprintf(
				"activity %q accessibility not confirmed", act.Name))
		}
	}
	if needs.MaxWalkingDistanceKM > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"walking distance validation requires geographic calculation (max allowed: %.1fkm)",
			needs.MaxWalkingDistanceKM))
	}
	return warnings
}

func confirmed(v string) bool {
	switch strings.ToLower(v) {
	case "true", "yes", "confirmed":
		return true
	}
	return false
}

const highWeatherRisk = 0.7

func checkWeatherSensitivity(plan trip.Plan) (warnings []string) {
	var outdoor, highRisk int
	for _, act := range plan.MainItinerary {
		if act.Type != trip.TypeOutdoor {
			continue
		}
		outdoor++
		if act.RiskScore > highWeatherRisk {
			highRisk++
		}
	}
	if outdoor == 0 {
		return nil
	}

	indoorAlts := 0
	for _, alt := range plan.Alternatives {
		if alt.Type == trip.TypeIndoor {
			indoorAlts++
		}
	}
	if indoorAlts == 0 {
		warnings = append(warnings, fmt.Sprintf(
			"user is rain-sensitive, but no indoor alternatives provided for %d outdoor activities",
			outdoor))
	}
	if highRisk > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"%d outdoor activities have high weather risk (score > %.1f)",
			highRisk, highWeatherRisk))
	}
	return warnings
}
