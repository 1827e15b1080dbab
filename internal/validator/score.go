package validator

import (
	"math"
	"strings"

	"tripsentry/internal/trip"
)

// Sub-score weights. They must sum to 1.
const (
	weightPreference = 0.40
	weightDiversity  = 0.20
	weightTime       = 0.20
	weightBudget     = 0.10
	weightRisk       = 0.10
)

// Score computes the 0–1 quality score of a plan against preference tags.
// An empty itinerary scores 0 unconditionally; otherwise the five sub-scores
// are combined 40/20/20/10/10 and rounded to two decimal places.
func Score(plan trip.Plan, preferences []string) float64 {
	if len(plan.MainItinerary) == 0 {
		return 0.0
	}

	total := preferenceMatch(plan, preferences)*weightPreference +
		diversity(plan)*weightDiversity +
		timeEfficiency(plan)*weightTime +
		budgetEfficiency(plan)*weightBudget +
		riskMitigation(plan)*weightRisk

	return math.Round(total*100) / 100
}

// preferenceMatch is the fraction of activities whose text mentions at least
// one preference keyword. No preferences at all is neutral rather than zero.
func preferenceMatch(plan trip.Plan, preferences []string) float64 {
	if len(preferences) == 0 {
		return 0.5
	}
	matched := 0
	for _, act := range plan.MainItinerary {
		text := strings.ToLower(act.Name + " " + act.Description)
		for _, pref := range preferences {
			if strings.Contains(text, strings.ToLower(pref)) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(plan.MainItinerary))
}

func diversity(plan trip.Plan) float64 {
	types := make(map[trip.ActivityType]bool)
	categories := make(map[string]bool)
	for _, act := range plan.MainItinerary {
		types[act.Type] = true
		categories[act.Budget.Category] = true
	}
	typeDiversity := float64(len(types)) / 2
	categoryDiversity := math.Min(float64(len(categories))/4, 1.0)
	return (typeDiversity + categoryDiversity) / 2
}

// timeEfficiency is a banded heuristic on activity count: 3–6 is the sweet
// spot, fewer underutilizes the day, more risks a rushed schedule.
func timeEfficiency(plan trip.Plan) float64 {
	n := len(plan.MainItinerary)
	switch {
	case n < 2:
		return 0.5
	case n >= 3 && n <= 6:
		return 1.0
	case n < 3:
		return 0.6
	default:
		return 0.7
	}
}

// budgetEfficiency rewards average spend between $20 and $200 per activity.
// Cheaper scales linearly toward 0; pricier scales down but floors at 0.5.
func budgetEfficiency(plan trip.Plan) float64 {
	total := 0.0
	for _, act := range plan.MainItinerary {
		total += act.Budget.Amount
	}
	avg := total / float64(len(plan.MainItinerary))
	switch {
	case avg >= 20 && avg <= 200:
		return 1.0
	case avg < 20:
		return avg / 20
	default:
		return math.Max(0.5, 200/avg)
	}
}

// riskMitigation rewards backup coverage: alternatives reaching 50% of the
// itinerary count scores full marks.
func riskMitigation(plan trip.Plan) float64 {
	if len(plan.Alternatives) == 0 {
		return 0.0
	}
	ratio := float64(len(plan.Alternatives)) / float64(len(plan.MainItinerary))
	return math.Min(ratio/0.5, 1.0)
}
