package orchestrator

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"

	"tripsentry/internal/trip"
)

// itineraryDiff renders a unified diff of two itineraries for the audit
// trail, one line per activity.
func itineraryDiff(before, after trip.Plan) string {
	diff := difflib.UnifiedDiff{
		A:        itineraryLines(before),
		B:        itineraryLines(after),
		FromFile: "itinerary (before)",
		ToFile:   "itinerary (after)",
		Context:  2,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return fmt.Sprintf("diff unavailable: %v", err)
	}
	return text
}

func itineraryLines(p trip.Plan) []string {
	lines := make([]string, 0, len(p.MainItinerary))
	for _, act := range p.MainItinerary {
		lines = append(lines, fmt.Sprintf("%s-%s %s (%s, $%.2f)\n",
			act.TimeSlot.Start, act.TimeSlot.End, act.Name, act.Type, act.Budget.Amount))
	}
	return lines
}
