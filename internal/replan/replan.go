// Package replan swaps weather-exposed activities for indoor backups when an
// alert demands it, preserving plan identity across the rewrite.
package replan

import (
	"fmt"
	"time"

	"tripsentry/internal/environ"
	"tripsentry/internal/trip"
)

// Risk thresholds for selecting affected activities. A WARNING touches only
// the most exposed activities; a CRITICAL alert widens the net.
const (
	criticalRiskThreshold = 0.6
	warningRiskThreshold  = 0.8
)

// Summary describes what one replan pass did.
type Summary struct {
	Swapped int
	// NoSubstitute lists activity names that were affected but kept because
	// no unused indoor alternative remained.
	NoSubstitute []string
}

// Apply returns the plan rewritten for the alert. INFO alerts are a no-op and
// return the input untouched. Otherwise every affected outdoor activity is
// replaced in itinerary position by the first unused indoor alternative; the
// stored alternatives list itself is left intact, but an alternative is only
// handed out once per pass so two slots cannot end up double-booked.
//
// The result carries the same plan ID, an updated timestamp, ACTIVE status and
// exactly one new reasoning-trail entry.
func Apply(plan trip.Plan, alert environ.AlertSignal) (trip.Plan, Summary) {
	if alert.Severity == environ.SeverityInfo {
		return plan, Summary{}
	}

	threshold := warningRiskThreshold
	if alert.Severity == environ.SeverityCritical {
		threshold = criticalRiskThreshold
	}

	out := plan.Clone()
	used := make(map[int]bool, len(out.Alternatives))
	var summary Summary

	for i, act := range out.MainItinerary {
		if act.Type != trip.TypeOutdoor || act.RiskScore <= threshold {
			continue
		}
		alt, ok := takeIndoorAlternative(out.Alternatives, used)
		if !ok {
			summary.NoSubstitute = append(summary.NoSubstitute, act.Name)
			continue
		}
		out.MainItinerary[i] = alt
		summary.Swapped++
	}

	out.UpdatedAt = time.Now().UTC()
	out.Status = trip.StatusActive
	out.ReasoningTrail = append(out.ReasoningTrail, fmt.Sprintf(
		"auto-replan: %s %s alert swapped %d of %d affected activities",
		alert.Severity, alert.ChangeType, summary.Swapped,
		summary.Swapped+len(summary.NoSubstitute)))

	return out, summary
}

// takeIndoorAlternative returns the first indoor alternative by list order
// that has not been used in this pass. First-fit, not best-fit: candidates are
// not scored against the slot they fill.
func takeIndoorAlternative(alts []trip.Activity, used map[int]bool) (trip.Activity, bool) {
	for i, alt := range alts {
		if used[i] || alt.Type != trip.TypeIndoor {
			continue
		}
		used[i] = true
		return alt, true
	}
	return trip.Activity{}, false
}
