package orchestrator

import (
	"context"
	"fmt"
	"os"
	"time"

	"tripsentry/internal/audit"
	"tripsentry/internal/environ"
)

const watchdogSource = "watchdog"

// runWatchdog is the per-plan polling loop. It seeds a baseline with one
// extra fetch, then on every tick fetches a fresh snapshot, compares it with
// the baseline, forwards any signal to the alert handler and advances the
// baseline regardless of the outcome. Fetch failures are logged and retried
// on the next tick; the loop only ends when its context is cancelled.
func (o *Orchestrator) runWatchdog(ctx context.Context, planID, locationID string) {
	defer o.wg.Done()
	defer o.logEvent(audit.EventWatchdogStopped, planID, nil)

	o.logEvent(audit.EventWatchdogStarted, planID, map[string]any{
		"location": locationID, "interval": o.pollInterval.String(),
	})

	baseline, ok := o.seedBaseline(ctx, planID, locationID)
	if !ok {
		return
	}

	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		current, err := o.env.Fetch(ctx, locationID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "watchdog[%s]: fetch failed, retrying next interval: %v\n", planID, err)
			continue
		}

		if sig := environ.Compare(baseline, current); sig != nil {
			stamped := *sig
			stamped.Source = watchdogSource
			stamped.AffectedPlanID = planID
			o.HandleAlert(stamped)
		}
		baseline = current
	}
}

// seedBaseline fetches the initial comparison point, retrying at the poll
// interval until it succeeds, so the first real iteration always has
// something to compare against.
func (o *Orchestrator) seedBaseline(ctx context.Context, planID, locationID string) (environ.Snapshot, bool) {
	for {
		snap, err := o.env.Fetch(ctx, locationID)
		if err == nil {
			return snap, true
		}
		fmt.Fprintf(os.Stderr, "watchdog[%s]: baseline fetch failed, retrying: %v\n", planID, err)

		select {
		case <-ctx.Done():
			return environ.Snapshot{}, false
		case <-time.After(o.pollInterval):
		}
	}
}
