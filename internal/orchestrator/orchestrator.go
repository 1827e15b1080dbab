// Package orchestrator owns plan storage and drives the generate → validate →
// confirm → monitor → replan flow. It is the single writer of plan state;
// everything it hands out is a deep copy.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"tripsentry/internal/audit"
	"tripsentry/internal/environ"
	"tripsentry/internal/notify"
	"tripsentry/internal/oracle"
	"tripsentry/internal/replan"
	"tripsentry/internal/trip"
	"tripsentry/internal/validator"
)

const actor = "orchestrator"

// Config wires the orchestrator's collaborators. Env and Oracle are required;
// Audit and Notifier may be nil, and a zero PollInterval means the 300s
// default.
type Config struct {
	Env          *environ.Service
	Oracle       oracle.Oracle
	Audit        *audit.Logger
	Notifier     *notify.Notifier
	PollInterval time.Duration
	// DefaultLocation is used when the intent names no known place.
	DefaultLocation string
}

// Orchestrator coordinates the plan lifecycle.
type Orchestrator struct {
	env             *environ.Service
	oracle          oracle.Oracle
	hub             *Hub
	audit           *audit.Logger
	notifier        *notify.Notifier
	pollInterval    time.Duration
	defaultLocation string

	mu       sync.RWMutex
	plans    map[string]trip.Plan
	monitors map[string]context.CancelFunc
	wg       sync.WaitGroup
}

// New builds an orchestrator from its collaborators.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Env == nil {
		return nil, fmt.Errorf("environment service is required")
	}
	if cfg.Oracle == nil {
		return nil, fmt.Errorf("oracle is required")
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = 300 * time.Second
	}
	loc := cfg.DefaultLocation
	if loc == "" {
		loc = "San Francisco"
	}
	return &Orchestrator{
		env:             cfg.Env,
		oracle:          cfg.Oracle,
		hub:             NewHub(),
		audit:           cfg.Audit,
		notifier:        cfg.Notifier,
		pollInterval:    interval,
		defaultLocation: loc,
		plans:           make(map[string]trip.Plan),
		monitors:        make(map[string]context.CancelFunc),
	}, nil
}

// Hub exposes the broadcast channel so transports can subscribe.
func (o *Orchestrator) Hub() *Hub { return o.hub }

// InitiatePlanning runs the full generation flow: fetch context, ask the
// oracle for a draft, validate it. A valid draft is stored as VERIFIED, an
// invalid one stays DRAFT with its violations reported. A generation failure
// stores nothing.
func (o *Orchestrator) InitiatePlanning(ctx context.Context, intent string, profile *trip.UserProfile) (trip.Plan, validator.Result, error) {
	prof := trip.DefaultProfile()
	if profile != nil {
		prof = *profile
	}

	location := extractLocation(intent, o.defaultLocation)
	snap, err := o.env.Fetch(ctx, location)
	if err != nil {
		// Planning proceeds without live context rather than failing outright.
		fmt.Fprintf(os.Stderr, "orchestrator: environment fetch for %s failed: %v\n", location, err)
		snap = environ.Snapshot{LocationID: location, Timestamp: time.Now().UTC(), Weather: environ.WeatherClear}
	}

	draft, err := o.oracle.Generate(ctx, intent, prof, snap)
	if err != nil {
		return trip.Plan{}, validator.Result{}, err
	}

	draft.Status = trip.StatusValidating
	result := validator.Validate(draft, prof)
	if result.IsValid {
		draft.Status = trip.StatusVerified
	} else {
		draft.Status = trip.StatusDraft
		draft.ReasoningTrail = append(draft.ReasoningTrail, fmt.Sprintf(
			"validation rejected draft: %d violations", len(result.Violations)))
	}

	now := time.Now().UTC()
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = now
	}
	draft.UpdatedAt = now

	o.mu.Lock()
	o.plans[draft.ID] = draft.Clone()
	o.mu.Unlock()

	o.logEvent(audit.EventPlanCreated, draft.ID, map[string]any{
		"intent": intent, "location": location, "score": result.Score,
	})
	if result.IsValid {
		o.logEvent(audit.EventPlanVerified, draft.ID, map[string]any{"score": result.Score})
	} else {
		o.logEvent(audit.EventPlanRejected, draft.ID, map[string]any{"violations": result.Violations})
	}

	return draft.Clone(), result, nil
}

// ConfirmAndActivate transitions a VERIFIED plan to ACTIVE and starts exactly
// one watchdog for it.
func (o *Orchestrator) ConfirmAndActivate(planID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	plan, ok := o.plans[planID]
	if !ok {
		return &NotFoundError{PlanID: planID}
	}
	if plan.Status != trip.StatusVerified {
		return &InvalidStateError{PlanID: planID, Current: plan.Status, Required: trip.StatusVerified}
	}
	if _, running := o.monitors[planID]; running {
		return fmt.Errorf("plan %s already has a watchdog", planID)
	}

	plan = plan.Clone()
	plan.Status = trip.StatusActive
	plan.UpdatedAt = time.Now().UTC()
	o.plans[planID] = plan

	ctx, cancel := context.WithCancel(context.Background())
	o.monitors[planID] = cancel
	o.wg.Add(1)
	go o.runWatchdog(ctx, planID, primaryLocationKey(plan))

	o.logEvent(audit.EventPlanActivated, planID, nil)
	o.hub.Broadcast(planID, Message{Type: MessageStatusChange, Data: map[string]any{"status": plan.Status}})
	return nil
}

// GetPlan returns a copy of the stored plan.
func (o *Orchestrator) GetPlan(planID string) (trip.Plan, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	plan, ok := o.plans[planID]
	if !ok {
		return trip.Plan{}, &NotFoundError{PlanID: planID}
	}
	return plan.Clone(), nil
}

// HandleAlert routes a watchdog alert by severity: INFO is logged, WARNING is
// broadcast without touching the itinerary, CRITICAL triggers an emergency
// replan committed under the same plan identity. An unknown plan id is a
// tolerated race with completion or cancellation, not an error.
func (o *Orchestrator) HandleAlert(alert environ.AlertSignal) {
	planID := alert.AffectedPlanID

	o.mu.RLock()
	plan, ok := o.plans[planID]
	o.mu.RUnlock()
	if !ok {
		fmt.Fprintf(os.Stderr, "orchestrator: alert for unknown plan %s dropped\n", planID)
		o.logEvent(audit.EventAlertDropped, planID, alert)
		return
	}

	o.logEvent(audit.EventAlertReceived, planID, alert)

	switch alert.Severity {
	case environ.SeverityCritical:
		o.applyReplan(plan, alert)
	case environ.SeverityWarning:
		o.hub.Broadcast(planID, Message{Type: MessageAlert, Data: alert})
		o.sendNotification(notify.FormatAlert(alert))
	default:
		fmt.Fprintf(os.Stderr, "orchestrator: info alert for plan %s: %s\n", planID, alert.Message)
	}
}

// applyReplan computes the substitution on a copy and commits it as a whole-
// object replace, so concurrent readers never observe a half-swapped plan.
func (o *Orchestrator) applyReplan(plan trip.Plan, alert environ.AlertSignal) {
	updated, summary := replan.Apply(plan, alert)
	for _, name := range summary.NoSubstitute {
		fmt.Fprintf(os.Stderr, "orchestrator: no indoor substitute available for %q, keeping it\n", name)
	}

	o.mu.Lock()
	if current, ok := o.plans[plan.ID]; !ok || current.Status != trip.StatusActive {
		// The plan completed or was cancelled while the swap was being
		// computed; discard rather than resurrect it.
		o.mu.Unlock()
		return
	}
	o.plans[plan.ID] = updated.Clone()
	o.mu.Unlock()

	o.logEvent(audit.EventReplanApplied, plan.ID, map[string]any{
		"change_type":   alert.ChangeType,
		"severity":      alert.Severity,
		"swapped":       summary.Swapped,
		"no_substitute": summary.NoSubstitute,
		"diff":          itineraryDiff(plan, updated),
	})
	o.hub.Broadcast(plan.ID, Message{Type: MessagePlanUpdated, Data: map[string]any{
		"alert":        alert,
		"updated_plan": updated,
	}})
	o.sendNotification(notify.FormatReplan(plan.Name, summary.Swapped, len(summary.NoSubstitute)))
}

// Complete marks an active plan finished and stops its watchdog.
func (o *Orchestrator) Complete(planID string) error {
	return o.finish(planID, trip.StatusCompleted, audit.EventPlanCompleted)
}

// Cancel aborts a plan and stops its watchdog if one is running.
func (o *Orchestrator) Cancel(planID string) error {
	return o.finish(planID, trip.StatusCancelled, audit.EventPlanCancelled)
}

func (o *Orchestrator) finish(planID string, to trip.Status, event string) error {
	o.mu.Lock()
	plan, ok := o.plans[planID]
	if !ok {
		o.mu.Unlock()
		return &NotFoundError{PlanID: planID}
	}
	if !trip.CanTransition(plan.Status, to) {
		current := plan.Status
		o.mu.Unlock()
		return &InvalidStateError{PlanID: planID, Current: current, Required: trip.StatusActive}
	}

	plan = plan.Clone()
	plan.Status = to
	plan.UpdatedAt = time.Now().UTC()
	o.plans[planID] = plan

	cancel, running := o.monitors[planID]
	delete(o.monitors, planID)
	o.mu.Unlock()

	if running {
		cancel()
	}
	o.logEvent(event, planID, nil)
	o.hub.Broadcast(planID, Message{Type: MessageStatusChange, Data: map[string]any{"status": to}})
	return nil
}

// Shutdown cancels every watchdog, waits for them to exit and closes all
// subscriber channels.
func (o *Orchestrator) Shutdown() {
	o.mu.Lock()
	for planID, cancel := range o.monitors {
		cancel()
		delete(o.monitors, planID)
	}
	o.mu.Unlock()

	o.wg.Wait()
	o.hub.Shutdown()
}

func (o *Orchestrator) monitorRunning(planID string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.monitors[planID]
	return ok
}

func (o *Orchestrator) sendNotification(title, message string) {
	if err := o.notifier.Send(title, message); err != nil {
		fmt.Fprintf(os.Stderr, "orchestrator: notification failed: %v\n", err)
	}
}

func (o *Orchestrator) logEvent(eventType, planID string, payload any) {
	if err := o.audit.Log(actor, eventType, planID, payload); err != nil {
		fmt.Fprintf(os.Stderr, "orchestrator: audit log failed: %v\n", err)
	}
}

// primaryLocationKey derives the stable monitoring key for a plan from its
// first activity's coordinates, rounded so repeated polls address the same
// cache entry.
func primaryLocationKey(plan trip.Plan) string {
	if len(plan.MainItinerary) == 0 {
		return ""
	}
	loc := plan.MainItinerary[0].Location
	return fmt.Sprintf("%.2f,%.2f", loc.Lat, loc.Lng)
}

// knownCities maps intent keywords to canonical location names, checked in
// order. Real location understanding belongs to the oracle; this only has to
// be good enough to pick a snapshot key.
var knownCities = []struct {
	keyword string
	city    string
}{
	{"san francisco", "San Francisco"},
	{"sf", "San Francisco"},
	{"seattle", "Seattle"},
	{"palo alto", "Palo Alto"},
	{"new york", "New York"},
	{"nyc", "New York"},
}

func extractLocation(intent, fallback string) string {
	lower := strings.ToLower(intent)
	for _, entry := range knownCities {
		if strings.Contains(lower, entry.keyword) {
			return entry.city
		}
	}
	return fallback
}
