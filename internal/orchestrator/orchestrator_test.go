package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripsentry/internal/environ"
	"tripsentry/internal/oracle"
	"tripsentry/internal/trip"
)

func newTestOrchestrator(t *testing.T, interval time.Duration) (*Orchestrator, *environ.OverrideManager) {
	t.Helper()

	overrides := environ.NewOverrideManager()
	svc := environ.NewService(&environ.StaticProvider{}, overrides)
	o, err := New(Config{
		Env:          svc,
		Oracle:       &oracle.StaticOracle{},
		PollInterval: interval,
	})
	require.NoError(t, err)
	t.Cleanup(o.Shutdown)
	return o, overrides
}

func criticalAlert(planID string) environ.AlertSignal {
	return environ.AlertSignal{
		Source:         "watchdog",
		ChangeType:     environ.ChangeWeather,
		Message:        "weather changed from clear to storm",
		TriggerValue:   "storm",
		Severity:       environ.SeverityCritical,
		AffectedPlanID: planID,
		EmittedAt:      time.Now().UTC(),
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	svc := environ.NewService(&environ.StaticProvider{}, environ.NewOverrideManager())

	_, err := New(Config{Oracle: &oracle.StaticOracle{}})
	assert.Error(t, err)

	_, err = New(Config{Env: svc})
	assert.Error(t, err)
}

func TestInitiateConfirmFlow(t *testing.T) {
	o, _ := newTestOrchestrator(t, time.Hour)

	plan, result, err := o.InitiatePlanning(context.Background(), "a day in san francisco", nil)
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Equal(t, trip.StatusVerified, plan.Status)
	assert.NotEmpty(t, plan.MainItinerary)

	require.NoError(t, o.ConfirmAndActivate(plan.ID))
	assert.True(t, o.monitorRunning(plan.ID))

	stored, err := o.GetPlan(plan.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.StatusActive, stored.Status)

	// A second confirmation finds the plan already past VERIFIED.
	var stateErr *InvalidStateError
	err = o.ConfirmAndActivate(plan.ID)
	require.True(t, errors.As(err, &stateErr))
	assert.Equal(t, trip.StatusActive, stateErr.Current)
}

func TestConfirmUnknownPlan(t *testing.T) {
	o, _ := newTestOrchestrator(t, time.Hour)

	var nf *NotFoundError
	err := o.ConfirmAndActivate("no-such-plan")
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "no-such-plan", nf.PlanID)

	_, err = o.GetPlan("no-such-plan")
	assert.True(t, errors.As(err, &nf))
}

func TestInvalidDraftStaysDraftAndCannotActivate(t *testing.T) {
	o, _ := newTestOrchestrator(t, time.Hour)

	// The static catalog's food stops never mention this restriction, so
	// validation rejects the draft.
	profile := trip.UserProfile{
		ID:                  "u1",
		BudgetLimit:         200,
		DietaryRestrictions: []string{"vegan"},
	}
	plan, result, err := o.InitiatePlanning(context.Background(), "food tour", &profile)
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Equal(t, trip.StatusDraft, plan.Status)
	assert.Contains(t, plan.ReasoningTrail[len(plan.ReasoningTrail)-1], "validation rejected draft")

	var stateErr *InvalidStateError
	err = o.ConfirmAndActivate(plan.ID)
	require.True(t, errors.As(err, &stateErr))
	assert.Equal(t, trip.StatusDraft, stateErr.Current)
	assert.False(t, o.monitorRunning(plan.ID))
}

func TestGetPlanReturnsACopy(t *testing.T) {
	o, _ := newTestOrchestrator(t, time.Hour)

	plan, _, err := o.InitiatePlanning(context.Background(), "museum day", nil)
	require.NoError(t, err)

	got, err := o.GetPlan(plan.ID)
	require.NoError(t, err)
	got.MainItinerary[0].Name = "tampered"
	got.Status = trip.StatusCancelled

	again, err := o.GetPlan(plan.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "tampered", again.MainItinerary[0].Name)
	assert.Equal(t, trip.StatusVerified, again.Status)
}

func TestHandleAlertCriticalReplansAndBroadcasts(t *testing.T) {
	o, _ := newTestOrchestrator(t, time.Hour)

	plan, _, err := o.InitiatePlanning(context.Background(), "outdoor day", nil)
	require.NoError(t, err)
	require.NoError(t, o.ConfirmAndActivate(plan.ID))

	subID, ch := o.Hub().Subscribe(plan.ID)
	defer o.Hub().Unsubscribe(plan.ID, subID)
	drainStatusChange(t, ch)

	o.HandleAlert(criticalAlert(plan.ID))

	msg := waitForMessage(t, ch, MessagePlanUpdated)
	assert.Equal(t, MessagePlanUpdated, msg.Type)

	updated, err := o.GetPlan(plan.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, updated.ID)
	assert.Equal(t, trip.StatusActive, updated.Status)
	for _, a := range updated.MainItinerary {
		if a.Type == trip.TypeOutdoor {
			assert.LessOrEqual(t, a.RiskScore, 0.6, "no high-risk outdoor activity survives a critical alert")
		}
	}
	assert.Contains(t, updated.ReasoningTrail[len(updated.ReasoningTrail)-1], "auto-replan")
}

func TestHandleAlertWarningBroadcastsWithoutMutation(t *testing.T) {
	o, _ := newTestOrchestrator(t, time.Hour)

	plan, _, err := o.InitiatePlanning(context.Background(), "outdoor day", nil)
	require.NoError(t, err)
	require.NoError(t, o.ConfirmAndActivate(plan.ID))

	subID, ch := o.Hub().Subscribe(plan.ID)
	defer o.Hub().Unsubscribe(plan.ID, subID)

	before, err := o.GetPlan(plan.ID)
	require.NoError(t, err)

	alert := criticalAlert(plan.ID)
	alert.Severity = environ.SeverityWarning
	alert.Message = "light rain starting"
	o.HandleAlert(alert)

	msg := waitForMessage(t, ch, MessageAlert)
	assert.Equal(t, MessageAlert, msg.Type)

	after, err := o.GetPlan(plan.ID)
	require.NoError(t, err)
	assert.Equal(t, before.MainItinerary, after.MainItinerary, "warnings never rewrite the itinerary")
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
}

func TestHandleAlertUnknownPlanIsTolerated(t *testing.T) {
	o, _ := newTestOrchestrator(t, time.Hour)
	// Must not panic or create a plan.
	o.HandleAlert(criticalAlert("ghost-plan"))
	_, err := o.GetPlan("ghost-plan")
	assert.Error(t, err)
}

func TestCompleteStopsMonitor(t *testing.T) {
	o, _ := newTestOrchestrator(t, time.Hour)

	plan, _, err := o.InitiatePlanning(context.Background(), "quick trip", nil)
	require.NoError(t, err)
	require.NoError(t, o.ConfirmAndActivate(plan.ID))
	require.True(t, o.monitorRunning(plan.ID))

	require.NoError(t, o.Complete(plan.ID))
	assert.False(t, o.monitorRunning(plan.ID))

	got, err := o.GetPlan(plan.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.StatusCompleted, got.Status)

	// Terminal states reject further transitions.
	var stateErr *InvalidStateError
	assert.True(t, errors.As(o.Cancel(plan.ID), &stateErr))
}

func TestCancelFromVerified(t *testing.T) {
	o, _ := newTestOrchestrator(t, time.Hour)

	plan, _, err := o.InitiatePlanning(context.Background(), "maybe later", nil)
	require.NoError(t, err)

	require.NoError(t, o.Cancel(plan.ID))
	got, err := o.GetPlan(plan.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.StatusCancelled, got.Status)
}

func TestExtractLocation(t *testing.T) {
	assert.Equal(t, "Seattle", extractLocation("rainy weekend in Seattle", "San Francisco"))
	assert.Equal(t, "New York", extractLocation("NYC food crawl", "San Francisco"))
	assert.Equal(t, "San Francisco", extractLocation("somewhere warm", "San Francisco"))
}

// drainStatusChange swallows any status_change left over from activation so a
// test can wait for the message it actually cares about.
func drainStatusChange(t *testing.T, ch <-chan Message) {
	t.Helper()
	for {
		select {
		case msg := <-ch:
			if msg.Type != MessageStatusChange {
				t.Fatalf("unexpected message before test action: %s", msg.Type)
			}
		default:
			return
		}
	}
}

func waitForMessage(t *testing.T, ch <-chan Message, wantType string) Message {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				t.Fatal("subscriber channel closed while waiting")
			}
			if msg.Type == wantType {
				return msg
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s message", wantType)
		}
	}
}
