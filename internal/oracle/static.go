package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tripsentry/internal/environ"
	"tripsentry/internal/trip"
)

// StaticOracle is the deterministic in-process planner. It assembles a day
// from a fixed activity catalog, steering fully indoor when the snapshot shows
// precipitation, and keeps the total spend inside the profile ceiling. It is
// the offline stand-in for a real generative backend and is good enough to
// exercise the entire lifecycle.
type StaticOracle struct{}

func (o *StaticOracle) Name() string { return "static" }

type template struct {
	name        string
	description string
	slot        trip.TimeSlot
	category    string
	typ         trip.ActivityType
	risk        float64
}

var fairWeatherDay = []template{
	{"Waterfront Park Walk", "morning walk along the waterfront promenade", trip.TimeSlot{Start: "09:00", End: "10:30"}, "sightseeing", trip.TypeOutdoor, 0.8},
	{"Local Food Market", "street food stalls and regional produce", trip.TimeSlot{Start: "11:00", End: "12:30"}, "food", trip.TypeOutdoor, 0.65},
	{"City Art Museum", "permanent collection and rotating art exhibits", trip.TimeSlot{Start: "13:00", End: "15:00"}, "culture", trip.TypeIndoor, 0.1},
	{"Old Town Cafe", "coffee and pastries in the historic quarter", trip.TimeSlot{Start: "15:30", End: "16:30"}, "food", trip.TypeIndoor, 0.15},
}

var wetWeatherDay = []template{
	{"City Art Museum", "permanent collection and rotating art exhibits", trip.TimeSlot{Start: "09:30", End: "11:30"}, "culture", trip.TypeIndoor, 0.1},
	{"Covered Food Hall", "indoor food court with regional kitchens", trip.TimeSlot{Start: "12:00", End: "13:30"}, "food", trip.TypeIndoor, 0.1},
	{"Science Center", "hands-on exhibits and planetarium show", trip.TimeSlot{Start: "14:00", End: "16:00"}, "culture", trip.TypeIndoor, 0.1},
	{"Old Town Cafe", "coffee and pastries in the historic quarter", trip.TimeSlot{Start: "16:30", End: "17:30"}, "food", trip.TypeIndoor, 0.15},
}

var backupCatalog = []template{
	{"Riverside Gallery", "contemporary art in a converted warehouse", trip.TimeSlot{Start: "10:00", End: "12:00"}, "culture", trip.TypeIndoor, 0.1},
	{"Grand Library Reading Rooms", "guided tour of the historic reading rooms", trip.TimeSlot{Start: "13:00", End: "14:30"}, "culture", trip.TypeIndoor, 0.05},
}

// Generate builds a draft plan for the intent. The draft always starts in
// DRAFT with a fresh identity; the caller owns validation and storage.
func (o *StaticOracle) Generate(_ context.Context, intent string, profile trip.UserProfile, env environ.Snapshot) (trip.Plan, error) {
	day := fairWeatherDay
	if env.Weather.Rainy() || env.Weather.Critical() {
		day = wetWeatherDay
	}

	// Per-activity spend that keeps total plus the 10% validation buffer
	// under the ceiling.
	perActivity := profile.BudgetLimit / 1.1 / float64(len(day)+1)

	plan := trip.Plan{
		ID:        uuid.NewString(),
		Name:      fmt.Sprintf("Day plan for %s", env.LocationID),
		Status:    trip.StatusDraft,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	for _, tpl := range day {
		plan.MainItinerary = append(plan.MainItinerary, o.materialize(tpl, env, perActivity))
	}
	for _, tpl := range backupCatalog {
		plan.Alternatives = append(plan.Alternatives, o.materialize(tpl, env, perActivity))
	}

	plan.ReasoningTrail = append(plan.ReasoningTrail, fmt.Sprintf(
		"generated from intent %q under %s conditions", intent, env.Weather))

	if err := trip.CheckDraft(plan); err != nil {
		return trip.Plan{}, &GenerationError{Oracle: o.Name(), Err: err}
	}
	return plan, nil
}

func (o *StaticOracle) materialize(tpl template, env environ.Snapshot, amount float64) trip.Activity {
	return trip.Activity{
		ID:          uuid.NewString(),
		Name:        tpl.name,
		Description: tpl.description,
		TimeSlot:    tpl.slot,
		Location: trip.GeoLocation{
			Lat:     37.77,
			Lng:     -122.42,
			Address: env.LocationID,
		},
		Budget: trip.BudgetLine{
			Amount:   amount,
			Currency: "USD",
			Category: tpl.category,
		},
		Type:       tpl.typ,
		RiskScore:  tpl.risk,
		ExecStatus: trip.ExecPending,
	}
}
