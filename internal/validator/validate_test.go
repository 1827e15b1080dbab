package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripsentry/internal/trip"
)

func activity(id, name string, slot trip.TimeSlot, amount float64, category string, typ trip.ActivityType) trip.Activity {
	return trip.Activity{
		ID:       id,
		Name:     name,
		TimeSlot: slot,
		Location: trip.GeoLocation{Lat: 37.77, Lng: -122.42, Address: "downtown"},
		Budget:   trip.BudgetLine{Amount: amount, Currency: "USD", Category: category},
		Type:     typ,
	}
}

func basePlan(activities ...trip.Activity) trip.Plan {
	return trip.Plan{ID: "p1", Name: "day out", MainItinerary: activities}
}

func TestBudgetBoundaryAtNinetyFivePercent(t *testing.T) {
	// $90 itinerary + 10% buffer = $99 against a $100 limit: under the limit,
	// but above the 95% warning band.
	plan := basePlan(
		activity("a1", "City Art Museum", trip.TimeSlot{Start: "10:00", End: "12:00"}, 45, "culture", trip.TypeIndoor),
		activity("a2", "Covered Food Hall", trip.TimeSlot{Start: "12:30", End: "14:00"}, 45, "food", trip.TypeIndoor),
	)
	profile := trip.UserProfile{ID: "u1", BudgetLimit: 100}

	result := Validate(plan, profile)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Violations)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "budget usage high")

	breakdown, ok := result.Details["budget_breakdown"].(map[string]float64)
	require.True(t, ok)
	assert.InDelta(t, 90.0, breakdown["subtotal"], 1e-9)
	assert.InDelta(t, 99.0, breakdown["total_with_buffer"], 1e-9)
}

func TestBudgetComfortablyUnderLimitHasNoWarning(t *testing.T) {
	plan := basePlan(
		activity("a1", "City Art Museum", trip.TimeSlot{Start: "10:00", End: "12:00"}, 40, "culture", trip.TypeIndoor),
	)
	result := Validate(plan, trip.UserProfile{ID: "u1", BudgetLimit: 100})
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Warnings)
}

func TestBudgetOverLimitViolates(t *testing.T) {
	plan := basePlan(
		activity("a1", "Helicopter Tour", trip.TimeSlot{Start: "10:00", End: "11:00"}, 150, "sightseeing", trip.TypeOutdoor),
	)
	result := Validate(plan, trip.UserProfile{ID: "u1", BudgetLimit: 100})
	assert.False(t, result.IsValid)
	require.Len(t, result.Violations, 1)
	assert.Contains(t, result.Violations[0], "budget exceeded")
	assert.Contains(t, result.Violations[0], "over by $65.00")
}

func TestTimeOverlapViolates(t *testing.T) {
	plan := basePlan(
		activity("a1", "City Art Museum", trip.TimeSlot{Start: "10:00", End: "12:00"}, 20, "culture", trip.TypeIndoor),
		activity("a2", "Old Town Cafe", trip.TimeSlot{Start: "11:30", End: "12:30"}, 20, "food", trip.TypeIndoor),
	)
	result := Validate(plan, trip.UserProfile{ID: "u1", BudgetLimit: 500})
	assert.False(t, result.IsValid)
	require.Len(t, result.Violations, 1)
	assert.Contains(t, result.Violations[0], "time overlap")
}

func TestTightTransitionWarns(t *testing.T) {
	plan := basePlan(
		activity("a1", "City Art Museum", trip.TimeSlot{Start: "10:00", End: "12:00"}, 20, "culture", trip.TypeIndoor),
		activity("a2", "Old Town Cafe", trip.TimeSlot{Start: "12:10", End: "13:00"}, 20, "food", trip.TypeIndoor),
	)
	result := Validate(plan, trip.UserProfile{ID: "u1", BudgetLimit: 500})
	assert.True(t, result.IsValid)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "tight schedule")
	assert.Contains(t, result.Warnings[0], "10 minutes")
}

func TestUnparseableSlotWarnsButDoesNotBlock(t *testing.T) {
	bad := activity("a1", "Mystery Tour", trip.TimeSlot{Start: "sometime", End: "later"}, 20, "culture", trip.TypeIndoor)
	result := Validate(basePlan(bad), trip.UserProfile{ID: "u1", BudgetLimit: 500})
	assert.True(t, result.IsValid)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "could not parse time slot")
}

func TestDailyCountExcludesWrappers(t *testing.T) {
	slots := []trip.TimeSlot{
		{Start: "08:00", End: "08:30"}, {Start: "09:00", End: "09:30"},
		{Start: "10:00", End: "10:30"}, {Start: "11:00", End: "11:30"},
		{Start: "12:00", End: "12:30"}, {Start: "13:00", End: "13:30"},
		{Start: "14:00", End: "14:30"}, {Start: "15:00", End: "15:30"},
		{Start: "16:00", End: "16:30"},
	}

	// Nine activities, but one is a transportation wrapper: the countable
	// total is eight and no warning fires.
	var acts []trip.Activity
	for i, slot := range slots {
		name := "Stop"
		if i == 0 {
			name = "Transportation between sites"
		}
		acts = append(acts, activity(strings.Repeat("a", i+1), name, slot, 10, "culture", trip.TypeIndoor))
	}
	result := Validate(basePlan(acts...), trip.UserProfile{ID: "u1", BudgetLimit: 500})
	for _, w := range result.Warnings {
		assert.NotContains(t, w, "too packed")
	}

	// Rename the wrapper and the count tips over the limit.
	acts[0].Name = "Morning Stop"
	result = Validate(basePlan(acts...), trip.UserProfile{ID: "u1", BudgetLimit: 500})
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "too packed") {
			found = true
		}
	}
	assert.True(t, found, "expected packed-schedule warning for 9 countable activities")
}

func TestDietaryRestrictionViolations(t *testing.T) {
	food := activity("a1", "Harbor Restaurant", trip.TimeSlot{Start: "12:00", End: "13:30"}, 40, "food", trip.TypeIndoor)
	food.Description = "fresh seafood, halal options available"
	museum := activity("a2", "City Art Museum", trip.TimeSlot{Start: "14:00", End: "16:00"}, 20, "culture", trip.TypeIndoor)

	profile := trip.UserProfile{
		ID:                  "u1",
		BudgetLimit:         500,
		DietaryRestrictions: []string{"halal", "vegan"},
	}

	result := Validate(basePlan(food, museum), profile)
	assert.False(t, result.IsValid)
	require.Len(t, result.Violations, 1)
	assert.Contains(t, result.Violations[0], "vegan")
	assert.Contains(t, result.Violations[0], "Harbor Restaurant")
}

func TestDietaryConstraintMapCounts(t *testing.T) {
	food := activity("a1", "Harbor Restaurant", trip.TimeSlot{Start: "12:00", End: "13:30"}, 40, "food", trip.TypeIndoor)
	food.Constraints = map[string]string{"dietary": "vegan and halal certified"}

	profile := trip.UserProfile{ID: "u1", BudgetLimit: 500, DietaryRestrictions: []string{"vegan"}}
	result := Validate(basePlan(food), profile)
	assert.True(t, result.IsValid, "restriction mentioned in constraint map should pass")
}

func TestDietaryWithoutFoodActivitiesWarns(t *testing.T) {
	museum := activity("a1", "City Art Museum", trip.TimeSlot{Start: "14:00", End: "16:00"}, 20, "culture", trip.TypeIndoor)
	profile := trip.UserProfile{ID: "u1", BudgetLimit: 500, DietaryRestrictions: []string{"kosher"}}

	result := Validate(basePlan(museum), profile)
	assert.True(t, result.IsValid)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "no food activities found")
}

func TestMobilityWarnings(t *testing.T) {
	confirmedAct := activity("a1", "City Art Museum", trip.TimeSlot{Start: "10:00", End: "12:00"}, 20, "culture", trip.TypeIndoor)
	confirmedAct.Constraints = map[string]string{"wheelchair_accessible": "true"}
	unconfirmed := activity("a2", "Old Warehouse Gallery", trip.TimeSlot{Start: "13:00", End: "14:00"}, 20, "culture", trip.TypeIndoor)

	profile := trip.UserProfile{
		ID:          "u1",
		BudgetLimit: 500,
		Mobility:    &trip.MobilityNeeds{WheelchairAccessible: true, MaxWalkingDistanceKM: 2.0},
	}

	result := Validate(basePlan(confirmedAct, unconfirmed), profile)
	assert.True(t, result.IsValid, "mobility issues warn, never violate")
	require.Len(t, result.Warnings, 2)
	assert.Contains(t, result.Warnings[0], "Old Warehouse Gallery")
	assert.Contains(t, result.Warnings[0], "not confirmed")
	assert.Contains(t, result.Warnings[1], "geographic calculation")
}

func TestRainSensitivityWarnings(t *testing.T) {
	hike := activity("a1", "Coastal Hike", trip.TimeSlot{Start: "09:00", End: "12:00"}, 10, "sightseeing", trip.TypeOutdoor)
	hike.RiskScore = 0.9

	profile := trip.UserProfile{ID: "u1", BudgetLimit: 500, SensitiveToRain: true}

	// No indoor alternatives: two warnings, one for missing backups, one for
	// the high-risk activity.
	result := Validate(basePlan(hike), profile)
	assert.True(t, result.IsValid)
	require.Len(t, result.Warnings, 2)
	assert.Contains(t, result.Warnings[0], "no indoor alternatives")
	assert.Contains(t, result.Warnings[1], "high weather risk")

	// With an indoor backup only the risk warning remains.
	plan := basePlan(hike)
	plan.Alternatives = []trip.Activity{
		activity("b1", "Riverside Gallery", trip.TimeSlot{Start: "10:00", End: "12:00"}, 15, "culture", trip.TypeIndoor),
	}
	result = Validate(plan, profile)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "high weather risk")
}

func TestValidateResultIsDeterministic(t *testing.T) {
	plan := basePlan(
		activity("a1", "Harbor Restaurant", trip.TimeSlot{Start: "12:00", End: "12:05"}, 400, "food", trip.TypeIndoor),
		activity("a2", "Coastal Hike", trip.TimeSlot{Start: "12:00", End: "15:00"}, 10, "sightseeing", trip.TypeOutdoor),
	)
	profile := trip.UserProfile{
		ID:                  "u1",
		BudgetLimit:         100,
		SensitiveToRain:     true,
		DietaryRestrictions: []string{"vegan"},
		Mobility:            &trip.MobilityNeeds{WheelchairAccessible: true},
	}

	first := Validate(plan, profile)
	second := Validate(plan, profile)
	assert.Equal(t, first.Violations, second.Violations)
	assert.Equal(t, first.Warnings, second.Warnings)
	assert.Equal(t, first.Score, second.Score)
}
