package environ

import (
	"context"
	"hash/fnv"
	"time"
)

// Provider produces a current snapshot for a location key. Implementations
// may fail transiently; callers in the watchdog path must tolerate that.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, locationID string) (Snapshot, error)
}

// Service is the fetch entry point the rest of the system uses. A configured
// override always wins over the live provider, which is what lets tests and
// operators inject deterministic conditions without touching business logic.
type Service struct {
	overrides *OverrideManager
	live      Provider
}

// NewService wires a live provider with an override manager. Either may be nil:
// a nil override manager disables injection, a nil provider falls back to the
// static provider.
func NewService(live Provider, overrides *OverrideManager) *Service {
	if live == nil {
		live = &StaticProvider{}
	}
	return &Service{overrides: overrides, live: live}
}

// Fetch returns the override when one is set, otherwise delegates to the live
// provider.
func (s *Service) Fetch(ctx context.Context, locationID string) (Snapshot, error) {
	if s.overrides != nil {
		if snap, ok := s.overrides.Get(); ok {
			snap.LocationID = locationID
			snap.Timestamp = time.Now().UTC()
			return snap, nil
		}
	}
	return s.live.Fetch(ctx, locationID)
}

// StaticProvider is the deterministic offline provider: benign conditions with
// minor per-location variation so distinct locations do not share identical
// readings. It stands in for a real weather/traffic client.
type StaticProvider struct{}

func (p *StaticProvider) Name() string { return "static" }

func (p *StaticProvider) Fetch(_ context.Context, locationID string) (Snapshot, error) {
	h := fnv.New32a()
	h.Write([]byte(locationID))
	seed := h.Sum32()

	precip := 0.05
	open := true
	return Snapshot{
		LocationID:        locationID,
		Timestamp:         time.Now().UTC(),
		Weather:           WeatherClear,
		TemperatureC:      15.0 + float64(seed%10),
		PrecipProbability: &precip,
		TrafficIndex:      float64(seed % 4),
		POIOpen:           &open,
	}, nil
}
