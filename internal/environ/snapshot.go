package environ

import "time"

// WeatherCode is an ordered severity domain for sky conditions. Fog sits to
// the side: it is neither benign nor part of the critical class.
type WeatherCode string

const (
	WeatherClear        WeatherCode = "clear"
	WeatherPartlyCloudy WeatherCode = "partly_cloudy"
	WeatherCloudy       WeatherCode = "cloudy"
	WeatherRainLight    WeatherCode = "rain_light"
	WeatherRainHeavy    WeatherCode = "rain_heavy"
	WeatherStorm        WeatherCode = "storm"
	WeatherSnow         WeatherCode = "snow"
	WeatherFog          WeatherCode = "fog"
)

// Critical reports whether the code belongs to the severe class that forces
// immediate replanning when entered.
func (w WeatherCode) Critical() bool {
	switch w {
	case WeatherRainHeavy, WeatherStorm, WeatherSnow:
		return true
	}
	return false
}

// Rainy reports whether any precipitation is falling.
func (w WeatherCode) Rainy() bool {
	switch w {
	case WeatherRainLight, WeatherRainHeavy, WeatherStorm, WeatherSnow:
		return true
	}
	return false
}

// Snapshot is one timestamped reading of the environment around a location.
// The watchdog produces a fresh snapshot each poll and keeps only the latest
// as its comparison baseline.
type Snapshot struct {
	LocationID   string      `json:"location_id"`
	Timestamp    time.Time   `json:"timestamp"`
	Weather      WeatherCode `json:"weather"`
	TemperatureC float64     `json:"temperature_c"`
	// PrecipProbability is within [0, 1]; nil means the provider could not say.
	PrecipProbability *float64 `json:"precip_probability,omitempty"`
	// TrafficIndex ranges 0 (empty roads) to 10 (gridlock).
	TrafficIndex float64 `json:"traffic_index"`
	// POIOpen is nil when opening hours are unknown.
	POIOpen *bool `json:"poi_open,omitempty"`
}
