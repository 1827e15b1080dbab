package environ

import (
	"fmt"
	"math"
	"time"
)

const (
	trafficSpikeThreshold    = 3.0
	trafficCriticalDelta     = 5.0
	temperatureSwingDegreesC = 10.0
)

// Compare inspects two successive snapshots and returns an alert when the
// delta is materially significant, or nil for noise. Dimensions are checked in
// fixed priority order and the first match wins, so a single comparison never
// emits more than one signal.
func Compare(prev, cur Snapshot) *AlertSignal {
	if sig := compareWeather(prev, cur); sig != nil {
		return sig
	}
	if sig := compareTraffic(prev, cur); sig != nil {
		return sig
	}
	return compareTemperature(prev, cur)
}

func compareWeather(prev, cur Snapshot) *AlertSignal {
	if prev.Weather == cur.Weather {
		return nil
	}

	severity := SeverityWarning
	switch {
	case !prev.Weather.Critical() && cur.Weather.Critical():
		severity = SeverityCritical
	case cur.Weather == WeatherRainLight:
		severity = SeverityWarning
	case prev.Weather.Critical() && cur.Weather == WeatherClear:
		severity = SeverityInfo
	}

	return newSignal(cur, ChangeWeather, severity,
		fmt.Sprintf("weather changed from %s to %s", prev.Weather, cur.Weather),
		string(cur.Weather))
}

func compareTraffic(prev, cur Snapshot) *AlertSignal {
	delta := math.Abs(cur.TrafficIndex - prev.TrafficIndex)
	if delta <= trafficSpikeThreshold {
		return nil
	}
	severity := SeverityWarning
	if delta >= trafficCriticalDelta {
		severity = SeverityCritical
	}
	return newSignal(cur, ChangeTraffic, severity,
		fmt.Sprintf("traffic index moved from %.1f to %.1f", prev.TrafficIndex, cur.TrafficIndex),
		fmt.Sprintf("%.1f", cur.TrafficIndex))
}

func compareTemperature(prev, cur Snapshot) *AlertSignal {
	delta := math.Abs(cur.TemperatureC - prev.TemperatureC)
	if delta <= temperatureSwingDegreesC {
		return nil
	}
	return newSignal(cur, ChangeTemperature, SeverityWarning,
		fmt.Sprintf("temperature moved from %.1f°C to %.1f°C", prev.TemperatureC, cur.TemperatureC),
		fmt.Sprintf("%.1f", cur.TemperatureC))
}

func newSignal(cur Snapshot, change ChangeType, severity Severity, message, trigger string) *AlertSignal {
	return &AlertSignal{
		ChangeType:   change,
		Message:      message,
		TriggerValue: trigger,
		Severity:     severity,
		Snapshot:     cur,
		EmittedAt:    time.Now().UTC(),
	}
}
