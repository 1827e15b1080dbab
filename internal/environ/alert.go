package environ

import "time"

// Severity classifies how urgently a detected change must be handled.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// ChangeType names the environment dimension that moved.
type ChangeType string

const (
	ChangeWeather     ChangeType = "weather"
	ChangeTraffic     ChangeType = "traffic"
	ChangeTemperature ChangeType = "temperature"
)

// AlertSignal is an immutable record of one significant environmental change.
// The change detector fills everything except the plan binding; the watchdog
// stamps Source and AffectedPlanID before handing it to the orchestrator.
type AlertSignal struct {
	Source         string     `json:"source"`
	ChangeType     ChangeType `json:"change_type"`
	Message        string     `json:"message"`
	TriggerValue   string     `json:"trigger_value"`
	Severity       Severity   `json:"severity"`
	AffectedPlanID string     `json:"affected_plan_id,omitempty"`
	Snapshot       Snapshot   `json:"snapshot"`
	EmittedAt      time.Time  `json:"emitted_at"`
}
