// Package audit records plan lifecycle events in a SQLite-backed append-only
// log. Plans themselves live in process memory; the audit trail is the one
// durable record of what the control loop did and why.
package audit

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Event types written by the orchestrator and watchdog.
const (
	EventPlanCreated     = "plan_created"
	EventPlanVerified    = "plan_verified"
	EventPlanRejected    = "plan_rejected"
	EventPlanActivated   = "plan_activated"
	EventPlanCompleted   = "plan_completed"
	EventPlanCancelled   = "plan_cancelled"
	EventAlertReceived   = "alert_received"
	EventAlertDropped    = "alert_dropped"
	EventReplanApplied   = "replan_applied"
	EventWatchdogStarted = "watchdog_started"
	EventWatchdogStopped = "watchdog_stopped"
)

// Logger writes events to one SQLite database. A nil Logger is valid and
// drops everything, so callers never need to guard their log sites.
type Logger struct {
	db   *sql.DB
	path string
}

// Event is one recorded audit entry.
type Event struct {
	ID          int64
	Timestamp   time.Time
	Actor       string
	Type        string
	PlanID      string
	PayloadJSON string
}

// Open opens or creates the audit database at path.
func Open(path string) (*Logger, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve audit db path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("ensure audit db dir: %w", err)
	}

	db, err := sql.Open("sqlite", abs)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}

	l := &Logger{db: db, path: abs}
	if err := l.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

// Close releases the database connection.
func (l *Logger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

func (l *Logger) ensureSchema() error {
	_, err := l.db.Exec(`
CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ts TEXT NOT NULL,
	actor TEXT NOT NULL,
	type TEXT NOT NULL,
	plan_id TEXT NOT NULL DEFAULT '',
	payload_json TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_plan ON events(plan_id, id);
`)
	if err != nil {
		return fmt.Errorf("create audit schema: %w", err)
	}
	return nil
}

// Log appends one event. The payload is marshalled to JSON; failures to
// marshal are reported, not silently truncated.
func (l *Logger) Log(actor, eventType, planID string, payload any) error {
	if l == nil || l.db == nil {
		return nil
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}
	_, err = l.db.Exec(
		`INSERT INTO events (ts, actor, type, plan_id, payload_json) VALUES (?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano), actor, eventType, planID, string(payloadJSON),
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// Recent returns up to limit events for a plan, newest first. An empty plan
// ID returns events across all plans.
func (l *Logger) Recent(planID string, limit int) ([]Event, error) {
	if l == nil || l.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, ts, actor, type, plan_id, payload_json FROM events`
	args := []any{}
	if planID != "" {
		query += ` WHERE plan_id = ?`
		args = append(args, planID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var ts string
		if err := rows.Scan(&ev.ID, &ts, &ev.Actor, &ev.Type, &ev.PlanID, &ev.PayloadJSON); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		parsed, parseErr := time.Parse(time.RFC3339Nano, ts)
		if parseErr != nil {
			return nil, fmt.Errorf("parse audit timestamp %q: %w", ts, parseErr)
		}
		ev.Timestamp = parsed
		events = append(events, ev)
	}
	return events, rows.Err()
}
