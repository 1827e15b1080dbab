// Package config loads application settings and user profiles from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"tripsentry/internal/trip"
)

// Config holds process-level settings.
type Config struct {
	// PollIntervalSeconds is the watchdog poll cadence. Default 300.
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`
	// AuditDBPath is where the SQLite audit log lives. Empty disables auditing.
	AuditDBPath string `yaml:"audit_db_path"`
	// Notifications enables desktop notifications on alerts.
	Notifications bool `yaml:"notifications"`
	// DefaultLocation is used when no location can be read from the intent.
	DefaultLocation string `yaml:"default_location"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		PollIntervalSeconds: 300,
		AuditDBPath:         "audit/events.db",
		DefaultLocation:     "San Francisco",
	}
}

// PollInterval returns the poll cadence as a duration.
func (c Config) PollInterval() time.Duration {
	secs := c.PollIntervalSeconds
	if secs <= 0 {
		secs = 300
	}
	return time.Duration(secs) * time.Second
}

// Load reads a YAML config file, filling unset fields from Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.PollIntervalSeconds <= 0 {
		cfg.PollIntervalSeconds = Default().PollIntervalSeconds
	}
	if cfg.DefaultLocation == "" {
		cfg.DefaultLocation = Default().DefaultLocation
	}
	return cfg, nil
}

// LoadProfile reads a user profile from a YAML file.
func LoadProfile(path string) (trip.UserProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return trip.UserProfile{}, fmt.Errorf("read profile: %w", err)
	}

	var profile trip.UserProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return trip.UserProfile{}, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if profile.ID == "" {
		profile.ID = "anonymous"
	}
	if profile.BudgetLimit <= 0 {
		return trip.UserProfile{}, fmt.Errorf("profile %s: budget_limit must be positive", path)
	}
	return profile, nil
}
