package integration_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"tripsentry/integration/harness"
)

type planOutput struct {
	Data struct {
		PlanID string `json:"plan_id"`
		Status string `json:"status"`
		Main   []struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"main_itinerary"`
	} `json:"data"`
	Validation struct {
		IsValid    bool     `json:"is_valid"`
		Violations []string `json:"violations"`
		Score      float64  `json:"score"`
	} `json:"validation"`
}

func TestPlanSmoke(t *testing.T) {
	binPath := harness.BuildBinary(t)
	runDir := t.TempDir()

	stdout, stderr, code := harness.Run(t, binPath, runDir, []string{
		"plan", "-intent", "a day of food and art in san francisco",
	})
	if code != 0 {
		t.Fatalf("tripsentry plan exit code %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}

	var out planOutput
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("parse plan output: %v\nstdout:\n%s", err, stdout)
	}

	if out.Data.PlanID == "" {
		t.Error("plan has no id")
	}
	if out.Data.Status != "verified" {
		t.Errorf("status = %q, want verified", out.Data.Status)
	}
	if !out.Validation.IsValid {
		t.Errorf("default profile plan rejected: %v", out.Validation.Violations)
	}
	if len(out.Data.Main) == 0 {
		t.Fatal("empty itinerary")
	}
	if out.Validation.Score <= 0 {
		t.Errorf("score = %v, want > 0", out.Validation.Score)
	}

	// The default config writes the audit log relative to the working directory.
	if _, err := os.Stat(filepath.Join(runDir, "audit", "events.db")); err != nil {
		t.Errorf("audit db not written: %v", err)
	}
}

func TestPlanWithProfileAndConfig(t *testing.T) {
	binPath := harness.BuildBinary(t)
	runDir := t.TempDir()

	profilePath := filepath.Join(runDir, "profile.yaml")
	if err := os.WriteFile(profilePath, []byte(`
user_id: traveler-1
budget_limit: 20000
preferences: [food, culture]
`), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}

	configPath := filepath.Join(runDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(`
audit_db_path: ""
default_location: Seattle
`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	stdout, stderr, code := harness.Run(t, binPath, runDir, []string{
		"plan", "-intent", "rainy day museums", "-profile", profilePath, "-config", configPath,
	})
	if code != 0 {
		t.Fatalf("tripsentry plan exit code %d\nstderr:\n%s", code, stderr)
	}

	var out planOutput
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("parse plan output: %v", err)
	}
	if !out.Validation.IsValid {
		t.Errorf("plan rejected: %v", out.Validation.Violations)
	}

	// Auditing disabled by the config.
	if _, err := os.Stat(filepath.Join(runDir, "audit")); !os.IsNotExist(err) {
		t.Error("audit dir created despite empty audit_db_path")
	}
}
