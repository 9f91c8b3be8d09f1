package report

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"fitsim/internal/invoker"
	"fitsim/internal/pipeline"
	"fitsim/internal/runner"
	"fitsim/internal/stats"
)

func sampleSummary() runner.Summary {
	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	return runner.Summary{
		RunID:       "run-1",
		Mode:        runner.ModeFull,
		Username:    "le_an_1",
		HasToken:    true,
		UserID:      42,
		HasUser:     true,
		TokenExpiry: start.Add(24 * time.Hour),
		State:       pipeline.StateComplete,
		Started:     start,
		Duration:    3 * time.Second,
		Stats:       stats.Snapshot{Calls: 4, Attempts: 6, Retries: 2, Success: 3, Client: 1},
		Stages: []pipeline.StageResult{
			{
				Stage:    "Authentication",
				Success:  true,
				Detail:   "authenticated as le_an_1",
				Started:  start,
				Finished: start.Add(time.Second),
				Ops: []pipeline.OpResult{
					{Name: "health check", Method: "GET", Path: "/health", Status: 200, Class: invoker.ClassSuccess, Attempts: 1, Severity: pipeline.SeverityOK},
					{Name: "register", Method: "POST", Path: "/api/auth/register", Status: 201, Class: invoker.ClassSuccess, Attempts: 3, Latency: 15 * time.Millisecond, Severity: pipeline.SeverityOK},
				},
			},
			{
				Stage:   "Analysis",
				Success: true,
				Ops: []pipeline.OpResult{
					{Name: "nutrition analysis", Method: "GET", Path: "/api/nutrition/analysis", Status: 404, Class: invoker.ClassClientError, Attempts: 1, Severity: pipeline.SeverityWarning, Detail: "not found", Err: errors.New("not found")},
				},
			},
		},
	}
}

func TestWrite(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "run")
	files, err := Write(sampleSummary(), prefix)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(files) != 2 || files[0] != prefix+"_summary.json" || files[1] != prefix+".csv" {
		t.Fatalf("files = %v", files)
	}

	data, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	checks := map[string]string{
		"run_id":                         "run-1",
		"state":                          "complete",
		"registered_username":            "le_an_1",
		"user_id":                        "42",
		"stats.retries":                  "2",
		"stages.0.counters.ok":           "2",
		"stages.0.operations.1.attempts": "3",
		"stages.1.operations.0.severity": "warning",
		"stages.1.operations.0.class":    "client_error",
		"stages.0.duration_ms":           "1000",
	}
	for path, want := range checks {
		if got := gjson.GetBytes(data, path).String(); got != want {
			t.Errorf("%s = %q, want %q", path, got, want)
		}
	}

	f, err := os.Open(files[1])
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want header + 3", len(rows))
	}
	if rows[3][1] != "Analysis" || rows[3][5] != "404" || rows[3][6] != "Not Found" {
		t.Fatalf("last row = %v", rows[3])
	}
}

func TestSummaryOmitsUnknownUser(t *testing.T) {
	sum := sampleSummary()
	sum.HasUser = false
	sum.TokenExpiry = time.Time{}

	file := filepath.Join(t.TempDir(), "s.json")
	if err := ExportSummary(sum, file); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, _ := os.ReadFile(file)
	if gjson.GetBytes(data, "user_id").Exists() || gjson.GetBytes(data, "token_expiry").Exists() {
		t.Fatalf("unknown fields should be omitted: %s", data)
	}
}

func TestWriteBadPrefix(t *testing.T) {
	if _, err := Write(sampleSummary(), filepath.Join(t.TempDir(), "missing", "run")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestExportSkippedOperation(t *testing.T) {
	sum := sampleSummary()
	sum.Stages = []pipeline.StageResult{{
		Stage: "Personal Info",
		Ops: []pipeline.OpResult{{
			Name:     "update profile",
			Method:   "PUT",
			Path:     "/api/users/{id}/profile",
			Class:    invoker.ClassSkipped,
			Severity: pipeline.SeverityError,
			Detail:   "contract violation: no user id in session",
		}},
	}}

	prefix := filepath.Join(t.TempDir(), "skipped")
	files, err := Write(sum, prefix)
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	data, _ := os.ReadFile(files[0])
	if got := gjson.GetBytes(data, "stages.0.operations.0.class").String(); got != "skipped" {
		t.Errorf("json class = %q, want skipped", got)
	}
	if got := gjson.GetBytes(data, "stages.0.operations.0.attempts").Int(); got != 0 {
		t.Errorf("json attempts = %d, want 0", got)
	}

	f, err := os.Open(files[1])
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header + 1", len(rows))
	}
	if row := rows[1]; row[7] != "skipped" || row[10] != "error" || row[5] != "0" {
		t.Fatalf("row = %v", row)
	}
}
