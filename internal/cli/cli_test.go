package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fitsim/internal/config"
	"fitsim/internal/dummy"
	"fitsim/internal/invoker"
	"fitsim/internal/pipeline"
	"fitsim/internal/runner"
)

func testConfig(t *testing.T, h http.Handler) config.Config {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.BaseURL = srv.URL
	cfg.Timeout = 2 * time.Second
	cfg.RetryDelay = 0
	cfg.PaceInterval = 0
	cfg.StageDelay = 0
	cfg.Seed = 7
	cfg.LogLevel = "nop"
	return cfg
}

func TestStartFullRun(t *testing.T) {
	cfg := testConfig(t, dummy.New(dummy.ServerConfig{Seed: 1}).Handler())
	cfg.OutPrefix = filepath.Join(t.TempDir(), "run")

	var out bytes.Buffer
	sum, err := Start(context.Background(), Options{Config: cfg, Mode: runner.ModeFull, Out: &out})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sum.State != pipeline.StateComplete {
		t.Errorf("state = %s, want complete", sum.State)
	}

	text := out.String()
	for _, want := range []string{
		"FITSIM USER SIMULATION",
		"Target URL : " + cfg.BaseURL,
		"Retries    : 3 attempt(s)",
		"Authentication", "Personal Info", "Tracking", "Analysis",
		"register", "login", "recommendations",
		"SIMULATION SUMMARY", "complete",
		"Reports saved to",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q", want)
		}
	}

	for _, name := range []string{cfg.OutPrefix + "_summary.json", cfg.OutPrefix + ".csv"} {
		if _, err := os.Stat(name); err != nil {
			t.Errorf("report %s: %v", name, err)
		}
	}
}

func TestStartAuthenticationFailure(t *testing.T) {
	cfg := testConfig(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	cfg.MaxAttempts = 1

	var out bytes.Buffer
	sum, err := Start(context.Background(), Options{Config: cfg, Out: &out})
	if !errors.Is(err, runner.ErrAuthenticationFailed) {
		t.Fatalf("err = %v, want ErrAuthenticationFailed", err)
	}
	if sum.State != pipeline.StateAuthFailed {
		t.Errorf("state = %s", sum.State)
	}
	if !strings.Contains(out.String(), "auth_failed") {
		t.Errorf("summary does not show the failed state:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "FAILURE SUMMARY") {
		t.Errorf("missing failure summary:\n%s", out.String())
	}
}

func TestStartRejectsLogLevel(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "loud"
	if _, err := Start(context.Background(), Options{Config: cfg, Out: &bytes.Buffer{}}); err == nil {
		t.Fatal("expected an error for an unknown log level")
	}
}

func TestReporterOperationLines(t *testing.T) {
	tests := []struct {
		name string
		op   pipeline.OpResult
		want []string
	}{
		{
			name: "skipped",
			op:   pipeline.OpResult{Name: "dashboard", Class: invoker.ClassSkipped, Severity: pipeline.SeverityWarning, Detail: "no user id"},
			want: []string{"dashboard", "skipped", "no user id"},
		},
		{
			name: "transport failure",
			op: pipeline.OpResult{Name: "health check", Attempts: 3, Class: invoker.ClassTransportFailure,
				Severity: pipeline.SeverityError},
			want: []string{"transport_failure after 3 attempt(s)"},
		},
		{
			name: "retried",
			op:   pipeline.OpResult{Name: "register", Status: 201, Class: invoker.ClassSuccess, Attempts: 2, Severity: pipeline.SeverityOK},
			want: []string{"201 after 2 attempts"},
		},
		{
			name: "recommendations",
			op: pipeline.OpResult{Name: "recommendations", Status: 200, Class: invoker.ClassSuccess, Attempts: 1, Severity: pipeline.SeverityOK,
				Body: []byte(`[{"type":"goal","content":"Set a goal","priority":"medium"}]`)},
			want: []string{"[medium] Set a goal"},
		},
		{
			name: "goals",
			op: pipeline.OpResult{Name: "my goals", Status: 200, Class: invoker.ClassSuccess, Attempts: 1, Severity: pipeline.SeverityOK,
				Body: []byte(`[{"id":4,"goalType":"weight_loss","description":"Lose 5kg","targetWeight":65,"targetDate":"2025-06-08","status":"active","progress":40}]`)},
			want: []string{"#4 weight_loss: Lose 5kg, progress 40% (active), target 65kg by 2025-06-08"},
		},
		{
			name: "goal without status",
			op: pipeline.OpResult{Name: "my goals", Status: 200, Class: invoker.ClassSuccess, Attempts: 1, Severity: pipeline.SeverityOK,
				Body: []byte(`[{"id":9,"goalType":"maintain","description":"Stay fit","targetWeight":60,"targetDate":"2025-09-01"}]`)},
			want: []string{"#9 maintain: Stay fit, progress 0% (unknown)"},
		},
		{
			name: "statistics",
			op: pipeline.OpResult{Name: "goal 4 statistics", Status: 200, Class: invoker.ClassSuccess, Attempts: 1, Severity: pipeline.SeverityOK,
				Body: []byte(`{"progress":0,"daysRemaining":90}`)},
			want: []string{"90 day(s) remaining"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewReporter(&buf).OpFinished("Stage", tt.op)
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("line missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestFailureCounts(t *testing.T) {
	sum := runner.Summary{Stages: []pipeline.StageResult{{
		Stage: "Tracking",
		Ops: []pipeline.OpResult{
			{Name: "meal", Status: 500, Severity: pipeline.SeverityError},
			{Name: "meal", Status: 500, Severity: pipeline.SeverityError},
			{Name: "exercise", Status: 201, Severity: pipeline.SeverityOK},
			{Name: "food list", Severity: pipeline.SeverityWarning},
		},
	}}}

	got := failureCounts(sum)
	want := []string{"1 x Tracking / food list", "2 x Tracking / meal (500)"}
	if len(got) != len(want) {
		t.Fatalf("failureCounts = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestHandleAutoReportSkipsWithoutPrefix(t *testing.T) {
	var buf bytes.Buffer
	handleAutoReport(&buf, runner.Summary{Stages: []pipeline.StageResult{{Stage: "Authentication"}}}, "")
	if buf.Len() != 0 {
		t.Errorf("unexpected output %q", buf.String())
	}
}
