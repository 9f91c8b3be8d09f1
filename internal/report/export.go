// Package report writes a finished simulation run to disk.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"fitsim/internal/pipeline"
	"fitsim/internal/runner"
	"fitsim/internal/stats"
)

type opRecord struct {
	Name      string `json:"name"`
	Method    string `json:"method"`
	Path      string `json:"path"`
	Status    int    `json:"status"`
	Class     string `json:"class"`
	Attempts  int    `json:"attempts"`
	LatencyMs int64  `json:"latency_ms"`
	Severity  string `json:"severity"`
	Detail    string `json:"detail,omitempty"`
}

type stageRecord struct {
	Stage      string            `json:"stage"`
	Success    bool              `json:"success"`
	Detail     string            `json:"detail"`
	DurationMs int64             `json:"duration_ms"`
	Counters   pipeline.Counters `json:"counters"`
	Ops        []opRecord        `json:"operations"`
}

type summaryRecord struct {
	RunID       string         `json:"run_id"`
	Mode        string         `json:"mode"`
	State       string         `json:"state"`
	Username    string         `json:"registered_username,omitempty"`
	HasToken    bool           `json:"has_token"`
	UserID      *int64         `json:"user_id,omitempty"`
	TokenExpiry *time.Time     `json:"token_expiry,omitempty"`
	Interrupted bool           `json:"interrupted,omitempty"`
	Declined    bool           `json:"declined,omitempty"`
	Started     time.Time      `json:"started"`
	DurationMs  int64          `json:"duration_ms"`
	Stats       stats.Snapshot `json:"stats"`
	Stages      []stageRecord  `json:"stages"`
}

func toRecord(sum runner.Summary) summaryRecord {
	rec := summaryRecord{
		RunID:       sum.RunID,
		Mode:        sum.Mode.String(),
		State:       sum.State.String(),
		Username:    sum.Username,
		HasToken:    sum.HasToken,
		Interrupted: sum.Interrupted,
		Declined:    sum.Declined,
		Started:     sum.Started,
		DurationMs:  sum.Duration.Milliseconds(),
		Stats:       sum.Stats,
		Stages:      make([]stageRecord, 0, len(sum.Stages)),
	}
	if sum.HasUser {
		id := sum.UserID
		rec.UserID = &id
	}
	if !sum.TokenExpiry.IsZero() {
		exp := sum.TokenExpiry
		rec.TokenExpiry = &exp
	}
	for _, st := range sum.Stages {
		sr := stageRecord{
			Stage:      st.Stage,
			Success:    st.Success,
			Detail:     st.Detail,
			DurationMs: st.Duration().Milliseconds(),
			Counters:   st.Counters(),
		}
		for _, op := range st.Ops {
			sr.Ops = append(sr.Ops, opRecord{
				Name:      op.Name,
				Method:    op.Method,
				Path:      op.Path,
				Status:    op.Status,
				Class:     op.Class.String(),
				Attempts:  op.Attempts,
				LatencyMs: op.Latency.Milliseconds(),
				Severity:  string(op.Severity),
				Detail:    op.Detail,
			})
		}
		rec.Stages = append(rec.Stages, sr)
	}
	return rec
}

// ExportSummary writes the run summary as indented JSON.
func ExportSummary(sum runner.Summary, filename string) error {
	data, err := json.MarshalIndent(toRecord(sum), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}

// ExportCSV writes one row per sub-operation.
func ExportCSV(sum runner.Summary, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{
		"runId", "stage", "operation", "method", "path", "responseCode", "responseMessage",
		"class", "attempts", "elapsed", "severity", "detail",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, st := range sum.Stages {
		for _, op := range st.Ops {
			record := []string{
				sum.RunID,
				st.Stage,
				op.Name,
				op.Method,
				op.Path,
				strconv.Itoa(op.Status),
				http.StatusText(op.Status),
				op.Class.String(),
				strconv.Itoa(op.Attempts),
				strconv.FormatInt(op.Latency.Milliseconds(), 10),
				string(op.Severity),
				op.Detail,
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

// Write exports both files for prefix and returns their names.
func Write(sum runner.Summary, prefix string) ([]string, error) {
	files := []string{prefix + "_summary.json", prefix + ".csv"}
	if err := ExportSummary(sum, files[0]); err != nil {
		return nil, fmt.Errorf("write summary: %w", err)
	}
	if err := ExportCSV(sum, files[1]); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return files, nil
}
