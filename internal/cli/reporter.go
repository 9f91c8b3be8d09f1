package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tidwall/gjson"

	"fitsim/internal/invoker"
	"fitsim/internal/pipeline"
	"fitsim/internal/tui/styles"
)

// Reporter prints stage progress as it happens. It implements
// pipeline.Observer.
type Reporter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

func (r *Reporter) StageStarted(stage string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, "\n%s\n", styles.Stage.Render("▶ "+stage))
}

func (r *Reporter) OpFinished(_ string, op pipeline.OpResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	line := fmt.Sprintf("  %s %-28s %s", styles.Marker(string(op.Severity)), op.Name, status(op))
	if op.Detail != "" {
		line += "  " + detailStyle(op).Render(op.Detail)
	}
	fmt.Fprintln(r.w, line)
	for _, d := range details(op) {
		fmt.Fprintf(r.w, "      %s\n", styles.Subtle.Render(d))
	}
}

func (r *Reporter) StageFinished(res pipeline.StageResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	verdict := styles.Success.Render("done")
	if !res.Success {
		verdict = styles.Error.Render("failed")
	}
	fmt.Fprintf(r.w, "  %s %s %s\n", verdict, res.Detail,
		styles.Subtle.Render("("+res.Duration().Round(time.Millisecond).String()+")"))
}

// status renders the HTTP outcome of an operation.
func status(op pipeline.OpResult) string {
	switch {
	case op.Class == invoker.ClassSkipped:
		return styles.Subtle.Render("skipped")
	case op.Status == 0:
		return styles.Error.Render(fmt.Sprintf("%s after %d attempt(s)", op.Class, op.Attempts))
	}
	s := fmt.Sprintf("%d", op.Status)
	if op.Attempts > 1 {
		s += fmt.Sprintf(" after %d attempts", op.Attempts)
	}
	s += " " + op.Latency.Round(time.Millisecond).String()
	if op.OK() {
		return styles.Value.Render(s)
	}
	return styles.Warn.Render(s)
}

func detailStyle(op pipeline.OpResult) lipgloss.Style {
	switch op.Severity {
	case pipeline.SeverityError:
		return styles.Error
	case pipeline.SeverityWarning:
		return styles.Warn
	}
	return styles.Text
}

// details extracts the lines worth showing from read responses.
func details(op pipeline.OpResult) []string {
	if !op.OK() || len(op.Body) == 0 {
		return nil
	}
	var out []string
	switch {
	case op.Name == "my goals":
		gjson.ParseBytes(op.Body).ForEach(func(_, g gjson.Result) bool {
			status := g.Get("status").String()
			if status == "" {
				status = "unknown"
			}
			out = append(out, fmt.Sprintf("#%d %s: %s, progress %d%% (%s), target %skg by %s",
				g.Get("id").Int(), g.Get("goalType").String(), g.Get("description").String(),
				g.Get("progress").Int(), status,
				g.Get("targetWeight").String(), g.Get("targetDate").String()))
			return true
		})
	case op.Name == "recommendations":
		gjson.ParseBytes(op.Body).ForEach(func(_, rec gjson.Result) bool {
			out = append(out, fmt.Sprintf("[%s] %s", rec.Get("priority").String(), rec.Get("content").String()))
			return true
		})
	case strings.HasSuffix(op.Name, "statistics"):
		if d := gjson.GetBytes(op.Body, "daysRemaining"); d.Exists() {
			out = append(out, fmt.Sprintf("%d day(s) remaining", d.Int()))
		}
	}
	return out
}
