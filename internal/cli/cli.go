// Package cli wires the configured components into a simulation run and
// renders its progress and results on the console.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"fitsim/internal/config"
	"fitsim/internal/datagen"
	"fitsim/internal/invoker"
	"fitsim/internal/logging"
	"fitsim/internal/pipeline"
	"fitsim/internal/report"
	"fitsim/internal/runner"
	"fitsim/internal/stats"
	"fitsim/internal/telemetry"
	"fitsim/internal/tui/styles"
)

const rule = "======================================================================"

type Options struct {
	Config  config.Config
	Mode    runner.Mode
	Confirm runner.Confirmer

	// Out receives the console report, Err the log output. Nil means the
	// process stdout and stderr.
	Out io.Writer
	Err io.Writer
}

// Start runs one simulation and prints its report. The returned error is
// non-nil when the run could not start or Authentication failed.
func Start(ctx context.Context, opts Options) (runner.Summary, error) {
	cfg := opts.Config
	out, errOut := opts.Out, opts.Err
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, errOut)
	if err != nil {
		return runner.Summary{}, err
	}
	defer log.Sync()

	shutdown, err := telemetry.Setup(ctx, cfg.Trace, cfg.TraceEndpoint)
	if err != nil {
		return runner.Summary{}, err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			log.Warn("trace shutdown", zap.Error(err))
		}
	}()

	st := stats.NewStats()
	client := invoker.New(cfg.BaseURL, invoker.RetryPolicy{
		MaxAttempts: cfg.MaxAttempts,
		Delay:       cfg.RetryDelay,
		Timeout:     cfg.Timeout,
	}, invoker.WithLogger(log), invoker.WithStats(st))

	stages := pipeline.Stages(pipeline.Deps{
		Invoker:  client,
		Data:     datagen.New(datagen.NewSeededRNG(cfg.Seed), nil),
		Pacer:    pipeline.NewIntervalPacer(cfg.PaceInterval),
		Observer: NewReporter(out),
		Log:      log,
	})

	r := runner.NewRunner(runner.Config{
		Mode:       opts.Mode,
		StageDelay: cfg.StageDelay,
		Confirm:    opts.Confirm,
		Log:        log,
	}, stages, st)

	printHeader(out, client, cfg, opts.Mode)
	sum, runErr := r.Run(ctx)
	printSummary(out, sum)
	handleAutoReport(out, sum, cfg.OutPrefix)
	return sum, runErr
}

func printHeader(w io.Writer, client *invoker.Client, cfg config.Config, mode runner.Mode) {
	p := client.Policy()
	fmt.Fprintf(w, "\n%s\n", styles.Title.Render("FITSIM USER SIMULATION"))
	fmt.Fprintf(w, "%s\n", rule)
	fmt.Fprintf(w, "Target URL : %s\n", client.BaseURL())
	fmt.Fprintf(w, "Mode       : %s\n", mode)
	fmt.Fprintf(w, "Retries    : %d attempt(s), %s apart, %s timeout\n", p.MaxAttempts, p.Delay, p.Timeout)
	fmt.Fprintf(w, "Pacing     : %s between records, %s between stages\n", cfg.PaceInterval, cfg.StageDelay)
	fmt.Fprintf(w, "%s\n", rule)
}

func printSummary(w io.Writer, sum runner.Summary) {
	fmt.Fprintf(w, "\n%s\n", styles.Title.Render("SIMULATION SUMMARY"))
	fmt.Fprintf(w, "%s\n", rule)
	fmt.Fprintf(w, "Run ID        : %s\n", sum.RunID)
	fmt.Fprintf(w, "Final state   : %s\n", stateText(sum))
	fmt.Fprintf(w, "Duration      : %s\n", sum.Duration.Round(time.Millisecond))

	if sum.Username != "" {
		fmt.Fprintf(w, "Username      : %s\n", sum.Username)
	}
	if sum.HasUser {
		fmt.Fprintf(w, "User ID       : %d\n", sum.UserID)
	}
	token := "no"
	if sum.HasToken {
		token = "yes"
		if !sum.TokenExpiry.IsZero() {
			token += ", expires " + sum.TokenExpiry.Format(time.RFC3339)
		}
	}
	fmt.Fprintf(w, "Token         : %s\n", token)

	fmt.Fprintf(w, "\nSTAGES\n")
	for _, st := range sum.Stages {
		c := st.Counters()
		mark := styles.Marker(string(pipeline.SeverityOK))
		if !st.Success {
			mark = styles.Marker(string(pipeline.SeverityError))
		} else if c.Warnings+c.Errors > 0 {
			mark = styles.Marker(string(pipeline.SeverityWarning))
		}
		fmt.Fprintf(w, "  %s %-15s ok %d  warn %d  err %d  %s\n", mark, st.Stage, c.OK, c.Warnings, c.Errors, st.Detail)
	}

	s := sum.Stats
	fmt.Fprintf(w, "\nREQUESTS\n")
	fmt.Fprintf(w, "   Calls     : %d (%d attempts, %d retries)\n", s.Calls, s.Attempts, s.Retries)
	fmt.Fprintf(w, "   Success   : %d\n", s.Success)
	fmt.Fprintf(w, "   Failures  : %d client, %d server, %d transport\n", s.Client, s.Server, s.Transport)
	fmt.Fprintf(w, "   Latency   : p50 %.2fms  p99 %.2fms  max %.2fms\n", s.P50Ms, s.P99Ms, s.MaxMs)

	if failures := failureCounts(sum); len(failures) > 0 {
		fmt.Fprintf(w, "\nFAILURE SUMMARY\n")
		for _, f := range failures {
			fmt.Fprintf(w, "   %s\n", f)
		}
	}
	fmt.Fprintf(w, "%s\n", rule)
}

func stateText(sum runner.Summary) string {
	state := sum.State.String()
	switch {
	case sum.Interrupted:
		return styles.Warn.Render(state + " (interrupted)")
	case sum.Declined:
		return styles.Warn.Render(state + " (stopped)")
	case sum.State == pipeline.StateAuthFailed:
		return styles.Error.Render(state)
	}
	return styles.Success.Render(state)
}

// failureCounts groups non-OK operations by stage, name and status.
func failureCounts(sum runner.Summary) []string {
	counts := map[string]int{}
	for _, st := range sum.Stages {
		for _, op := range st.Ops {
			if op.OK() {
				continue
			}
			key := fmt.Sprintf("%s / %s", st.Stage, op.Name)
			if op.Status != 0 {
				key += fmt.Sprintf(" (%d)", op.Status)
			}
			counts[key]++
		}
	}
	lines := make([]string, 0, len(counts))
	for k, n := range counts {
		lines = append(lines, fmt.Sprintf("%d x %s", n, k))
	}
	sort.Strings(lines)
	return lines
}

func handleAutoReport(w io.Writer, sum runner.Summary, prefix string) {
	if prefix == "" || len(sum.Stages) == 0 {
		return
	}

	fmt.Fprintf(w, "\nGenerating reports with prefix: %s\n", prefix)
	files, err := report.Write(sum, prefix)
	if err != nil {
		fmt.Fprintf(w, "%s\n", styles.Error.Render("Report failed: "+err.Error()))
		return
	}
	fmt.Fprintf(w, "Reports saved to %s\n", strings.Join(files, ", "))
}
