package cmd

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"fitsim/internal/cli"
	"fitsim/internal/config"
	"fitsim/internal/prompt"
	"fitsim/internal/runner"
)

// scriptedConsole answers Select with a fixed index or error.
type scriptedConsole struct {
	idx     int
	err     error
	selects int
	opened  int
}

func (c *scriptedConsole) Select(_ context.Context, _ string, options []string) (int, error) {
	c.selects++
	if len(options) != len(menuItems) {
		return -1, fmt.Errorf("got %d options", len(options))
	}
	return c.idx, c.err
}

func (c *scriptedConsole) Confirm(context.Context, string) (bool, error) { return true, nil }

func (c *scriptedConsole) prompter() (prompt.Prompter, error) {
	c.opened++
	return c, nil
}

type startRecorder struct {
	calls []cli.Options
	err   error
}

func (s *startRecorder) start(_ context.Context, opts cli.Options) (runner.Summary, error) {
	s.calls = append(s.calls, opts)
	return runner.Summary{Mode: opts.Mode}, s.err
}

func TestResolveMode(t *testing.T) {
	errTTY := errors.New("no tty")

	tests := []struct {
		name    string
		flags   modeFlags
		con     *scriptedConsole
		mode    runner.Mode
		ok      bool
		err     error
		selects int
	}{
		{"auto flag", modeFlags{auto: true}, &scriptedConsole{}, runner.ModeFull, true, nil, 0},
		{"auth-only flag", modeFlags{authOnly: true}, &scriptedConsole{}, runner.ModeAuthOnly, true, nil, 0},
		{"menu full", modeFlags{}, &scriptedConsole{idx: 0}, runner.ModeFull, true, nil, 1},
		{"menu step by step", modeFlags{}, &scriptedConsole{idx: 1}, runner.ModeStepwise, true, nil, 1},
		{"menu auth only", modeFlags{}, &scriptedConsole{idx: 2}, runner.ModeAuthOnly, true, nil, 1},
		{"menu exit", modeFlags{}, &scriptedConsole{idx: 3}, 0, false, nil, 1},
		{"menu dismissed", modeFlags{}, &scriptedConsole{idx: -1, err: prompt.ErrAborted}, 0, false, nil, 1},
		{"menu failure", modeFlags{}, &scriptedConsole{idx: -1, err: errTTY}, 0, false, errTTY, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, ok, err := resolveMode(context.Background(), tt.flags, tt.con)
			if !errors.Is(err, tt.err) {
				t.Fatalf("err = %v, want %v", err, tt.err)
			}
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && mode != tt.mode {
				t.Errorf("mode = %s, want %s", mode, tt.mode)
			}
			if tt.con.selects != tt.selects {
				t.Errorf("selects = %d, want %d", tt.con.selects, tt.selects)
			}
		})
	}
}

func TestSimulateExitStartsNoRun(t *testing.T) {
	for _, con := range []*scriptedConsole{{idx: 3}, {idx: -1, err: prompt.ErrAborted}} {
		rec := &startRecorder{}
		err := simulate(context.Background(), config.Default(), modeFlags{}, con, rec.start)
		if err != nil {
			t.Fatalf("simulate = %v, want nil", err)
		}
		if len(rec.calls) != 0 {
			t.Fatalf("exit started %d run(s)", len(rec.calls))
		}
		if code := exitCode(err); code != 0 {
			t.Fatalf("exit code = %d, want 0", code)
		}
	}
}

func TestSimulateStartsChosenMode(t *testing.T) {
	tests := []struct {
		name    string
		flags   modeFlags
		con     *scriptedConsole
		mode    runner.Mode
		confirm bool
	}{
		{"auto", modeFlags{auto: true}, &scriptedConsole{}, runner.ModeFull, false},
		{"step by step", modeFlags{}, &scriptedConsole{idx: 1}, runner.ModeStepwise, true},
		{"auth only", modeFlags{}, &scriptedConsole{idx: 2}, runner.ModeAuthOnly, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			rec := &startRecorder{}
			if err := simulate(context.Background(), cfg, tt.flags, tt.con, rec.start); err != nil {
				t.Fatalf("simulate: %v", err)
			}
			if len(rec.calls) != 1 {
				t.Fatalf("runs = %d, want 1", len(rec.calls))
			}
			got := rec.calls[0]
			if got.Mode != tt.mode {
				t.Errorf("mode = %s, want %s", got.Mode, tt.mode)
			}
			if (got.Confirm != nil) != tt.confirm {
				t.Errorf("confirm set = %v, want %v", got.Confirm != nil, tt.confirm)
			}
			if got.Config.BaseURL != cfg.BaseURL {
				t.Errorf("config not passed through: %q", got.Config.BaseURL)
			}
			if opened := tt.con.opened; opened != 0 && !tt.confirm {
				t.Errorf("prompter opened %d time(s) outside step by step", opened)
			}
		})
	}
}

func TestSimulateAuthenticationFailureExitsNonZero(t *testing.T) {
	rec := &startRecorder{err: fmt.Errorf("%w: login returned 401", runner.ErrAuthenticationFailed)}
	err := simulate(context.Background(), config.Default(), modeFlags{auto: true}, &scriptedConsole{}, rec.start)
	if !errors.Is(err, runner.ErrAuthenticationFailed) {
		t.Fatalf("err = %v", err)
	}
	if code := exitCode(err); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
}
