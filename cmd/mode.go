package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"fitsim/internal/banner"
	"fitsim/internal/cli"
	"fitsim/internal/config"
	"fitsim/internal/prompt"
	"fitsim/internal/runner"
	"fitsim/internal/tui/menu"
)

const menuTitle = "fitsim - choose a simulation mode"

// menuItems are offered in this order; the index maps onto menuModes and the
// last entry exits.
var menuItems = []string{
	"Full simulation (automatic)",
	"Step by step (confirm each stage)",
	"Authentication only",
	"Exit",
}

var menuModes = []runner.Mode{runner.ModeFull, runner.ModeStepwise, runner.ModeAuthOnly}

type modeFlags struct {
	auto     bool
	authOnly bool
}

// resolveMode picks the run mode from the flags and falls back to sel.
// ok is false when the user chose Exit or dismissed the menu.
func resolveMode(ctx context.Context, f modeFlags, sel prompt.Selector) (mode runner.Mode, ok bool, err error) {
	switch {
	case f.auto:
		return runner.ModeFull, true, nil
	case f.authOnly:
		return runner.ModeAuthOnly, true, nil
	}

	idx, err := sel.Select(ctx, menuTitle, menuItems)
	switch {
	case errors.Is(err, prompt.ErrAborted):
		return 0, false, nil
	case err != nil:
		return 0, false, err
	case idx < 0 || idx >= len(menuModes):
		return 0, false, nil
	}
	return menuModes[idx], true, nil
}

// console is the interactive input used by a run.
type console interface {
	prompt.Selector
	prompter() (prompt.Prompter, error)
}

type startFunc func(context.Context, cli.Options) (runner.Summary, error)

// simulate resolves the mode and starts one run. Exiting from the menu
// returns nil without starting anything.
func simulate(ctx context.Context, cfg config.Config, f modeFlags, con console, start startFunc) error {
	mode, ok, err := resolveMode(ctx, f, con)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Bye.")
		return nil
	}

	opts := cli.Options{Config: cfg, Mode: mode}
	if mode == runner.ModeStepwise {
		p, err := con.prompter()
		if err != nil {
			return err
		}
		opts.Confirm = p
	}

	_, err = start(ctx, opts)
	return err
}

// terminal is the interactive input of the process: the bubbletea menu on a
// TTY, readline otherwise. The readline instance is opened on first use.
type terminal struct {
	tty bool
	rl  *prompt.Readline
}

func newTerminal() *terminal {
	return &terminal{tty: isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())}
}

func (t *terminal) prompter() (prompt.Prompter, error) {
	if t.rl == nil {
		rl, err := prompt.NewReadline(nil, nil)
		if err != nil {
			return nil, fmt.Errorf("open terminal: %w", err)
		}
		t.rl = rl
	}
	return t.rl, nil
}

func (t *terminal) Select(ctx context.Context, title string, options []string) (int, error) {
	if t.tty {
		fmt.Println(banner.GetString())
		return menu.Selector{}.Select(ctx, title, options)
	}
	p, err := t.prompter()
	if err != nil {
		return -1, err
	}
	return p.Select(ctx, title, options)
}

func (t *terminal) Close() error {
	if t.rl == nil {
		return nil
	}
	return t.rl.Close()
}
