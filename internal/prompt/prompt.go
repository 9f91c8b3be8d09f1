// Package prompt isolates interactive user input behind a small interface.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/chzyer/readline"
)

// ErrAborted is returned by Select when the user pressed Ctrl+C or closed
// the input.
var ErrAborted = errors.New("prompt aborted")

// Selector picks one of several options.
type Selector interface {
	// Select returns the zero-based index of the chosen option.
	Select(ctx context.Context, title string, options []string) (int, error)
}

type Prompter interface {
	Selector
	// Confirm asks a yes/no question. Ctrl+C answers no.
	Confirm(ctx context.Context, question string) (bool, error)
}

// ParseYesNo accepts y/yes/n/no in any case.
func ParseYesNo(s string) (answer, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return true, true
	case "n", "no":
		return false, true
	}
	return false, false
}

// ParseChoice parses a 1-based menu choice into a zero-based index.
func ParseChoice(s string, n int) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 1 || v > n {
		return 0, false
	}
	return v - 1, true
}

type Readline struct {
	mu  sync.Mutex
	rl  *readline.Instance
	out io.Writer
}

// NewReadline reads from stdin and echoes to stdout. Nil streams use the
// process terminal.
func NewReadline(stdin io.ReadCloser, stdout io.Writer) (*Readline, error) {
	cfg := &readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "",
	}
	if stdin != nil {
		cfg.Stdin = stdin
	}
	if stdout != nil {
		cfg.Stdout = stdout
	}
	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, fmt.Errorf("init readline: %w", err)
	}
	return &Readline{rl: rl, out: rl.Stdout()}, nil
}

func (r *Readline) Close() error {
	return r.rl.Close()
}

// readLine maps Ctrl+C and end of input to ErrAborted.
func (r *Readline) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	line, err := r.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return "", ErrAborted
	}
	if err != nil {
		return "", err
	}
	return line, nil
}

func (r *Readline) Confirm(ctx context.Context, question string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.out, "%s [y/n]\n", question)
	for {
		line, err := r.readLine(ctx)
		if errors.Is(err, ErrAborted) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if ans, ok := ParseYesNo(line); ok {
			return ans, nil
		}
		fmt.Fprintln(r.out, "Please answer y/n.")
	}
}

func (r *Readline) Select(ctx context.Context, title string, options []string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintln(r.out, title)
	for i, opt := range options {
		fmt.Fprintf(r.out, "  %d. %s\n", i+1, opt)
	}
	for {
		fmt.Fprintf(r.out, "Choose 1-%d:\n", len(options))
		line, err := r.readLine(ctx)
		if err != nil {
			return -1, err
		}
		if idx, ok := ParseChoice(line, len(options)); ok {
			return idx, nil
		}
		fmt.Fprintln(r.out, "Invalid choice.")
	}
}
