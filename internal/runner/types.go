package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"fitsim/internal/pipeline"
	"fitsim/internal/stats"
)

type Mode int

const (
	ModeFull Mode = iota
	ModeAuthOnly
	ModeStepwise
)

func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeAuthOnly:
		return "auth-only"
	case ModeStepwise:
		return "stepwise"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "full", "auto":
		return ModeFull, nil
	case "auth-only", "auth":
		return ModeAuthOnly, nil
	case "stepwise", "step":
		return ModeStepwise, nil
	}
	return ModeFull, fmt.Errorf("unknown mode %q", s)
}

// Confirmer asks the user whether to run the next stage in stepwise mode.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

type Config struct {
	Mode       Mode
	StageDelay time.Duration
	Confirm    Confirmer
	Log        *zap.Logger
}

// Summary is the outcome of one simulation run.
type Summary struct {
	RunID       string
	Mode        Mode
	Username    string
	HasToken    bool
	UserID      int64
	HasUser     bool
	TokenExpiry time.Time
	State       pipeline.State
	Stages      []pipeline.StageResult
	Started     time.Time
	Duration    time.Duration

	// Interrupted is set when the context was cancelled between stages.
	Interrupted bool
	// Declined is set when the user stopped a stepwise run.
	Declined bool

	Stats stats.Snapshot
}

// Counters returns the per-stage operation tallies keyed by stage name.
func (s Summary) Counters() map[string]pipeline.Counters {
	out := make(map[string]pipeline.Counters, len(s.Stages))
	for _, st := range s.Stages {
		out[st.Stage] = st.Counters()
	}
	return out
}

// Stage returns the result of the named stage, if it ran.
func (s Summary) Stage(name string) (pipeline.StageResult, bool) {
	for _, st := range s.Stages {
		if st.Stage == name {
			return st, true
		}
	}
	return pipeline.StageResult{}, false
}
