package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"fitsim/internal/pipeline"
	"fitsim/internal/session"
	"fitsim/internal/stats"
	"fitsim/internal/telemetry"
)

// ErrAuthenticationFailed is returned when the first stage fails. No other
// stage runs after it.
var ErrAuthenticationFailed = errors.New("authentication failed")

type Runner struct {
	Cfg    Config
	Stages []pipeline.Stage
	Stats  *stats.Stats

	// Pause separates consecutive stages.
	Pause pipeline.Pacer

	log    *zap.Logger
	tracer trace.Tracer
}

func NewRunner(cfg Config, stages []pipeline.Stage, st *stats.Stats) *Runner {
	if st == nil {
		st = stats.NewStats()
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		Cfg:    cfg,
		Stages: stages,
		Stats:  st,
		Pause:  pipeline.NewDelayPacer(cfg.StageDelay),
		log:    log,
		tracer: telemetry.Tracer("fitsim/runner"),
	}
}

// Run executes the stages in order against a fresh session. Only an
// Authentication failure is returned as an error; best-effort failures of
// later stages are reported in the summary.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	sum := Summary{
		RunID:   uuid.NewString(),
		Mode:    r.Cfg.Mode,
		State:   pipeline.StateInit,
		Started: time.Now(),
	}

	ctx, span := r.tracer.Start(ctx, "simulation",
		trace.WithAttributes(
			attribute.String("fitsim.run_id", sum.RunID),
			attribute.String("fitsim.mode", r.Cfg.Mode.String()),
		))
	defer span.End()

	log := r.log.With(zap.String("run_id", sum.RunID))
	log.Info("simulation started", zap.Stringer("mode", r.Cfg.Mode), zap.Int("stages", len(r.Stages)))

	var sess session.Session
	finish := func() Summary {
		sum.Username = sess.Username()
		sum.HasToken = sess.HasToken()
		sum.UserID = sess.UserID
		sum.HasUser = sess.HasUser
		if sess.Claims != nil {
			sum.TokenExpiry = sess.Claims.ExpiresAt
		}
		sum.Duration = time.Since(sum.Started)
		sum.Stats = r.Stats.Snapshot()
		span.SetAttributes(attribute.String("fitsim.state", sum.State.String()))
		return sum
	}

	for i, stage := range r.Stages {
		if i > 0 {
			if r.Cfg.Mode == ModeAuthOnly {
				break
			}
			proceed, err := r.between(ctx, stage)
			if err != nil {
				if ctx.Err() != nil {
					sum.Interrupted = true
					log.Warn("simulation interrupted", zap.String("before", stage.Name()))
					return finish(), nil
				}
				return finish(), fmt.Errorf("confirm %s: %w", stage.Name(), err)
			}
			if !proceed {
				sum.Declined = true
				log.Info("simulation stopped by user", zap.String("before", stage.Name()))
				return finish(), nil
			}
		}

		stageCtx, stageSpan := r.tracer.Start(ctx, stage.Name())
		var res pipeline.StageResult
		sess, res = stage.Run(stageCtx, sess)
		stageSpan.SetAttributes(attribute.Bool("fitsim.success", res.Success))
		stageSpan.End()

		sum.Stages = append(sum.Stages, res)
		log.Debug("stage finished",
			zap.String("stage", res.Stage),
			zap.Bool("success", res.Success),
			zap.Duration("took", res.Duration()),
		)

		if i == 0 && !res.Success {
			sum.State = pipeline.StateAuthFailed
			span.SetStatus(codes.Error, "authentication failed")
			log.Error("authentication failed, stopping", zap.String("detail", res.Detail))
			return finish(), fmt.Errorf("%w: %s", ErrAuthenticationFailed, res.Detail)
		}
		sum.State = stage.Reached()
	}

	if r.Cfg.Mode != ModeAuthOnly && len(sum.Stages) == len(r.Stages) && ctx.Err() == nil {
		sum.State = pipeline.StateComplete
	}
	if ctx.Err() != nil {
		sum.Interrupted = true
	}
	log.Info("simulation finished", zap.Stringer("state", sum.State))
	return finish(), nil
}

// between runs before every stage except the first. It asks for
// confirmation in stepwise mode and then waits for the pause.
func (r *Runner) between(ctx context.Context, next pipeline.Stage) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if r.Cfg.Mode == ModeStepwise && r.Cfg.Confirm != nil {
		ok, err := r.Cfg.Confirm.Confirm(ctx, fmt.Sprintf("Continue with %s?", next.Name()))
		if err != nil || !ok {
			return ok, err
		}
	}
	if err := r.Pause.Wait(ctx); err != nil {
		return false, err
	}
	return true, nil
}
