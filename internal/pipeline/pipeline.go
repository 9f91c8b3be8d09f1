// Package pipeline implements the ordered simulation stages. Each stage takes
// the current session, performs its sub-operations through the invoker and
// returns the updated session with a per-operation record.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"fitsim/internal/datagen"
	"fitsim/internal/invoker"
	"fitsim/internal/session"
)

var (
	// ErrContractViolation marks a response (or session) missing a field the
	// next operation depends on.
	ErrContractViolation = errors.New("contract violation")
	ErrUnexpectedStatus  = errors.New("unexpected status")
	ErrRequestFailed     = errors.New("request failed")
)

type State int

const (
	StateInit State = iota
	StateAuthenticated
	StateProfileDone
	StateTrackingDone
	StateAnalyzedDone
	StateComplete
	StateAuthFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateAuthenticated:
		return "authenticated"
	case StateProfileDone:
		return "profile_done"
	case StateTrackingDone:
		return "tracking_done"
	case StateAnalyzedDone:
		return "analyzed_done"
	case StateComplete:
		return "complete"
	case StateAuthFailed:
		return "auth_failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type Severity string

const (
	SeverityOK      Severity = "ok"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// OpResult records one sub-operation of a stage.
type OpResult struct {
	Name     string
	Method   string
	Path     string
	Status   int
	Class    invoker.Class
	Attempts int
	Latency  time.Duration
	Severity Severity
	Detail   string
	Err      error
	Body     []byte
}

func (o OpResult) OK() bool { return o.Severity == SeverityOK }

type StageResult struct {
	Stage    string
	Success  bool
	Detail   string
	Ops      []OpResult
	Started  time.Time
	Finished time.Time
}

// Counters tallies the stage's operations by severity.
type Counters struct {
	OK       int `json:"ok"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

func (r StageResult) Counters() Counters {
	var c Counters
	for _, op := range r.Ops {
		switch op.Severity {
		case SeverityOK:
			c.OK++
		case SeverityWarning:
			c.Warnings++
		case SeverityError:
			c.Errors++
		}
	}
	return c
}

func (r StageResult) Duration() time.Duration { return r.Finished.Sub(r.Started) }

// Stage is one step of the simulation.
type Stage interface {
	Name() string
	// Reached is the state the run is in once the stage has run, whatever
	// the outcome of its best-effort operations.
	Reached() State
	Run(ctx context.Context, s session.Session) (session.Session, StageResult)
}

// Deps are shared by every stage.
type Deps struct {
	Invoker  invoker.Invoker
	Data     *datagen.Generator
	Pacer    Pacer
	Observer Observer
	Log      *zap.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Pacer == nil {
		d.Pacer = NoPacer{}
	}
	if d.Observer == nil {
		d.Observer = NopObserver{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Data == nil {
		d.Data = datagen.New(nil, nil)
	}
	return d
}

// Stages returns the four stages in execution order.
func Stages(d Deps) []Stage {
	return []Stage{
		NewAuthentication(d),
		NewPersonalInfo(d),
		NewTracking(d),
		NewAnalysis(d),
	}
}

// call describes one sub-operation.
type call struct {
	name   string
	method string
	path   string
	body   any
	auth   bool
	expect int      // exact status required; 0 accepts any 2xx
	onFail Severity // severity recorded when the call fails

	// check inspects a successful response body. It may describe the result
	// or reject it, typically with ErrContractViolation.
	check func(body []byte) (detail string, err error)
}

// recorder accumulates the operations of one stage run.
type recorder struct {
	d      Deps
	result StageResult
}

func newRecorder(d Deps, stage string) *recorder {
	d.Observer.StageStarted(stage)
	return &recorder{d: d, result: StageResult{Stage: stage, Started: time.Now()}}
}

func (r *recorder) add(op OpResult) OpResult {
	r.result.Ops = append(r.result.Ops, op)
	if op.Severity != SeverityOK {
		r.d.Log.Info("operation did not succeed",
			zap.String("stage", r.result.Stage),
			zap.String("op", op.Name),
			zap.Int("status", op.Status),
			zap.String("severity", string(op.Severity)),
			zap.String("detail", op.Detail),
		)
	}
	r.d.Observer.OpFinished(r.result.Stage, op)
	return op
}

// skip records an operation that could not be attempted.
func (r *recorder) skip(c call, err error) OpResult {
	return r.add(OpResult{
		Name:     c.name,
		Method:   c.method,
		Path:     c.path,
		Class:    invoker.ClassSkipped,
		Severity: c.onFail,
		Detail:   err.Error(),
		Err:      err,
	})
}

// do performs c and records it. The result is OK only when the response
// status matches the expectation.
func (r *recorder) do(ctx context.Context, s session.Session, c call) OpResult {
	out, err := r.d.Invoker.Invoke(ctx, invoker.Request{
		Method:       c.method,
		Path:         c.path,
		Body:         c.body,
		RequiresAuth: c.auth,
		Token:        s.Token,
	})

	op := OpResult{
		Name:     c.name,
		Method:   c.method,
		Path:     c.path,
		Status:   out.StatusCode,
		Class:    out.Class,
		Attempts: out.Attempts,
		Latency:  out.Latency,
		Severity: SeverityOK,
		Body:     out.Body,
	}

	switch {
	case err != nil:
		op.Err = err
	case out.Class != invoker.ClassSuccess:
		op.Err = fmt.Errorf("%w: %s %s returned %d", ErrRequestFailed, c.method, c.path, out.StatusCode)
	case c.expect != 0 && out.StatusCode != c.expect:
		op.Err = fmt.Errorf("%w: %s %s returned %d, want %d", ErrUnexpectedStatus, c.method, c.path, out.StatusCode, c.expect)
	}
	if op.Err == nil && c.check != nil {
		op.Detail, op.Err = c.check(out.Body)
	}
	if op.Err != nil {
		op.Severity = c.onFail
		op.Detail = op.Err.Error()
	}
	return r.add(op)
}

func (r *recorder) finish(success bool, detail string) StageResult {
	r.result.Success = success
	r.result.Detail = detail
	r.result.Finished = time.Now()
	r.d.Observer.StageFinished(r.result)
	return r.result
}

func (r *recorder) hasErrors() bool {
	return r.result.Counters().Errors > 0
}

func get(name, path string, onFail Severity) call {
	return call{name: name, method: http.MethodGet, path: path, auth: true, expect: http.StatusOK, onFail: onFail}
}
