package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"fitsim/internal/datagen"
	"fitsim/internal/invoker"
)

type reply struct {
	status int
	body   string
	err    error
}

// fakeInvoker answers by "METHOD path" with a script of replies, repeating
// the last one. Unknown routes answer 404.
type fakeInvoker struct {
	mu     sync.Mutex
	routes map[string][]reply
	calls  []invoker.Request
	seen   map[string]int
}

func newFake(routes map[string][]reply) *fakeInvoker {
	return &fakeInvoker{routes: routes, seen: map[string]int{}}
}

func (f *fakeInvoker) Invoke(_ context.Context, req invoker.Request) (invoker.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := req.Method + " " + req.Path
	f.calls = append(f.calls, req)
	n := f.seen[key]
	f.seen[key] = n + 1

	script := f.routes[key]
	r := reply{status: 404, body: `{"error":"not found"}`}
	if len(script) > 0 {
		r = script[len(script)-1]
		if n < len(script) {
			r = script[n]
		}
	}

	out := invoker.Outcome{Method: req.Method, Path: req.Path, Attempts: 1, Latency: time.Millisecond}
	if r.err != nil {
		out.Class = invoker.ClassTransportFailure
		out.Err = r.err
		return out, &invoker.TransportError{Method: req.Method, Path: req.Path, Attempts: 1, Err: r.err}
	}
	out.StatusCode = r.status
	out.Body = []byte(r.body)
	out.Class = invoker.Classify(r.status)
	return out, nil
}

func (f *fakeInvoker) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen[key]
}

func (f *fakeInvoker) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeInvoker) requests(key string) []invoker.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []invoker.Request
	for _, c := range f.calls {
		if c.Method+" "+c.Path == key {
			out = append(out, c)
		}
	}
	return out
}

type countingPacer struct {
	mu    sync.Mutex
	waits int
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	p.waits++
	p.mu.Unlock()
	return ctx.Err()
}

type recordingObserver struct {
	started  []string
	ops      []string
	finished []string
}

func (o *recordingObserver) StageStarted(stage string) { o.started = append(o.started, stage) }

func (o *recordingObserver) OpFinished(stage string, op OpResult) {
	o.ops = append(o.ops, stage+"/"+op.Name)
}

func (o *recordingObserver) StageFinished(res StageResult) {
	o.finished = append(o.finished, res.Stage)
}

func testDeps(inv invoker.Invoker) Deps {
	now := func() time.Time { return time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC) }
	return Deps{
		Invoker: inv,
		Data:    datagen.New(datagen.NewSeededRNG(1), now),
		Pacer:   NoPacer{},
	}
}

var errRefused = errors.New("connection refused")
