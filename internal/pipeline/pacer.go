package pipeline

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer gates consecutive calls.
type Pacer interface {
	Wait(ctx context.Context) error
}

// NoPacer never waits.
type NoPacer struct{}

func (NoPacer) Wait(ctx context.Context) error { return ctx.Err() }

// IntervalPacer lets one call through per interval. The first call passes
// immediately.
type IntervalPacer struct {
	lim *rate.Limiter
}

// NewIntervalPacer returns NoPacer when interval is not positive.
func NewIntervalPacer(interval time.Duration) Pacer {
	if interval <= 0 {
		return NoPacer{}
	}
	return &IntervalPacer{lim: rate.NewLimiter(rate.Every(interval), 1)}
}

func (p *IntervalPacer) Wait(ctx context.Context) error {
	return p.lim.Wait(ctx)
}

// DelayPacer waits a fixed delay on every call.
type DelayPacer struct {
	Delay time.Duration
}

// NewDelayPacer returns NoPacer when delay is not positive.
func NewDelayPacer(delay time.Duration) Pacer {
	if delay <= 0 {
		return NoPacer{}
	}
	return DelayPacer{Delay: delay}
}

func (p DelayPacer) Wait(ctx context.Context) error {
	t := time.NewTimer(p.Delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
