package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIntervalPacer(t *testing.T) {
	p := NewIntervalPacer(40 * time.Millisecond)
	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := p.Wait(context.Background()); err != nil {
			t.Fatalf("wait: %v", err)
		}
	}
	// First wait passes immediately, the next two wait one interval each.
	if elapsed := time.Since(start); elapsed < 70*time.Millisecond {
		t.Fatalf("elapsed %s, want about 80ms", elapsed)
	}
}

func TestPacersDisabled(t *testing.T) {
	for _, p := range []Pacer{NewIntervalPacer(0), NewDelayPacer(-time.Second)} {
		if _, ok := p.(NoPacer); !ok {
			t.Fatalf("expected NoPacer, got %T", p)
		}
	}
}

func TestDelayPacerCancel(t *testing.T) {
	p := NewDelayPacer(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := p.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v", err)
	}
}

func TestDelayPacerWaits(t *testing.T) {
	p := NewDelayPacer(30 * time.Millisecond)
	start := time.Now()
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if time.Since(start) < 30*time.Millisecond {
		t.Fatal("delay pacer returned early")
	}
}
