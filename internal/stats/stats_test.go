package stats

import (
	"testing"
	"time"
)

func TestStatsAdd(t *testing.T) {
	s := NewStats()
	s.Add(Result{Attempts: 1, Latency: 10 * time.Millisecond, Success: true})
	s.Add(Result{Attempts: 3, Latency: 30 * time.Millisecond, Server: true})
	s.Add(Result{Attempts: 1, Latency: 5 * time.Millisecond, Client: true})
	s.Add(Result{Attempts: 3, Latency: 50 * time.Millisecond, Transport: true})

	snap := s.Snapshot()
	if snap.Calls != 4 {
		t.Fatalf("calls = %d, want 4", snap.Calls)
	}
	if snap.Attempts != 8 {
		t.Fatalf("attempts = %d, want 8", snap.Attempts)
	}
	if snap.Retries != 4 {
		t.Fatalf("retries = %d, want 4", snap.Retries)
	}
	if snap.Success != 1 || snap.Client != 1 || snap.Server != 1 || snap.Transport != 1 {
		t.Fatalf("unexpected class counters: %+v", snap)
	}
	if got := s.ErrorRate(); got != 75 {
		t.Fatalf("error rate = %.2f, want 75", got)
	}
	if snap.MaxMs < 49 || snap.MaxMs > 51 {
		t.Fatalf("max = %.2fms, want ~50ms", snap.MaxMs)
	}
}

func TestStatsEmpty(t *testing.T) {
	s := NewStats()
	if s.ErrorRate() != 0 {
		t.Fatalf("expected zero error rate on empty stats")
	}
	if s.Retries() != 0 {
		t.Fatalf("expected zero retries on empty stats")
	}
}

func TestHistogramRecordsSubMicrosecond(t *testing.T) {
	h := NewSafeHistogram()
	if err := h.Record(0); err != nil {
		t.Fatalf("record: %v", err)
	}
	if h.Count() != 1 {
		t.Fatalf("count = %d, want 1", h.Count())
	}
	if h.MaxMs() != 0.001 {
		t.Fatalf("max = %vms, want 0.001ms", h.MaxMs())
	}
}
