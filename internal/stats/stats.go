// Package stats aggregates per-call counters and latency histograms for a
// simulation run.
package stats

import (
	"sync/atomic"
	"time"
)

// Stats holds aggregated invocation metrics. Counters are per logical call,
// Attempts counts every HTTP round trip including retries.
type Stats struct {
	Calls     uint64
	Attempts  uint64
	Success   uint64
	Client    uint64
	Server    uint64
	Transport uint64

	// Latency of whole logical calls, retries and delays included (microseconds)
	CallTime *SafeHistogram
}

// Result is the minimum a caller reports for one logical call.
type Result struct {
	Attempts  int
	Latency   time.Duration
	Success   bool
	Client    bool
	Server    bool
	Transport bool
}

func NewStats() *Stats {
	return &Stats{CallTime: NewSafeHistogram()}
}

func (s *Stats) Add(r Result) {
	atomic.AddUint64(&s.Calls, 1)
	atomic.AddUint64(&s.Attempts, uint64(r.Attempts))
	switch {
	case r.Success:
		atomic.AddUint64(&s.Success, 1)
	case r.Client:
		atomic.AddUint64(&s.Client, 1)
	case r.Server:
		atomic.AddUint64(&s.Server, 1)
	case r.Transport:
		atomic.AddUint64(&s.Transport, 1)
	}
	s.CallTime.Record(r.Latency)
}

// Retries is the number of attempts beyond the first across all calls.
func (s *Stats) Retries() uint64 {
	calls := atomic.LoadUint64(&s.Calls)
	attempts := atomic.LoadUint64(&s.Attempts)
	if attempts < calls {
		return 0
	}
	return attempts - calls
}

func (s *Stats) Failures() uint64 {
	return atomic.LoadUint64(&s.Client) + atomic.LoadUint64(&s.Server) + atomic.LoadUint64(&s.Transport)
}

func (s *Stats) ErrorRate() float64 {
	calls := atomic.LoadUint64(&s.Calls)
	if calls == 0 {
		return 0
	}
	return (float64(s.Failures()) / float64(calls)) * 100
}

func (s *Stats) P50Ms() float64 {
	return s.CallTime.QuantileMs(50)
}

func (s *Stats) P99Ms() float64 {
	return s.CallTime.QuantileMs(99)
}

func (s *Stats) MaxMs() float64 {
	return s.CallTime.MaxMs()
}

// Snapshot is a plain copy for reports.
type Snapshot struct {
	Calls     uint64  `json:"calls"`
	Attempts  uint64  `json:"attempts"`
	Retries   uint64  `json:"retries"`
	Success   uint64  `json:"success"`
	Client    uint64  `json:"client_errors"`
	Server    uint64  `json:"server_errors"`
	Transport uint64  `json:"transport_failures"`
	P50Ms     float64 `json:"p50_ms"`
	P99Ms     float64 `json:"p99_ms"`
	MaxMs     float64 `json:"max_ms"`
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Calls:     atomic.LoadUint64(&s.Calls),
		Attempts:  atomic.LoadUint64(&s.Attempts),
		Retries:   s.Retries(),
		Success:   atomic.LoadUint64(&s.Success),
		Client:    atomic.LoadUint64(&s.Client),
		Server:    atomic.LoadUint64(&s.Server),
		Transport: atomic.LoadUint64(&s.Transport),
		P50Ms:     s.P50Ms(),
		P99Ms:     s.P99Ms(),
		MaxMs:     s.MaxMs(),
	}
}
