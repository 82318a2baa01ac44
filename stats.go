package axio

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Stats tracks how long the dispatcher takes to service an operation
// once it is ready: platform finish step plus callback. Values are
// recorded in nanoseconds.
type Stats struct {
	serviceLatency *hdrhistogram.Histogram
}

func newStats() *Stats {
	return &Stats{
		// 1us floor keeps the histogram compact; a tick under that
		// records as the floor
		serviceLatency: hdrhistogram.New(1_000, 60_000_000_000, 3),
	}
}

func (s *Stats) record(d time.Duration) {
	_ = s.serviceLatency.RecordValue(d.Nanoseconds())
}

// ServiceLatency exposes the live histogram. The reactor is
// single-threaded, so reading it between ticks is safe.
func (s *Stats) ServiceLatency() *hdrhistogram.Histogram {
	return s.serviceLatency
}

// Reset clears recorded latencies.
func (s *Stats) Reset() {
	s.serviceLatency.Reset()
}
