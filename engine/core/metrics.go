package core

import (
	"sync"
	"time"
)

const AVG_COUNT uint8 = 30

// LoadMetrics collects counters about image loads. It is safe for
// concurrent use.
type LoadMetrics struct {
	mu sync.Mutex

	started   uint64
	succeeded uint64
	failed    [StageCount]uint64

	avgCounter uint8
	times      [AVG_COUNT]time.Duration
	samples    uint8
}

// MetricsSnapshot is a copy of the counters at one point in time.
type MetricsSnapshot struct {
	Started     uint64
	Succeeded   uint64
	Failed      map[Stage]uint64
	AverageLoad time.Duration
}

func NewLoadMetrics() *LoadMetrics {
	return &LoadMetrics{}
}

func (m *LoadMetrics) LoadStarted() {
	m.mu.Lock()
	m.started++
	m.mu.Unlock()
}

// LoadSucceeded records a finished load and its duration in the rolling
// average window.
func (m *LoadMetrics) LoadSucceeded(elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.succeeded++
	m.times[m.avgCounter] = elapsed
	m.avgCounter++
	m.avgCounter %= AVG_COUNT
	if m.samples < AVG_COUNT {
		m.samples++
	}
}

func (m *LoadMetrics) LoadFailed(stage Stage) {
	if stage >= StageCount {
		return
	}
	m.mu.Lock()
	m.failed[stage]++
	m.mu.Unlock()
}

func (m *LoadMetrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := MetricsSnapshot{
		Started:   m.started,
		Succeeded: m.succeeded,
		Failed:    make(map[Stage]uint64),
	}
	for i := Stage(0); i < StageCount; i++ {
		if m.failed[i] > 0 {
			s.Failed[i] = m.failed[i]
		}
	}
	if m.samples > 0 {
		var total time.Duration
		for i := uint8(0); i < m.samples; i++ {
			total += m.times[i]
		}
		s.AverageLoad = total / time.Duration(m.samples)
	}
	return s
}
