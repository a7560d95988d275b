package core

import (
	"testing"
	"time"
)

func TestLoadMetrics(t *testing.T) {
	m := NewLoadMetrics()
	for i := 0; i < 4; i++ {
		m.LoadStarted()
	}
	m.LoadSucceeded(10 * time.Millisecond)
	m.LoadSucceeded(30 * time.Millisecond)
	m.LoadFailed(StageDecode)
	m.LoadFailed(StageDecode)
	m.LoadFailed(StageCount)

	s := m.Snapshot()
	if s.Started != 4 || s.Succeeded != 2 {
		t.Errorf("started %d succeeded %d, want 4 and 2", s.Started, s.Succeeded)
	}
	if len(s.Failed) != 1 || s.Failed[StageDecode] != 2 {
		t.Errorf("Failed = %v, want only decode: 2", s.Failed)
	}
	if s.AverageLoad != 20*time.Millisecond {
		t.Errorf("AverageLoad = %s, want 20ms", s.AverageLoad)
	}
}

func TestLoadMetricsAverageWindow(t *testing.T) {
	m := NewLoadMetrics()
	for i := 0; i < int(AVG_COUNT); i++ {
		m.LoadSucceeded(time.Second)
	}
	for i := 0; i < int(AVG_COUNT); i++ {
		m.LoadSucceeded(time.Millisecond)
	}
	if got := m.Snapshot().AverageLoad; got != time.Millisecond {
		t.Errorf("AverageLoad = %s, old samples must leave the window", got)
	}
}

func TestClock(t *testing.T) {
	c := NewClock()
	c.Update()
	if c.Elapsed() != 0 {
		t.Error("unstarted clock advanced")
	}
	c.Start()
	time.Sleep(2 * time.Millisecond)
	c.Stop()
	elapsed := c.Elapsed()
	if elapsed < 2*time.Millisecond {
		t.Errorf("Elapsed() = %s, want at least 2ms", elapsed)
	}
	c.Update()
	if c.Elapsed() != elapsed {
		t.Error("stopped clock kept running")
	}
}
