// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package monitor tracks per-stage wall-clock durations and memory
// deltas for pipeline runs.
package monitor

import (
	"runtime"
	"sort"
	"sync"
	"time"
)

// StageTiming is one recorded stage execution.
type StageTiming struct {
	Stage    string        `json:"stage" yaml:"stage"`
	Document string        `json:"document,omitempty" yaml:"document,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`

	// HeapDelta is the change in allocated heap bytes across the stage.
	// Negative values mean the collector reclaimed more than the stage
	// allocated.
	HeapDelta int64 `json:"heap_delta" yaml:"heap_delta"`
}

// Monitor accumulates stage timings for one run. Safe for use from
// concurrent document workers.
type Monitor struct {
	mu      sync.Mutex
	timings []StageTiming
}

// New returns an empty Monitor.
func New() *Monitor {
	return &Monitor{}
}

// Track starts timing a stage for a document and returns a stop function
// that records the measurement. Document may be empty for run-level
// stages.
func (m *Monitor) Track(stage, document string) func() {
	start := time.Now()
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	startHeap := ms.HeapAlloc

	return func() {
		runtime.ReadMemStats(&ms)
		t := StageTiming{
			Stage:     stage,
			Document:  document,
			Duration:  time.Since(start),
			HeapDelta: int64(ms.HeapAlloc) - int64(startHeap),
		}

		m.mu.Lock()
		m.timings = append(m.timings, t)
		m.mu.Unlock()
	}
}

// Timings returns the recorded timings sorted by document then stage,
// so output order does not depend on worker scheduling.
func (m *Monitor) Timings() []StageTiming {
	m.mu.Lock()
	out := make([]StageTiming, len(m.timings))
	copy(out, m.timings)
	m.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Document != out[j].Document {
			return out[i].Document < out[j].Document
		}
		return out[i].Stage < out[j].Stage
	})
	return out
}

// TotalDuration sums all recorded stage durations.
func (m *Monitor) TotalDuration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	var total time.Duration
	for _, t := range m.timings {
		total += t.Duration
	}
	return total
}
