package diaglog

import (
	"sync/atomic"
	"time"
)

// State holds the runtime counters of a Logger
type State struct {
	TotalRecorded   atomic.Uint64 // Entries appended to the in-memory store
	TotalEvicted    atomic.Uint64 // Entries dropped by FIFO eviction
	PersistWrites   atomic.Uint64 // Successful persistent appends
	PersistFailures atomic.Uint64 // Persistent read/write failures
	PersistDegraded atomic.Bool   // Persistent sink fell back to in-memory only
	FaultsCaptured  atomic.Uint64 // Panics and rejections turned into entries
	FaultsDiscarded atomic.Uint64 // Nested hook invocations dropped by the reentrancy guard
	RecordPanics    atomic.Uint64 // Panics recovered inside Record
	ConsoleFailures atomic.Uint64 // Console writes that failed or panicked

	StartTime atomic.Value // stores time.Time
}

// Stats is a point-in-time copy of State
type Stats struct {
	StartTime       time.Time `json:"start_time"`
	Buffered        int       `json:"buffered"`
	Capacity        int       `json:"capacity"`
	TotalRecorded   uint64    `json:"total_recorded"`
	TotalEvicted    uint64    `json:"total_evicted"`
	PersistWrites   uint64    `json:"persist_writes"`
	PersistFailures uint64    `json:"persist_failures"`
	PersistDegraded bool      `json:"persist_degraded"`
	FaultsCaptured  uint64    `json:"faults_captured"`
	FaultsDiscarded uint64    `json:"faults_discarded"`
	RecordPanics    uint64    `json:"record_panics"`
	ConsoleFailures uint64    `json:"console_failures"`
	Development     bool      `json:"development"`
}

// Stats returns current counters
func (l *Logger) Stats() Stats {
	l.mu.Lock()
	buffered := l.store.len()
	l.mu.Unlock()

	start, _ := l.state.StartTime.Load().(time.Time)
	return Stats{
		StartTime:       start,
		Buffered:        buffered,
		Capacity:        int(l.cfg.Capacity),
		TotalRecorded:   l.state.TotalRecorded.Load(),
		TotalEvicted:    l.state.TotalEvicted.Load(),
		PersistWrites:   l.state.PersistWrites.Load(),
		PersistFailures: l.state.PersistFailures.Load(),
		PersistDegraded: l.state.PersistDegraded.Load(),
		FaultsCaptured:  l.state.FaultsCaptured.Load(),
		FaultsDiscarded: l.state.FaultsDiscarded.Load(),
		RecordPanics:    l.state.RecordPanics.Load(),
		ConsoleFailures: l.state.ConsoleFailures.Load(),
		Development:     l.development,
	}
}
