package diaglog

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/lixenwraith/diaglog/kvstore"
)

// PersistentSink keeps the most recent warn/error entries in a key-value store
// so they survive restarts. Each append is a read-modify-write of one key.
// A store failure switches the sink to in-memory-only for the rest of the process.
//
// Concurrent writers in different processes sharing a store are not coordinated;
// the last writer wins.
type PersistentSink struct {
	mu       sync.Mutex
	store    kvstore.Store
	key      string
	capacity int
	console  *ConsoleSink
	state    *State
}

// NewPersistentSink creates a sink over store. A nil store yields a sink that is degraded from the start.
func NewPersistentSink(store kvstore.Store, key string, capacity int, console *ConsoleSink, state *State) *PersistentSink {
	if state == nil {
		state = &State{}
	}
	p := &PersistentSink{
		store:    store,
		key:      key,
		capacity: capacity,
		console:  console,
		state:    state,
	}
	if store == nil {
		state.PersistDegraded.Store(true)
	}
	return p
}

// Degraded reports whether the sink has fallen back to in-memory-only behavior
func (p *PersistentSink) Degraded() bool {
	return p.state.PersistDegraded.Load()
}

// Append stores e and trims the array to capacity. Failures are reported to
// the console and never returned.
func (p *PersistentSink) Append(e Entry) {
	if p.Degraded() {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			p.fail("persist panic: %v", r)
		}
	}()

	p.mu.Lock()
	defer p.mu.Unlock()

	entries, err := p.read()
	if err != nil {
		p.fail("failed to read persisted logs: %v", err)
		return
	}

	entries = append(entries, e)
	if over := len(entries) - p.capacity; over > 0 {
		entries = entries[over:]
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		p.fail("failed to encode persisted logs: %v", err)
		return
	}

	if err := p.store.Set(p.key, payload); err != nil {
		p.fail("failed to write persisted logs: %v", err)
		return
	}
	p.state.PersistWrites.Add(1)
}

// Load returns the persisted entries, oldest first
func (p *PersistentSink) Load() ([]Entry, error) {
	if p.store == nil {
		return nil, fmtErrorf("persistent store unavailable")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.read()
}

// Clear removes the durable key; an absent key is not an error
func (p *PersistentSink) Clear() error {
	if p.store == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.store.Delete(p.key); err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		return fmtErrorf("failed to clear persisted logs: %w", err)
	}
	return nil
}

// read fetches and decodes the array. Missing or corrupt payloads read as empty;
// only store errors are returned.
func (p *PersistentSink) read() ([]Entry, error) {
	raw, err := p.store.Get(p.key)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		p.console.Warnf("discarding corrupt persisted logs under '%s': %v", p.key, err)
		return nil, nil
	}
	return entries, nil
}

// fail records a storage failure and degrades the sink; caller may hold p.mu
func (p *PersistentSink) fail(format string, args ...any) {
	p.state.PersistFailures.Add(1)
	if p.state.PersistDegraded.CompareAndSwap(false, true) {
		p.console.Warnf(format+"; persistence disabled for this session", args...)
	}
}
