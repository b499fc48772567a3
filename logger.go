// Package diaglog is a process-wide diagnostic log capture service.
//
// A Logger keeps a bounded, ordered in-memory history of structured entries,
// mirrors warn and error entries into a durable key-value store, turns panics
// and unobserved goroutine errors into entries, and exports its state as JSON
// for external tooling. Logging operations never fail and never panic.
package diaglog

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lixenwraith/diaglog/kvstore"
)

// Logger is the capture service. Create one per process with New and hand it
// to collaborators explicitly.
type Logger struct {
	cfg         *Config
	development bool
	session     string

	mu    sync.Mutex // guards store
	store *ring

	console *ConsoleSink
	persist *PersistentSink
	kv      kvstore.Store
	faults  *FaultCapture
	bridge  *DebugBridge
	state   State

	now func() time.Time
}

// options carries construction-time dependencies that are not part of Config
type options struct {
	store         kvstore.Store
	storeSet      bool
	consoleWriter io.Writer
	now           func() time.Time
}

// Option customizes construction
type Option func(*options)

// WithStore supplies the persistent backend instead of opening one from Config.
// A nil store disables persistence.
func WithStore(store kvstore.Store) Option {
	return func(o *options) {
		o.store = store
		o.storeSet = true
	}
}

// WithConsoleWriter replaces the console target
func WithConsoleWriter(w io.Writer) Option {
	return func(o *options) {
		o.consoleWriter = w
	}
}

// WithClock replaces time.Now for entry timestamps
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New validates cfg and creates a Logger. The operating mode is resolved here
// and never changes afterwards. A persistent store that cannot be opened is
// not an error: the logger runs in-memory only.
func New(cfg *Config, opts ...Option) (*Logger, error) {
	if cfg == nil {
		return nil, fmtErrorf("configuration cannot be nil")
	}
	if err := cfg.validate(); err != nil {
		return nil, fmtErrorf("invalid configuration: %w", err)
	}
	cfg = cfg.Clone()

	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	l := &Logger{
		cfg:         cfg,
		development: resolveDevelopment(cfg.Mode),
		session:     uuid.NewString(),
		store:       newRing(int(cfg.Capacity)),
		now:         o.now,
	}
	l.state.StartTime.Store(time.Now())

	writer := o.consoleWriter
	if writer == nil {
		if cfg.ConsoleTarget == "stdout" {
			writer = os.Stdout
		} else {
			writer = os.Stderr
		}
	}
	l.console = NewConsoleSink(writer, l.development, cfg.ConsoleFormat, cfg.ConsoleColor, &l.state)

	if o.storeSet {
		l.kv = o.store
	} else if cfg.StoreBackend != BackendNone {
		kv, err := kvstore.Open(kvstore.Options{
			Backend:       cfg.StoreBackend,
			Directory:     cfg.StoreDirectory,
			MinDiskFreeMB: cfg.MinDiskFreeMB,
			Sync:          cfg.StoreSync,
			Logf:          l.storeLog,
		})
		if err != nil {
			l.internalLog("warning - persistent store unavailable, continuing in memory: %v\n", err)
			l.console.Warnf("persistent store unavailable, continuing in memory: %v", err)
		} else {
			l.kv = kv
		}
	}
	l.persist = NewPersistentSink(l.kv, cfg.PersistKey, int(cfg.PersistCapacity), l.console, &l.state)
	l.faults = newFaultCapture(l)

	if l.development {
		l.bridge = &DebugBridge{logger: l}
	}

	return l, nil
}

// Development reports whether the logger runs in development mode
func (l *Logger) Development() bool {
	return l.development
}

// Config returns a copy of the configuration the logger was built with
func (l *Logger) Config() *Config {
	return l.cfg.Clone()
}

// Faults returns the fault capture bound to this logger
func (l *Logger) Faults() *FaultCapture {
	return l.faults
}

// DebugBridge returns the debug facade, or nil in production mode
func (l *Logger) DebugBridge() *DebugBridge {
	return l.bridge
}

// Record appends an entry. data is optional: one value is encoded as is, more
// values are read as key/value pairs. Record never panics.
func (l *Logger) Record(level int64, component, message string, data ...any) {
	l.record(level, component, message, data, 1)
}

// Debug records a debug entry
func (l *Logger) Debug(component, message string, data ...any) {
	l.record(LevelDebug, component, message, data, 1)
}

// Info records an info entry
func (l *Logger) Info(component, message string, data ...any) {
	l.record(LevelInfo, component, message, data, 1)
}

// Warn records a warn entry
func (l *Logger) Warn(component, message string, data ...any) {
	l.record(LevelWarn, component, message, data, 1)
}

// Error records an error entry with the caller's stack
func (l *Logger) Error(component, message string, data ...any) {
	l.record(LevelError, component, message, data, 1)
}

// GetLogs returns a snapshot of the in-memory entries, oldest first.
// With a level argument only entries of that level are returned.
func (l *Logger) GetLogs(level ...int64) []Entry {
	var keep func(Entry) bool
	if len(level) > 0 {
		want := level[0]
		keep = func(e Entry) bool { return e.Level == want }
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.snapshot(keep)
}

// Errors returns the error-level entries
func (l *Logger) Errors() []Entry {
	return l.GetLogs(LevelError)
}

// ClearLogs empties the in-memory history. Persisted entries are kept.
func (l *Logger) ClearLogs() {
	l.mu.Lock()
	l.store.reset()
	l.mu.Unlock()
}

// PersistedLogs returns the durable warn/error subset, oldest first
func (l *Logger) PersistedLogs() ([]Entry, error) {
	return l.persist.Load()
}

// ClearPersisted removes the durable subset
func (l *Logger) ClearPersisted() error {
	return l.persist.Clear()
}

// Close releases the persistent store. Recording after Close keeps working in memory.
func (l *Logger) Close() error {
	if l.kv == nil {
		return nil
	}
	l.state.PersistDegraded.Store(true)
	if err := l.kv.Close(); err != nil {
		return fmtErrorf("failed to close persistent store: %w", err)
	}
	return nil
}

// ComponentLogger records entries for one fixed component
type ComponentLogger struct {
	logger    *Logger
	component string
}

// For returns a logger bound to component
func (l *Logger) For(component string) *ComponentLogger {
	return &ComponentLogger{logger: l, component: component}
}

func (c *ComponentLogger) Debug(message string, data ...any) {
	c.logger.record(LevelDebug, c.component, message, data, 1)
}

func (c *ComponentLogger) Info(message string, data ...any) {
	c.logger.record(LevelInfo, c.component, message, data, 1)
}

func (c *ComponentLogger) Warn(message string, data ...any) {
	c.logger.record(LevelWarn, c.component, message, data, 1)
}

func (c *ComponentLogger) Error(message string, data ...any) {
	c.logger.record(LevelError, c.component, message, data, 1)
}
