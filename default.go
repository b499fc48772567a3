package diaglog

import (
	"errors"
	"sync/atomic"
)

// ErrAlreadyInitialized is returned by Init after the process-wide logger exists
var ErrAlreadyInitialized = errors.New("diaglog: process-wide logger already initialized")

// defaultLogger is the process-wide instance created by Init
var defaultLogger atomic.Pointer[Logger]

// Init creates the process-wide logger and installs its fault capture.
// It succeeds once per process; later calls return the existing logger and
// ErrAlreadyInitialized.
func Init(cfg *Config, opts ...Option) (*Logger, error) {
	if l := defaultLogger.Load(); l != nil {
		return l, ErrAlreadyInitialized
	}
	l, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if !defaultLogger.CompareAndSwap(nil, l) {
		_ = l.Close()
		return defaultLogger.Load(), ErrAlreadyInitialized
	}
	return l, nil
}

// Default returns the process-wide logger, or nil before Init
func Default() *Logger {
	return defaultLogger.Load()
}

// Debug returns the debug bridge of the process-wide logger. It is nil before
// Init and in production mode. Application code should use the *Logger it was
// handed; this handle exists for interactive inspection.
func Debug() *DebugBridge {
	if l := defaultLogger.Load(); l != nil {
		return l.DebugBridge()
	}
	return nil
}

// Recover records a panic with the process-wide fault capture. Before Init the
// panic is re-raised unchanged. Must be deferred directly.
func Recover() {
	r := recover()
	if r == nil {
		return
	}
	l := defaultLogger.Load()
	if l == nil {
		panic(r)
	}
	l.faults.CapturePanic(r)
	if l.faults.repanic.Load() {
		panic(r)
	}
}

// Go runs fn in a goroutine guarded by the process-wide fault capture
func Go(fn func()) {
	go func() {
		defer Recover()
		fn()
	}()
}

// GoErr runs fn in a goroutine; an error it returns is recorded as an unhandled rejection
func GoErr(fn func() error) {
	go func() {
		defer Recover()
		if err := fn(); err != nil {
			CaptureRejection(err)
		}
	}()
}

// CaptureRejection records reason with the process-wide fault capture; a no-op before Init
func CaptureRejection(reason any) {
	if l := defaultLogger.Load(); l != nil {
		l.faults.CaptureRejection(reason)
	}
}
