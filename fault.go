package diaglog

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
)

// hookFrame names the function that runs a hook body
const hookFrame = ".(*FaultCapture).capture"

// FaultCapture turns panics and unobserved goroutine errors into error entries
// under the "Global" component.
//
// Hooks on different goroutines are serialized and each one is recorded.
// A hook raised from inside another hook's body on the same call chain, for
// example by a fault value whose Error method reports a fault of its own,
// is discarded and counted instead of recursing.
type FaultCapture struct {
	logger  *Logger
	mu      sync.Mutex
	repanic atomic.Bool
}

func newFaultCapture(l *Logger) *FaultCapture {
	return &FaultCapture{logger: l}
}

// Repanic makes Recover re-raise the panic after recording it, preserving
// crash semantics for goroutines that must not continue.
func (f *FaultCapture) Repanic(enabled bool) *FaultCapture {
	f.repanic.Store(enabled)
	return f
}

// Recover records a panic in progress. It must be deferred directly:
//
//	defer logger.Faults().Recover()
func (f *FaultCapture) Recover() {
	r := recover()
	if r == nil {
		return
	}
	f.CapturePanic(r)
	if f.repanic.Load() {
		panic(r)
	}
}

// CapturePanic records a recovered panic value. When called from a deferred
// function during panicking, the panicking frame is reported as the fault site.
func (f *FaultCapture) CapturePanic(value any) {
	file, line := panicSite()
	f.capture(func() (string, map[string]any) {
		desc := describe(value)
		return "Uncaught panic: " + desc, map[string]any{
			"filename": file,
			"lineno":   line,
			"colno":    0,
			"error":    desc,
		}
	})
}

// CaptureRejection records an asynchronous failure that nothing awaited.
// A nil reason is ignored.
func (f *FaultCapture) CaptureRejection(reason any) {
	if reason == nil {
		return
	}
	f.capture(func() (string, map[string]any) {
		desc := describe(reason)
		return "Unhandled rejection: " + desc, map[string]any{
			"reason": desc,
		}
	})
}

// Go runs fn in a new goroutine; a panic in fn is recorded instead of crashing
// the process, unless Repanic is set.
func (f *FaultCapture) Go(fn func()) {
	go func() {
		defer f.Recover()
		fn()
	}()
}

// GoErr runs fn in a new goroutine whose error no caller waits for. A returned
// error is recorded as an unhandled rejection; a panic as an uncaught panic.
func (f *FaultCapture) GoErr(fn func() error) {
	go func() {
		defer f.Recover()
		if err := fn(); err != nil {
			f.CaptureRejection(err)
		}
	}()
}

// capture runs one hook body: build describes the fault, then the entry is
// recorded. Nested invocations are detected by the hook frame on the stack.
func (f *FaultCapture) capture(build func() (string, map[string]any)) {
	if hookDepth() > 1 {
		f.logger.state.FaultsDiscarded.Add(1)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	message, data := build()
	// frames skipped: record, capture, CapturePanic/CaptureRejection
	if f.logger.record(LevelError, GlobalComponent, message, []any{data}, 2) {
		f.logger.state.FaultsCaptured.Add(1)
	}
}

// hookDepth counts the hook bodies on the calling goroutine's stack
func hookDepth() int {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(1, pcs)
	for n == len(pcs) {
		pcs = make([]uintptr, 2*len(pcs))
		n = runtime.Callers(1, pcs)
	}

	depth := 0
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if strings.HasSuffix(frame.Function, hookFrame) {
			depth++
		}
		if !more {
			break
		}
	}
	return depth
}

// describe renders a fault value; a value whose formatting panics gets a fixed description
func describe(v any) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = fmt.Sprintf("<%T: description unavailable>", v)
		}
	}()
	switch val := v.(type) {
	case error:
		return val.Error()
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(v)
	}
}
