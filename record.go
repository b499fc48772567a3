package diaglog

import (
	"fmt"
	"os"
	"strings"
)

// record is the single append path. skip is the number of frames between the
// public caller and record, used to start captured stacks at the caller.
// It reports whether the entry reached the in-memory store.
func (l *Logger) record(level int64, component, message string, data []any, skip int) (stored bool) {
	defer func() {
		if r := recover(); r != nil {
			l.state.RecordPanics.Add(1)
			l.internalLog("recovered panic while recording [%s] %q: %v\n", component, message, r)
		}
	}()

	e := newEntry(l.now(), level, component, message, data)
	if e.Level == LevelError {
		e.Stack = captureStack(l.cfg.StackDepth, skip+1)
	}

	l.mu.Lock()
	if l.store.push(e) {
		l.state.TotalEvicted.Add(1)
	}
	l.mu.Unlock()
	l.state.TotalRecorded.Add(1)
	stored = true

	l.console.Emit(e)
	if e.Level >= LevelWarn {
		l.persist.Append(e)
	}
	return stored
}

// storeLog routes backend diagnostics through the internal log path
func (l *Logger) storeLog(format string, args ...any) {
	l.internalLog("store: "+strings.TrimSuffix(format, "\n")+"\n", args...)
}

// internalLog handles writing internal logger diagnostics to stderr, if enabled.
func (l *Logger) internalLog(format string, args ...any) {
	if !l.cfg.InternalErrorsToStderr {
		return
	}

	if !strings.HasPrefix(format, "diaglog: ") {
		format = "diaglog: " + format
	}

	fmt.Fprintf(os.Stderr, format, args...)
}
