package diaglog

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// captureStack returns the call stack as "func (file:line)" frames, innermost first.
// skip counts frames above captureStack that belong to the logger itself.
func captureStack(depth int64, skip int) string {
	if depth <= 0 {
		return ""
	}
	if depth > maxStackDepth {
		depth = maxStackDepth
	}
	pc := make([]uintptr, int(depth))
	n := runtime.Callers(skip+2, pc) // +2 for runtime.Callers and captureStack
	if n == 0 {
		return "(unknown)"
	}
	frames := runtime.CallersFrames(pc[:n])
	var sb strings.Builder
	for {
		frame, more := frames.Next()
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(shortFuncName(frame.Function))
		sb.WriteString(" (")
		sb.WriteString(filepath.Base(frame.File))
		sb.WriteByte(':')
		sb.WriteString(fmt.Sprint(frame.Line))
		sb.WriteByte(')')
		if !more {
			break
		}
	}
	return sb.String()
}

// panicSite locates the frame that raised the panic currently being recovered.
// Must be called from within the deferred function chain.
func panicSite() (file string, line int) {
	pc := make([]uintptr, maxStackDepth)
	n := runtime.Callers(2, pc)
	frames := runtime.CallersFrames(pc[:n])
	afterPanic := false
	for {
		frame, more := frames.Next()
		if afterPanic && !strings.HasPrefix(frame.Function, "runtime.") {
			return frame.File, frame.Line
		}
		if frame.Function == "runtime.gopanic" {
			afterPanic = true
		}
		if !more {
			break
		}
	}
	return Unavailable, 0
}

// shortFuncName trims the package path, keeping "pkg.Func" or "pkg.(*T).Method"
func shortFuncName(fn string) string {
	if fn == "" {
		return "(unknown)"
	}
	return filepath.Base(fn)
}

// fmtErrorf wrapper
func fmtErrorf(format string, args ...any) error {
	if !strings.HasPrefix(format, "diaglog: ") {
		format = "diaglog: " + format
	}
	return fmt.Errorf(format, args...)
}

// parseKeyValue splits a "key=value" string.
func parseKeyValue(arg string) (string, string, error) {
	parts := strings.SplitN(strings.TrimSpace(arg), "=", 2)
	if len(parts) != 2 {
		return "", "", fmtErrorf("invalid format in override string '%s', expected key=value", arg)
	}
	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])
	if key == "" {
		return "", "", fmtErrorf("key cannot be empty in override string '%s'", arg)
	}
	return key, value, nil
}

// Level converts level string to numeric constant.
func Level(levelStr string) (int64, error) {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return 0, fmtErrorf("invalid level string: '%s' (use debug, info, warn, error)", levelStr)
	}
}

// LevelString converts a numeric level to its wire name.
func LevelString(level int64) string {
	switch level {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", level)
	}
}

// validLevel reports whether level is one of the four fixed levels
func validLevel(level int64) bool {
	switch level {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return true
	}
	return false
}
