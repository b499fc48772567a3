package compat

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lixenwraith/diaglog"
)

// Pattern to detect common structured patterns like "key=%v" or "key: %v"
var keyValuePattern = regexp.MustCompile(`(\w+)\s*[:=]\s*%[vsdqxXeEfFgGpbcU]`)

// parseFormat extracts structured fields from a printf-style format string.
// The message is the text outside the key/value pairs; fields is nil when the
// format has no recognizable pairs.
func parseFormat(format string, args []any) (string, map[string]any) {
	matches := keyValuePattern.FindAllStringSubmatchIndex(format, -1)
	if len(matches) == 0 || len(matches) > len(args) {
		return fmt.Sprintf(format, args...), nil
	}

	fields := make(map[string]any, len(matches))
	var msg []string
	lastEnd := 0
	argIndex := 0

	for _, match := range matches {
		if prefix := strings.TrimSpace(format[lastEnd:match[0]]); prefix != "" {
			msg = append(msg, strings.TrimRight(prefix, ",;"))
		}

		key := format[match[2]:match[3]]
		fields[key] = args[argIndex]
		argIndex++
		lastEnd = match[1]
	}

	// Remaining format string and args
	if lastEnd < len(format) {
		remaining := strings.TrimSpace(fmt.Sprintf(format[lastEnd:], args[argIndex:]...))
		if remaining != "" {
			msg = append(msg, remaining)
		}
	}

	if len(msg) == 0 {
		return "(no message)", fields
	}
	return strings.Join(msg, " "), fields
}

// StructuredGnetAdapter provides enhanced structured logging for gnet
type StructuredGnetAdapter struct {
	*GnetAdapter
	extractFields bool
}

// NewStructuredGnetAdapter creates a gnet adapter with structured field extraction
func NewStructuredGnetAdapter(logger *diaglog.Logger, opts ...GnetOption) *StructuredGnetAdapter {
	return &StructuredGnetAdapter{
		GnetAdapter:   NewGnetAdapter(logger, opts...),
		extractFields: true,
	}
}

func (a *StructuredGnetAdapter) record(level int64, format string, args []any) {
	msg, fields := parseFormat(format, args)
	if fields == nil {
		fields = make(map[string]any, 1)
	}
	fields["source"] = "gnet"
	a.logger.Record(level, a.component, msg, fields)
}

// Debugf logs with structured field extraction
func (a *StructuredGnetAdapter) Debugf(format string, args ...any) {
	if a.extractFields {
		a.record(diaglog.LevelDebug, format, args)
	} else {
		a.GnetAdapter.Debugf(format, args...)
	}
}

// Infof logs with structured field extraction
func (a *StructuredGnetAdapter) Infof(format string, args ...any) {
	if a.extractFields {
		a.record(diaglog.LevelInfo, format, args)
	} else {
		a.GnetAdapter.Infof(format, args...)
	}
}

// Warnf logs with structured field extraction
func (a *StructuredGnetAdapter) Warnf(format string, args ...any) {
	if a.extractFields {
		a.record(diaglog.LevelWarn, format, args)
	} else {
		a.GnetAdapter.Warnf(format, args...)
	}
}

// Errorf logs with structured field extraction
func (a *StructuredGnetAdapter) Errorf(format string, args ...any) {
	if a.extractFields {
		a.record(diaglog.LevelError, format, args)
	} else {
		a.GnetAdapter.Errorf(format, args...)
	}
}
