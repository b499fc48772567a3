// Package formatter renders log entries as single console lines.
package formatter

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/lixenwraith/diaglog/sanitizer"
)

// Formatter manages the buffered formatting of entries. Not safe for concurrent use.
type Formatter struct {
	sanitizer       *sanitizer.Sanitizer
	format          string
	timestampFormat string
	showTimestamp   bool
	showLevel       bool
	levelStyle      func(level string) string
	buf             []byte
}

// New creates a formatter with the provided sanitizer
func New(s ...*sanitizer.Sanitizer) *Formatter {
	var san *sanitizer.Sanitizer
	if len(s) > 0 && s[0] != nil {
		san = s[0]
	} else {
		san = sanitizer.New().Policy(sanitizer.PolicyTerminal)
	}
	return &Formatter{
		sanitizer:       san,
		format:          "txt",
		timestampFormat: "2006-01-02T15:04:05.000Z07:00",
		showTimestamp:   true,
		showLevel:       true,
		buf:             make([]byte, 0, 512),
	}
}

// Type sets the output format ("txt" or "json")
func (f *Formatter) Type(format string) *Formatter {
	f.format = format
	return f
}

// TimestampFormat sets the timestamp layout
func (f *Formatter) TimestampFormat(format string) *Formatter {
	if format != "" {
		f.timestampFormat = format
	}
	return f
}

// ShowLevel sets whether to include level in output
func (f *Formatter) ShowLevel(show bool) *Formatter {
	f.showLevel = show
	return f
}

// ShowTimestamp sets whether to include timestamp in output
func (f *Formatter) ShowTimestamp(show bool) *Formatter {
	f.showTimestamp = show
	return f
}

// LevelStyle decorates the level label in txt output, e.g. with terminal colors
func (f *Formatter) LevelStyle(style func(level string) string) *Formatter {
	f.levelStyle = style
	return f
}

// Format renders one entry. level is the lowercase level name; data is an
// already encoded JSON value or nil.
func (f *Formatter) Format(timestamp time.Time, level, component, message string, data []byte) []byte {
	f.buf = f.buf[:0]
	if f.format == "json" {
		return f.formatJSON(timestamp, level, component, message, data, sanitizer.NewSerializer("json", f.sanitizer))
	}
	return f.formatTxt(timestamp, level, component, message, data)
}

// FormatStack renders a captured stack as indented continuation lines
func (f *Formatter) FormatStack(stack string) []byte {
	f.buf = f.buf[:0]
	if stack == "" {
		return f.buf
	}
	for _, frame := range strings.Split(stack, "\n") {
		f.buf = append(f.buf, "    at "...)
		f.buf = append(f.buf, f.sanitizer.Sanitize(frame)...)
		f.buf = append(f.buf, '\n')
	}
	return f.buf
}

// LevelLabel converts a level name to its console label
func LevelLabel(level string) string {
	return strings.ToUpper(level)
}

func (f *Formatter) formatJSON(timestamp time.Time, level, component, message string, data []byte, serializer *sanitizer.Serializer) []byte {
	f.buf = append(f.buf, '{')
	needsComma := false

	if f.showTimestamp {
		f.buf = append(f.buf, `"time":"`...)
		f.buf = timestamp.AppendFormat(f.buf, f.timestampFormat)
		f.buf = append(f.buf, '"')
		needsComma = true
	}

	if f.showLevel {
		if needsComma {
			f.buf = append(f.buf, ',')
		}
		f.buf = append(f.buf, `"level":"`...)
		f.buf = append(f.buf, LevelLabel(level)...)
		f.buf = append(f.buf, '"')
		needsComma = true
	}

	if needsComma {
		f.buf = append(f.buf, ',')
	}
	f.buf = append(f.buf, `"component":`...)
	serializer.WriteString(&f.buf, component)
	f.buf = append(f.buf, `,"message":`...)
	serializer.WriteString(&f.buf, message)

	if len(data) > 0 {
		f.buf = append(f.buf, `,"data":`...)
		if json.Valid(data) {
			f.buf = append(f.buf, data...)
		} else {
			serializer.WriteString(&f.buf, string(data))
		}
	}

	f.buf = append(f.buf, '}', '\n')
	return f.buf
}

func (f *Formatter) formatTxt(timestamp time.Time, level, component, message string, data []byte) []byte {
	needsSpace := false

	if f.showTimestamp {
		f.buf = timestamp.AppendFormat(f.buf, f.timestampFormat)
		needsSpace = true
	}

	if f.showLevel {
		if needsSpace {
			f.buf = append(f.buf, ' ')
		}
		label := LevelLabel(level)
		if f.levelStyle != nil {
			label = f.levelStyle(label)
		}
		f.buf = append(f.buf, label...)
		needsSpace = true
	}

	if needsSpace {
		f.buf = append(f.buf, ' ')
	}
	f.buf = append(f.buf, '[')
	f.buf = append(f.buf, f.sanitizer.Sanitize(component)...)
	f.buf = append(f.buf, "] "...)
	f.buf = append(f.buf, f.sanitizer.Sanitize(message)...)

	if len(data) > 0 {
		f.buf = append(f.buf, " data="...)
		// Encoded JSON is printable already; sanitize in case a string carried escapes through
		f.buf = append(f.buf, f.sanitizer.Sanitize(string(data))...)
	}

	f.buf = append(f.buf, '\n')
	return f.buf
}
