package diaglog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lixenwraith/diaglog/sanitizer"
)

// Entry is a single captured log entry. Entries are never modified after creation.
type Entry struct {
	Timestamp time.Time
	Level     int64
	Component string
	Message   string
	Data      json.RawMessage // Encoded once at creation, nil when absent
	Stack     string          // Error entries only
}

// entryJSON is the wire form used in memory exports and the persistent store
type entryJSON struct {
	Timestamp string          `json:"timestamp"`
	Level     string          `json:"level"`
	Component string          `json:"component"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	Stack     string          `json:"stack,omitempty"`
}

// MarshalJSON renders the entry with an ISO-8601 timestamp and a level name
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(entryJSON{
		Timestamp: e.Timestamp.UTC().Format(timestampLayout),
		Level:     LevelString(e.Level),
		Component: e.Component,
		Message:   e.Message,
		Data:      e.Data,
		Stack:     e.Stack,
	})
}

// UnmarshalJSON parses the wire form
func (e *Entry) UnmarshalJSON(b []byte) error {
	var w entryJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	ts, err := time.Parse(time.RFC3339Nano, w.Timestamp)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", w.Timestamp, err)
	}
	level, err := Level(w.Level)
	if err != nil {
		return err
	}
	*e = Entry{
		Timestamp: ts,
		Level:     level,
		Component: w.Component,
		Message:   w.Message,
		Data:      w.Data,
		Stack:     w.Stack,
	}
	return nil
}

// LevelName returns the lowercase level name
func (e Entry) LevelName() string {
	return LevelString(e.Level)
}

// newEntry builds an entry, substituting defaults for invalid inputs
func newEntry(now time.Time, level int64, component, message string, data []any) Entry {
	if !validLevel(level) {
		level = LevelInfo
	}
	if component == "" {
		component = defaultComponent
	}
	if message == "" {
		message = defaultMessage
	}
	return Entry{
		Timestamp: now.UTC().Truncate(time.Millisecond),
		Level:     level,
		Component: component,
		Message:   message,
		Data:      encodeData(data),
	}
}

// encodeData serializes the optional payload. It never fails: values that cannot
// be encoded are replaced by a placeholder describing them.
func encodeData(data []any) json.RawMessage {
	var v any
	switch len(data) {
	case 0:
		return nil
	case 1:
		v = data[0]
	default:
		v = foldPairs(data)
	}
	if v == nil {
		return nil
	}

	v = normalizeErrors(v)
	encoded, err := safeMarshal(v)
	if err == nil {
		return encoded
	}

	placeholder, perr := json.Marshal(map[string]string{
		"_unserializable": sanitizer.Dump(v, maxPlaceholderBytes),
		"_error":          err.Error(),
	})
	if perr != nil {
		return json.RawMessage(`{"_unserializable":"<unavailable>"}`)
	}
	return placeholder
}

// safeMarshal converts panics from custom marshalers into errors
func safeMarshal(v any) (b []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, err = nil, fmt.Errorf("marshal panic: %v", r)
		}
	}()
	return json.Marshal(v)
}

// foldPairs turns alternating key/value arguments into an object
func foldPairs(args []any) map[string]any {
	out := make(map[string]any, len(args)/2+1)
	for i := 0; i < len(args); i += 2 {
		key := fmt.Sprint(args[i])
		if i+1 < len(args) {
			out[key] = args[i+1]
		} else {
			out["_extra"] = args[i]
		}
	}
	return out
}

// normalizeErrors renders error values as strings; encoding/json would emit {}
func normalizeErrors(v any) any {
	switch val := v.(type) {
	case error:
		return map[string]string{"error": safeErrorString(val), "type": fmt.Sprintf("%T", val)}
	case map[string]any:
		var copied map[string]any
		for k, item := range val {
			if err, ok := item.(error); ok {
				if copied == nil {
					copied = make(map[string]any, len(val))
					for kk, vv := range val {
						copied[kk] = vv
					}
				}
				copied[k] = safeErrorString(err)
			}
		}
		if copied != nil {
			return copied
		}
	}
	return v
}

func safeErrorString(err error) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = fmt.Sprintf("<error string panicked: %v>", r)
		}
	}()
	return err.Error()
}
