package diaglog

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/lixenwraith/diaglog/formatter"
)

// ConsoleSink writes human-readable entries to a console writer.
// The gate is fixed at construction; a disabled sink does nothing.
type ConsoleSink struct {
	mu        sync.Mutex
	enabled   bool
	w         io.Writer
	formatter *formatter.Formatter
	styles    map[string]*color.Color
	state     *State
}

// NewConsoleSink creates a sink writing to w. With colored false, level labels are plain.
func NewConsoleSink(w io.Writer, enabled bool, format string, colored bool, state *State) *ConsoleSink {
	styles := map[string]*color.Color{
		"DEBUG": color.New(color.FgHiBlack),
		"INFO":  color.New(color.FgCyan),
		"WARN":  color.New(color.FgYellow, color.Bold),
		"ERROR": color.New(color.FgRed, color.Bold),
	}
	for _, c := range styles {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	if state == nil {
		state = &State{}
	}

	s := &ConsoleSink{
		enabled: enabled,
		w:       w,
		styles:  styles,
		state:   state,
	}
	s.formatter = formatter.New().Type(format).LevelStyle(s.styleLevel)
	return s
}

// Enabled reports the gate value
func (s *ConsoleSink) Enabled() bool {
	return s != nil && s.enabled
}

func (s *ConsoleSink) styleLevel(label string) string {
	if c, ok := s.styles[label]; ok {
		return c.Sprint(label)
	}
	return label
}

// Emit writes e, followed by its stack for error entries. Never panics.
func (s *ConsoleSink) Emit(e Entry) {
	if !s.Enabled() {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.state.ConsoleFailures.Add(1)
		}
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	line := s.formatter.Format(e.Timestamp, e.LevelName(), e.Component, e.Message, e.Data)
	if _, err := s.w.Write(line); err != nil {
		s.state.ConsoleFailures.Add(1)
		return
	}
	if e.Level == LevelError && e.Stack != "" {
		if _, err := s.w.Write(s.formatter.FormatStack(e.Stack)); err != nil {
			s.state.ConsoleFailures.Add(1)
		}
	}
}

// Warnf reports a local problem of the logger itself, bypassing the store
func (s *ConsoleSink) Warnf(format string, args ...any) {
	if !s.Enabled() {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.state.ConsoleFailures.Add(1)
		}
	}()

	s.mu.Lock()
	defer s.mu.Unlock()
	label := s.styleLevel("WARN")
	if _, err := fmt.Fprintf(s.w, "%s [diaglog] %s\n", label, fmt.Sprintf(format, args...)); err != nil {
		s.state.ConsoleFailures.Add(1)
	}
}
