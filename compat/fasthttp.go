package compat

import (
	"fmt"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/lixenwraith/diaglog"
)

var _ fasthttp.Logger = (*FastHTTPAdapter)(nil)

// FastHTTPAdapter wraps diaglog.Logger to implement the fasthttp Logger interface
type FastHTTPAdapter struct {
	logger        *diaglog.Logger
	component     string
	defaultLevel  int64
	levelDetector func(string) int64 // Function to detect log level from message
}

// NewFastHTTPAdapter creates a new fasthttp-compatible logger adapter
func NewFastHTTPAdapter(logger *diaglog.Logger, opts ...FastHTTPOption) *FastHTTPAdapter {
	adapter := &FastHTTPAdapter{
		logger:        logger,
		component:     "fasthttp",
		defaultLevel:  diaglog.LevelInfo,
		levelDetector: DetectLogLevel, // Default level detection
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// FastHTTPOption allows customizing adapter behavior
type FastHTTPOption func(*FastHTTPAdapter)

// WithDefaultLevel sets the default log level for Printf calls
func WithDefaultLevel(level int64) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.defaultLevel = level
	}
}

// WithLevelDetector sets a custom function to detect log level from message content.
// A detector returning LevelInfo leaves the default level in place.
func WithLevelDetector(detector func(string) int64) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.levelDetector = detector
	}
}

// WithFastHTTPComponent sets the component recorded on entries
func WithFastHTTPComponent(component string) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.component = component
	}
}

// Printf implements fasthttp's Logger interface
func (a *FastHTTPAdapter) Printf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	// Detect log level from message content
	level := a.defaultLevel
	if a.levelDetector != nil {
		detected := a.levelDetector(msg)
		if detected != diaglog.LevelInfo {
			level = detected
		}
	}

	a.logger.Record(level, a.component, msg, "source", "fasthttp")
}

// DetectLogLevel attempts to detect log level from message content
func DetectLogLevel(msg string) int64 {
	msgLower := strings.ToLower(msg)

	// Check for error indicators
	if strings.Contains(msgLower, "error") ||
		strings.Contains(msgLower, "failed") ||
		strings.Contains(msgLower, "fatal") ||
		strings.Contains(msgLower, "panic") {
		return diaglog.LevelError
	}

	// Check for warning indicators
	if strings.Contains(msgLower, "warn") ||
		strings.Contains(msgLower, "deprecated") {
		return diaglog.LevelWarn
	}

	// Check for debug indicators
	if strings.Contains(msgLower, "debug") ||
		strings.Contains(msgLower, "trace") {
		return diaglog.LevelDebug
	}

	// Default to info level
	return diaglog.LevelInfo
}
