package compat

import (
	"fmt"
	"os"

	"github.com/panjf2000/gnet/v2/pkg/logging"

	"github.com/lixenwraith/diaglog"
)

var _ logging.Logger = (*GnetAdapter)(nil)

// GnetAdapter wraps diaglog.Logger to implement the gnet logging.Logger interface
type GnetAdapter struct {
	logger       *diaglog.Logger
	component    string
	fatalHandler func(msg string) // Customizable fatal behavior
}

// NewGnetAdapter creates a new gnet-compatible logger adapter
func NewGnetAdapter(logger *diaglog.Logger, opts ...GnetOption) *GnetAdapter {
	adapter := &GnetAdapter{
		logger:    logger,
		component: "gnet",
		fatalHandler: func(msg string) {
			os.Exit(1) // Default behavior matches gnet expectations
		},
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// GnetOption allows customizing adapter behavior
type GnetOption func(*GnetAdapter)

// WithFatalHandler sets a custom fatal handler
func WithFatalHandler(handler func(string)) GnetOption {
	return func(a *GnetAdapter) {
		a.fatalHandler = handler
	}
}

// WithGnetComponent sets the component recorded on entries
func WithGnetComponent(component string) GnetOption {
	return func(a *GnetAdapter) {
		a.component = component
	}
}

// Debugf logs at debug level with printf-style formatting
func (a *GnetAdapter) Debugf(format string, args ...any) {
	a.logger.Record(diaglog.LevelDebug, a.component, fmt.Sprintf(format, args...), "source", "gnet")
}

// Infof logs at info level with printf-style formatting
func (a *GnetAdapter) Infof(format string, args ...any) {
	a.logger.Record(diaglog.LevelInfo, a.component, fmt.Sprintf(format, args...), "source", "gnet")
}

// Warnf logs at warn level with printf-style formatting
func (a *GnetAdapter) Warnf(format string, args ...any) {
	a.logger.Record(diaglog.LevelWarn, a.component, fmt.Sprintf(format, args...), "source", "gnet")
}

// Errorf logs at error level with printf-style formatting
func (a *GnetAdapter) Errorf(format string, args ...any) {
	a.logger.Record(diaglog.LevelError, a.component, fmt.Sprintf(format, args...), "source", "gnet")
}

// Fatalf logs at error level and triggers fatal handler.
// The entry reaches the persistent store before the handler runs.
func (a *GnetAdapter) Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.logger.Record(diaglog.LevelError, a.component, msg, "source", "gnet", "fatal", true)

	if a.fatalHandler != nil {
		a.fatalHandler(msg)
	}
}
