package compat

import (
	"fmt"

	"github.com/lixenwraith/diaglog"
)

// Builder provides a flexible way to create logger adapters for gnet and fasthttp.
// It can use an existing *diaglog.Logger instance or create a new one from a *diaglog.Config
type Builder struct {
	logger *diaglog.Logger
	logCfg *diaglog.Config
	err    error
}

// NewBuilder creates a new adapter builder
func NewBuilder() *Builder {
	return &Builder{}
}

// WithLogger specifies an existing logger to use for the adapters.
// Recommended: adapters should feed the process-wide capture service.
// If this is set WithConfig is ignored
func (b *Builder) WithLogger(l *diaglog.Logger) *Builder {
	if l == nil {
		b.err = fmt.Errorf("diaglog/compat: provided logger cannot be nil")
		return b
	}
	b.logger = l
	return b
}

// WithConfig provides a configuration for a new logger instance.
// This is used only if an existing logger is NOT provided via WithLogger
func (b *Builder) WithConfig(cfg *diaglog.Config) *Builder {
	b.logCfg = cfg
	return b
}

// getLogger resolves the logger to be used, creating one if necessary
func (b *Builder) getLogger() (*diaglog.Logger, error) {
	if b.err != nil {
		return nil, b.err
	}

	if b.logger != nil {
		return b.logger, nil
	}

	cfg := b.logCfg
	if cfg == nil {
		cfg = diaglog.DefaultConfig()
	}

	l, err := diaglog.New(cfg)
	if err != nil {
		return nil, err
	}

	// Cache the newly created logger for subsequent builds with this builder
	b.logger = l
	return l, nil
}

// BuildGnet creates a gnet adapter
func (b *Builder) BuildGnet(opts ...GnetOption) (*GnetAdapter, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewGnetAdapter(l, opts...), nil
}

// BuildStructuredGnet creates a gnet adapter that extracts key/value pairs
// from format strings into entry data
func (b *Builder) BuildStructuredGnet(opts ...GnetOption) (*StructuredGnetAdapter, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewStructuredGnetAdapter(l, opts...), nil
}

// BuildFastHTTP creates a fasthttp adapter
func (b *Builder) BuildFastHTTP(opts ...FastHTTPOption) (*FastHTTPAdapter, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewFastHTTPAdapter(l, opts...), nil
}

// GetLogger returns the underlying *diaglog.Logger instance.
// If a logger has not been provided or created yet, it will be initialized
func (b *Builder) GetLogger() (*diaglog.Logger, error) {
	return b.getLogger()
}

// --- Example Usage ---
//
//	logger, err := diaglog.NewBuilder().Backend("pebble", "/var/lib/app/diaglog").Build()
//	if err != nil { /* handle error */ }
//
//	builder := compat.NewBuilder().WithLogger(logger)
//
//	gnetLogger, _ := builder.BuildGnet()
//	go gnet.Run(events, "tcp://:9000", gnet.WithLogger(gnetLogger))
//
//	fasthttpLogger, _ := builder.BuildFastHTTP()
//	server := &fasthttp.Server{Handler: handler, Logger: fasthttpLogger}
//	go server.ListenAndServe(":8080")
