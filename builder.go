package diaglog

import (
	"io"

	"github.com/lixenwraith/diaglog/kvstore"
)

// Builder provides a fluent API for building a Logger.
// It wraps a Config instance and provides chainable methods for setting values.
type Builder struct {
	cfg  *Config
	opts []Option
	err  error // Accumulate errors for deferred handling
}

// NewBuilder creates a new builder with default values.
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// Build validates the accumulated configuration and creates the Logger.
func (b *Builder) Build() (*Logger, error) {
	if b.err != nil {
		return nil, b.err
	}
	return New(b.cfg, b.opts...)
}

// Config returns a copy of the configuration built so far.
func (b *Builder) Config() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.cfg.Clone(), nil
}

// Capacity sets the in-memory history size.
func (b *Builder) Capacity(n int64) *Builder {
	b.cfg.Capacity = n
	return b
}

// PersistCapacity sets the size of the durable warn/error subset.
func (b *Builder) PersistCapacity(n int64) *Builder {
	b.cfg.PersistCapacity = n
	return b
}

// PersistKey sets the key holding the durable subset.
func (b *Builder) PersistKey(key string) *Builder {
	b.cfg.PersistKey = key
	return b
}

// Mode sets the operating mode: "auto", "development" or "production".
func (b *Builder) Mode(mode string) *Builder {
	b.cfg.Mode = mode
	return b
}

// Development forces development mode.
func (b *Builder) Development() *Builder {
	b.cfg.Mode = ModeDevelopment
	return b
}

// Production forces production mode.
func (b *Builder) Production() *Builder {
	b.cfg.Mode = ModeProduction
	return b
}

// ConsoleFormat sets the console line format.
func (b *Builder) ConsoleFormat(format string) *Builder {
	b.cfg.ConsoleFormat = format
	return b
}

// ConsoleColor toggles level styling.
func (b *Builder) ConsoleColor(enable bool) *Builder {
	b.cfg.ConsoleColor = enable
	return b
}

// ConsoleWriter replaces the console target.
func (b *Builder) ConsoleWriter(w io.Writer) *Builder {
	b.opts = append(b.opts, WithConsoleWriter(w))
	return b
}

// StackDepth sets the number of frames captured for error entries.
func (b *Builder) StackDepth(depth int64) *Builder {
	b.cfg.StackDepth = depth
	return b
}

// Backend selects the persistent backend opened by Build.
func (b *Builder) Backend(backend, directory string) *Builder {
	b.cfg.StoreBackend = backend
	b.cfg.StoreDirectory = directory
	return b
}

// StoreSync sets whether the pebble backend fsyncs each write
func (b *Builder) StoreSync(enabled bool) *Builder {
	b.cfg.StoreSync = enabled
	return b
}

// Store supplies an already opened persistent backend.
func (b *Builder) Store(store kvstore.Store) *Builder {
	b.opts = append(b.opts, WithStore(store))
	return b
}

// DebugAddress sets the debug server listen address.
func (b *Builder) DebugAddress(addr string) *Builder {
	b.cfg.DebugAddress = addr
	return b
}

// ServiceURL sets the URL reported in exports.
func (b *Builder) ServiceURL(url string) *Builder {
	b.cfg.ServiceURL = url
	return b
}

// InternalErrorsToStderr toggles diagnostics about the logger itself.
func (b *Builder) InternalErrorsToStderr(enable bool) *Builder {
	b.cfg.InternalErrorsToStderr = enable
	return b
}

// Override applies "key=value" overrides, deferring any error to Build.
func (b *Builder) Override(overrides ...string) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.cfg.ApplyOverride(overrides...); err != nil {
		b.err = err
	}
	return b
}

// Example usage:
// logger, err := diaglog.NewBuilder().
//
//	Capacity(500).
//	Backend("pebble", "/var/lib/app/diaglog").
//	Development().
//	Build()
//
// if err == nil {
//
//	 defer logger.Close()
//	 logger.Info("Startup", "service ready")
//
// }
