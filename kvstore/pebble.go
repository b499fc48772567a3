package kvstore

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
)

// PebbleOptions configures the Pebble backend
type PebbleOptions struct {
	// DataDir is the path to the Pebble database directory
	DataDir string
	// Sync requests a WAL fsync on each write
	Sync bool
	// Logf receives pebble's own log lines; nil discards them.
	// Ignored when PebbleOptions carries a Logger.
	Logf func(format string, args ...any)
	// PebbleOptions allows advanced tuning. If nil, defaults are used.
	PebbleOptions *pebble.Options
}

// pebbleLogger adapts a printf function to pebble's logger
type pebbleLogger struct {
	logf func(format string, args ...any)
}

func (l pebbleLogger) Infof(format string, args ...any) {
	if l.logf != nil {
		l.logf(format, args...)
	}
}

func (l pebbleLogger) Errorf(format string, args ...any) {
	if l.logf != nil {
		l.logf(format, args...)
	}
}

// Fatalf panics instead of exiting so the failure surfaces to the caller
func (l pebbleLogger) Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if l.logf != nil {
		l.logf("%s", msg)
	}
	panic("kvstore: pebble: " + msg)
}

// Pebble is a Store backed by an embedded Pebble database
type Pebble struct {
	mu    sync.RWMutex
	inner *pebble.DB
	write *pebble.WriteOptions
}

// OpenPebble creates or opens a Pebble database
func OpenPebble(opts PebbleOptions) (*Pebble, error) {
	if opts.DataDir == "" {
		return nil, errors.New("kvstore: pebble DataDir is required")
	}
	po := opts.PebbleOptions
	if po == nil {
		po = &pebble.Options{}
	}
	if po.Logger == nil {
		po.Logger = pebbleLogger{logf: opts.Logf}
	}
	inner, err := pebble.Open(opts.DataDir, po)
	if err != nil {
		return nil, fmt.Errorf("kvstore: failed to open pebble at '%s': %w", opts.DataDir, err)
	}
	write := pebble.NoSync
	if opts.Sync {
		write = pebble.Sync
	}
	return &Pebble{inner: inner, write: write}, nil
}

func (p *Pebble) Get(key string) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.inner == nil {
		return nil, ErrClosed
	}
	val, closer, err := p.inner.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("kvstore: pebble get '%s': %w", key, err)
	}
	defer closer.Close()
	return append([]byte(nil), val...), nil
}

func (p *Pebble) Set(key string, value []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.inner == nil {
		return ErrClosed
	}
	if err := p.inner.Set([]byte(key), value, p.write); err != nil {
		return fmt.Errorf("kvstore: pebble set '%s': %w", key, err)
	}
	return nil
}

func (p *Pebble) Delete(key string) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.inner == nil {
		return ErrClosed
	}
	if err := p.inner.Delete([]byte(key), p.write); err != nil {
		return fmt.Errorf("kvstore: pebble delete '%s': %w", key, err)
	}
	return nil
}

// Close flushes and closes the database. Safe to call more than once.
func (p *Pebble) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inner == nil {
		return nil
	}
	err := p.inner.Close()
	p.inner = nil
	return err
}
