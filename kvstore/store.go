// Package kvstore provides the key-value backends behind the persistent sink.
package kvstore

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Get when the key does not exist
	ErrNotFound = errors.New("kvstore: key not found")
	// ErrQuotaExceeded is returned by Set when the backend refuses to grow
	ErrQuotaExceeded = errors.New("kvstore: quota exceeded")
	// ErrClosed is returned by operations on a closed store
	ErrClosed = errors.New("kvstore: store closed")
)

// Store is a minimal durable key-value store.
// Implementations must be safe for concurrent use.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// Options selects and configures a backend for Open
type Options struct {
	Backend       string // "memory", "file" or "pebble"
	Directory     string
	MinDiskFreeMB int64 // file backend only
	Sync          bool  // pebble backend: fsync each write
	// Logf receives backend diagnostics; nil discards them
	Logf func(format string, args ...any)
}

// Open creates the backend described by opts
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case "memory":
		return NewMemory(), nil
	case "file":
		return OpenFile(opts.Directory, opts.MinDiskFreeMB)
	case "pebble":
		return OpenPebble(PebbleOptions{DataDir: opts.Directory, Sync: opts.Sync, Logf: opts.Logf})
	default:
		return nil, fmt.Errorf("kvstore: unknown backend '%s'", opts.Backend)
	}
}
