package kvstore

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"syscall"
)

const fileExtension = ".json"

// File stores each key as one file in a directory. Writes go through a
// temporary file and a rename so a crash never leaves a torn value behind.
type File struct {
	mu            sync.Mutex
	dir           string
	minDiskFreeMB int64
	closed        bool
}

// OpenFile creates the directory if needed. With minDiskFreeMB > 0, Set fails
// with ErrQuotaExceeded when free space on the volume drops below the limit.
func OpenFile(dir string, minDiskFreeMB int64) (*File, error) {
	if dir == "" {
		return nil, errors.New("kvstore: file directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("kvstore: failed to create directory '%s': %w", dir, err)
	}
	return &File{dir: dir, minDiskFreeMB: minDiskFreeMB}, nil
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+fileExtension)
}

func (f *File) Get(key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, ErrClosed
	}
	b, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("kvstore: failed to read '%s': %w", key, err)
	}
	return b, nil
}

func (f *File) Set(key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}

	if f.minDiskFreeMB > 0 {
		free, err := diskFreeSpace(f.dir)
		if err != nil {
			return err
		}
		if free-int64(len(value)) < f.minDiskFreeMB*1024*1024 {
			return fmt.Errorf("%w: %d bytes free, %d MB required", ErrQuotaExceeded, free, f.minDiskFreeMB)
		}
	}

	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("kvstore: failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("kvstore: failed to write '%s': %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("kvstore: failed to sync '%s': %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("kvstore: failed to close '%s': %w", key, err)
	}
	if err := os.Rename(tmpName, f.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("kvstore: failed to replace '%s': %w", key, err)
	}
	return nil
}

func (f *File) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	if err := os.Remove(f.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("kvstore: failed to delete '%s': %w", key, err)
	}
	return nil
}

func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// diskFreeSpace retrieves available disk space for the given path
func diskFreeSpace(path string) (int64, error) {
	var stat syscall.Statfs_t
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("kvstore: failed to stat '%s': %w", path, err)
	}
	if !info.IsDir() {
		path = filepath.Dir(path)
	}
	if err := syscall.Statfs(path, &stat); err != nil {
		return 0, fmt.Errorf("kvstore: failed to get disk stats for '%s': %w", path, err)
	}
	return int64(stat.Bavail) * int64(stat.Bsize), nil
}
