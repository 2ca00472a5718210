// Package workspace manages the directory pipelines are cloned into: removing
// stale working copies and holding an exclusive lock for the duration of a
// run, because concurrent runs would race on the user's package install
// location.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// LockFileName is created inside the work directory while a run holds it.
const LockFileName = ".gpuforge.lock"

// ErrLocked means another gpuforge process holds the work directory.
var ErrLocked = errors.New("work directory is locked by another run")

// Lock is an acquired work directory lock.
type Lock struct {
	file *os.File
}

// Acquire takes the exclusive lock for dir without blocking. The directory is
// created if it does not exist.
func Acquire(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create work directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, LockFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file %s: %w", path, err)
	}
	if err := lockFile(f); err != nil {
		f.Close()
		return nil, err
	}
	return &Lock{file: f}, nil
}

// Release drops the lock. It is safe to call on a nil Lock.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := unlockFile(l.file)
	if cerr := l.file.Close(); err == nil {
		err = cerr
	}
	l.file = nil
	return err
}

// RemoveStale deletes path and everything below it. A missing path is not an error.
func RemoveStale(path string) error {
	if path == "" || path == "/" {
		return fmt.Errorf("refusing to remove %q", path)
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}
