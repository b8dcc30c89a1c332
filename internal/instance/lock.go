// Package instance enforces that at most one motionwall daemon runs per
// host, via an advisory file lock in the runtime directory.
package instance

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/1broseidon/motionwall/internal/runtimepath"
)

// Lock is a held single-instance lock. Release it exactly once at teardown;
// extra calls are no-ops.
type Lock struct {
	file    *os.File
	path    string
	release sync.Once
}

// Acquire takes the exclusive advisory lock. Failure means another daemon
// instance already holds it and is fatal at startup.
func Acquire() (*Lock, error) {
	path, err := runtimepath.LockPath()
	if err != nil {
		return nil, err
	}
	return AcquireAt(path)
}

// AcquireAt takes the lock at an explicit path.
func AcquireAt(path string) (*Lock, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file %s: %w", path, err)
	}

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		file.Close()
		return nil, fmt.Errorf("another motionwall instance is already running (lock %s held): %w", path, err)
	}

	// The pid is informational only; the flock is what enforces exclusivity.
	file.Truncate(0)
	fmt.Fprintf(file, "%d\n", os.Getpid())

	return &Lock{file: file, path: path}, nil
}

// Release unlocks and removes the lock file. Idempotent.
func (l *Lock) Release() {
	l.release.Do(func() {
		unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
		l.file.Close()
		os.Remove(l.path)
	})
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}
