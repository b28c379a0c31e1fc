// SPDX-License-Identifier: MPL-2.0

//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"golang.org/x/sys/unix"
)

// lockFileName lives at the root of each store. The kernel drops the flock
// when the descriptor closes, so an orphaned file is harmless.
const lockFileName = ".lock"

// Lock is an exclusive advisory lock over one store. It serializes concurrent
// box processes that install into or remove from the same store.
type Lock struct {
	file *os.File
}

// Lock creates the store directory if needed and blocks until the store lock
// is held.
func (s *Store) Lock(scope Scope) (*Lock, error) {
	dir := s.Dir(scope)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	lockPath := filepath.Join(dir, lockFileName)
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", lockPath, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("flock %s: %w", lockPath, err)
	}

	return &Lock{file: f}, nil
}

// Release unlocks and closes the lock file. Calling it twice is a no-op.
func (l *Lock) Release() {
	if l == nil || l.file == nil {
		return
	}
	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		log.Debug("flock unlock failed", "error", err)
	}
	if err := l.file.Close(); err != nil {
		log.Debug("lock file close failed", "error", err)
	}
	l.file = nil
}
