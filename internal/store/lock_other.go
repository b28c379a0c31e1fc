// SPDX-License-Identifier: MPL-2.0

//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package store

import (
	"fmt"
	"os"
)

// Lock is the stub used where flock is unavailable. Concurrent box processes
// are not serialized on these platforms.
type Lock struct{}

// Lock creates the store directory and returns a no-op lock.
func (s *Store) Lock(scope Scope) (*Lock, error) {
	dir := s.Dir(scope)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return &Lock{}, nil
}

// Release is a no-op.
func (l *Lock) Release() {}
