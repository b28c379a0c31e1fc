// SPDX-License-Identifier: MPL-2.0

package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

const (
	// Local is the per-project store under the working directory.
	Local Scope = iota
	// Global is the per-user store under the home directory.
	Global
)

const (
	// tempPrefix names scratch directories inside a module directory.
	tempPrefix = ".tmp"
	// maxTempAttempts bounds the .tmpN search.
	maxTempAttempts = 10
	// stashSuffix marks a module directory set aside during an update.
	stashSuffix = ".old"
)

var (
	// ErrNotInstalled is returned when a module has no store directory.
	ErrNotInstalled = errors.New("module not installed")

	// ErrTempDirExhausted is returned when .tmp0 through .tmp9 all exist.
	ErrTempDirExhausted = errors.New("failed to create unique temp directory")
)

type (
	// Scope selects one of the two stores.
	Scope int

	// Store resolves module locations in the global and local stores.
	Store struct {
		globalDir string
		localDir  string
	}
)

// String returns "global" or "local".
func (s Scope) String() string {
	if s == Global {
		return "global"
	}
	return "local"
}

// DefaultGlobalDir returns <home>/.box/modules.
func DefaultGlobalDir(home string) string {
	return filepath.Join(home, ".box", "modules")
}

// DefaultLocalDir returns the project store relative to the working directory.
func DefaultLocalDir() string {
	return filepath.Join(".", ".box", "modules")
}

// New creates a Store rooted at the given directories. Empty arguments fall
// back to the defaults, with home used for the global store.
func New(home, globalDir, localDir string) *Store {
	if globalDir == "" {
		globalDir = DefaultGlobalDir(home)
	}
	if localDir == "" {
		localDir = DefaultLocalDir()
	}
	return &Store{globalDir: globalDir, localDir: localDir}
}

// Dir returns the root directory of a store.
func (s *Store) Dir(scope Scope) string {
	if scope == Global {
		return s.globalDir
	}
	return s.localDir
}

// ModuleDir returns <store>/<name>.
func (s *Store) ModuleDir(scope Scope, name string) string {
	return filepath.Join(s.Dir(scope), name)
}

// IsInstalled reports whether <store>/<name> exists. A directory left behind
// by a failed build counts as installed; remove and install again to repair it.
func (s *Store) IsInstalled(scope Scope, name string) bool {
	info, err := os.Stat(s.ModuleDir(scope, name))
	return err == nil && info.IsDir()
}

// List returns the names of installed modules, sorted. Hidden entries and
// plain files are skipped. A store that does not exist yet is empty.
func (s *Store) List(scope Scope) ([]string, error) {
	entries, err := os.ReadDir(s.Dir(scope))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s store %s: %w", scope, s.Dir(scope), err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names, nil
}

// Ensure creates <store>/<name> and returns its path.
func (s *Store) Ensure(scope Scope, name string) (string, error) {
	dir := s.ModuleDir(scope, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return dir, nil
}

// Remove deletes <store>/<name> recursively.
func (s *Store) Remove(scope Scope, name string) error {
	if !s.IsInstalled(scope, name) {
		return fmt.Errorf("%w: %s", ErrNotInstalled, name)
	}
	dir := s.ModuleDir(scope, name)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", dir, err)
	}
	return nil
}

// Stash moves <store>/<name> aside to the hidden <store>/.<name>.old so a
// replacement can be installed, and returns the stash path. A stash left by
// an interrupted update is discarded first.
func (s *Store) Stash(scope Scope, name string) (string, error) {
	if !s.IsInstalled(scope, name) {
		return "", fmt.Errorf("%w: %s", ErrNotInstalled, name)
	}
	stash := s.stashDir(scope, name)
	if err := os.RemoveAll(stash); err != nil {
		return "", fmt.Errorf("failed to remove stale stash %s: %w", stash, err)
	}
	if err := os.Rename(s.ModuleDir(scope, name), stash); err != nil {
		return "", fmt.Errorf("failed to stash %s: %w", name, err)
	}
	return stash, nil
}

// Restore puts a stash back as <store>/<name>, dropping whatever a failed
// replacement left there.
func (s *Store) Restore(scope Scope, name, stash string) error {
	dir := s.ModuleDir(scope, name)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", dir, err)
	}
	if err := os.Rename(stash, dir); err != nil {
		return fmt.Errorf("failed to restore %s: %w", name, err)
	}
	return nil
}

func (s *Store) stashDir(scope Scope, name string) string {
	return filepath.Join(s.Dir(scope), "."+name+stashSuffix)
}

// NewTempDir creates <parent>/.tmpN for the smallest N in [0, 10) that does
// not exist yet. The caller removes it.
func NewTempDir(parent string) (string, error) {
	for n := range maxTempAttempts {
		dir := filepath.Join(parent, tempPrefix+strconv.Itoa(n))
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			return dir, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("failed to create temp directory %s: %w", dir, err)
		}
	}
	return "", fmt.Errorf("%w in %s", ErrTempDirExhausted, parent)
}

// TempDirs returns the .tmpN directories currently present under parent.
func TempDirs(parent string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(parent, tempPrefix+"*"))
	if err != nil {
		return nil, err
	}
	return matches, nil
}
