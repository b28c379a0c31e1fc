// SPDX-License-Identifier: MPL-2.0

package builder

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

const shimFileName = "native_shim.cpp"

//go:embed native_shim.cpp
var embeddedShim []byte

// sourceCandidates are tried in order relative to the module source directory.
var sourceCandidates = []string{
	"native.cpp",
	filepath.Join("src", "native.cpp"),
	filepath.Join("src", "main.cpp"),
	filepath.Join("source", "native.cpp"),
	filepath.Join("lib", "native.cpp"),
}

// runtimeSentinels mark a Neutron runtime root.
var runtimeSentinels = []string{
	filepath.Join("include", "core", "neutron.h"),
	filepath.Join("include", "neutron.h"),
}

// SourceNotFoundError reports a module directory without a native entry point.
type SourceNotFoundError struct {
	Dir string
	// Tried lists the searched paths in order.
	Tried []string
	// Found lists other C++ files in Dir, as a hint.
	Found []string
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("source file not found: %s", e.Tried[0])
}

// Unwrap returns ErrSourceNotFound for errors.Is() compatibility.
func (e *SourceNotFoundError) Unwrap() error { return ErrSourceNotFound }

// FindSource returns the first existing source candidate under dir.
func FindSource(dir string) (string, error) {
	tried := make([]string, 0, len(sourceCandidates))
	for _, rel := range sourceCandidates {
		p := filepath.Join(dir, rel)
		if isFile(p) {
			return p, nil
		}
		tried = append(tried, p)
	}

	found, _ := doublestar.Glob(os.DirFS(dir), "**/*.{cpp,cc,cxx}", doublestar.WithFilesOnly()) //nolint:errcheck // hint only
	slices.Sort(found)
	return "", &SourceNotFoundError{Dir: dir, Tried: tried, Found: found}
}

// RuntimeCandidates lists the directories searched for a Neutron runtime, in
// order.
func (b *Builder) RuntimeCandidates() []string {
	var dirs []string
	if b.env.NeutronHome != "" {
		dirs = append(dirs, b.env.NeutronHome)
	}
	if b.neutronHome != "" {
		dirs = append(dirs, b.neutronHome)
	}

	if b.platform.IsWindows() {
		dirs = append(dirs, `C:\Program Files\Neutron`, `C:\Neutron`)
		if b.env.MSYSTEM != "" {
			dirs = append(dirs, "/mingw64/neutron", "/usr/local/neutron", "/opt/neutron")
		}
	} else {
		dirs = append(dirs, "/usr/local/neutron", "/opt/neutron")
		if b.env.Home != "" {
			dirs = append(dirs, filepath.Join(b.env.Home, ".neutron"))
		}
	}

	return append(dirs, b.workDir, filepath.Join(b.workDir, ".."))
}

// FindNeutronRoot returns the first runtime candidate holding the Neutron
// headers.
func (b *Builder) FindNeutronRoot() (string, bool) {
	for _, dir := range b.RuntimeCandidates() {
		for _, sentinel := range runtimeSentinels {
			if isFile(filepath.Join(dir, sentinel)) {
				return dir, true
			}
		}
	}
	return "", false
}

// IncludeDirs returns the header search paths contributed by a runtime root.
func IncludeDirs(root string) []string {
	include := filepath.Join(root, "include")
	if core := filepath.Join(include, "core"); isDir(core) {
		return []string{core, include}
	}
	return []string{include}
}

// LibraryDir returns the runtime's library directory.
func LibraryDir(root string) string {
	return filepath.Join(root, "build")
}

// ShimCandidates lists the on-disk shim locations searched, in order.
func (b *Builder) ShimCandidates() []string {
	dirs := append(b.RuntimeCandidates(), b.workDir, filepath.Join(b.workDir, ".."))

	var paths []string
	seen := make(map[string]bool, len(dirs))
	for _, dir := range dirs {
		p := filepath.Join(dir, "nt-box", "src", shimFileName)
		if seen[p] {
			continue
		}
		seen[p] = true
		paths = append(paths, p)
	}
	return paths
}

// FindShim returns the first shim found on disk.
func (b *Builder) FindShim() (string, bool) {
	for _, p := range b.ShimCandidates() {
		if isFile(p) {
			return p, true
		}
	}
	return "", false
}

// EmbeddedShim returns the shim source compiled into box.
func EmbeddedShim() []byte {
	return slices.Clone(embeddedShim)
}

// shim returns a shim path for one build. When the embedded copy is used it
// is written to a scratch directory that cleanup removes.
func (b *Builder) shim() (path string, cleanup func(), err error) {
	if p, ok := b.FindShim(); ok {
		return p, func() {}, nil
	}

	dir, err := os.MkdirTemp("", "box-shim-")
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrShimNotFound, err)
	}
	cleanup = func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			b.logger.Warn("failed to remove shim scratch dir", "dir", dir, "err", rmErr)
		}
	}

	path = filepath.Join(dir, shimFileName)
	if err := os.WriteFile(path, embeddedShim, 0o644); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("%w: %w", ErrShimNotFound, err)
	}
	b.logger.Debug("using embedded shim", "path", path)
	return path, cleanup, nil
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

