// SPDX-License-Identifier: MPL-2.0

package quark

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// Find returns the project manifests directly inside dir, sorted. The plain
// dotfile .quark matches as well as name.quark.
func Find(dir string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), "*"+Extension, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("search %s for %s files: %w", dir, Extension, err)
	}
	slices.Sort(matches)

	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		paths = append(paths, filepath.Join(dir, filepath.FromSlash(m)))
	}
	return paths, nil
}

// Dependencies parses every manifest in paths and concatenates their
// dependencies in order.
func Dependencies(paths []string) ([]Dependency, error) {
	var deps []Dependency
	for _, p := range paths {
		m, err := ParseFile(p)
		if err != nil {
			return nil, err
		}
		deps = append(deps, m.Dependencies...)
	}
	return deps, nil
}
