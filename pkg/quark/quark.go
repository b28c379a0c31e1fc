// SPDX-License-Identifier: MPL-2.0

package quark

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/neutron-modules/box/pkg/types"
)

const (
	// FileName is the project manifest in a project root.
	FileName = ".quark"
	// Extension is shared by every project manifest Find discovers.
	Extension = ".quark"
	// DependenciesSection is the only section Box interprets.
	DependenciesSection = "dependencies"
)

type (
	// Dependency is one name=version entry of the [dependencies] section.
	Dependency struct {
		Name    string
		Version string
		// Line is the 1-based line number in the source file.
		Line int
	}

	// Manifest is the parsed view of a .quark file.
	Manifest struct {
		// Sections lists section names in file order, duplicates included.
		Sections     []string
		Dependencies []Dependency
	}
)

// Wanted returns the version to install. "*" and an empty value select the
// latest version.
func (d Dependency) Wanted() types.Version {
	v := types.Version(d.Version)
	if v.IsLatest() {
		return types.LatestVersion
	}
	return v
}

// Spec returns the dependency as an install request.
func (d Dependency) Spec() types.ModuleSpec {
	return types.ModuleSpec{Name: types.ModuleName(d.Name), Version: d.Wanted()}
}

// Dependency looks up a dependency by name.
func (m Manifest) Dependency(name string) (Dependency, bool) {
	for _, d := range m.Dependencies {
		if d.Name == name {
			return d, true
		}
	}
	return Dependency{}, false
}

// HasSection reports whether the manifest declares section name.
func (m Manifest) HasSection(name string) bool {
	for _, s := range m.Sections {
		if s == name {
			return true
		}
	}
	return false
}

// Parse reads a .quark document. Entries without '=' or with an empty key
// are ignored.
func Parse(r io.Reader) (Manifest, error) {
	var (
		m      Manifest
		inDeps bool
		lineNo int
	)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lineNo++
		trimmed := strings.TrimSpace(sc.Text())

		switch {
		case trimmed == "" || strings.HasPrefix(trimmed, "#"):
			continue
		case isSectionHeader(trimmed):
			m.Sections = append(m.Sections, sectionName(trimmed))
			inDeps = isDependenciesHeader(trimmed)
			continue
		case !inDeps:
			continue
		}

		key, value, ok := splitEntry(trimmed)
		if !ok {
			continue
		}
		m.Dependencies = append(m.Dependencies, Dependency{Name: key, Version: value, Line: lineNo})
	}
	if err := sc.Err(); err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	return m, nil
}

// ParseFile parses the manifest at path.
func ParseFile(path string) (Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Manifest{}, err
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func isSectionHeader(trimmed string) bool {
	return strings.HasPrefix(trimmed, "[")
}

func isDependenciesHeader(trimmed string) bool {
	return sectionName(trimmed) == DependenciesSection
}

// sectionName extracts the name from "[name]". An unterminated header keeps
// everything after the bracket.
func sectionName(trimmed string) string {
	name := strings.TrimPrefix(trimmed, "[")
	if i := strings.IndexByte(name, ']'); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

// splitEntry splits key=value, trimming whitespace on both sides and one pair
// of surrounding double quotes on each.
func splitEntry(trimmed string) (key, value string, ok bool) {
	k, v, found := strings.Cut(trimmed, "=")
	if !found {
		return "", "", false
	}
	key = unquote(strings.TrimSpace(k))
	if key == "" {
		return "", "", false
	}
	return key, unquote(strings.TrimSpace(v)), true
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
