// SPDX-License-Identifier: MPL-2.0

package quark

import (
	"os"
	"slices"
	"strings"

	"github.com/neutron-modules/box/internal/store"
)

const (
	// Unchanged means name=version was already present.
	Unchanged Change = iota
	// Added means a new entry was inserted.
	Added
	// Updated means an existing entry was rewritten.
	Updated
)

// Change reports what SetDependency did to the manifest.
type Change int

// String returns the change name.
func (c Change) String() string {
	switch c {
	case Added:
		return "added"
	case Updated:
		return "updated"
	default:
		return "unchanged"
	}
}

// SetDependency records name=version in the [dependencies] section of the
// manifest at path and writes the file back through a temporary file and
// rename. Bytes outside [dependencies] are preserved.
func SetDependency(path, name, version string) (Change, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Unchanged, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Unchanged, err
	}

	out, change := SetDependencyContent(string(data), name, version)
	if change == Unchanged {
		return Unchanged, nil
	}
	if err := store.AtomicWriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
		return Unchanged, err
	}
	return change, nil
}

// SetDependencyContent is SetDependency on an in-memory document.
//
// An existing entry for name inside [dependencies] is replaced by
// name=version. Otherwise the entry is appended to the first [dependencies]
// section, after its last non-blank line, or a new section is created at the
// end of the document.
func SetDependencyContent(content, name, version string) (string, Change) {
	entry := name + "=" + version
	nl := newlineOf(content)
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	var inDeps, inFirst, sawDeps, found, changed bool
	insertAt := -1
	for i, line := range lines {
		body, eol := splitEOL(line)
		trimmed := strings.TrimSpace(body)

		if isSectionHeader(trimmed) {
			inDeps = isDependenciesHeader(trimmed)
			inFirst = inDeps && !sawDeps
			if inFirst {
				sawDeps = true
				insertAt = i + 1
			}
			continue
		}
		if !inDeps || trimmed == "" {
			continue
		}
		if inFirst {
			insertAt = i + 1
		}
		if strings.HasPrefix(trimmed, "#") {
			continue
		}

		key, _, ok := splitEntry(trimmed)
		if !ok || key != name {
			continue
		}
		found = true
		if body != entry {
			lines[i] = entry + eol
			changed = true
		}
	}

	switch {
	case found && changed:
		return strings.Join(lines, ""), Updated
	case found:
		return content, Unchanged
	}

	terminate(lines, nl)
	if !sawDeps {
		if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) != "" {
			lines = append(lines, nl)
		}
		lines = append(lines, "["+DependenciesSection+"]"+nl, entry+nl)
		return strings.Join(lines, ""), Added
	}

	lines = slices.Insert(lines, insertAt, entry+nl)
	return strings.Join(lines, ""), Added
}

// terminate appends a line ending to the final line if it lacks one.
func terminate(lines []string, nl string) {
	if n := len(lines); n > 0 && !strings.HasSuffix(lines[n-1], "\n") {
		lines[n-1] += nl
	}
}

func splitEOL(line string) (body, eol string) {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return line[:len(line)-2], "\r\n"
	case strings.HasSuffix(line, "\n"):
		return line[:len(line)-1], "\n"
	default:
		return line, ""
	}
}

// newlineOf returns the document's line ending, "\n" unless it uses CRLF.
func newlineOf(content string) string {
	if i := strings.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
