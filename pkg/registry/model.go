// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/neutron-modules/box/pkg/platform"
)

// ErrLatestNotInVersions is returned by ModuleMetadata.Validate when "latest"
// names a version the manifest does not describe.
var ErrLatestNotInVersions = errors.New("latest version is not listed in versions")

type (
	// GitRef points at the source of one module version. Ref is anything a
	// checkout accepts: branch, tag or commit. An empty URL means the version
	// has no source repository.
	GitRef struct {
		URL string
		Ref string
	}

	// VersionMetadata describes a single published version of a module.
	VersionMetadata struct {
		Description string
		EntryLinux  string
		EntryWin    string
		EntryMac    string
		Git         GitRef
		// Dependencies maps module names to exact versions.
		Dependencies map[string]string
	}

	// ModuleMetadata is the parsed manifest of one module.
	ModuleMetadata struct {
		Name        string
		Description string
		Author      string
		License     string
		Repository  string
		Latest      string
		Versions    map[string]VersionMetadata
	}

	// ModuleIndex maps module names to absolute manifest URLs.
	ModuleIndex map[string]string
)

// HasSource reports whether the version can be built from a git repository.
func (g GitRef) HasSource() bool { return g.URL != "" }

// Entry returns the prebuilt binary URL for p, or "" when none is published.
func (v VersionMetadata) Entry(p platform.Platform) string {
	switch p.EntryKey() {
	case "entry-win":
		return v.EntryWin
	case "entry-mac":
		return v.EntryMac
	default:
		return v.EntryLinux
	}
}

// Version looks up the metadata of an exact version string.
func (m ModuleMetadata) Version(version string) (VersionMetadata, bool) {
	v, ok := m.Versions[version]
	return v, ok
}

// IsEmpty reports whether nothing beyond the name was recovered from the manifest.
func (m ModuleMetadata) IsEmpty() bool {
	return m.Description == "" && m.Author == "" && m.License == "" &&
		m.Repository == "" && m.Latest == "" && len(m.Versions) == 0
}

// Validate checks the one cross-field invariant of a manifest: a non-empty
// Latest must be a key of Versions. It is enforced when the manifest is
// consumed, never while parsing.
func (m ModuleMetadata) Validate() error {
	if m.Latest == "" {
		return nil
	}
	if _, ok := m.Versions[m.Latest]; !ok {
		return fmt.Errorf("%w: %q", ErrLatestNotInVersions, m.Latest)
	}
	return nil
}

// SortedVersions returns the version keys newest first. Keys that are valid
// semantic versions (with or without a leading "v") sort by precedence and
// come before the rest, which sort lexically.
func (m ModuleMetadata) SortedVersions() []string {
	keys := make([]string, 0, len(m.Versions))
	for k := range m.Versions {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareVersionsDesc)
	return keys
}

func compareVersionsDesc(a, b string) int {
	sa, sb := canonicalSemver(a), canonicalSemver(b)
	switch {
	case sa != "" && sb != "":
		if c := semver.Compare(sb, sa); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	case sa != "":
		return -1
	case sb != "":
		return 1
	default:
		return strings.Compare(a, b)
	}
}

func canonicalSemver(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return v
}

// Names returns the index's module names in lexical order.
func (idx ModuleIndex) Names() []string {
	names := make([]string, 0, len(idx))
	for name := range idx {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
