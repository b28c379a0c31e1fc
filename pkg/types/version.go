// SPDX-License-Identifier: MPL-2.0

package types

import "strings"

// LatestVersion is the token that selects a manifest's "latest" version.
const LatestVersion Version = "latest"

// Version is an exact version string as it appears in a module manifest.
// Versions are compared only for equality; there is no range solving.
type Version string

// String returns the string representation of the Version.
func (v Version) String() string { return string(v) }

// IsLatest reports whether the version defers to the manifest's "latest" field.
// An empty version, "*" and "latest" all do.
func (v Version) IsLatest() bool {
	switch strings.TrimSpace(string(v)) {
	case "", "*", string(LatestVersion):
		return true
	default:
		return false
	}
}
