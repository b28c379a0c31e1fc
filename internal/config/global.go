// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride replaces ConfigDir for tests. os.UserHomeDir ignores a
// changed HOME on some platforms.
var configDirOverride string

// Reset clears test overrides. Call from test cleanup to restore defaults.
func Reset() {
	configDirOverride = ""
}

// SetConfigDirOverride makes ConfigDir return dir.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}
