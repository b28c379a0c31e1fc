// SPDX-License-Identifier: MPL-2.0

package platform

import "testing"

func TestIsWindowsReservedName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"CON lowercase", "con", true},
		{"CON uppercase", "CON", true},
		{"AUX mixed case", "Aux", true},
		{"NUL", "nul", true},
		{"COM1", "com1", true},
		{"LPT9", "lpt9", true},
		{"reserved with extension", "nul.so", true},
		{"reserved with double extension", "com1.tar.gz", true},
		{"reserved with trailing space", "prn .dll", true},

		{"module name", "base64", false},
		{"module with extension", "crypto64.so", false},
		{"contains reserved prefix", "console", false},
		{"COM10", "com10", false},
		{"LPT0", "lpt0", false},
		{"empty string", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IsWindowsReservedName(tt.input); got != tt.expected {
				t.Errorf("IsWindowsReservedName(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestWindowsReservedNamesComplete(t *testing.T) {
	t.Parallel()

	if got := len(windowsReservedNames); got != 22 {
		t.Errorf("windowsReservedNames has %d entries, want 22", got)
	}
}
