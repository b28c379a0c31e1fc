// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"runtime"
	"testing"
)

func TestPlatformTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		platform  Platform
		extension string
		entryKey  string
		name      string
	}{
		{Linux, ".so", "entry-linux", "Linux"},
		{Windows, ".dll", "entry-win", "Windows"},
		{MacOS, ".dylib", "entry-mac", "macOS"},
		{Unknown, ".so", "entry-linux", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.platform.LibraryExtension(); got != tt.extension {
				t.Errorf("LibraryExtension() = %q, want %q", got, tt.extension)
			}
			if got := tt.platform.EntryKey(); got != tt.entryKey {
				t.Errorf("EntryKey() = %q, want %q", got, tt.entryKey)
			}
			if got := tt.platform.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
			if err := tt.platform.Validate(); err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestLibraryExtensionIsClosedSet(t *testing.T) {
	t.Parallel()

	allowed := map[string]bool{".so": true, ".dll": true, ".dylib": true}
	for _, p := range append(All(), Platform("Plan9"), Platform("")) {
		if ext := p.LibraryExtension(); !allowed[ext] {
			t.Errorf("%q.LibraryExtension() = %q, not in {.so, .dll, .dylib}", p, ext)
		}
	}
}

func TestFromGOOS(t *testing.T) {
	t.Parallel()

	tests := map[string]Platform{
		"linux":   Linux,
		"windows": Windows,
		"darwin":  MacOS,
		"freebsd": Unknown,
		"":        Unknown,
	}
	for goos, want := range tests {
		if got := FromGOOS(goos); got != want {
			t.Errorf("FromGOOS(%q) = %q, want %q", goos, got, want)
		}
	}
}

func TestCurrentMatchesRuntime(t *testing.T) {
	t.Parallel()

	if got, want := Current(), FromGOOS(runtime.GOOS); got != want {
		t.Errorf("Current() = %q, want %q", got, want)
	}
}

func TestPredicates(t *testing.T) {
	t.Parallel()

	if !Linux.IsLinux() || Linux.IsWindows() || Linux.IsMacOS() {
		t.Error("Linux predicates are wrong")
	}
	if !Windows.IsWindows() || Windows.IsPOSIX() {
		t.Error("Windows predicates are wrong")
	}
	if !MacOS.IsMacOS() || !MacOS.IsPOSIX() {
		t.Error("macOS predicates are wrong")
	}
	if Unknown.IsLinux() || Unknown.IsWindows() || Unknown.IsMacOS() {
		t.Error("Unknown must not match any named platform")
	}
}

func TestValidateRejectsOutsideValues(t *testing.T) {
	t.Parallel()

	err := Platform("BeOS").Validate()
	if !errors.Is(err, ErrInvalidPlatform) {
		t.Fatalf("Validate() = %v, want ErrInvalidPlatform", err)
	}
	var pe *InvalidPlatformError
	if !errors.As(err, &pe) || pe.Value != "BeOS" {
		t.Errorf("errors.As() did not expose the invalid value, got %+v", pe)
	}
}

func TestLibraryFileName(t *testing.T) {
	t.Parallel()

	if got := Windows.LibraryFileName("base64"); got != "base64.dll" {
		t.Errorf("LibraryFileName() = %q, want %q", got, "base64.dll")
	}
}
