// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
)

const (
	// Linux is any GNU/Linux host.
	Linux Platform = "Linux"
	// Windows is any Windows host, including MSYS2/MINGW shells.
	Windows Platform = "Windows"
	// MacOS is any Apple macOS host.
	MacOS Platform = "macOS"
	// Unknown is every other host. It behaves like Linux for file layout.
	Unknown Platform = "Unknown"
)

// ErrInvalidPlatform is the sentinel error wrapped by InvalidPlatformError.
var ErrInvalidPlatform = errors.New("invalid platform")

type (
	// Platform identifies the operating system a module is installed or built for.
	// Its String form is the human readable name written to metadata.json.
	Platform string

	// InvalidPlatformError is returned when a Platform value is outside the closed set.
	InvalidPlatformError struct {
		Value Platform
	}

	// traits is one row of the platform dispatch table.
	traits struct {
		extension string
		entryKey  string
	}
)

var (
	table = map[Platform]traits{
		Linux:   {extension: ".so", entryKey: "entry-linux"},
		Windows: {extension: ".dll", entryKey: "entry-win"},
		MacOS:   {extension: ".dylib", entryKey: "entry-mac"},
		Unknown: {extension: ".so", entryKey: "entry-linux"},
	}

	current = sync.OnceValue(func() Platform {
		return FromGOOS(runtime.GOOS)
	})
)

// Current returns the platform of the running process. It is computed once.
func Current() Platform {
	return current()
}

// FromGOOS maps a runtime.GOOS value to a Platform.
func FromGOOS(goos string) Platform {
	switch goos {
	case GOOSLinux:
		return Linux
	case GOOSWindows:
		return Windows
	case GOOSDarwin:
		return MacOS
	default:
		return Unknown
	}
}

// All returns every member of the closed platform set.
func All() []Platform {
	return []Platform{Linux, Windows, MacOS, Unknown}
}

// Error implements the error interface.
func (e *InvalidPlatformError) Error() string {
	return fmt.Sprintf("invalid platform %q (must be one of Linux, Windows, macOS, Unknown)", string(e.Value))
}

// Unwrap returns ErrInvalidPlatform so callers can use errors.Is for programmatic detection.
func (e *InvalidPlatformError) Unwrap() error { return ErrInvalidPlatform }

// Validate returns an error if the Platform is not a member of the closed set.
func (p Platform) Validate() error {
	if _, ok := table[p]; !ok {
		return &InvalidPlatformError{Value: p}
	}
	return nil
}

// String returns the human readable OS name.
func (p Platform) String() string { return string(p) }

// LibraryExtension returns the shared library file extension, including the dot.
func (p Platform) LibraryExtension() string {
	return p.traits().extension
}

// EntryKey returns the manifest field that carries the prebuilt binary URL.
func (p Platform) EntryKey() string {
	return p.traits().entryKey
}

// LibraryFileName returns the shared library file name for a module.
func (p Platform) LibraryFileName(module string) string {
	return module + p.LibraryExtension()
}

// IsLinux reports whether p is Linux.
func (p Platform) IsLinux() bool { return p == Linux }

// IsWindows reports whether p is Windows.
func (p Platform) IsWindows() bool { return p == Windows }

// IsMacOS reports whether p is macOS.
func (p Platform) IsMacOS() bool { return p == MacOS }

// IsPOSIX reports whether file modes and rpath linking apply.
func (p Platform) IsPOSIX() bool { return p != Windows }

func (p Platform) traits() traits {
	if t, ok := table[p]; ok {
		return t
	}
	return table[Unknown]
}
