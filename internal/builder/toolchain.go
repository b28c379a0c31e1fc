// SPDX-License-Identifier: MPL-2.0

package builder

import (
	"path/filepath"
	"strings"

	"github.com/neutron-modules/box/pkg/platform"
)

const (
	// GCC covers g++ and clang++, which share a command-line dialect.
	GCC Family = iota
	// MSVC is cl.exe.
	MSVC
)

type (
	// Family is a compiler command-line dialect.
	Family int

	// Toolchain is the compiler a build invokes.
	Toolchain struct {
		Family   Family
		Compiler string
	}

	// Environment is the slice of the process environment the builder reads.
	Environment struct {
		// NeutronHome is $NEUTRON_HOME.
		NeutronHome string
		// MSYSTEM is set by MSYS2 shells (MINGW64, UCRT64, MSYS, ...).
		MSYSTEM string
		// Home is $HOME or %USERPROFILE%.
		Home string
	}
)

// String returns "gcc" or "msvc".
func (f Family) String() string {
	if f == MSVC {
		return "msvc"
	}
	return "gcc"
}

// IsMSYS reports whether the process runs inside an MSYS2 or MinGW shell.
func (e Environment) IsMSYS() bool {
	return strings.Contains(e.MSYSTEM, "MINGW") || strings.Contains(e.MSYSTEM, "MSYS")
}

// DetectToolchain selects the compiler for p. A non-empty override wins and
// its family is inferred from the executable name. Otherwise Windows uses g++
// under MSYS2 and cl elsewhere, and POSIX platforms prefer clang++ when it is
// on PATH.
func DetectToolchain(p platform.Platform, env Environment, lookPath func(string) (string, error), override string) Toolchain {
	if override != "" {
		return Toolchain{Family: familyOf(override), Compiler: override}
	}
	if p.IsWindows() {
		if env.IsMSYS() {
			return Toolchain{Family: GCC, Compiler: "g++"}
		}
		return Toolchain{Family: MSVC, Compiler: "cl"}
	}
	if _, err := lookPath("clang++"); err == nil {
		return Toolchain{Family: GCC, Compiler: "clang++"}
	}
	return Toolchain{Family: GCC, Compiler: "g++"}
}

func familyOf(compiler string) Family {
	base := strings.ToLower(filepath.Base(strings.ReplaceAll(compiler, `\`, "/")))
	if strings.TrimSuffix(base, ".exe") == "cl" {
		return MSVC
	}
	return GCC
}
