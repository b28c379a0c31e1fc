// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/neutron-modules/box/pkg/platform"
)

// ErrInvalidModuleName is the sentinel error wrapped by InvalidModuleNameError.
var ErrInvalidModuleName = errors.New("invalid module name")

type (
	// ModuleName is the registry name of a module. It doubles as the store
	// directory name and the shared library base name, so it must be a single
	// path element that every supported platform can create.
	ModuleName string

	// InvalidModuleNameError is returned when a ModuleName cannot be used.
	InvalidModuleNameError struct {
		Value  ModuleName
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidModuleNameError) Error() string {
	return fmt.Sprintf("invalid module name %q: %s", string(e.Value), e.Reason)
}

// Unwrap returns ErrInvalidModuleName for errors.Is() compatibility.
func (e *InvalidModuleNameError) Unwrap() error { return ErrInvalidModuleName }

// String returns the string representation of the ModuleName.
func (n ModuleName) String() string { return string(n) }

// Validate returns an error if the name cannot be materialized as a store entry.
func (n ModuleName) Validate() error {
	s := string(n)
	switch {
	case strings.TrimSpace(s) == "":
		return &InvalidModuleNameError{Value: n, Reason: "must be non-empty"}
	case s == "." || s == "..":
		return &InvalidModuleNameError{Value: n, Reason: "must not be a relative path element"}
	case strings.ContainsAny(s, `/\`):
		return &InvalidModuleNameError{Value: n, Reason: "must not contain path separators"}
	case strings.Contains(s, "@"):
		return &InvalidModuleNameError{Value: n, Reason: "must not contain '@'"}
	case strings.HasPrefix(s, "."):
		return &InvalidModuleNameError{Value: n, Reason: "must not start with '.'"}
	case strings.IndexFunc(s, unicode.IsControl) >= 0:
		return &InvalidModuleNameError{Value: n, Reason: "must not contain control characters"}
	case platform.IsWindowsReservedName(s):
		return &InvalidModuleNameError{Value: n, Reason: "is a reserved device name on Windows"}
	}
	return nil
}

// BaseModuleName strips any directory prefix from a path-like module argument,
// accepting both '/' and '\' separators.
func BaseModuleName(arg string) ModuleName {
	if i := strings.LastIndexAny(arg, `/\`); i >= 0 {
		arg = arg[i+1:]
	}
	return ModuleName(arg)
}
