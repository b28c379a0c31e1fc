// SPDX-License-Identifier: MPL-2.0

package types

import "strings"

// ModuleSpec is a parsed "name" or "name@version" install request.
type ModuleSpec struct {
	Name    ModuleName
	Version Version
}

// ParseModuleSpec splits s on the first '@'. Everything after it, including
// further '@' characters, is the requested version.
func ParseModuleSpec(s string) (ModuleSpec, error) {
	name, version, _ := strings.Cut(strings.TrimSpace(s), "@")
	spec := ModuleSpec{Name: ModuleName(name), Version: Version(version)}
	if err := spec.Name.Validate(); err != nil {
		return ModuleSpec{}, err
	}
	return spec, nil
}

// String renders s in "name@version" form, omitting a defaulted version.
func (s ModuleSpec) String() string {
	if s.Version.IsLatest() {
		return string(s.Name)
	}
	return string(s.Name) + "@" + string(s.Version)
}
