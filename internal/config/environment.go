// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Environment is the snapshot of process variables Box reacts to.
type Environment struct {
	// NeutronHome overrides runtime discovery for builds.
	NeutronHome string `envconfig:"NEUTRON_HOME"`
	// MSYSTEM is set by MSYS2 shells and selects g++ on Windows.
	MSYSTEM     string `envconfig:"MSYSTEM"`
	Home        string `envconfig:"HOME"`
	UserProfile string `envconfig:"USERPROFILE"`
	Path        string `envconfig:"PATH"`
}

// LoadEnvironment reads the Environment from the process.
func LoadEnvironment() (Environment, error) {
	var env Environment
	if err := envconfig.Process("", &env); err != nil {
		return Environment{}, fmt.Errorf("read environment: %w", err)
	}
	return env, nil
}

// HomeDir returns HOME, falling back to USERPROFILE on Windows shells that
// do not set it.
func (e Environment) HomeDir() string {
	if e.Home != "" {
		return e.Home
	}
	return e.UserProfile
}
