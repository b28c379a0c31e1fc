// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultRegistryURL is the public NUR registry.
	DefaultRegistryURL = "https://raw.githubusercontent.com/neutron-modules/nur/refs/heads/main"
	// DefaultUserAgent is sent with every registry request.
	DefaultUserAgent = "Box/1.0"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidDuration is returned when a Duration does not parse.
	ErrInvalidDuration = errors.New("invalid duration")
	// ErrInvalidRegistryURL is returned when the registry URL is empty or whitespace-only.
	ErrInvalidRegistryURL = errors.New("invalid registry url")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// Duration is a Go duration string such as "30s". Kept as text so the
	// config round-trips through CUE and YAML unchanged.
	Duration string

	// InvalidDurationError is returned when a Duration does not parse.
	InvalidDurationError struct {
		Value Duration
	}

	// InvalidConfigError collects field-level validation errors.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		Registry RegistryConfig `json:"registry" yaml:"registry" mapstructure:"registry"`
		Store    StoreConfig    `json:"store" yaml:"store" mapstructure:"store"`
		Builder  BuilderConfig  `json:"builder" yaml:"builder" mapstructure:"builder"`
		UI       UIConfig       `json:"ui" yaml:"ui" mapstructure:"ui"`
	}

	// RegistryConfig selects and tunes the NUR registry client.
	RegistryConfig struct {
		URL       string   `json:"url" yaml:"url" mapstructure:"url"`
		UserAgent string   `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
		Timeout   Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	}

	// StoreConfig relocates the module stores.
	StoreConfig struct {
		// GlobalDir defaults to $HOME/.box/modules when empty.
		GlobalDir string `json:"global_dir" yaml:"global_dir" mapstructure:"global_dir"`
		LocalDir  string `json:"local_dir" yaml:"local_dir" mapstructure:"local_dir"`
	}

	// BuilderConfig tunes native builds.
	BuilderConfig struct {
		Compiler    string `json:"compiler" yaml:"compiler" mapstructure:"compiler"`
		ExtraFlags  string `json:"extra_flags" yaml:"extra_flags" mapstructure:"extra_flags"`
		NeutronHome string `json:"neutron_home" yaml:"neutron_home" mapstructure:"neutron_home"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" yaml:"color_scheme" mapstructure:"color_scheme"`
		Verbose     bool        `json:"verbose" yaml:"verbose" mapstructure:"verbose"`
	}
)

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// GlamourStyle maps the scheme to a glamour style name.
func (cs ColorScheme) GlamourStyle() string {
	switch cs {
	case ColorSchemeDark, ColorSchemeLight:
		return string(cs)
	default:
		return "auto"
	}
}

func (e *InvalidDurationError) Error() string {
	return fmt.Sprintf("invalid duration %q (examples: 30s, 1m30s)", e.Value)
}

func (e *InvalidDurationError) Unwrap() error { return ErrInvalidDuration }

// String returns the duration text.
func (d Duration) String() string { return string(d) }

// Duration parses d. The empty string is zero.
func (d Duration) Duration() (time.Duration, error) {
	if strings.TrimSpace(string(d)) == "" {
		return 0, nil
	}
	v, err := time.ParseDuration(string(d))
	if err != nil || v < 0 {
		return 0, &InvalidDurationError{Value: d}
	}
	return v, nil
}

// IsValid reports whether d parses to a non-negative duration.
func (d Duration) IsValid() (bool, []error) {
	if _, err := d.Duration(); err != nil {
		return false, []error{err}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap exposes ErrInvalidConfig and every field error to errors.Is.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// IsValid checks the constraints CUE cannot express once env overrides are
// applied.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(c.Registry.URL) == "" {
		errs = append(errs, fmt.Errorf("registry.url: %w", ErrInvalidRegistryURL))
	}
	if valid, fieldErrs := c.Registry.Timeout.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Registry: RegistryConfig{
			URL:       DefaultRegistryURL,
			UserAgent: DefaultUserAgent,
			Timeout:   "0s",
		},
		Store: StoreConfig{
			GlobalDir: "",
			LocalDir:  ".box/modules",
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}
