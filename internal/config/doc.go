// SPDX-License-Identifier: MPL-2.0

// Package config handles Box configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/box/config.cue (or the XDG equivalent on Linux,
// ~/Library/Application Support/box/config.cue on macOS, %APPDATA%\box\config.cue
// on Windows), from ./config.cue, or from an explicit path. Values are validated against
// the embedded #Config schema (config_schema.cue) and may be overridden with BOX_*
// environment variables such as BOX_REGISTRY_URL.
//
// The process environment Box depends on (NEUTRON_HOME, MSYSTEM, HOME, USERPROFILE
// and PATH) is captured once into an Environment so the builder and the store never
// read os.Getenv themselves.
package config
