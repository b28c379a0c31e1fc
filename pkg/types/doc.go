// SPDX-License-Identifier: MPL-2.0

// Package types defines the small value types shared by the registry, the
// installer and the CLI: module names, version strings, "name@version" specs
// and process exit codes. Each type validates itself and reports failures as
// typed errors that wrap a package sentinel.
package types
