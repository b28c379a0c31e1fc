// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for box.
//
// This package implements the Cobra command hierarchy for the box CLI: the
// installation verbs (install, uninstall, update, list), the registry queries
// (search, info), native builds and the config command group. Every handler
// receives an App and builds its services from configuration on demand.
package cmd
