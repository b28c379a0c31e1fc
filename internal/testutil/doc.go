// SPDX-License-Identifier: MPL-2.0

// Package testutil provides test helpers that fail the test on setup errors
// instead of returning them.
//
// Common helpers include environment management (MustSetenv, MustUnsetenv,
// SetHomeDir), filesystem setup (MustChdir, MustMkdirAll, MustWriteFile) and
// an on-disk module registry (NewRegistry) served through file:// URLs.
package testutil
