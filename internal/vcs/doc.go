// SPDX-License-Identifier: MPL-2.0

// Package vcs clones module source repositories and checks out the revision
// a manifest pins. It uses go-git, so no git executable is needed for remote
// http(s) and ssh repositories.
package vcs
