// SPDX-License-Identifier: MPL-2.0

// Package platform models the host operating system as a closed set of values.
//
// Every OS-conditional behavior in Box (shared library extension, the manifest
// entry field holding a prebuilt binary URL, toolchain selection) is routed
// through a Platform value instead of build tags, so the behavior of every
// platform can be exercised from any host in tests.
package platform
