// SPDX-License-Identifier: MPL-2.0

// Package builder compiles native Neutron modules into shared libraries.
//
// A build locates the module source, the Neutron runtime headers and the
// native shim, picks a toolchain for the target platform, synthesizes the
// compiler invocation and runs it. The artifact and its metadata.json land in
// the module's output directory.
//
// The shim forwards every runtime ABI entry point to the host process at load
// time, so modules never link against an import library. When no shim is
// found on disk the copy embedded in this package is used.
package builder
