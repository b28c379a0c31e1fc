// SPDX-License-Identifier: MPL-2.0

// Package store owns the on-disk layout of installed modules.
//
// A store is a directory of module directories, each holding the shared
// library and a metadata.json describing it:
//
//	<store>/<name>/<name><ext>
//	<store>/<name>/metadata.json
//
// Box keeps two stores: a per-user global store under the home directory and
// a per-project local store under the working directory.
package store
