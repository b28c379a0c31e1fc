// SPDX-License-Identifier: MPL-2.0

// Package quark reads and edits .quark project manifests.
//
// A .quark file is line oriented. Lines whose trimmed content starts with '#'
// are comments, lines whose trimmed content starts with '[' open a section,
// and everything else is a key=value pair. Only the [dependencies] section is
// interpreted; every other byte of the file is carried through edits as is.
package quark
