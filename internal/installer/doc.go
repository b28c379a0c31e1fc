// SPDX-License-Identifier: MPL-2.0

// Package installer resolves module requests against the registry and
// materializes them in a store.
//
// A release that names a git repository is cloned into a scratch directory
// inside the module directory, checked out at its ref and built with the
// native builder. Otherwise the prebuilt library for the current platform is
// downloaded. Either way the module directory ends up holding the library and
// a metadata.json. Local installs also record the dependency in the project's
// .quark manifest when one exists.
package installer
