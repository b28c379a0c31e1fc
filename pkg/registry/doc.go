// SPDX-License-Identifier: MPL-2.0

// Package registry talks to NUR, the Neutron module registry.
//
// The registry is a static tree of JSON documents: an index (nur.json) that
// maps module names to manifest URLs, and one manifest per module describing
// its versions, per-platform prebuilt binaries and optional git sources.
// Documents are fetched over http(s) with resty or read from disk for file://
// URLs, and parsed tolerantly: a field of the wrong JSON type is treated as
// absent instead of failing the whole document.
package registry
