// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"errors"
	"reflect"
	"slices"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/neutron-modules/box/pkg/platform"
)

func TestParseManifestIsTolerant(t *testing.T) {
	t.Parallel()

	doc := `{
		"name": "weird",
		"author": 12,
		"license": null,
		"latest": "2.0",
		"homepage": "ignored",
		"versions": {
			"2.0": {
				"description": ["not", "a", "string"],
				"entry-linux": "https://example.invalid/weird.so",
				"git": "not-an-object",
				"extra": {"nested": true}
			},
			"1.0": "not-an-object",
			"0.9": {"git": {"url": "https://example.invalid/weird.git"}}
		}
	}`

	m, err := ParseManifest([]byte(doc))
	if err != nil {
		t.Fatalf("ParseManifest() error: %v", err)
	}
	if m.Name != "weird" || m.Author != "" || m.License != "" || m.Latest != "2.0" {
		t.Errorf("top-level fields = %+v", m)
	}
	if _, ok := m.Versions["1.0"]; ok {
		t.Error("non-object version entry should be skipped")
	}
	v := m.Versions["2.0"]
	if v.Description != "" || v.EntryLinux != "https://example.invalid/weird.so" || v.Git.HasSource() {
		t.Errorf("version 2.0 = %+v", v)
	}
	if got := m.Versions["0.9"].Git; got.URL != "https://example.invalid/weird.git" || got.Ref != "" {
		t.Errorf("version 0.9 git = %+v", got)
	}
}

func TestParseMalformedDocuments(t *testing.T) {
	t.Parallel()

	for _, doc := range []string{"", "null", "[]", "{", `"string"`, "<html></html>"} {
		if _, err := ParseManifest([]byte(doc)); !errors.Is(err, ErrMalformedDocument) {
			t.Errorf("ParseManifest(%q) error = %v, want ErrMalformedDocument", doc, err)
		}
		idx, err := ParseIndex([]byte(doc), "https://r")
		if !errors.Is(err, ErrMalformedDocument) {
			t.Errorf("ParseIndex(%q) error = %v, want ErrMalformedDocument", doc, err)
		}
		if len(idx) != 0 {
			t.Errorf("ParseIndex(%q) returned entries on failure", doc)
		}
	}

	if _, err := ParseIndex([]byte(`{"version": 1}`), "https://r"); !errors.Is(err, ErrMalformedDocument) {
		t.Errorf("ParseIndex(no modules) error = %v, want ErrMalformedDocument", err)
	}
}

func TestParseIndex(t *testing.T) {
	t.Parallel()

	idx, err := ParseIndex([]byte(`{"version": "1.0", "modules": {
		"base64": "./modules/base64.json",
		"remote": "https://mirror.invalid/remote.json",
		"dotless": "modules/dotless.json"
	}}`), "https://r")
	if err != nil {
		t.Fatalf("ParseIndex() error: %v", err)
	}

	want := ModuleIndex{
		"base64":  "https://r/modules/base64.json",
		"remote":  "https://mirror.invalid/remote.json",
		"dotless": "modules/dotless.json",
	}
	if !reflect.DeepEqual(idx, want) {
		t.Errorf("ParseIndex() = %v, want %v", idx, want)
	}
}

func TestDependenciesAcceptBothKeys(t *testing.T) {
	t.Parallel()

	m, err := ParseManifest([]byte(`{"versions": {
		"1": {"deps": {"a": "1.0"}},
		"2": {"dependencies": {"b": "2.0", "c": 3}}
	}}`))
	if err != nil {
		t.Fatalf("ParseManifest() error: %v", err)
	}
	if got := m.Versions["1"].Dependencies; !reflect.DeepEqual(got, map[string]string{"a": "1.0"}) {
		t.Errorf("deps = %v", got)
	}
	if got := m.Versions["2"].Dependencies; !reflect.DeepEqual(got, map[string]string{"b": "2.0", "c": ""}) {
		t.Errorf("dependencies = %v", got)
	}
}

func TestVersionEntryPerPlatform(t *testing.T) {
	t.Parallel()

	v := VersionMetadata{EntryLinux: "l", EntryWin: "w", EntryMac: "m"}
	tests := map[platform.Platform]string{
		platform.Linux:   "l",
		platform.Windows: "w",
		platform.MacOS:   "m",
		platform.Unknown: "l",
	}
	for p, want := range tests {
		if got := v.Entry(p); got != want {
			t.Errorf("Entry(%s) = %q, want %q", p, got, want)
		}
	}
}

func TestValidateLatest(t *testing.T) {
	t.Parallel()

	ok := ModuleMetadata{Latest: "1.0", Versions: map[string]VersionMetadata{"1.0": {}}}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	if err := (ModuleMetadata{}).Validate(); err != nil {
		t.Errorf("Validate() on empty latest = %v", err)
	}
	bad := ModuleMetadata{Latest: "2.0", Versions: map[string]VersionMetadata{"1.0": {}}}
	if err := bad.Validate(); !errors.Is(err, ErrLatestNotInVersions) {
		t.Errorf("Validate() = %v, want ErrLatestNotInVersions", err)
	}
}

func TestSortedVersions(t *testing.T) {
	t.Parallel()

	m := ModuleMetadata{Versions: map[string]VersionMetadata{
		"1.0.0": {}, "1.10.0": {}, "1.2.0": {}, "v2.0.0": {}, "nightly": {}, "1.0.0-rc1": {}, "alpha": {},
	}}
	want := []string{"v2.0.0", "1.10.0", "1.2.0", "1.0.0", "1.0.0-rc1", "alpha", "nightly"}
	if got := m.SortedVersions(); !slices.Equal(got, want) {
		t.Errorf("SortedVersions() = %v, want %v", got, want)
	}
}

func TestResolveURLConcatenates(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		base := rapid.StringMatching(`https?://[a-z]{1,8}(/[a-z]{1,6}){0,3}`).Draw(rt, "base")
		rest := rapid.StringMatching(`[a-zA-Z0-9/._-]{0,24}`).Draw(rt, "rest")

		if got := ResolveURL(base, "."+rest); got != base+rest {
			rt.Fatalf("ResolveURL(%q, %q) = %q, want %q", base, "."+rest, got, base+rest)
		}
		if !strings.HasPrefix(rest, ".") {
			if got := ResolveURL(base, rest); got != rest {
				rt.Fatalf("ResolveURL(%q, %q) = %q, want it unchanged", base, rest, got)
			}
		}
	})
}

func TestManifestRoundTrip(t *testing.T) {
	t.Parallel()

	field := rapid.StringMatching(`[a-zA-Z0-9 .:/_@-]{0,16}`)
	gen := rapid.Custom(func(rt *rapid.T) ModuleMetadata {
		version := rapid.Custom(func(rt *rapid.T) VersionMetadata {
			return VersionMetadata{
				Description: field.Draw(rt, "description"),
				EntryLinux:  field.Draw(rt, "entry-linux"),
				EntryWin:    field.Draw(rt, "entry-win"),
				EntryMac:    field.Draw(rt, "entry-mac"),
				Git:         GitRef{URL: field.Draw(rt, "git.url"), Ref: field.Draw(rt, "git.ref")},
				Dependencies: rapid.MapOfN(
					rapid.StringMatching(`[a-z][a-z0-9]{0,7}`), field, 0, 3,
				).Draw(rt, "deps"),
			}
		})
		return ModuleMetadata{
			Name:        field.Draw(rt, "name"),
			Description: field.Draw(rt, "description"),
			Author:      field.Draw(rt, "author"),
			License:     field.Draw(rt, "license"),
			Repository:  field.Draw(rt, "repository"),
			Latest:      field.Draw(rt, "latest"),
			Versions:    rapid.MapOfN(field, version, 0, 4).Draw(rt, "versions"),
		}
	})

	rapid.Check(t, func(rt *rapid.T) {
		m := gen.Draw(rt, "manifest")

		data, err := EncodeManifest(m)
		if err != nil {
			rt.Fatalf("EncodeManifest() error: %v", err)
		}
		back, err := ParseManifest(data)
		if err != nil {
			rt.Fatalf("ParseManifest() error: %v\n%s", err, data)
		}
		if !reflect.DeepEqual(normalize(m), normalize(back)) {
			rt.Fatalf("round trip mismatch\nwant %+v\ngot  %+v", m, back)
		}
	})
}

// normalize maps empty collections to nil so absent and empty compare equal.
func normalize(m ModuleMetadata) ModuleMetadata {
	out := m
	out.Versions = nil
	if len(m.Versions) > 0 {
		out.Versions = make(map[string]VersionMetadata, len(m.Versions))
		for k, v := range m.Versions {
			if len(v.Dependencies) == 0 {
				v.Dependencies = nil
			}
			out.Versions[k] = v
		}
	}
	return out
}
