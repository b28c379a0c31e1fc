// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedDocument is returned when a registry document is not a JSON
// object or lacks a section the caller requires.
var ErrMalformedDocument = errors.New("malformed registry document")

type (
	// jsonObject holds one decoded JSON object with its members still raw so
	// that each field can be decoded, or ignored, on its own.
	jsonObject map[string]json.RawMessage

	manifestDoc struct {
		Name        string                `json:"name,omitempty"`
		Description string                `json:"description,omitempty"`
		Author      string                `json:"author,omitempty"`
		License     string                `json:"license,omitempty"`
		Repository  string                `json:"repository,omitempty"`
		Latest      string                `json:"latest,omitempty"`
		Versions    map[string]versionDoc `json:"versions,omitempty"`
	}

	versionDoc struct {
		Description  string            `json:"description,omitempty"`
		EntryLinux   string            `json:"entry-linux,omitempty"`
		EntryWin     string            `json:"entry-win,omitempty"`
		EntryMac     string            `json:"entry-mac,omitempty"`
		Git          *gitDoc           `json:"git,omitempty"`
		Dependencies map[string]string `json:"dependencies,omitempty"`
	}

	gitDoc struct {
		URL string `json:"url,omitempty"`
		Ref string `json:"ref,omitempty"`
	}
)

// ResolveURL expands a manifest URL from the index. A leading "." is replaced
// by baseURL through plain concatenation; any other URL is returned unchanged.
func ResolveURL(baseURL, u string) string {
	if rest, ok := strings.CutPrefix(u, "."); ok {
		return baseURL + rest
	}
	return u
}

// ParseIndex decodes nur.json. Entries whose URL is not a string are skipped.
func ParseIndex(data []byte, baseURL string) (ModuleIndex, error) {
	root, err := decodeObject(data)
	if err != nil {
		return ModuleIndex{}, err
	}
	modules, ok := root.object("modules")
	if !ok {
		return ModuleIndex{}, fmt.Errorf("%w: 'modules' not found", ErrMalformedDocument)
	}

	idx := make(ModuleIndex, len(modules))
	for name := range modules {
		if u := modules.str(name); u != "" {
			idx[name] = ResolveURL(baseURL, u)
		}
	}
	return idx, nil
}

// ParseManifest decodes a module manifest. Missing or mistyped fields are left
// empty and unknown fields are ignored.
func ParseManifest(data []byte) (ModuleMetadata, error) {
	root, err := decodeObject(data)
	if err != nil {
		return ModuleMetadata{}, err
	}

	m := ModuleMetadata{
		Name:        root.str("name"),
		Description: root.str("description"),
		Author:      root.str("author"),
		License:     root.str("license"),
		Repository:  root.str("repository"),
		Latest:      root.str("latest"),
		Versions:    map[string]VersionMetadata{},
	}

	versions, _ := root.object("versions")
	for key := range versions {
		obj, ok := versions.object(key)
		if !ok {
			continue
		}
		m.Versions[key] = parseVersion(obj)
	}
	return m, nil
}

func parseVersion(obj jsonObject) VersionMetadata {
	v := VersionMetadata{
		Description: obj.str("description"),
		EntryLinux:  obj.str("entry-linux"),
		EntryWin:    obj.str("entry-win"),
		EntryMac:    obj.str("entry-mac"),
	}
	if git, ok := obj.object("git"); ok {
		v.Git = GitRef{URL: git.str("url"), Ref: git.str("ref")}
	}
	for _, key := range []string{"deps", "dependencies"} {
		deps, ok := obj.object(key)
		if !ok {
			continue
		}
		for name := range deps {
			if v.Dependencies == nil {
				v.Dependencies = map[string]string{}
			}
			v.Dependencies[name] = deps.str(name)
		}
	}
	return v
}

// EncodeManifest serializes the manifest fields that ParseManifest recovers.
func EncodeManifest(m ModuleMetadata) ([]byte, error) {
	doc := manifestDoc{
		Name:        m.Name,
		Description: m.Description,
		Author:      m.Author,
		License:     m.License,
		Repository:  m.Repository,
		Latest:      m.Latest,
	}
	if len(m.Versions) > 0 {
		doc.Versions = make(map[string]versionDoc, len(m.Versions))
		for key, v := range m.Versions {
			vd := versionDoc{
				Description:  v.Description,
				EntryLinux:   v.EntryLinux,
				EntryWin:     v.EntryWin,
				EntryMac:     v.EntryMac,
				Dependencies: v.Dependencies,
			}
			if v.Git != (GitRef{}) {
				vd.Git = &gitDoc{URL: v.Git.URL, Ref: v.Git.Ref}
			}
			doc.Versions[key] = vd
		}
	}
	return json.MarshalIndent(doc, "", "  ")
}

func decodeObject(data []byte) (jsonObject, error) {
	var obj jsonObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: not a JSON object", ErrMalformedDocument)
	}
	return obj, nil
}

// str returns the member as a string, or "" when absent or not a string.
func (o jsonObject) str(key string) string {
	raw, ok := o[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// object returns the member as a nested object when it is one.
func (o jsonObject) object(key string) (jsonObject, bool) {
	raw, ok := o[key]
	if !ok {
		return nil, false
	}
	var nested jsonObject
	if err := json.Unmarshal(raw, &nested); err != nil || nested == nil {
		return nil, false
	}
	return nested, true
}
