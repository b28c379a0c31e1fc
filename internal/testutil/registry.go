// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/neutron-modules/box/pkg/registry"
)

// Registry is a module registry laid out on disk the way NUR is published:
//
//	<dir>/nur.json
//	<dir>/modules/<name>.json
//	<dir>/artifacts/...
type Registry struct {
	t       testing.TB
	Dir     string
	BaseURL string
	index   map[string]string
}

// NewRegistry creates an empty registry in a temporary directory and adds
// the given modules.
func NewRegistry(t testing.TB, modules ...registry.ModuleMetadata) *Registry {
	t.Helper()
	dir := t.TempDir()
	r := &Registry{t: t, Dir: dir, BaseURL: registry.FileURL(dir), index: map[string]string{}}
	r.writeIndex()
	for _, m := range modules {
		r.AddModule(m)
	}
	return r
}

// AddModule writes the manifest of m and lists it in the index with a
// relative URL.
func (r *Registry) AddModule(m registry.ModuleMetadata) {
	r.t.Helper()
	data, err := registry.EncodeManifest(m)
	if err != nil {
		r.t.Fatalf("encode manifest %s: %v", m.Name, err)
	}
	MustWriteFile(r.t, filepath.Join(r.Dir, "modules", m.Name+".json"), data, 0o644)
	r.index[m.Name] = "./modules/" + m.Name + ".json"
	r.writeIndex()
}

// AddArtifact stores a downloadable file and returns its file:// URL.
func (r *Registry) AddArtifact(name string, data []byte) string {
	r.t.Helper()
	path := filepath.Join(r.Dir, "artifacts", name)
	MustWriteFile(r.t, path, data, 0o644)
	return registry.FileURL(path)
}

// Client returns a registry client rooted at the fixture.
func (r *Registry) Client(opts ...registry.ClientOption) *registry.Client {
	return registry.NewClient(append([]registry.ClientOption{registry.WithBaseURL(r.BaseURL)}, opts...)...)
}

func (r *Registry) writeIndex() {
	r.t.Helper()
	data, err := json.MarshalIndent(map[string]any{"modules": r.index}, "", "  ")
	if err != nil {
		r.t.Fatalf("encode index: %v", err)
	}
	MustWriteFile(r.t, filepath.Join(r.Dir, registry.IndexFileName), data, 0o644)
}
