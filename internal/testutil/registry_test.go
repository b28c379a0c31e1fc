// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"context"
	"testing"

	"github.com/neutron-modules/box/pkg/registry"
)

func TestRegistryFixtureServesManifests(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(t)
	url := reg.AddArtifact("math.so", []byte("ELF"))
	reg.AddModule(registry.ModuleMetadata{
		Name:    "math",
		Latest:  "1.0.0",
		License: "MIT",
		Versions: map[string]registry.VersionMetadata{
			"1.0.0": {Description: "first", EntryLinux: url},
		},
	})

	client := reg.Client()
	m, err := client.FetchModuleMetadata(context.Background(), "math")
	if err != nil {
		t.Fatalf("FetchModuleMetadata() error: %v", err)
	}
	if m.Latest != "1.0.0" || m.License != "MIT" || m.Versions["1.0.0"].EntryLinux != url {
		t.Errorf("metadata = %+v", m)
	}
	if got := client.ModuleURL("math"); got != reg.BaseURL+"/modules/math.json" {
		t.Errorf("ModuleURL() = %q", got)
	}

	data, err := client.Download(context.Background(), url)
	if err != nil || string(data) != "ELF" {
		t.Errorf("Download() = %q, %v", data, err)
	}
}
