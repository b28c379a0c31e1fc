// SPDX-License-Identifier: MPL-2.0

package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/neutron-modules/box/pkg/platform"
)

// MetadataFileName is written next to every installed or built library.
const MetadataFileName = "metadata.json"

// Metadata is the content of metadata.json. Field order is the on-disk key order.
type Metadata struct {
	Name        string `json:"name" yaml:"name"`
	Version     string `json:"version" yaml:"version"`
	Description string `json:"description" yaml:"description"`
	Platform    string `json:"platform" yaml:"platform"`
	Library     string `json:"library" yaml:"library"`
}

// NewMetadata describes the library of module name built or downloaded for p.
func NewMetadata(name, version, description string, p platform.Platform) Metadata {
	return Metadata{
		Name:        name,
		Version:     version,
		Description: description,
		Platform:    p.String(),
		Library:     p.LibraryFileName(name),
	}
}

// DefaultDescription is the description given to locally built modules.
func DefaultDescription(name string) string {
	return name + " native module for Neutron"
}

// WriteMetadata writes dir/metadata.json through a temporary file and rename.
func WriteMetadata(dir string, m Metadata) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	data = append(data, '\n')
	return AtomicWriteFile(filepath.Join(dir, MetadataFileName), data, 0o644)
}

// ReadMetadata reads dir/metadata.json.
func ReadMetadata(dir string) (Metadata, error) {
	path := filepath.Join(dir, MetadataFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, err
	}
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return m, nil
}

// AtomicWriteFile writes data to path.tmp and renames it over path, so
// readers observe either the old or the new content.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, perm); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	// WriteFile honors umask; set the mode explicitly for executables.
	if err := os.Chmod(tmpPath, perm); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to set mode on %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath) // Best-effort cleanup
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}
