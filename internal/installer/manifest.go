// SPDX-License-Identifier: MPL-2.0

package installer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/neutron-modules/box/pkg/quark"
)

// recordDependency writes name=version into <workDir>/.quark. A project
// without a .quark file is left alone.
func (i *Installer) recordDependency(name, version string) (bool, error) {
	path := filepath.Join(i.workDir, quark.FileName)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	i.reporter.Info("Updating .quark configuration...")
	change, err := quark.SetDependency(path, name, version)
	if err != nil {
		i.reporter.Error("Failed to update %s: %v", path, err)
		return false, fmt.Errorf("update %s: %w", path, err)
	}

	switch change {
	case quark.Added:
		i.reporter.Success("Added dependency: %s @ %s", name, version)
	case quark.Updated:
		i.reporter.Success("Updated dependency: %s -> %s", name, version)
	default:
		i.logger.Debug("dependency already recorded", "module", name, "version", version)
	}
	return change != quark.Unchanged, nil
}
