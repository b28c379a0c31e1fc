// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neutron-modules/box/internal/store"
)

// installedModule is one entry of `box list -o json|yaml`. Version fields are
// empty when metadata.json is missing or unreadable.
type installedModule struct {
	Name        string `json:"name" yaml:"name"`
	Version     string `json:"version,omitempty" yaml:"version,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Platform    string `json:"platform,omitempty" yaml:"platform,omitempty"`
	Dir         string `json:"dir" yaml:"dir"`
}

func newListCommand(app *App) *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List installed modules",
		GroupID: groupInstallation,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.newSession(cmd.Context())
			if err != nil {
				return err
			}
			scope := scopeOf(local)
			names, err := s.installer.ListInstalled(scope)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if format := app.outputFormat(); format != outputText {
				modules := make([]installedModule, 0, len(names))
				for _, name := range names {
					modules = append(modules, describeInstalled(s.store, scope, name))
				}
				return writeStructured(w, format, modules)
			}

			if len(names) == 0 {
				fmt.Fprintln(w, "No modules installed")
				return nil
			}
			fmt.Fprintln(w, TitleStyle.Render("Installed modules:"))
			for _, name := range names {
				fmt.Fprintf(w, "  %s\n", name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&local, "local", "l", false, "list the project store instead of ~/.box/modules")

	return cmd
}

func describeInstalled(st *store.Store, scope store.Scope, name string) installedModule {
	dir := st.ModuleDir(scope, name)
	m := installedModule{Name: name, Dir: dir}
	if meta, err := store.ReadMetadata(dir); err == nil {
		m.Version = meta.Version
		m.Description = meta.Description
		m.Platform = meta.Platform
	}
	return m
}
