// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/neutron-modules/box/internal/store"
)

func newUninstallCommand(app *App) *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:     "uninstall <module>",
		Short:   "Remove an installed module",
		GroupID: groupInstallation,
		Long: `Remove an installed module from the global store (~/.box/modules).

Use --local to remove it from the project store instead. The project's
.quark file is left untouched.`,
		Args: requireArgs(1, 1, "Module name required", "box uninstall <module>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context())
			if err != nil {
				return err
			}
			if err := s.installer.Uninstall(cmd.Context(), args[0], scopeOf(local)); err != nil {
				return app.failed(guide(err, "uninstall module", args[0]))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&local, "local", "l", false, "remove from the project store instead of ~/.box/modules")

	return cmd
}

func newUpdateCommand(app *App) *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:     "update <module>",
		Short:   "Update a module to the latest version",
		GroupID: groupInstallation,
		Long: `Reinstall a module at the latest version published in NUR.

The module is updated in the global store (~/.box/modules) unless --local is
given. The installed copy is only removed once the new release is known.`,
		Args: requireArgs(1, 1, "Module name required", "box update <module>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := s.installer.Update(cmd.Context(), args[0], scopeOf(local)); err != nil {
				return app.failed(guide(err, "update module", args[0]))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&local, "local", "l", false, "update the project store instead of ~/.box/modules")

	return cmd
}

// scopeOf maps a --local flag onto a store scope.
func scopeOf(local bool) store.Scope {
	if local {
		return store.Local
	}
	return store.Global
}
