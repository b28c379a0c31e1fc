// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neutron-modules/box/internal/store"
	"github.com/neutron-modules/box/pkg/quark"
	"github.com/neutron-modules/box/pkg/types"
)

func newInstallCommand(app *App) *cobra.Command {
	var global bool

	cmd := &cobra.Command{
		Use:     "install [module[@version]]",
		Short:   "Install a module from NUR",
		GroupID: groupInstallation,
		Long: `Install a module from NUR into the project store (./.box/modules).

Without an argument, every dependency listed in the [dependencies] section of
the *.quark files in the current directory is installed. A version of "*" or
an empty version selects the latest release.

When the project has a .quark file, the installed version is recorded in it.`,
		Example: `  box install base64
  box install base64@1.0.0
  box install --global crypto
  box install`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context())
			if err != nil {
				return err
			}
			scope := store.Local
			if global {
				scope = store.Global
			}
			if len(args) == 0 {
				return app.installDependencies(cmd.Context(), s, scope)
			}

			spec, err := types.ParseModuleSpec(args[0])
			if err != nil {
				return err
			}
			if _, err := s.installer.Install(cmd.Context(), spec, scope); err != nil {
				return app.failed(guide(err, "install module", spec.String()))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&global, "global", "g", false, "install into ~/.box/modules instead of the project store")

	return cmd
}

// installDependencies installs every dependency of the project manifests in
// order. It keeps going after a failure and fails if any install failed.
func (a *App) installDependencies(ctx context.Context, s *session, scope store.Scope) error {
	paths, err := quark.Find(a.workDir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return &usageError{msg: "Module name required", usage: "box install <module>"}
	}

	deps, err := quark.Dependencies(paths)
	if err != nil {
		return err
	}
	if len(deps) == 0 {
		s.reporter.Info("No dependencies to install")
		return nil
	}

	var errs []error
	for _, dep := range deps {
		spec := dep.Spec()
		if err := spec.Name.Validate(); err != nil {
			s.reporter.Error("Skipping dependency on line %d: %v", dep.Line, err)
			errs = append(errs, err)
			continue
		}
		if _, err := s.installer.Install(ctx, spec, scope); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", spec, guide(err, "install dependency", spec.String())))
		}
	}

	if len(errs) > 0 {
		s.reporter.Error("%d of %d dependencies failed to install", len(errs), len(deps))
		return a.failed(errors.Join(errs...))
	}
	s.reporter.Success("All %d dependencies installed", len(deps))
	return nil
}
