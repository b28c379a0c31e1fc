// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/neutron-modules/box/pkg/types"
)

const (
	buildNative  = "native"
	buildNeutron = "nt"

	defaultBuildVersion = "1.0.0"
	// buildOutputDir receives <name>/<name><ext> and metadata.json.
	buildOutputDir = "box-modules"
)

func newBuildCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "build <native|nt> <module> [version]",
		Short:   "Build a module from source",
		GroupID: groupBuilding,
		Long: `Build a module from the sources in ./<module>.

  native  compile the C++ sources into ./box-modules/<module>/ for the current
          platform, together with metadata.json
  nt      build a module written in Neutron (not yet implemented)

The version recorded in metadata.json defaults to ` + defaultBuildVersion + `.`,
		Example: `  box build native mymodule
  box build native mymodule 2.0.0`,
		Args: requireArgs(2, 3, "Build type and module name required", "box build <native|nt> <module> [version]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, name := args[0], args[1]
			version := defaultBuildVersion
			if len(args) == 3 {
				version = args[2]
			}

			if kind != buildNative && kind != buildNeutron {
				fmt.Fprintln(app.stderr, ErrorStyle.Render("Unknown build type:")+" "+kind)
				fmt.Fprintln(app.stderr, "Valid types: native, nt")
				return &ExitError{Code: types.ExitFailure}
			}

			s, err := app.newSession(cmd.Context())
			if err != nil {
				return err
			}
			if kind == buildNeutron {
				err := s.builder.BuildNeutron(cmd.Context(), name,
					filepath.Join(app.workDir, name), filepath.Join(app.workDir, buildOutputDir))
				return app.failed(guide(err, "build module", name))
			}
			return app.buildNative(cmd.Context(), s, name, version)
		},
	}
}

func (a *App) buildNative(ctx context.Context, s *session, name, version string) error {
	sourceDir := filepath.Join(a.workDir, name)
	outputDir := filepath.Join(a.workDir, buildOutputDir)

	art, err := s.builder.BuildNative(ctx, name, sourceDir, outputDir, version)
	if err != nil {
		s.reporter.Error("Failed to build %s", name)
		return a.failed(guide(err, "build module", name))
	}
	s.reporter.Success("Successfully built %s v%s", name, version)
	if a.opts.verbose {
		for _, w := range art.Warnings {
			a.explain(a.stderr, w)
		}
	}
	return nil
}
