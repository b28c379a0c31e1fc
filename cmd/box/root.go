// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/neutron-modules/box/internal/issue"
	"github.com/neutron-modules/box/pkg/platform"
	"github.com/neutron-modules/box/pkg/types"
)

const (
	groupInstallation = "installation"
	groupBuilding     = "building"
	groupInformation  = "information"
)

// Version is the Box release (set via -ldflags).
var Version = "1.0.0"

// NewRootCommand builds the box command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "box",
		Short: "Neutron package manager",
		Long: TitleStyle.Render("Box") + SubtitleStyle.Render(" - Neutron Package Manager v"+Version) + `

Box installs native modules for the Neutron runtime from the Neutron User
Repository (NUR), builds them from C++ sources and keeps the [dependencies]
section of a project's .quark file in sync.

Modules are installed into ./.box/modules (install) or ~/.box/modules
(uninstall, update and list, or any verb with --global).`,
		Example: `  box install base64
  box install base64@1.0.0 --global
  box search crypto
  box build native mymodule`,
		Args:    cobra.ArbitraryArgs,
		Version: Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return app.unknownCommand(args[0])
			}
			if err := cmd.Help(); err != nil {
				return err
			}
			return &ExitError{Code: types.ExitFailure}
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := parseOutputFormat(app.opts.output)
			return err
		},
	}
	rootCmd.SetVersionTemplate(versionInfo(platform.Current()))

	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&app.opts.verbose, "verbose", false, "enable verbose output")
	flags.StringVar(&app.opts.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/box/config.cue)")
	flags.StringVar(&app.opts.registryURL, "registry", "", "registry base URL (overrides registry.url)")
	flags.StringVarP(&app.opts.output, "output", "o", string(outputText), "output format for list, search and info: text, json or yaml")

	rootCmd.AddGroup(
		&cobra.Group{ID: groupInstallation, Title: "Installation"},
		&cobra.Group{ID: groupBuilding, Title: "Building"},
		&cobra.Group{ID: groupInformation, Title: "Information"},
	)
	rootCmd.AddCommand(
		newInstallCommand(app),
		newUninstallCommand(app),
		newUpdateCommand(app),
		newListCommand(app),
		newBuildCommand(app),
		newSearchCommand(app),
		newInfoCommand(app),
		newVersionCommand(),
		newConfigCommand(app),
	)

	return rootCmd
}

// Execute runs box with the process arguments and exits with its status.
// This is called by main.main().
func Execute() {
	os.Exit(Run())
}

// Run executes the process command line and returns the exit code.
func Run() int {
	return run(context.Background(), NewApp(Dependencies{}), os.Args[1:])
}

func run(ctx context.Context, app *App, args []string) int {
	rootCmd := NewRootCommand(app)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	// fang overrides rootCmd.Version, so the version is passed again here.
	err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(Version),
		fang.WithErrorHandler(app.handleError),
		fang.WithNotifySignal(os.Interrupt),
	)
	if err == nil {
		return int(types.ExitSuccess)
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return int(exitErr.Code)
	}
	return int(types.ExitFailure)
}

// handleError prints errors that no command reported itself. An ExitError
// means the failure is already on screen.
func (a *App) handleError(w io.Writer, _ fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	fmt.Fprintln(w, ErrorStyle.Render("Error:")+" "+formatErrorForDisplay(err, a.opts.verbose))
	a.explain(w, err)
}

func (a *App) unknownCommand(name string) error {
	fmt.Fprintln(a.stderr, ErrorStyle.Render("Unknown command:")+" "+name)
	fmt.Fprintln(a.stderr, "Run "+CmdStyle.Render("'box help'")+" for usage information")
	return &ExitError{Code: types.ExitFailure}
}

// failed ends a command whose failure the reporter already announced. In
// verbose mode the error chain and the matching catalog entry follow;
// otherwise only the remedies attached by guide are printed.
func (a *App) failed(err error) error {
	if a.opts.verbose {
		for _, e := range branches(err) {
			fmt.Fprintln(a.stderr, VerboseStyle.Render(formatErrorForDisplay(e, true)))
			a.explain(a.stderr, e)
		}
	} else if hints := hintsOf(err); hints != "" {
		fmt.Fprint(a.stderr, hints)
	}
	return exitFailure(err)
}

// branches splits a joined error into its parts.
func branches(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

// hintsOf collects the suggestions of every ActionableError in the tree of
// err, including each branch of a joined error. Repeats are printed once.
func hintsOf(err error) string {
	var (
		sb   strings.Builder
		seen = map[string]bool{}
		walk func(error)
	)
	walk = func(err error) {
		switch e := err.(type) {
		case nil:
		case *issue.ActionableError:
			if h := e.Hints(); h != "" && !seen[h] {
				seen[h] = true
				sb.WriteString(h)
			}
		case interface{ Unwrap() []error }:
			for _, inner := range e.Unwrap() {
				walk(inner)
			}
		default:
			walk(errors.Unwrap(err))
		}
	}
	walk(err)
	return sb.String()
}

// explain renders the catalog entry for err. Entries attached explicitly to
// an ActionableError are always shown; classified ones only in verbose mode.
func (a *App) explain(w io.Writer, err error) {
	id, explicit := issueFor(err)
	if id == 0 || (!explicit && !a.opts.verbose) {
		return
	}
	entry := issue.Get(id)
	if entry == nil {
		return
	}
	rendered, renderErr := entry.Render(a.colorScheme.GlamourStyle())
	if renderErr != nil {
		return
	}
	fmt.Fprint(w, rendered)
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
