// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// searchResult is one entry of `box search -o json|yaml`.
type searchResult struct {
	Name        string `json:"name" yaml:"name"`
	Latest      string `json:"latest,omitempty" yaml:"latest,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

func newSearchCommand(app *App) *cobra.Command {
	var withVersions bool

	cmd := &cobra.Command{
		Use:     "search <query>",
		Short:   "Search for modules in NUR",
		GroupID: groupInformation,
		Long: `Search the NUR index for modules whose name contains the query.
Matching ignores case.

With --versions every match's manifest is fetched to show its latest release.`,
		Args: requireArgs(1, 1, "Search query required", "box search <query>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := app.newSession(ctx)
			if err != nil {
				return err
			}
			if err := s.registry.FetchIndex(ctx); err != nil {
				s.reporter.Error("Failed to fetch registry")
				return app.failed(guide(err, "fetch registry index", ""))
			}

			query := args[0]
			names := s.registry.Search(query)
			results := make([]searchResult, 0, len(names))
			for _, name := range names {
				r := searchResult{Name: name}
				if withVersions {
					meta, err := s.registry.FetchModuleMetadata(ctx, name)
					if err != nil {
						s.reporter.Warn("Failed to fetch module metadata for %s", name)
					} else {
						r.Latest = meta.Latest
						r.Description = meta.Description
					}
				}
				results = append(results, r)
			}

			w := cmd.OutOrStdout()
			if format := app.outputFormat(); format != outputText {
				return writeStructured(w, format, results)
			}

			if len(results) == 0 {
				fmt.Fprintf(w, "No modules found matching '%s'\n", query)
				return nil
			}
			fmt.Fprintf(w, "Found %d module(s):\n", len(results))
			for _, r := range results {
				line := "  " + r.Name
				if r.Latest != "" {
					line += " " + SubtitleStyle.Render("("+r.Latest+")")
				}
				fmt.Fprintln(w, line)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withVersions, "versions", false, "show the latest version of every match")

	return cmd
}
