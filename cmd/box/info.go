// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neutron-modules/box/pkg/platform"
	"github.com/neutron-modules/box/pkg/registry"
)

type (
	// moduleInfo is the structured form of `box info`.
	moduleInfo struct {
		Name        string          `json:"name" yaml:"name"`
		Description string          `json:"description,omitempty" yaml:"description,omitempty"`
		Author      string          `json:"author,omitempty" yaml:"author,omitempty"`
		License     string          `json:"license,omitempty" yaml:"license,omitempty"`
		Repository  string          `json:"repository,omitempty" yaml:"repository,omitempty"`
		Latest      string          `json:"latest" yaml:"latest"`
		Versions    []moduleVersion `json:"versions" yaml:"versions"`
	}

	// moduleVersion is one published release, newest first in moduleInfo.
	moduleVersion struct {
		Version      string            `json:"version" yaml:"version"`
		Latest       bool              `json:"latest,omitempty" yaml:"latest,omitempty"`
		Description  string            `json:"description,omitempty" yaml:"description,omitempty"`
		Entry        string            `json:"entry,omitempty" yaml:"entry,omitempty"`
		Git          *moduleSource     `json:"git,omitempty" yaml:"git,omitempty"`
		Dependencies map[string]string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	}

	moduleSource struct {
		URL string `json:"url" yaml:"url"`
		Ref string `json:"ref,omitempty" yaml:"ref,omitempty"`
	}
)

func newInfoCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "info <module>",
		Short:   "Show module information",
		GroupID: groupInformation,
		Long: `Show the manifest of a module: its description, author, license and
repository, followed by every published version, newest first. Entries for
the current platform are shown in the structured output formats.`,
		Args: requireArgs(1, 1, "Module name required", "box info <module>"),
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

			name := args[0]
			meta, err := s.registry.FetchModuleMetadata(ctx, name)
			if err != nil {
				if errors.Is(err, registry.ErrModuleNotFound) {
					s.reporter.Error("Module not found: %s", name)
				} else {
					s.reporter.Error("Failed to fetch module metadata for %s", name)
				}
				return app.failed(guide(err, "fetch module metadata", name))
			}
			if err := meta.Validate(); err != nil {
				s.reporter.Warn("%v", err)
			}

			info := newModuleInfo(meta, s.builder.Platform())
			w := cmd.OutOrStdout()
			if format := app.outputFormat(); format != outputText {
				return writeStructured(w, format, info)
			}
			renderModuleInfo(w, info)
			return nil
		},
	}
}

func newModuleInfo(meta registry.ModuleMetadata, p platform.Platform) moduleInfo {
	info := moduleInfo{
		Name:        meta.Name,
		Description: meta.Description,
		Author:      meta.Author,
		License:     meta.License,
		Repository:  meta.Repository,
		Latest:      meta.Latest,
		Versions:    []moduleVersion{},
	}
	for _, v := range meta.SortedVersions() {
		release := meta.Versions[v]
		mv := moduleVersion{
			Version:      v,
			Latest:       v == meta.Latest,
			Description:  release.Description,
			Entry:        release.Entry(p),
			Dependencies: release.Dependencies,
		}
		if release.Git.HasSource() {
			mv.Git = &moduleSource{URL: release.Git.URL, Ref: release.Git.Ref}
		}
		info.Versions = append(info.Versions, mv)
	}
	return info
}

func renderModuleInfo(w io.Writer, info moduleInfo) {
	field := func(label, value string) {
		if value != "" {
			fmt.Fprintf(w, "%s %s\n", labelStyle.Render(label+":"), value)
		}
	}

	field("Module", info.Name)
	field("Description", info.Description)
	field("Author", info.Author)
	field("License", info.License)
	field("Repository", info.Repository)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Latest:"), info.Latest)

	fmt.Fprintln(w)
	fmt.Fprintln(w, labelStyle.Render("Available Versions:"))
	for _, v := range info.Versions {
		line := "  " + v.Version
		if v.Latest {
			line += " " + SuccessStyle.Render("(latest)")
		}
		fmt.Fprintln(w, line)
		if v.Description != "" {
			fmt.Fprintf(w, "    %s\n", v.Description)
		}
		if len(v.Dependencies) > 0 {
			fmt.Fprintf(w, "    %s %s\n", SubtitleStyle.Render("depends on:"), formatDependencies(v.Dependencies))
		}
	}
}

// formatDependencies renders a dependency map as "a@1.0.0, b@2.1.0".
func formatDependencies(deps map[string]string) string {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	slices.Sort(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"@"+deps[name])
	}
	return strings.Join(parts, ", ")
}
