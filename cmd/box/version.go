// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neutron-modules/box/pkg/platform"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Show Box version",
		GroupID: groupInformation,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), versionInfo(platform.Current()))
			return err
		},
	}
}

// versionInfo is printed by `box version` and `box --version`.
func versionInfo(p platform.Platform) string {
	return fmt.Sprintf("Box Package Manager v%s\nPlatform: %s\nLibrary Extension: %s\n",
		Version, p, p.LibraryExtension())
}
