// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/neutron-modules/box/internal/config"
)

// newConfigCommand creates the `box config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage box configuration",
		Long: `Manage box configuration.

Configuration is stored in:
  - Linux: ~/.config/box/config.cue
  - macOS: ~/Library/Application Support/box/config.cue
  - Windows: %APPDATA%\box\config.cue

Every key can be overridden from the environment with the ` + config.EnvPrefix + `_ prefix,
for example ` + config.EnvPrefix + `_REGISTRY_URL for registry.url.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			path, err := config.ResolvePath(config.LoadOptions{ConfigFilePath: app.opts.configPath})
			if err != nil {
				return err
			}
			showConfig(cmd.OutOrStdout(), cfg, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, created, err := config.CreateDefaultConfig()
			if err != nil {
				return fmt.Errorf("failed to create config: %w", err)
			}
			w := cmd.OutOrStdout()
			if !created {
				fmt.Fprintf(w, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), path)
				return nil
			}
			fmt.Fprintf(w, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Config directory: %s\n", cfgDir)

			path, err := config.ResolvePath(config.LoadOptions{ConfigFilePath: app.opts.configPath})
			if err != nil {
				return err
			}
			if path == "" {
				path, err = config.FilePath()
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "Config file: %s %s\n", path, SubtitleStyle.Render("(not created)"))
				return nil
			}
			fmt.Fprintf(w, "Config file: %s\n", path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), config.GenerateCUE(cfg))
			return err
		},
	})

	return cfgCmd
}

func showConfig(w io.Writer, cfg *config.Config, path string) {
	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	value := func(key, v string) {
		if v == "" {
			fmt.Fprintf(w, "  %s: %s\n", key, SubtitleStyle.Render("(default)"))
			return
		}
		fmt.Fprintf(w, "  %s: %s\n", key, valueStyle.Render(v))
	}

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if path != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("registry"))
	value("url", cfg.Registry.URL)
	value("user_agent", cfg.Registry.UserAgent)
	value("timeout", string(cfg.Registry.Timeout))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("store"))
	value("global_dir", cfg.Store.GlobalDir)
	value("local_dir", cfg.Store.LocalDir)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("builder"))
	value("compiler", cfg.Builder.Compiler)
	value("extra_flags", cfg.Builder.ExtraFlags)
	value("neutron_home", cfg.Builder.NeutronHome)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	value("color_scheme", string(cfg.UI.ColorScheme))
	value("verbose", fmt.Sprintf("%v", cfg.UI.Verbose))
}
