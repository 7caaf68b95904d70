// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/invowk/autolink/internal/config"
	"github.com/invowk/autolink/pkg/types"
)

// newConfigCommand creates the `autolink config` command tree.
// Subcommands that read configuration use the App's config Provider.
func newConfigCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage autolink configuration",
		Long: `Manage autolink configuration.

Configuration is stored in:
  - Linux: ~/.config/autolink/config.cue
  - macOS: ~/Library/Application Support/autolink/config.cue
  - Windows: %APPDATA%\autolink\config.cue

Every key can be overridden with an AUTOLINK_ environment variable,
e.g. AUTOLINK_RESOLVE_FAILURE_POLICY=isolate.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app, rootFlags.configPath)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(app)
		},
	})

	var dumpFormat string
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Output effective configuration as CUE or TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			return dumpConfig(cmd.Context(), app, rootFlags.configPath, dumpFormat)
		},
	}
	dumpCmd.Flags().StringVar(&dumpFormat, "format", "cue", "output format: cue or toml")
	cfgCmd.AddCommand(dumpCmd)

	return cfgCmd
}

func loadConfig(ctx context.Context, app *App, configPath string) (*config.Config, error) {
	return app.Config.Load(ctx, config.LoadOptions{ConfigFilePath: types.FilesystemPath(configPath)})
}

func showConfig(ctx context.Context, app *App, configPath string) error {
	cfg, err := loadConfig(ctx, app, configPath)
	if err != nil {
		return app.fail(nil, err)
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	w := app.stdout

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	path, pathErr := config.ResolvePath(config.LoadOptions{ConfigFilePath: types.FilesystemPath(configPath)})
	if pathErr == nil && path != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("default_platform"), valueStyle.Render(string(cfg.DefaultPlatform)))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("log_level"), valueStyle.Render(string(cfg.LogLevel)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("resolve"))
	fmt.Fprintf(w, "  failure_policy: %s\n", valueStyle.Render(string(cfg.Resolve.FailurePolicy)))
	concurrency := "unlimited"
	if cfg.Resolve.Concurrency > 0 {
		concurrency = fmt.Sprintf("%d", cfg.Resolve.Concurrency)
	}
	fmt.Fprintf(w, "  concurrency: %s\n", valueStyle.Render(concurrency))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("generate"))
	fmt.Fprintf(w, "  watch_debounce: %s\n", valueStyle.Render(cfg.Generate.WatchDebounce.String()))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  color_scheme: %s\n", valueStyle.Render(string(cfg.UI.ColorScheme)))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))

	return nil
}

func dumpConfig(ctx context.Context, app *App, configPath, format string) error {
	cfg, err := loadConfig(ctx, app, configPath)
	if err != nil {
		return app.fail(nil, err)
	}

	switch format {
	case "cue":
		fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
	case "toml":
		out, err := config.GenerateTOML(cfg)
		if err != nil {
			return app.fail(nil, err)
		}
		fmt.Fprint(app.stdout, out)
	default:
		return app.fail(nil, fmt.Errorf("unknown dump format %q (want cue or toml)", format))
	}
	return nil
}

func initConfig(app *App) error {
	path, err := config.CreateDefaultConfig("")
	if err != nil {
		return app.fail(nil, fmt.Errorf("failed to create config: %w", err))
	}

	fmt.Fprintf(app.stdout, "%s Configuration file at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func showConfigPath(app *App) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return app.fail(nil, err)
	}

	fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(app.stdout, "Config file: %s\n", filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
	return nil
}
