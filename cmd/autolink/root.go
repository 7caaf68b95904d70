// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlagValues holds the persistent flags shared by every subcommand.
type rootFlagValues struct {
	verbose    bool
	configPath string
	logLevel   string
}

// newRootCommand builds the command tree around app.
func newRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "autolink",
		Short: "Find and link native modules of a JavaScript project",
		Long: TitleStyle.Render("autolink") + SubtitleStyle.Render(" - native module autolinking") + `

autolink scans node_modules for packages that ship a module config
(expo-module.config.json or unimodule.json), resolves the ones that
support a platform, and generates the platform package list.

` + SubtitleStyle.Render("Examples:") + `
  autolink search                       List modules for the default platform
  autolink search --platform android    List Android modules
  autolink verify                       Report packages installed twice
  autolink resolve --json               Print module descriptors as JSON
  autolink generate-package-list --platform ios --target ios/ExpoModulesProvider.swift
  autolink config show                  Show current configuration`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is $HOME/.config/autolink/config.cue)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error (default from config)")

	rootCmd.AddCommand(
		newSearchCommand(app, flags),
		newResolveCommand(app, flags),
		newVerifyCommand(app, flags),
		newGeneratePackageListCommand(app, flags),
		newConfigCommand(app, flags),
	)

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI. It is called by main.main().
func Execute() {
	rootCmd := newRootCommand(NewApp(Dependencies{}))

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(handleError),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// handleError prints errors fang reports, except ExitErrors, which were
// rendered by the command that returned them.
func handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}
