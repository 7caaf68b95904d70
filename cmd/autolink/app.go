// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/invowk/autolink/internal/autolink"
	"github.com/invowk/autolink/internal/config"
	"github.com/invowk/autolink/internal/discovery"
	"github.com/invowk/autolink/internal/platform"
	"github.com/invowk/autolink/internal/resolver"
	"github.com/invowk/autolink/pkg/types"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: every Cobra handler receives an App and runs
	// the autolinking operations through an Engine built per invocation.
	App struct {
		Config      config.Provider
		Registry    *platform.Registry
		Diagnostics DiagnosticRenderer
		workdir     string
		stdout      io.Writer
		stderr      io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config      config.Provider
		Registry    *platform.Registry
		Diagnostics DiagnosticRenderer
		// Workdir overrides the directory options and search paths are
		// resolved from. Empty means the process working directory.
		Workdir string
		Stdout  io.Writer
		Stderr  io.Writer
	}

	// DiagnosticRenderer renders structured diagnostics.
	DiagnosticRenderer interface {
		Render(ctx context.Context, diags []discovery.Diagnostic, stderr io.Writer)
	}

	// session is the per-invocation state derived from flags and config.
	session struct {
		cfg     *config.Config
		logger  *slog.Logger
		engine  *autolink.Engine
		verbose bool
		cwd     string
	}

	defaultDiagnosticRenderer struct{}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Diagnostics == nil {
		deps.Diagnostics = &defaultDiagnosticRenderer{}
	}

	return &App{
		Config:      deps.Config,
		Registry:    deps.Registry,
		Diagnostics: deps.Diagnostics,
		workdir:     deps.Workdir,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
	}
}

// newSession loads the tool config, builds the logger and the engine, and
// renders any config diagnostics.
func (a *App) newSession(ctx context.Context, flags *rootFlagValues) (*session, error) {
	cfg, cfgDiags := loadConfigWithFallback(ctx, a.Config, flags.configPath)
	a.Diagnostics.Render(ctx, cfgDiags, a.stderr)

	level := flags.logLevel
	if level == "" {
		level = string(cfg.LogLevel)
	}
	logger, err := newLogger(a.stderr, level)
	if err != nil {
		return nil, err
	}

	cwd := a.workdir
	if cwd == "" {
		if cwd, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("determine working directory: %w", err)
		}
	}

	opts := []autolink.Option{
		autolink.WithLogger(logger),
		autolink.WithFailurePolicy(resolver.FailurePolicy(cfg.Resolve.FailurePolicy)),
		autolink.WithConcurrency(cfg.Resolve.Concurrency),
	}
	if a.Registry != nil {
		opts = append(opts, autolink.WithRegistry(a.Registry))
	}

	return &session{
		cfg:     cfg,
		logger:  logger,
		engine:  autolink.New(opts...),
		verbose: flags.verbose || cfg.UI.Verbose,
		cwd:     cwd,
	}, nil
}

// fail renders err and returns an ExitError so fang does not print it again.
func (a *App) fail(s *session, err error) error {
	verbose, style := false, string(config.ColorSchemeAuto)
	if s != nil {
		verbose, style = s.verbose, string(s.cfg.UI.ColorScheme)
	}
	svcErr := classifyError(err, verbose)
	renderServiceError(a.stderr, svcErr, style)
	return &ExitError{Code: 1, Err: svcErr}
}

// platformOrDefault returns the --platform value, or the configured default.
func (s *session) platformOrDefault(flag string) types.PlatformName {
	if flag != "" {
		return types.PlatformName(flag)
	}
	return s.cfg.DefaultPlatform
}

// newLogger returns a slog logger backed by a charmbracelet/log handler
// writing to w at the named level.
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	handler := log.NewWithOptions(w, log.Options{
		Prefix: config.AppName,
		Level:  lvl,
	})
	return slog.New(handler), nil
}

// loadConfigWithFallback loads configuration via the provider. On failure it
// returns defaults with a diagnostic so callers stay operational.
//
// An explicit --config path or an existing but malformed default file is an
// error diagnostic; an infrastructure problem such as a missing config
// directory is a warning.
func loadConfigWithFallback(ctx context.Context, provider config.Provider, configPath string) (*config.Config, []discovery.Diagnostic) {
	cfg, err := provider.Load(ctx, config.LoadOptions{ConfigFilePath: types.FilesystemPath(configPath)})
	if err == nil {
		return cfg, nil
	}

	if configPath != "" {
		return config.DefaultConfig(), []discovery.Diagnostic{{
			Severity: discovery.SeverityError,
			Code:     discovery.CodeConfigLoadFailed,
			Message:  fmt.Sprintf("failed to load config from %s: %v", configPath, err),
			Path:     configPath,
			Cause:    err,
		}}
	}

	severity := discovery.SeverityError
	if errors.Is(err, os.ErrNotExist) {
		severity = discovery.SeverityWarning
	}

	return config.DefaultConfig(), []discovery.Diagnostic{{
		Severity: severity,
		Code:     discovery.CodeConfigLoadFailed,
		Message:  fmt.Sprintf("failed to load config, using defaults: %v", err),
		Cause:    err,
	}}
}

// Render writes structured diagnostics to stderr with lipgloss styling.
func (r *defaultDiagnosticRenderer) Render(_ context.Context, diags []discovery.Diagnostic, stderr io.Writer) {
	for _, diag := range diags {
		prefix := WarningStyle.Render("warning")
		if diag.Severity == discovery.SeverityError {
			prefix = ErrorStyle.Render("error")
		}

		if diag.Path != "" {
			_, _ = fmt.Fprintf(stderr, "%s: %s (%s)\n", prefix, diag.Message, diag.Path)
			continue
		}

		_, _ = fmt.Fprintf(stderr, "%s: %s\n", prefix, diag.Message)
	}
}
