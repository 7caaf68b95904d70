// SPDX-License-Identifier: MPL-2.0

// Package generate hands resolved descriptors to the platform generator.
package generate

import (
	"context"
	"errors"
	"log/slog"

	"github.com/invowk/autolink/internal/discovery"
	"github.com/invowk/autolink/internal/options"
	"github.com/invowk/autolink/internal/platform"
)

type (
	// Generator writes package lists through a platform registry.
	Generator struct {
		registry *platform.Registry
		logger   *slog.Logger
	}

	// Option configures a Generator.
	Option func(*Generator)

	// Result describes one generation run.
	Result struct {
		// Target is the written artifact, empty when nothing was written.
		Target      string
		Modules     int
		Diagnostics []discovery.Diagnostic
	}
)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// New creates a Generator over registry.
func New(registry *platform.Registry, opts ...Option) *Generator {
	g := &Generator{registry: registry, logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate renders descriptors to opts.Target.
//
// A platform without a registered generator is not an error: the result
// carries an unsupported_platform diagnostic and nothing is written. Every
// other failure, including write errors, is returned.
func (g *Generator) Generate(ctx context.Context, descriptors []platform.ModuleDescriptor, opts options.GenerateOptions) (Result, error) {
	capability, err := g.registry.Lookup(opts.Platform)
	if err != nil {
		if !errors.Is(err, platform.ErrUnsupportedPlatform) {
			return Result{}, err
		}
		g.logger.Debug("package list generation is not supported for this platform", "platform", opts.Platform)
		return Result{Diagnostics: []discovery.Diagnostic{{
			Severity: discovery.SeverityWarning,
			Code:     discovery.CodeUnsupportedPlatform,
			Message:  err.Error(),
			Cause:    err,
		}}}, nil
	}

	if err := capability.GeneratePackageList(ctx, descriptors, opts.Target, opts.Namespace); err != nil {
		return Result{}, err
	}
	g.logger.Debug("generated package list", "platform", opts.Platform, "target", opts.Target, "modules", len(descriptors))
	return Result{Target: opts.Target, Modules: len(descriptors)}, nil
}
