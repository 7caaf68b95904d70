// SPDX-License-Identifier: MPL-2.0

// Package autolink exposes the autolinking operations: search path
// resolution, module discovery, option merging, duplicate verification,
// module resolution and package list generation.
//
// An Engine bundles the collaborators shared by these operations. Errors
// returned at this boundary are *issue.ActionableError values carrying the
// failed operation, the resource involved and suggestions for the user.
package autolink

import (
	"log/slog"

	"github.com/invowk/autolink/internal/manifest"
	"github.com/invowk/autolink/internal/platform"
	"github.com/invowk/autolink/internal/platform/builtin"
	"github.com/invowk/autolink/internal/resolver"
)

type (
	// Engine runs the autolinking operations. It holds no per-run state and
	// is safe for concurrent use when its collaborators are.
	Engine struct {
		loader      *manifest.Loader
		registry    *platform.Registry
		logger      *slog.Logger
		policy      resolver.FailurePolicy
		concurrency int
	}

	// Option configures an Engine.
	Option func(*Engine)
)

// WithLoader sets the manifest loader. The default loader does not cache, so
// every operation sees the files as they are on disk.
func WithLoader(l *manifest.Loader) Option {
	return func(e *Engine) { e.loader = l }
}

// WithRegistry sets the platform registry. The default registers ios and
// android.
func WithRegistry(r *platform.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithFailurePolicy sets how capability failures affect ResolveModules.
func WithFailurePolicy(p resolver.FailurePolicy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithConcurrency caps concurrent capability calls in ResolveModules.
// n <= 0 means no limit.
func WithConcurrency(n int) Option {
	return func(e *Engine) { e.concurrency = n }
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{policy: resolver.FailFast}
	for _, opt := range opts {
		opt(e)
	}
	if e.loader == nil {
		e.loader = manifest.NewLoader()
	}
	if e.registry == nil {
		e.registry = builtin.NewRegistry()
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Registry returns the platform registry used by the engine.
func (e *Engine) Registry() *platform.Registry {
	return e.registry
}
