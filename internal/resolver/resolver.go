// SPDX-License-Identifier: MPL-2.0

// Package resolver turns discovered packages into a sorted list of
// platform-specific module descriptors.
package resolver

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/invowk/autolink/internal/discovery"
	"github.com/invowk/autolink/internal/options"
	"github.com/invowk/autolink/internal/platform"
	"github.com/invowk/autolink/pkg/types"
)

const (
	// FailFast aborts the whole batch on the first capability error.
	FailFast FailurePolicy = "fail-fast"
	// Isolate drops a failing package and reports it as a diagnostic.
	Isolate FailurePolicy = "isolate"
)

// ErrInvalidFailurePolicy is returned for unknown FailurePolicy values.
var ErrInvalidFailurePolicy = errors.New("invalid failure policy")

type (
	// FailurePolicy decides what a capability error does to the batch.
	FailurePolicy string

	// Resolver maps search results to descriptors through a platform registry.
	Resolver struct {
		registry    *platform.Registry
		policy      FailurePolicy
		concurrency int
		logger      *slog.Logger
	}

	// Option configures a Resolver.
	Option func(*Resolver)

	// ModuleError wraps a capability failure for one package.
	ModuleError struct {
		Package types.PackageName
		Path    string
		Err     error
	}
)

// Validate returns an error wrapping ErrInvalidFailurePolicy for unknown values.
func (p FailurePolicy) Validate() error {
	switch p {
	case FailFast, Isolate:
		return nil
	default:
		return fmt.Errorf("%w: %q (want %q or %q)", ErrInvalidFailurePolicy, string(p), FailFast, Isolate)
	}
}

// Error implements the error interface.
func (e *ModuleError) Error() string {
	return fmt.Sprintf("failed to resolve %s (%s): %v", e.Package, e.Path, e.Err)
}

// Unwrap returns the capability error.
func (e *ModuleError) Unwrap() error { return e.Err }

// WithPolicy sets the failure policy. The default is FailFast.
func WithPolicy(p FailurePolicy) Option {
	return func(r *Resolver) { r.policy = p }
}

// WithConcurrency caps concurrent capability calls. n <= 0 means no limit.
func WithConcurrency(n int) Option {
	return func(r *Resolver) { r.concurrency = n }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// New creates a Resolver over registry.
func New(registry *platform.Registry, opts ...Option) *Resolver {
	r := &Resolver{registry: registry, policy: FailFast, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve runs the platform capability for every primary revision in
// results concurrently and returns the non-nil descriptors sorted by package
// name. An unregistered platform fails with platform.ErrUnsupportedPlatform.
//
// Under FailFast the first capability error cancels the remaining calls and
// is returned. Under Isolate failing packages are dropped and reported as
// error diagnostics. Under both policies a cancelled ctx fails the batch
// with ctx.Err().
func (r *Resolver) Resolve(ctx context.Context, results *discovery.SearchResults, opts options.ResolveOptions) ([]platform.ModuleDescriptor, []discovery.Diagnostic, error) {
	if err := r.policy.Validate(); err != nil {
		return nil, nil, err
	}
	capability, err := r.registry.Lookup(opts.Platform)
	if err != nil {
		return nil, nil, err
	}

	names := results.Names()
	params := platform.ResolveParams{Platform: opts.Platform, Flags: opts.Flags}
	descriptors := make([]platform.ModuleDescriptor, len(names))
	failures := make([]*ModuleError, len(names))

	eg, egCtx := errgroup.WithContext(ctx)
	if r.concurrency > 0 {
		eg.SetLimit(r.concurrency)
	}
	for i, name := range names {
		primary, _ := results.Get(name)
		rev := primary.PackageRevision
		eg.Go(func() error {
			d, err := capability.ResolveModule(egCtx, name, rev, params)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				merr := &ModuleError{Package: name, Path: rev.Path, Err: err}
				if r.policy == FailFast {
					return merr
				}
				failures[i] = merr
				return nil
			}
			descriptors[i] = d
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var diagnostics []discovery.Diagnostic
	for _, f := range failures {
		if f == nil {
			continue
		}
		r.logger.Debug("dropping module after resolve failure", "package", f.Package, "error", f.Err)
		diagnostics = append(diagnostics, discovery.Diagnostic{
			Severity: discovery.SeverityError,
			Code:     discovery.CodeModuleResolveFailed,
			Message:  f.Error(),
			Path:     f.Path,
			Cause:    f,
		})
	}

	resolved := slices.DeleteFunc(descriptors, func(d platform.ModuleDescriptor) bool { return d == nil })
	SortDescriptors(resolved)
	return resolved, diagnostics, nil
}

// SortDescriptors orders descriptors by package name.
func SortDescriptors(descriptors []platform.ModuleDescriptor) {
	slices.SortStableFunc(descriptors, func(a, b platform.ModuleDescriptor) int {
		return cmp.Compare(a.PackageName(), b.PackageName())
	})
}
