// SPDX-License-Identifier: MPL-2.0

package autolink

import (
	"context"
	"errors"

	"github.com/invowk/autolink/internal/discovery"
	"github.com/invowk/autolink/internal/generate"
	"github.com/invowk/autolink/internal/manifest"
	"github.com/invowk/autolink/internal/options"
	"github.com/invowk/autolink/internal/platform"
	"github.com/invowk/autolink/internal/resolver"
	"github.com/invowk/autolink/internal/searchpath"
	"github.com/invowk/autolink/pkg/types"
)

// LinkResult is the outcome of a full Link run.
type LinkResult struct {
	Options options.GenerateOptions
	Results *discovery.SearchResults
	// Duplicates is the number of package names found at more than one
	// location.
	Duplicates  int
	Descriptors []platform.ModuleDescriptor
	Generated   generate.Result
	Diagnostics []discovery.Diagnostic
}

// ResolveSearchPaths returns the directories to scan in priority order.
// Explicit paths are made absolute against cwd; without them the defaults
// are the node_modules directories next to every enclosing package.json,
// innermost first.
func (e *Engine) ResolveSearchPaths(searchPaths []string, cwd string) ([]string, error) {
	paths, err := searchpath.Resolve(searchPaths, cwd)
	if err != nil {
		return nil, wrapError(err, "resolve search paths", cwd)
	}
	return paths, nil
}

// FindModules scans every search path in order and folds the packages that
// support opts.Platform into one SearchResults. The first search path to
// yield a package name owns the primary revision.
//
// Packages that cannot be linked (no package.json, invalid name) are
// reported as diagnostics. Malformed JSON aborts the scan.
func (e *Engine) FindModules(ctx context.Context, opts options.SearchOptions) (*discovery.SearchResults, []discovery.Diagnostic, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, wrapError(err, "find modules", "")
	}

	results := discovery.NewSearchResults()
	var diagnostics []discovery.Diagnostic
	q := discovery.Query{Platform: opts.Platform, Exclude: opts.Exclude, Logger: e.logger}
	for _, sp := range opts.SearchPaths {
		candidates, diags, err := discovery.DiscoverInSearchPath(ctx, e.loader, sp, q)
		if err != nil {
			return nil, nil, wrapError(err, "find modules", sp)
		}
		results.AddCandidates(candidates)
		diagnostics = append(diagnostics, diags...)
	}

	e.logger.Debug("found modules", "platform", opts.Platform, "searchPaths", len(opts.SearchPaths), "modules", results.Len())
	return results, diagnostics, nil
}

// MergeLinkingOptions computes the effective options for provided.Platform.
//
// The base layer is the expo.autolinking section of the nearest package.json
// at or above cwd; a missing manifest yields an empty base. The platform
// section of the base overrides it and provided overrides both, key by key.
// The merged search paths are then replaced by ResolveSearchPaths applied to
// them.
func (e *Engine) MergeLinkingOptions(ctx context.Context, provided options.Provided, cwd string) (options.GenerateOptions, error) {
	if err := ctx.Err(); err != nil {
		return options.GenerateOptions{}, err
	}
	if err := provided.Platform.Validate(); err != nil {
		return options.GenerateOptions{}, wrapError(err, "merge linking options", "")
	}

	base, err := e.baseLayer(cwd)
	if err != nil {
		return options.GenerateOptions{}, err
	}

	merged := options.Merge(base, provided.Platform, provided.Layer())
	opts, err := options.Decode(merged, provided.Platform)
	if err != nil {
		return options.GenerateOptions{}, wrapError(err, "merge linking options", cwd)
	}

	paths, err := e.ResolveSearchPaths(opts.SearchPaths, cwd)
	if err != nil {
		return options.GenerateOptions{}, err
	}
	opts.SearchPaths = paths
	return opts, nil
}

// baseLayer reads the autolinking section of the project manifest.
func (e *Engine) baseLayer(cwd string) (options.Layer, error) {
	root, err := searchpath.FindProjectRoot(cwd)
	if err != nil {
		return nil, wrapError(err, "merge linking options", cwd)
	}
	if root == "" {
		e.logger.Debug("no project manifest found, using empty base options", "cwd", cwd)
		return options.Layer{}, nil
	}

	pkg, err := e.loader.ReadPackage(types.FilesystemPath(root))
	if err != nil {
		if errors.Is(err, manifest.ErrManifestNotFound) {
			return options.Layer{}, nil
		}
		return nil, wrapError(err, "merge linking options", root)
	}
	return options.Layer(pkg.AutolinkingOptions()), nil
}

// VerifySearchResults counts the package names discovered at more than one
// location. It never fails.
func (e *Engine) VerifySearchResults(results *discovery.SearchResults) (int, []discovery.Diagnostic) {
	count, diagnostics := discovery.Verify(results)
	for _, d := range diagnostics {
		e.logger.Debug(d.Message, "code", d.Code, "path", d.Path)
	}
	return count, diagnostics
}

// ResolveModules maps every primary revision to a platform descriptor and
// returns them sorted by package name. Packages the platform reports as
// absent are dropped.
func (e *Engine) ResolveModules(ctx context.Context, results *discovery.SearchResults, opts options.ResolveOptions) ([]platform.ModuleDescriptor, []discovery.Diagnostic, error) {
	r := resolver.New(e.registry,
		resolver.WithPolicy(e.policy),
		resolver.WithConcurrency(e.concurrency),
		resolver.WithLogger(e.logger),
	)
	descriptors, diagnostics, err := r.Resolve(ctx, results, opts)
	if err != nil {
		return nil, nil, wrapError(err, "resolve modules", "")
	}
	return descriptors, diagnostics, nil
}

// GeneratePackageList writes the platform package list for descriptors.
// An unsupported platform is reported as a diagnostic and nothing is
// written.
func (e *Engine) GeneratePackageList(ctx context.Context, descriptors []platform.ModuleDescriptor, opts options.GenerateOptions) (generate.Result, error) {
	g := generate.New(e.registry, generate.WithLogger(e.logger))
	res, err := g.Generate(ctx, descriptors, opts)
	if err != nil {
		return generate.Result{}, wrapError(err, "generate package list", opts.Target)
	}
	return res, nil
}

// Link runs the whole pipeline: merge options, find modules, verify,
// resolve and generate. Diagnostics from discovery, resolution and
// generation are collected in order; verification warnings are logged only.
func (e *Engine) Link(ctx context.Context, provided options.Provided, cwd string) (LinkResult, error) {
	opts, err := e.MergeLinkingOptions(ctx, provided, cwd)
	if err != nil {
		return LinkResult{}, err
	}
	out := LinkResult{Options: opts}

	results, diags, err := e.FindModules(ctx, opts.SearchOptions)
	if err != nil {
		return out, err
	}
	out.Results = results
	out.Diagnostics = append(out.Diagnostics, diags...)

	out.Duplicates, _ = e.VerifySearchResults(results)

	descriptors, diags, err := e.ResolveModules(ctx, results, opts.ResolveOptions)
	if err != nil {
		return out, err
	}
	out.Descriptors = descriptors
	out.Diagnostics = append(out.Diagnostics, diags...)

	generated, err := e.GeneratePackageList(ctx, descriptors, opts)
	if err != nil {
		return out, err
	}
	out.Generated = generated
	out.Diagnostics = append(out.Diagnostics, generated.Diagnostics...)
	return out, nil
}
