// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"slices"

	"github.com/invowk/autolink/internal/discovery"
	"github.com/invowk/autolink/internal/searchpath"
	"github.com/invowk/autolink/internal/watch"
)

// searchPathWatchDepth reaches @scope/name package directories.
const searchPathWatchDepth = 2

// runWatchMode generates the package list once, then regenerates it whenever
// a module config or package.json under the search paths changes. It blocks
// until ctx is canceled (e.g., Ctrl+C).
func runWatchMode(ctx context.Context, app *App, s *session, flags *generateFlagValues, args []string) error {
	opts, err := s.engine.MergeLinkingOptions(ctx, flags.provided(s, args), s.cwd)
	if err != nil {
		return app.fail(s, err)
	}

	roots, err := watchRoots(opts.SearchPaths, s.cwd)
	if err != nil {
		return app.fail(s, err)
	}

	relink := func(ctx context.Context) {
		if err := runGenerate(ctx, app, s, flags, args); err != nil {
			// Already rendered; keep watching so the user can fix it.
			s.logger.Debug("regeneration failed", "error", err)
		}
	}

	fmt.Fprintf(app.stdout, "%s Watch mode: initial generation for %s\n", VerboseHighlightStyle.Render("→"), opts.Platform)
	relink(ctx)
	fmt.Fprintf(app.stdout, "\n%s Watching for changes (Ctrl+C to stop)...\n\n", VerboseHighlightStyle.Render("→"))

	w, err := watch.New(watch.Config{
		Roots:       roots,
		Debounce:    s.cfg.Generate.WatchDebounce,
		ClearScreen: flags.clearScreen,
		Stdout:      app.stdout,
		Logger:      s.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintf(app.stdout, "%s Detected %d change(s). Regenerating...\n", VerboseHighlightStyle.Render("→"), len(changed))
			if next, mergeErr := s.engine.MergeLinkingOptions(ctx, flags.provided(s, args), s.cwd); mergeErr == nil &&
				!slices.Equal(next.SearchPaths, opts.SearchPaths) {
				fmt.Fprintf(app.stderr, "%s Search paths changed; restart watch mode to watch the new paths.\n", WarningStyle.Render("!"))
			}
			relink(ctx)
			fmt.Fprintf(app.stdout, "\n%s Watching for changes...\n\n", VerboseHighlightStyle.Render("→"))
			return nil
		},
	})
	if err != nil {
		return app.fail(s, fmt.Errorf("failed to start watcher: %w", err))
	}
	return w.Run(ctx)
}

// watchRoots watches package directories inside every search path and the
// project manifest, which carries the autolinking options.
func watchRoots(searchPaths []string, cwd string) ([]watch.Root, error) {
	patterns := append(discovery.ConfigGlobPatterns(),
		"*/"+searchpath.ManifestFileName,
		"@*/*/"+searchpath.ManifestFileName,
	)

	roots := make([]watch.Root, 0, len(searchPaths)+1)
	for _, sp := range searchPaths {
		roots = append(roots, watch.Root{Dir: sp, Patterns: patterns, MaxDepth: searchPathWatchDepth})
	}

	projectRoot, err := searchpath.FindProjectRoot(cwd)
	if err != nil {
		return nil, err
	}
	if projectRoot != "" {
		roots = append(roots, watch.Root{Dir: projectRoot, Patterns: []string{searchpath.ManifestFileName}})
	}
	return roots, nil
}
