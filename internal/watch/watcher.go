// SPDX-License-Identifier: MPL-2.0

// Package watch provides file-watching with debounced re-execution.
//
// It monitors a set of roots, each with its own glob patterns and depth
// limit, and invokes a callback after a configurable debounce period. Events
// within the debounce window are coalesced so the callback fires once with
// the full set of changed paths.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is the delay before firing the onChange callback after the
// last filesystem event.
const defaultDebounce = 500 * time.Millisecond

// defaultIgnores lists path patterns (relative to a root) that never trigger
// callbacks. Package managers keep bookkeeping directories inside
// node_modules that churn on every install.
var defaultIgnores = []string{
	".git/**",
	".bin/**",
	".cache/**",
	".pnpm/**",
	".store/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
}

// ErrNoWatchableRoots is returned by New when none of the configured roots
// exists on disk.
var ErrNoWatchableRoots = errors.New("watch: no watchable roots")

type (
	// Root is one directory tree under observation.
	Root struct {
		// Dir is the directory to watch. Relative paths are resolved against
		// the working directory.
		Dir string

		// Patterns are doublestar globs relative to Dir selecting the files
		// that trigger callbacks. An empty slice matches every file.
		Patterns []string

		// MaxDepth bounds how many directory levels below Dir are watched.
		// Zero watches Dir alone.
		MaxDepth int
	}

	// Config holds the parameters for a Watcher.
	Config struct {
		Roots []Root

		// Ignore are additional doublestar patterns (relative to each root)
		// merged with the built-in default ignores.
		Ignore []string

		// Debounce is the quiet period after the last event before the callback
		// fires. Zero falls back to defaultDebounce.
		Debounce time.Duration

		// ClearScreen writes an ANSI clear sequence to Stdout before each
		// callback invocation.
		ClearScreen bool

		// OnChange is called after the debounce window closes with the
		// deduplicated, sorted list of absolute changed paths. A nil callback
		// is a no-op.
		OnChange func(ctx context.Context, changed []string) error

		// Stdout receives the clear-screen sequence. nil defaults to os.Stdout.
		Stdout io.Writer

		// Logger receives watcher diagnostics. nil defaults to slog.Default().
		Logger *slog.Logger
	}

	// Watcher monitors filesystem paths and fires a debounced callback when
	// matching files change. Run must be called exactly once; calling it a
	// second time returns an error.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		roots    []Root
		ignores  []string
		stdout   io.Writer
		logger   *slog.Logger
		debounce time.Duration
		started  atomic.Bool
	}
)

// New creates a Watcher from the given Config. Roots that do not exist are
// skipped with a warning; every existing root is registered along with its
// subdirectories down to MaxDepth.
func New(cfg Config) (*Watcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	stdout := cfg.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	debounce := cfg.Debounce
	if debounce == 0 {
		debounce = defaultDebounce
	}

	roots := make([]Root, 0, len(cfg.Roots))
	for _, r := range cfg.Roots {
		abs, err := filepath.Abs(r.Dir)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve root %q: %w", r.Dir, err)
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			logger.Warn("watch: skipping missing root", "dir", abs)
			continue
		}
		r.Dir = abs
		roots = append(roots, r)
	}
	if len(roots) == 0 {
		return nil, ErrNoWatchableRoots
	}
	// Longest directory first so nested roots win when resolving an event.
	slices.SortStableFunc(roots, func(a, b Root) int {
		return len(b.Dir) - len(a.Dir)
	})

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	ignores := make([]string, 0, len(defaultIgnores)+len(cfg.Ignore))
	ignores = append(ignores, defaultIgnores...)
	ignores = append(ignores, cfg.Ignore...)

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		roots:    roots,
		ignores:  ignores,
		stdout:   stdout,
		logger:   logger,
		debounce: debounce,
	}

	for _, r := range roots {
		if err := w.addDirectories(r); err != nil {
			if closeErr := fsw.Close(); closeErr != nil {
				logger.Warn("watch: close after init failure", "error", closeErr)
			}
			return nil, err
		}
	}

	return w, nil
}

// Run blocks until ctx is cancelled, processing filesystem events and
// dispatching debounced callbacks. It returns nil on clean context
// cancellation and propagates any fatal watcher errors.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return fmt.Errorf("watch: Run called more than once")
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	// fire drains the pending set and invokes OnChange. A callback still in
	// progress reschedules the timer instead of running concurrently.
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			w.logger.Debug("watch: previous run still in progress, rescheduling")
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		if w.cfg.ClearScreen {
			fmt.Fprint(w.stdout, "\033[2J\033[H")
		}

		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				w.logger.Error("watch: callback failed", "error", err)
			}
		}
	}

	defer func() {
		mu.Lock()
		localTimer := timer
		mu.Unlock()
		if localTimer != nil {
			localTimer.Stop()
		}
		if closeErr := w.fsw.Close(); closeErr != nil {
			w.logger.Warn("watch: close fsnotify", "error", closeErr)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watch: fsnotify event channel closed unexpectedly")
			}
			if !w.relevant(evt) {
				continue
			}

			mu.Lock()
			pending[evt.Name] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watch: fsnotify error channel closed unexpectedly")
			}
			if watcherBroken(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("watch: fsnotify error", "error", err)
		}
	}
}

// relevant reports whether evt should schedule a callback. A directory
// created within a root's depth limit is registered and counts as a change,
// since its files may have been written before the watch was added.
func (w *Watcher) relevant(evt fsnotify.Event) bool {
	root, rel, ok := w.rootFor(evt.Name)
	if !ok || w.isIgnored(rel) {
		return false
	}

	if evt.Has(fsnotify.Create) {
		if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
			if depth(rel) > root.MaxDepth {
				return false
			}
			if err := w.fsw.Add(evt.Name); err != nil {
				w.logger.Warn("watch: add new directory", "dir", evt.Name, "error", err)
			}
			return true
		}
	}

	return matchesPatterns(root.Patterns, rel)
}

// rootFor returns the innermost root containing path and path relative to it.
func (w *Watcher) rootFor(path string) (Root, string, bool) {
	for _, r := range w.roots {
		rel, err := filepath.Rel(r.Dir, path)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return r, filepath.ToSlash(rel), true
	}
	return Root{}, "", false
}

// addDirectories registers r.Dir and every non-ignored subdirectory down to
// r.MaxDepth. Inaccessible directories are skipped.
func (w *Watcher) addDirectories(r Root) error {
	walkErr := filepath.WalkDir(r.Dir, func(path string, d os.DirEntry, walkDirErr error) error {
		if walkDirErr != nil {
			w.logger.Warn("watch: skipping inaccessible path", "path", path, "error", walkDirErr)
			return nil //nolint:nilerr // intentional skip of inaccessible paths
		}
		if !d.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(r.Dir, path)
		if relErr != nil {
			return nil //nolint:nilerr // skip paths that cannot be made relative
		}
		rel = filepath.ToSlash(rel)

		if rel != "." {
			if w.isIgnored(rel) || w.isIgnored(rel+"/") {
				return filepath.SkipDir
			}
			if depth(rel) > r.MaxDepth {
				return filepath.SkipDir
			}
		}

		if addErr := w.fsw.Add(path); addErr != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, addErr)
		}
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("watch: walk directory tree: %w", walkErr)
	}
	return nil
}

// isIgnored returns true if rel (slash-separated, relative to its root)
// matches any ignore pattern.
func (w *Watcher) isIgnored(rel string) bool {
	return matchesAny(w.ignores, rel)
}

func matchesPatterns(patterns []string, rel string) bool {
	if len(patterns) == 0 {
		return true
	}
	return matchesAny(patterns, rel)
}

func matchesAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if matched, matchErr := doublestar.Match(pat, rel); matchErr == nil && matched {
			return true
		}
	}
	return false
}

// depth counts the directory levels of a slash-separated relative path.
func depth(rel string) int {
	return strings.Count(strings.Trim(rel, "/"), "/") + 1
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}
