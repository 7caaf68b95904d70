// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"
)

var packageJSONPatterns = []string{"*/package.json", "@*/*/package.json"}

// isIgnoredByDefaults reports whether rel matches any of the default ignore
// patterns without needing a Watcher instance.
func isIgnoredByDefaults(rel string) bool {
	return matchesAny(defaultIgnores, filepath.ToSlash(rel))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// startWatcher runs w in the background and returns a stop function that
// cancels it and checks the Run error.
func startWatcher(t *testing.T, w *Watcher) (stop func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	// Give the event loop time to start.
	time.Sleep(50 * time.Millisecond)

	return func() {
		cancel()
		select {
		case err := <-errCh:
			if err != nil {
				t.Errorf("Run() error: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("Run() did not return after context cancellation")
		}
	}
}

// TestWatcherDebounce verifies that rapid events across several packages are
// coalesced into a single callback invocation.
func TestWatcherDebounce(t *testing.T) {
	t.Parallel()

	nm := t.TempDir()
	for _, pkg := range []string{"a", "b", "@scope/c"} {
		mkdir(t, filepath.Join(nm, pkg))
	}

	var (
		mu        sync.Mutex
		calls     int
		collected []string
	)
	done := make(chan struct{}, 1)

	w, err := New(Config{
		Roots:    []Root{{Dir: nm, Patterns: packageJSONPatterns, MaxDepth: 2}},
		Debounce: 100 * time.Millisecond,
		Logger:   discardLogger(),
		OnChange: func(_ context.Context, changed []string) error {
			mu.Lock()
			defer mu.Unlock()
			calls++
			collected = append(collected, changed...)
			select {
			case done <- struct{}{}:
			default:
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)

	for _, pkg := range []string{"a", "b", "@scope/c"} {
		writeFile(t, filepath.Join(nm, pkg, "package.json"), `{"name":"x"}`)
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
	time.Sleep(200 * time.Millisecond)
	stop()

	mu.Lock()
	defer mu.Unlock()

	if calls != 1 {
		t.Errorf("expected 1 debounced callback, got %d", calls)
	}
	for _, pkg := range []string{"a", "b", "@scope/c"} {
		want := filepath.Join(nm, pkg, "package.json")
		if !slices.Contains(collected, want) {
			t.Errorf("expected %q in changed files, got %v", want, collected)
		}
	}
}

// TestWatcherPatternFiltering verifies that only files matching the root's
// patterns trigger the callback.
func TestWatcherPatternFiltering(t *testing.T) {
	t.Parallel()

	nm := t.TempDir()
	mkdir(t, filepath.Join(nm, "pkg"))

	callbackFired := make(chan []string, 10)
	w, err := New(Config{
		Roots:    []Root{{Dir: nm, Patterns: packageJSONPatterns, MaxDepth: 2}},
		Debounce: 50 * time.Millisecond,
		Logger:   discardLogger(),
		OnChange: func(_ context.Context, changed []string) error {
			callbackFired <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)
	defer stop()

	readme := filepath.Join(nm, "pkg", "README.md")
	writeFile(t, readme, "docs")
	time.Sleep(200 * time.Millisecond)

	manifest := filepath.Join(nm, "pkg", "package.json")
	writeFile(t, manifest, "{}")

	select {
	case changed := <-callbackFired:
		if slices.Contains(changed, readme) {
			t.Error("non-matching file README.md appeared in changed set")
		}
		if !slices.Contains(changed, manifest) {
			t.Errorf("expected %s in changed set, got %v", manifest, changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback on package.json")
	}
}

// TestWatcherIgnorePatterns confirms that user ignore patterns suppress
// otherwise matching files.
func TestWatcherIgnorePatterns(t *testing.T) {
	t.Parallel()

	nm := t.TempDir()
	mkdir(t, filepath.Join(nm, "skipped"))
	mkdir(t, filepath.Join(nm, "kept"))

	callbackFired := make(chan []string, 10)
	w, err := New(Config{
		Roots:    []Root{{Dir: nm, Patterns: packageJSONPatterns, MaxDepth: 2}},
		Ignore:   []string{"skipped/**"},
		Debounce: 50 * time.Millisecond,
		Logger:   discardLogger(),
		OnChange: func(_ context.Context, changed []string) error {
			callbackFired <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)
	defer stop()

	ignored := filepath.Join(nm, "skipped", "package.json")
	writeFile(t, ignored, "{}")
	time.Sleep(200 * time.Millisecond)

	kept := filepath.Join(nm, "kept", "package.json")
	writeFile(t, kept, "{}")

	select {
	case changed := <-callbackFired:
		if slices.Contains(changed, ignored) {
			t.Errorf("ignored file appeared in changed set: %v", changed)
		}
		if !slices.Contains(changed, kept) {
			t.Errorf("expected %s in changed set, got %v", kept, changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback on non-ignored file")
	}
}

// TestWatcherDepthLimit verifies that directories below MaxDepth are not
// watched, so nested node_modules churn stays silent.
func TestWatcherDepthLimit(t *testing.T) {
	t.Parallel()

	nm := t.TempDir()
	nested := filepath.Join(nm, "pkg", "node_modules", "dep")
	mkdir(t, nested)

	callbackFired := make(chan []string, 10)
	w, err := New(Config{
		Roots:    []Root{{Dir: nm, MaxDepth: 1}},
		Debounce: 50 * time.Millisecond,
		Logger:   discardLogger(),
		OnChange: func(_ context.Context, changed []string) error {
			callbackFired <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)
	defer stop()

	writeFile(t, filepath.Join(nested, "package.json"), "{}")

	select {
	case changed := <-callbackFired:
		t.Fatalf("unexpected callback for file below depth limit: %v", changed)
	case <-time.After(300 * time.Millisecond):
	}
}

// TestWatcherNewPackageDirectory verifies that a package directory created
// after startup counts as a change and is watched from then on.
func TestWatcherNewPackageDirectory(t *testing.T) {
	t.Parallel()

	nm := t.TempDir()

	callbackFired := make(chan []string, 10)
	w, err := New(Config{
		Roots:    []Root{{Dir: nm, Patterns: packageJSONPatterns, MaxDepth: 2}},
		Debounce: 50 * time.Millisecond,
		Logger:   discardLogger(),
		OnChange: func(_ context.Context, changed []string) error {
			callbackFired <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)
	defer stop()

	pkgDir := filepath.Join(nm, "fresh")
	mkdir(t, pkgDir)

	select {
	case changed := <-callbackFired:
		if !slices.Contains(changed, pkgDir) {
			t.Errorf("expected %s in changed set, got %v", pkgDir, changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback on new package directory")
	}

	manifest := filepath.Join(pkgDir, "package.json")
	writeFile(t, manifest, "{}")

	select {
	case changed := <-callbackFired:
		if !slices.Contains(changed, manifest) {
			t.Errorf("expected %s in changed set, got %v", manifest, changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback inside the new directory")
	}
}

// TestWatcherMissingRoots verifies that missing roots are skipped and that a
// config without any existing root is rejected.
func TestWatcherMissingRoots(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	missing := filepath.Join(dir, "node_modules")

	_, err := New(Config{
		Roots:  []Root{{Dir: missing}},
		Logger: discardLogger(),
	})
	if !errors.Is(err, ErrNoWatchableRoots) {
		t.Fatalf("New() error = %v, want ErrNoWatchableRoots", err)
	}

	w, err := New(Config{
		Roots:  []Root{{Dir: missing}, {Dir: dir}},
		Logger: discardLogger(),
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if len(w.roots) != 1 || w.roots[0].Dir != dir {
		t.Errorf("roots = %+v, want only %s", w.roots, dir)
	}
	stop := startWatcher(t, w)
	stop()
}

// TestWatcherContextCancel verifies that Run returns cleanly when its context
// is cancelled.
func TestWatcherContextCancel(t *testing.T) {
	t.Parallel()

	w, err := New(Config{
		Roots:    []Root{{Dir: t.TempDir()}},
		Debounce: 50 * time.Millisecond,
		Logger:   discardLogger(),
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	stop := startWatcher(t, w)
	stop()
}

// TestDefaultIgnores ensures the built-in patterns cover package manager
// bookkeeping and editor noise without hiding real packages.
func TestDefaultIgnores(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		ignored bool
	}{
		{".git/config", true},
		{".bin/tsc", true},
		{".cache/babel/x.json", true},
		{".pnpm/react@18.0.0/node_modules/react/package.json", true},
		{"pkg/package.json.swp", true},
		{"backup~", true},
		{".DS_Store", true},
		{"pkg/.DS_Store", true},
		{"expo-camera/package.json", false},
		{"@expo/vector-icons/expo-module.config.json", false},
		{".gitignore", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			if got := isIgnoredByDefaults(tt.path); got != tt.ignored {
				t.Errorf("isIgnoredByDefaults(%q) = %v, want %v", tt.path, got, tt.ignored)
			}
		})
	}

	got := DefaultIgnores()
	got[0] = "mutated"
	if defaultIgnores[0] == "mutated" {
		t.Error("DefaultIgnores() must return a copy")
	}
}

// TestWatcherSkipIfBusy verifies that a slow callback is never invoked
// concurrently with itself.
func TestWatcherSkipIfBusy(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	var (
		mu          sync.Mutex
		calls       int
		active      int
		overlapping bool
	)
	firstCallDone := make(chan struct{})

	w, err := New(Config{
		Roots:    []Root{{Dir: dir}},
		Debounce: 50 * time.Millisecond,
		Logger:   discardLogger(),
		OnChange: func(_ context.Context, _ []string) error {
			mu.Lock()
			calls++
			callNum := calls
			active++
			if active > 1 {
				overlapping = true
			}
			mu.Unlock()

			if callNum == 1 {
				time.Sleep(300 * time.Millisecond)
				close(firstCallDone)
			}

			mu.Lock()
			active--
			mu.Unlock()
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)

	writeFile(t, filepath.Join(dir, "first.json"), "1")
	time.Sleep(100 * time.Millisecond)
	writeFile(t, filepath.Join(dir, "second.json"), "2")

	select {
	case <-firstCallDone:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for first callback")
	}
	time.Sleep(200 * time.Millisecond)
	stop()

	mu.Lock()
	defer mu.Unlock()
	if overlapping {
		t.Error("callback ran concurrently with itself")
	}
	if calls > 2 {
		t.Errorf("expected at most 2 callback invocations, got %d", calls)
	}
}

// TestWatcherClearScreen verifies that ClearScreen writes the ANSI clear
// sequence before invoking the callback.
func TestWatcherClearScreen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	done := make(chan struct{})
	var (
		mu        sync.Mutex
		stdoutBuf bytes.Buffer
	)

	w, err := New(Config{
		Roots:       []Root{{Dir: dir}},
		Debounce:    50 * time.Millisecond,
		ClearScreen: true,
		Stdout:      &lockedWriter{mu: &mu, w: &stdoutBuf},
		Logger:      discardLogger(),
		OnChange: func(_ context.Context, _ []string) error {
			close(done)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)

	writeFile(t, filepath.Join(dir, "package.json"), "{}")

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
	stop()

	mu.Lock()
	defer mu.Unlock()
	if !strings.Contains(stdoutBuf.String(), "\033[2J\033[H") {
		t.Errorf("expected ANSI clear sequence in stdout, got %q", stdoutBuf.String())
	}
}

// TestWatcherInvalidPattern verifies that New fails fast on a bad glob.
func TestWatcherInvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := New(Config{
		Roots:  []Root{{Dir: t.TempDir(), Patterns: []string{"[invalid"}}},
		Logger: discardLogger(),
	})
	if !errors.Is(err, ErrInvalidWatchConfig) {
		t.Fatalf("New() error = %v, want ErrInvalidWatchConfig", err)
	}
	if !strings.Contains(err.Error(), "invalid roots[0] watch pattern") {
		t.Errorf("error message should name the pattern, got: %v", err)
	}
}

// TestWatcherDoubleRunError verifies that a second Run call fails
// immediately.
func TestWatcherDoubleRunError(t *testing.T) {
	t.Parallel()

	w, err := New(Config{
		Roots:    []Root{{Dir: t.TempDir()}},
		Debounce: 50 * time.Millisecond,
		Logger:   discardLogger(),
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)
	defer stop()

	err = w.Run(context.Background())
	if err == nil {
		t.Fatal("second Run() call should return an error")
	}
	if !strings.Contains(err.Error(), "Run called more than once") {
		t.Errorf("error message should mention double-run, got: %v", err)
	}
}

func TestDepth(t *testing.T) {
	t.Parallel()

	tests := map[string]int{
		"pkg":                  1,
		"@scope/pkg":           2,
		"pkg/node_modules/dep": 3,
	}
	for rel, want := range tests {
		if got := depth(rel); got != want {
			t.Errorf("depth(%q) = %d, want %d", rel, got, want)
		}
	}
}

type lockedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
