// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/invowk/autolink/internal/manifest"
	"github.com/invowk/autolink/pkg/fspath"
	"github.com/invowk/autolink/pkg/types"
)

type (
	// Candidate is one package found in a search path that supports the
	// requested platform and is not excluded.
	Candidate struct {
		Name     types.PackageName
		Revision PackageRevision
	}

	// Query selects which packages DiscoverInSearchPath keeps.
	Query struct {
		Platform types.PlatformName
		Exclude  []types.PackageName
		// Logger receives skip messages. Nil means slog.Default().
		Logger *slog.Logger
	}

	// configMatch is the highest-priority config file seen for a directory.
	configMatch struct {
		dir      string
		file     string
		priority int
	}
)

// ConfigGlobPatterns returns the patterns matched inside a search path:
// first-level packages and scoped (@scope/name) packages.
func ConfigGlobPatterns() []string {
	files := "{" + strings.Join(manifest.ModuleConfigFileNames(), ",") + "}"
	return []string{
		"*/" + files,
		"@*/*/" + files,
	}
}

func (q Query) logger() *slog.Logger {
	if q.Logger == nil {
		return slog.Default()
	}
	return q.Logger
}

// DiscoverInSearchPath scans one search path for packages declaring a module
// config. When a package directory holds more than one recognised config
// file, only the highest-priority file is read.
//
// Candidates are returned in enumeration order and may repeat a name; the
// caller folds them with SearchResults.Add. A search path that does not exist
// yields no candidates. Malformed JSON aborts the scan with an error.
func DiscoverInSearchPath(ctx context.Context, loader *manifest.Loader, searchPath string, q Query) ([]Candidate, []Diagnostic, error) {
	info, err := os.Stat(searchPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			q.logger().Debug("search path does not exist", "path", searchPath)
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to stat search path %s: %w", searchPath, err)
	}
	if !info.IsDir() {
		q.logger().Debug("search path is not a directory", "path", searchPath)
		return nil, nil, nil
	}

	matches, err := findConfigFiles(os.DirFS(searchPath))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan search path %s: %w", searchPath, err)
	}

	var (
		candidates  []Candidate
		diagnostics []Diagnostic
	)
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		cand, diag, err := readCandidate(loader, searchPath, m, q)
		if err != nil {
			return nil, nil, err
		}
		if diag != nil {
			diagnostics = append(diagnostics, *diag)
		}
		if cand != nil {
			candidates = append(candidates, *cand)
		}
	}

	return candidates, diagnostics, nil
}

// findConfigFiles globs the config patterns and keeps one file per package
// directory, preserving the order in which directories were first seen.
func findConfigFiles(fsys fs.FS) ([]configMatch, error) {
	var (
		order []string
		best  = make(map[string]configMatch)
	)
	for _, pattern := range ConfigGlobPatterns() {
		paths, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			if strings.HasPrefix(p, ".") {
				continue
			}
			dir, file := path.Split(p)
			dir = strings.TrimSuffix(dir, "/")
			priority := manifest.ConfigFilePriority(file)
			if priority < 0 {
				continue
			}
			current, seen := best[dir]
			if !seen {
				order = append(order, dir)
			}
			if !seen || priority > current.priority {
				best[dir] = configMatch{dir: dir, file: file, priority: priority}
			}
		}
	}

	matches := make([]configMatch, 0, len(order))
	for _, dir := range order {
		matches = append(matches, best[dir])
	}
	return matches, nil
}

func readCandidate(loader *manifest.Loader, searchPath string, m configMatch, q Query) (*Candidate, *Diagnostic, error) {
	realDir, err := fspath.Realpath(fspath.JoinStr(types.FilesystemPath(searchPath), filepath.FromSlash(m.dir)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve package directory %s: %w", m.dir, err)
	}
	pkgDir := string(realDir)

	cfg, err := loader.ReadModuleConfig(fspath.JoinStr(realDir, m.file))
	if err != nil {
		return nil, nil, err
	}

	pkg, err := loader.ReadPackage(realDir)
	if err != nil {
		if errors.Is(err, manifest.ErrManifestNotFound) {
			return nil, &Diagnostic{
				Severity: SeverityWarning,
				Code:     CodeModuleManifestMissing,
				Message:  "module config found without package.json, skipping",
				Path:     pkgDir,
				Cause:    err,
			}, nil
		}
		return nil, nil, err
	}

	if err := pkg.Name.Validate(); err != nil {
		return nil, &Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeModuleNameInvalid,
			Message:  "package.json has no valid name, skipping",
			Path:     pkgDir,
			Cause:    err,
		}, nil
	}

	if slices.Contains(q.Exclude, pkg.Name) {
		q.logger().Debug("package excluded", "package", pkg.Name, "path", pkgDir)
		return nil, nil, nil
	}
	if !cfg.SupportsPlatform(q.Platform) {
		q.logger().Debug("package does not support platform", "package", pkg.Name, "platform", q.Platform, "path", pkgDir)
		return nil, nil, nil
	}

	return &Candidate{
		Name: pkg.Name,
		Revision: PackageRevision{
			Path:    pkgDir,
			Version: pkg.Version,
			Config:  cfg,
		},
	}, nil, nil
}
