// SPDX-License-Identifier: MPL-2.0

// Package searchpath derives the ordered list of directories scanned for
// native modules.
package searchpath

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/invowk/autolink/pkg/fspath"
	"github.com/invowk/autolink/pkg/types"
)

const (
	// ManifestFileName marks a project root.
	ManifestFileName = "package.json"
	// ModulesDirName is the package registry directory next to a manifest.
	ModulesDirName = "node_modules"
)

// Resolve returns the directories to scan, in priority order.
//
// Explicit paths are made absolute relative to cwd and returned in the order
// given. Without explicit paths the defaults are computed by walking up from
// cwd: every ancestor holding a package.json contributes its node_modules
// sibling, innermost first, and the walk resumes from that manifest's
// grandparent. No manifest at all yields an empty list.
func Resolve(explicit []string, cwd string) ([]string, error) {
	if len(explicit) > 0 {
		resolved := make([]string, 0, len(explicit))
		for _, p := range explicit {
			abs, err := fspath.AbsFrom(types.FilesystemPath(cwd), types.FilesystemPath(p))
			if err != nil {
				return nil, fmt.Errorf("resolve search path %q: %w", p, err)
			}
			resolved = append(resolved, string(abs))
		}
		return resolved, nil
	}

	start, err := filepath.Abs(cwd)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory %q: %w", cwd, err)
	}

	paths := []string{}
	for dir := start; ; {
		root := findUp(dir, ManifestFileName)
		if root == "" {
			break
		}
		paths = append(paths, filepath.Join(root, ModulesDirName))

		parent := filepath.Dir(root)
		if parent == root {
			break
		}
		dir = parent
	}
	return paths, nil
}

// FindProjectRoot returns the nearest directory at or above cwd that holds a
// package.json, or "" when there is none.
func FindProjectRoot(cwd string) (string, error) {
	start, err := filepath.Abs(cwd)
	if err != nil {
		return "", fmt.Errorf("resolve working directory %q: %w", cwd, err)
	}
	return findUp(start, ManifestFileName), nil
}

// findUp returns the first directory from dir upwards containing a regular
// file named name.
func findUp(dir, name string) string {
	for {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
