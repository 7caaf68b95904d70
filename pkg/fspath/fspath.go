// SPDX-License-Identifier: MPL-2.0

// Package fspath provides typed wrappers around path/filepath functions that
// accept and return types.FilesystemPath, plus the two resolution helpers the
// discovery pipeline depends on: resolving a path against an explicit base
// directory (never the process working directory) and canonicalising a path
// through its symlinks.
package fspath

import (
	"fmt"
	"path/filepath"

	"github.com/invowk/autolink/pkg/types"
)

// JoinStr joins a typed base path with raw string segments, such as file
// names returned by os.ReadDir or literal file name constants.
func JoinStr(base types.FilesystemPath, elem ...string) types.FilesystemPath {
	parts := make([]string, 1, 1+len(elem))
	parts[0] = string(base)
	parts = append(parts, elem...)
	return types.FilesystemPath(filepath.Join(parts...))
}

// Clean wraps filepath.Clean for FilesystemPath.
func Clean(p types.FilesystemPath) types.FilesystemPath {
	return types.FilesystemPath(filepath.Clean(string(p)))
}

// IsAbs wraps filepath.IsAbs for FilesystemPath.
func IsAbs(p types.FilesystemPath) bool {
	return filepath.IsAbs(string(p))
}

// AbsFrom resolves p against base. Absolute inputs are only cleaned; relative
// inputs are joined onto base. base itself is made absolute with filepath.Abs
// when it is relative.
func AbsFrom(base, p types.FilesystemPath) (types.FilesystemPath, error) {
	if IsAbs(p) {
		return Clean(p), nil
	}
	absBase, err := filepath.Abs(string(base))
	if err != nil {
		return "", fmt.Errorf("resolving base directory %q: %w", base, err)
	}
	return types.FilesystemPath(filepath.Join(absBase, string(p))), nil
}

// Realpath returns the canonical absolute path of p with every symlink
// component resolved. The path must exist.
func Realpath(p types.FilesystemPath) (types.FilesystemPath, error) {
	resolved, err := filepath.EvalSymlinks(string(p))
	if err != nil {
		return "", fmt.Errorf("resolving real path of %q: %w", p, err)
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return "", fmt.Errorf("resolving absolute path of %q: %w", resolved, err)
	}
	return types.FilesystemPath(abs), nil
}
