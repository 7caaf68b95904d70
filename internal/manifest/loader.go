// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/invowk/autolink/pkg/fspath"
	"github.com/invowk/autolink/pkg/types"
)

type (
	// Loader reads manifests and module configs from disk. A Loader created
	// with WithCache memoizes package manifests by directory for its own
	// lifetime; callers decide that lifetime (typically one CLI invocation).
	// A Loader is safe for concurrent use.
	Loader struct {
		cache bool

		mu       sync.Mutex
		packages map[types.FilesystemPath]*PackageManifest
	}

	// LoaderOption configures a Loader.
	LoaderOption func(*Loader)
)

// WithCache enables memoization of package manifests.
func WithCache() LoaderOption {
	return func(l *Loader) { l.cache = true }
}

// NewLoader creates a Loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{packages: make(map[types.FilesystemPath]*PackageManifest)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ReadPackage reads <dir>/package.json. A missing file yields an error
// wrapping ErrManifestNotFound; a malformed one an *InvalidManifestError.
func (l *Loader) ReadPackage(dir types.FilesystemPath) (*PackageManifest, error) {
	if l.cache {
		l.mu.Lock()
		m, ok := l.packages[dir]
		l.mu.Unlock()
		if ok {
			return m, nil
		}
	}

	path := fspath.JoinStr(dir, PackageManifestFileName)
	data, err := os.ReadFile(string(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	m, err := decodePackageManifest(data, path)
	if err != nil {
		return nil, err
	}
	m.Dir = dir

	if l.cache {
		l.mu.Lock()
		l.packages[dir] = m
		l.mu.Unlock()
	}
	return m, nil
}

// ReadModuleConfig reads and decodes a module config file.
func (l *Loader) ReadModuleConfig(path types.FilesystemPath) (*ModuleConfig, error) {
	data, err := os.ReadFile(string(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return decodeModuleConfig(data, path)
}
