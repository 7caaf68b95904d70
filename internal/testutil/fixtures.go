// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"encoding/json"
	"path/filepath"
	"testing"
)

// ModuleConfigFile is the current module config file name used by fixtures.
const ModuleConfigFile = "expo-module.config.json"

// PackageFixture describes a package to create under a node_modules
// directory.
type PackageFixture struct {
	// Name is the package name, optionally scoped ("@scope/name").
	Name    string
	Version string
	// Configs maps a module config file name to its JSON content. Nil means
	// a single expo-module.config.json declaring Platforms.
	Configs map[string]string
	// Platforms is used when Configs is nil.
	Platforms []string
	// Files maps extra relative paths to contents (e.g. "ios/Foo.podspec").
	Files map[string]string
}

// MustWriteJSON marshals v to path.
func MustWriteJSON(t testing.TB, path string, v any) {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal %s: %v", path, err)
	}
	MustWriteFile(t, path, string(data))
}

// WriteProject writes <dir>/package.json with the given expo.autolinking
// section (nil for none) and returns dir.
func WriteProject(t testing.TB, dir, name string, autolinking map[string]any) string {
	t.Helper()
	manifest := map[string]any{"name": name, "version": "1.0.0"}
	if autolinking != nil {
		manifest["expo"] = map[string]any{"autolinking": autolinking}
	}
	MustWriteJSON(t, filepath.Join(dir, "package.json"), manifest)
	return dir
}

// WritePackage creates a package directory under nodeModules and returns its
// path.
func WritePackage(t testing.TB, nodeModules string, pkg PackageFixture) string {
	t.Helper()
	dir := filepath.Join(nodeModules, filepath.FromSlash(pkg.Name))
	version := pkg.Version
	if version == "" {
		version = "1.0.0"
	}
	MustWriteJSON(t, filepath.Join(dir, "package.json"), map[string]any{
		"name":    pkg.Name,
		"version": version,
	})

	configs := pkg.Configs
	if configs == nil {
		platforms := pkg.Platforms
		if platforms == nil {
			platforms = []string{}
		}
		data, err := json.Marshal(map[string]any{"platforms": platforms})
		if err != nil {
			t.Fatalf("failed to marshal module config: %v", err)
		}
		configs = map[string]string{ModuleConfigFile: string(data)}
	}
	for file, content := range configs {
		MustWriteFile(t, filepath.Join(dir, file), content)
	}
	for rel, content := range pkg.Files {
		MustWriteFile(t, filepath.Join(dir, filepath.FromSlash(rel)), content)
	}
	return dir
}
