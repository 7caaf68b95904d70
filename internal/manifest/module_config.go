// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"fmt"
	"slices"

	"github.com/invowk/autolink/pkg/cueutil"
	"github.com/invowk/autolink/pkg/types"
)

const (
	// LegacyModuleConfigFileName is the older module config file name. It is
	// only read when ModuleConfigFileName is absent from the same directory.
	LegacyModuleConfigFileName = "unimodule.json"
	// ModuleConfigFileName is the current module config file name.
	ModuleConfigFileName = "expo-module.config.json"
)

// ErrInvalidModuleConfig is returned when a module config fails to parse or
// violates the module config schema.
var ErrInvalidModuleConfig = errors.New("invalid module config")

type (
	// ModuleConfig is a parsed module config file.
	ModuleConfig struct {
		// Path is the file the config was read from.
		Path types.FilesystemPath
		// Platforms lists the platforms the package declares support for.
		// A config without a "platforms" key supports no platform.
		Platforms []types.PlatformName
		// Sections holds every object-valued top-level key (e.g. "ios",
		// "android") for platform resolvers to interpret.
		Sections map[string]map[string]any
	}

	// InvalidModuleConfigError wraps a parse or schema failure for one file.
	InvalidModuleConfigError struct {
		Path  types.FilesystemPath
		Cause error
	}
)

// Error implements the error interface.
func (e *InvalidModuleConfigError) Error() string {
	return fmt.Sprintf("invalid module config %s: %v", e.Path, e.Cause)
}

// Unwrap returns both ErrInvalidModuleConfig and the underlying cause.
func (e *InvalidModuleConfigError) Unwrap() []error {
	return []error{ErrInvalidModuleConfig, e.Cause}
}

// ModuleConfigFileNames returns the recognised module config file names
// ordered from lowest to highest priority.
func ModuleConfigFileNames() []string {
	return []string{LegacyModuleConfigFileName, ModuleConfigFileName}
}

// ConfigFilePriority returns the priority of a module config file name, or
// -1 when the name is not recognised. Higher wins.
func ConfigFilePriority(name string) int {
	return slices.Index(ModuleConfigFileNames(), name)
}

// SupportsPlatform reports whether the config lists platform.
func (c *ModuleConfig) SupportsPlatform(platform types.PlatformName) bool {
	if c == nil {
		return false
	}
	return slices.Contains(c.Platforms, platform)
}

// Section returns the object stored under key (usually a platform name), or
// nil when the config has no such object.
func (c *ModuleConfig) Section(key string) map[string]any {
	if c == nil {
		return nil
	}
	return c.Sections[key]
}

func decodeModuleConfig(data []byte, path types.FilesystemPath) (*ModuleConfig, error) {
	data, err := normalizeJSON(data, string(path))
	if err != nil {
		return nil, &InvalidModuleConfigError{Path: path, Cause: err}
	}
	result, err := cueutil.ParseAndDecode[map[string]any](
		schema,
		data,
		"#ModuleConfig",
		cueutil.WithFilename(string(path)),
	)
	if err != nil {
		return nil, &InvalidModuleConfigError{Path: path, Cause: err}
	}

	raw := *result.Value
	cfg := &ModuleConfig{
		Path:     path,
		Sections: make(map[string]map[string]any),
	}

	if list, ok := raw["platforms"].([]any); ok {
		for _, p := range list {
			// The schema guarantees strings.
			if s, ok := p.(string); ok {
				cfg.Platforms = append(cfg.Platforms, types.PlatformName(s))
			}
		}
	}

	for key, value := range raw {
		if section, ok := value.(map[string]any); ok {
			cfg.Sections[key] = section
		}
	}

	return cfg, nil
}
