// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

type (
	tomlConfig struct {
		DefaultPlatform string       `toml:"default_platform"`
		LogLevel        string       `toml:"log_level"`
		Resolve         tomlResolve  `toml:"resolve"`
		Generate        tomlGenerate `toml:"generate"`
		UI              tomlUI       `toml:"ui"`
	}

	tomlResolve struct {
		FailurePolicy string `toml:"failure_policy"`
		Concurrency   int    `toml:"concurrency"`
	}

	tomlGenerate struct {
		WatchDebounce string `toml:"watch_debounce"`
	}

	tomlUI struct {
		ColorScheme string `toml:"color_scheme"`
		Verbose     bool   `toml:"verbose"`
	}
)

// GenerateTOML renders cfg as TOML with the same keys as the CUE file.
// Durations are written in time.ParseDuration syntax.
func GenerateTOML(cfg *Config) (string, error) {
	doc := tomlConfig{
		DefaultPlatform: string(cfg.DefaultPlatform),
		LogLevel:        string(cfg.LogLevel),
		Resolve: tomlResolve{
			FailurePolicy: string(cfg.Resolve.FailurePolicy),
			Concurrency:   cfg.Resolve.Concurrency,
		},
		Generate: tomlGenerate{WatchDebounce: cfg.Generate.WatchDebounce.String()},
		UI: tomlUI{
			ColorScheme: string(cfg.UI.ColorScheme),
			Verbose:     cfg.UI.Verbose,
		},
	}

	data, err := toml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode config as TOML: %w", err)
	}
	return string(data), nil
}
