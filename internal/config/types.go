// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/invowk/autolink/pkg/types"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"

	// FailurePolicyFailFast aborts resolution on the first failing package.
	// Defined locally to avoid coupling config to the resolver package.
	FailurePolicyFailFast FailurePolicy = "fail-fast"
	// FailurePolicyIsolate drops failing packages and keeps going.
	FailurePolicyIsolate FailurePolicy = "isolate"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidFailurePolicy is returned when a FailurePolicy value is not recognized.
	ErrInvalidFailurePolicy = errors.New("invalid failure policy")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// LogLevel is the minimum level of log records written to stderr.
	LogLevel string

	// FailurePolicy selects how module resolution treats per-package failures.
	FailurePolicy string

	// Config holds the tool configuration.
	Config struct {
		// DefaultPlatform is used when --platform is not given.
		DefaultPlatform types.PlatformName `json:"default_platform" mapstructure:"default_platform"`
		// LogLevel sets the default log level.
		LogLevel LogLevel       `json:"log_level" mapstructure:"log_level"`
		Resolve  ResolveConfig  `json:"resolve" mapstructure:"resolve"`
		Generate GenerateConfig `json:"generate" mapstructure:"generate"`
		UI       UIConfig       `json:"ui" mapstructure:"ui"`
	}

	// ResolveConfig configures module resolution.
	ResolveConfig struct {
		FailurePolicy FailurePolicy `json:"failure_policy" mapstructure:"failure_policy"`
		// Concurrency caps concurrent platform resolver calls; 0 means unlimited.
		Concurrency int `json:"concurrency" mapstructure:"concurrency"`
	}

	// GenerateConfig configures package list generation.
	GenerateConfig struct {
		// WatchDebounce delays regeneration after a change in watch mode.
		WatchDebounce time.Duration `json:"watch_debounce" mapstructure:"watch_debounce"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// InvalidConfigError collects every invalid field of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultPlatform: types.PlatformIOS,
		LogLevel:        LogLevelWarn,
		Resolve: ResolveConfig{
			FailurePolicy: FailurePolicyFailFast,
		},
		Generate: GenerateConfig{
			WatchDebounce: 300 * time.Millisecond,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// Validate returns an error wrapping ErrInvalidColorScheme for unknown values.
func (c ColorScheme) Validate() error {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidColorScheme, string(c))
	}
}

// Validate returns an error wrapping ErrInvalidLogLevel for unknown values.
func (l LogLevel) Validate() error {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, string(l))
	}
}

// Validate returns an error wrapping ErrInvalidFailurePolicy for unknown values.
func (p FailurePolicy) Validate() error {
	switch p {
	case FailurePolicyFailFast, FailurePolicyIsolate:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFailurePolicy, string(p))
	}
}

// Validate checks every field and returns an *InvalidConfigError listing
// all problems.
func (c Config) Validate() error {
	var errs []error
	if err := c.DefaultPlatform.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.LogLevel.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Resolve.FailurePolicy.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Resolve.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("resolve.concurrency must be >= 0, got %d", c.Resolve.Concurrency))
	}
	if c.Generate.WatchDebounce < 0 {
		errs = append(errs, fmt.Errorf("generate.watch_debounce must be >= 0, got %s", c.Generate.WatchDebounce))
	}
	if err := c.UI.ColorScheme.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig and every field error.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}
