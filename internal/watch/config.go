// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrInvalidWatchConfig is the sentinel wrapped by InvalidWatchConfigError.
var ErrInvalidWatchConfig = errors.New("invalid watch config")

// InvalidWatchConfigError collects every field problem found by Config.Validate.
type InvalidWatchConfigError struct {
	FieldErrors []error
}

func (e *InvalidWatchConfigError) Error() string {
	return fmt.Sprintf("%s: %d field error(s): %v", ErrInvalidWatchConfig, len(e.FieldErrors), errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidWatchConfig for errors.Is() compatibility.
func (e *InvalidWatchConfigError) Unwrap() error { return ErrInvalidWatchConfig }

// Validate checks the roots, patterns and debounce of the config.
func (c Config) Validate() error {
	var errs []error
	if len(c.Roots) == 0 {
		errs = append(errs, errors.New("at least one root is required"))
	}
	for i, r := range c.Roots {
		if strings.TrimSpace(r.Dir) == "" {
			errs = append(errs, fmt.Errorf("roots[%d]: directory must not be empty", i))
		}
		if r.MaxDepth < 0 {
			errs = append(errs, fmt.Errorf("roots[%d]: max depth %d must not be negative", i, r.MaxDepth))
		}
		errs = append(errs, validatePatterns(r.Patterns, fmt.Sprintf("roots[%d] watch", i))...)
	}
	errs = append(errs, validatePatterns(c.Ignore, "ignore")...)
	if c.Debounce < 0 {
		errs = append(errs, fmt.Errorf("debounce %s must not be negative", c.Debounce))
	}

	if len(errs) > 0 {
		return &InvalidWatchConfigError{FieldErrors: errs}
	}
	return nil
}

func validatePatterns(patterns []string, label string) []error {
	var errs []error
	for _, pat := range patterns {
		if pat == "" {
			errs = append(errs, fmt.Errorf("%s pattern must not be empty", label))
			continue
		}
		if !doublestar.ValidatePattern(pat) {
			errs = append(errs, fmt.Errorf("invalid %s pattern %q", label, pat))
		}
	}
	return errs
}
