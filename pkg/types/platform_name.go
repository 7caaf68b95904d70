// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// PlatformIOS is the Apple platform identifier.
	PlatformIOS PlatformName = "ios"
	// PlatformAndroid is the Android platform identifier.
	PlatformAndroid PlatformName = "android"
	// PlatformWeb is recognised in module configs but has no code generator.
	PlatformWeb PlatformName = "web"
)

// ErrInvalidPlatformName is the sentinel error wrapped by InvalidPlatformNameError.
var ErrInvalidPlatformName = errors.New("invalid platform name")

type (
	// PlatformName identifies a target platform ("ios", "android", ...).
	// Platform names are lower-case identifiers without whitespace. The set of
	// names is open: module configs may declare platforms this tool has no
	// resolver for.
	PlatformName string

	// InvalidPlatformNameError is returned when a PlatformName is empty or
	// contains characters outside [a-z0-9_-].
	InvalidPlatformNameError struct {
		Value PlatformName
	}
)

// String returns the string representation of the PlatformName.
func (p PlatformName) String() string { return string(p) }

// Validate returns nil when the platform name is a non-empty lower-case identifier.
func (p PlatformName) Validate() error {
	if strings.TrimSpace(string(p)) == "" {
		return &InvalidPlatformNameError{Value: p}
	}
	for _, r := range string(p) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return &InvalidPlatformNameError{Value: p}
		}
	}
	return nil
}

// Error implements the error interface for InvalidPlatformNameError.
func (e *InvalidPlatformNameError) Error() string {
	return fmt.Sprintf("invalid platform name %q: must be a lower-case identifier", e.Value)
}

// Unwrap returns ErrInvalidPlatformName for errors.Is() compatibility.
func (e *InvalidPlatformNameError) Unwrap() error { return ErrInvalidPlatformName }
