// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPackageName is the sentinel error wrapped by InvalidPackageNameError.
var ErrInvalidPackageName = errors.New("invalid package name")

type (
	// PackageName is the "name" field of a package manifest, either plain
	// ("expo-camera") or scoped ("@expo/vector-icons").
	PackageName string

	// InvalidPackageNameError is returned when a PackageName is empty, contains
	// whitespace, or is a malformed scoped name.
	InvalidPackageNameError struct {
		Value  PackageName
		Reason string
	}
)

// String returns the string representation of the PackageName.
func (n PackageName) String() string { return string(n) }

// IsScoped reports whether the name has an "@scope/" prefix.
func (n PackageName) IsScoped() bool {
	return strings.HasPrefix(string(n), "@")
}

// Validate checks the name is non-empty, has no whitespace and, when scoped,
// has exactly one "/" separating non-empty scope and name parts.
func (n PackageName) Validate() error {
	s := string(n)
	if s == "" {
		return &InvalidPackageNameError{Value: n, Reason: "must be non-empty"}
	}
	if strings.ContainsAny(s, " \t\r\n") {
		return &InvalidPackageNameError{Value: n, Reason: "must not contain whitespace"}
	}
	if !n.IsScoped() {
		if strings.Contains(s, "/") {
			return &InvalidPackageNameError{Value: n, Reason: "unscoped names must not contain '/'"}
		}
		return nil
	}
	scope, name, ok := strings.Cut(s[1:], "/")
	if !ok || scope == "" || name == "" || strings.Contains(name, "/") {
		return &InvalidPackageNameError{Value: n, Reason: "scoped names must look like @scope/name"}
	}
	return nil
}

// Error implements the error interface for InvalidPackageNameError.
func (e *InvalidPackageNameError) Error() string {
	return fmt.Sprintf("invalid package name %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidPackageName for errors.Is() compatibility.
func (e *InvalidPackageNameError) Unwrap() error { return ErrInvalidPackageName }
