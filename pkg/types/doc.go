// SPDX-License-Identifier: MPL-2.0

// Package types defines small value types shared by the discovery, options and
// platform packages. Each type carries its own validation and wraps a sentinel
// error so callers can use errors.Is.
//
// This package is a leaf dependency: it imports only the standard library.
package types
