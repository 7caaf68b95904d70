// SPDX-License-Identifier: MPL-2.0

// Package discovery finds module-declaring packages inside search paths and
// folds them into name-keyed results.
//
// File organization:
//   - discover.go: per-search-path scanning (DiscoverInSearchPath, Candidate)
//   - results.go: folding into SearchResults with primary/duplicate tracking
//   - verify.go: the read-only duplicate verification pass
//   - diagnostic.go: non-fatal diagnostics returned to callers
//
// Scanning a search path is sequential and returns candidates in filesystem
// enumeration order. Priority between search paths is applied by the caller
// when folding, so SearchResults never depends on goroutine scheduling.
package discovery
