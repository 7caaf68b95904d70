// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that fail the test on
// error, plus builders for on-disk project fixtures (package manifests,
// node_modules trees and module config files).
package testutil
