// SPDX-License-Identifier: MPL-2.0

// Package options merges the layered autolinking configuration into the
// effective option set used by discovery, resolution and generation.
//
// Three layers are applied in order, each later layer replacing whole
// top-level values of the earlier ones:
//
//  1. the expo.autolinking section of the project's package.json
//  2. the platform-specific object inside that section (e.g. "ios")
//  3. options provided by the caller (CLI flags)
//
// Nested objects are never merged key by key, and only OverridableKeys
// survive the merge.
package options
