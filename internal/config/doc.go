// SPDX-License-Identifier: MPL-2.0

// Package config handles autolink's own configuration using Viper with CUE as
// the file format.
//
// Configuration is loaded from ~/.config/autolink/config.cue (or XDG
// equivalent on Linux, ~/Library/Application Support/autolink/config.cue on
// macOS, %APPDATA%\autolink\config.cue on Windows), or from an explicit file.
// AUTOLINK_* environment variables override file values, e.g.
// AUTOLINK_RESOLVE_FAILURE_POLICY=isolate.
//
// Files are validated against the embedded CUE schema (config_schema.cue).
// This is tool configuration only; per-project autolinking options live in
// the project's package.json and are handled by the options package.
package config
