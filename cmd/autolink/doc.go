// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the CLI commands for autolink.
//
// The root command carries the global flags and the subcommands that expose
// the autolinking operations: search, resolve, verify and
// generate-package-list, plus the config command tree.
package cmd
