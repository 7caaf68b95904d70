// SPDX-License-Identifier: MPL-2.0

// Package manifest reads the two kinds of JSON documents the autolinker
// consumes: package manifests (package.json) and module config files
// (expo-module.config.json and the legacy unimodule.json).
//
// Both are validated against the embedded schema.cue before decoding. Reads
// go through a Loader value that callers create per invocation; there is no
// process-wide cache.
package manifest
