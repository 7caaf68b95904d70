// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates and decodes configuration documents against
// embedded CUE schemas.
//
// Every on-disk document the autolinker reads (package.json manifests, module
// config files, the tool's own config.cue) goes through the same flow:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify it with the schema definition
//  3. Validate and decode to a Go value
//
// JSON is a subset of CUE, so JSON documents need no separate parser.
//
// # Usage
//
//	//go:embed schema.cue
//	var schema []byte
//
//	m, err := cueutil.ParseAndDecode[Manifest](
//	    schema,
//	    data,
//	    "#PackageManifest",
//	    cueutil.WithFilename("package.json"),
//	)
package cueutil
