// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	_ "embed"
	"errors"
	"fmt"
	"maps"

	"github.com/invowk/autolink/pkg/cueutil"
	"github.com/invowk/autolink/pkg/types"
)

// PackageManifestFileName is the file name of a package manifest.
const PackageManifestFileName = "package.json"

//go:embed schema.cue
var schema []byte

var (
	// ErrManifestNotFound is returned when a directory has no package.json.
	ErrManifestNotFound = errors.New("package manifest not found")
	// ErrInvalidManifest is returned when a package.json fails to parse or
	// violates the manifest schema.
	ErrInvalidManifest = errors.New("invalid package manifest")
)

type (
	// PackageManifest is the subset of package.json the autolinker reads.
	PackageManifest struct {
		Name    types.PackageName `json:"name"`
		Version string            `json:"version"`
		Expo    *ExpoSection      `json:"expo,omitempty"`

		// Dir is the directory containing the manifest. Not part of the file.
		Dir types.FilesystemPath `json:"-"`
	}

	// ExpoSection is the "expo" key of a project manifest.
	ExpoSection struct {
		// Autolinking holds base linking options plus per-platform override
		// objects keyed by platform name. Kept untyped so the options layer
		// can merge it key by key.
		Autolinking map[string]any `json:"autolinking,omitempty"`
	}

	// InvalidManifestError wraps a parse or schema failure for one file.
	InvalidManifestError struct {
		Path  types.FilesystemPath
		Cause error
	}
)

// Error implements the error interface.
func (e *InvalidManifestError) Error() string {
	return fmt.Sprintf("invalid manifest %s: %v", e.Path, e.Cause)
}

// Unwrap returns both ErrInvalidManifest and the underlying cause.
func (e *InvalidManifestError) Unwrap() []error {
	return []error{ErrInvalidManifest, e.Cause}
}

// AutolinkingOptions returns a copy of the expo.autolinking section, or an
// empty map when the manifest has none.
func (m *PackageManifest) AutolinkingOptions() map[string]any {
	if m == nil || m.Expo == nil || m.Expo.Autolinking == nil {
		return map[string]any{}
	}
	return maps.Clone(m.Expo.Autolinking)
}

func decodePackageManifest(data []byte, path types.FilesystemPath) (*PackageManifest, error) {
	data, err := normalizeJSON(data, string(path))
	if err != nil {
		return nil, &InvalidManifestError{Path: path, Cause: err}
	}
	result, err := cueutil.ParseAndDecode[PackageManifest](
		schema,
		data,
		"#PackageManifest",
		cueutil.WithFilename(string(path)),
	)
	if err != nil {
		return nil, &InvalidManifestError{Path: path, Cause: err}
	}
	return result.Value, nil
}
