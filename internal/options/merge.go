// SPDX-License-Identifier: MPL-2.0

package options

import (
	"maps"
	"slices"

	"github.com/invowk/autolink/pkg/types"
)

const (
	// KeySearchPaths lists the directories to scan.
	KeySearchPaths = "searchPaths"
	// KeyExclude lists package names to skip.
	KeyExclude = "exclude"
	// KeyFlags carries opaque flags passed through to platform resolvers.
	KeyFlags = "flags"
	// KeyTarget is the generated artifact path.
	KeyTarget = "target"
	// KeyNamespace is the generated artifact's namespace or package.
	KeyNamespace = "namespace"
)

// Layer is one source of autolinking options: a JSON-shaped object.
type Layer map[string]any

// OverridableKeys returns the keys a layer may set.
func OverridableKeys() []string {
	return []string{KeySearchPaths, KeyExclude, KeyFlags, KeyTarget, KeyNamespace}
}

// Merge layers base, base[platform] and provided, later layers winning.
// Values are replaced wholesale; nil values in a layer count as absent. The
// inputs are not modified.
func Merge(base Layer, platform types.PlatformName, provided Layer) Layer {
	merged := make(Layer, len(OverridableKeys()))
	apply(merged, base)
	if section, ok := base[string(platform)].(map[string]any); ok {
		apply(merged, section)
	}
	apply(merged, provided)
	return merged
}

func apply(dst Layer, src map[string]any) {
	for _, key := range OverridableKeys() {
		v, ok := src[key]
		if !ok || v == nil {
			continue
		}
		dst[key] = cloneValue(v)
	}
}

// cloneValue copies slices and maps one level deep so the merged layer does
// not alias the caller's data.
func cloneValue(v any) any {
	switch t := v.(type) {
	case []any:
		return slices.Clone(t)
	case []string:
		return slices.Clone(t)
	case map[string]any:
		return maps.Clone(t)
	default:
		return v
	}
}
