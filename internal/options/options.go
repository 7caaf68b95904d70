// SPDX-License-Identifier: MPL-2.0

package options

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/go-viper/mapstructure/v2"

	"github.com/invowk/autolink/pkg/types"
)

// ErrInvalidOptions is returned when a merged layer cannot be decoded.
var ErrInvalidOptions = errors.New("invalid autolinking options")

type (
	// SearchOptions controls which packages are discovered.
	SearchOptions struct {
		Platform    types.PlatformName  `mapstructure:"-" json:"platform"`
		SearchPaths []string            `mapstructure:"searchPaths" json:"searchPaths"`
		Exclude     []types.PackageName `mapstructure:"exclude" json:"exclude,omitempty"`
	}

	// ResolveOptions adds resolver flags to SearchOptions.
	ResolveOptions struct {
		SearchOptions `mapstructure:",squash"`
		Flags         map[string]any `mapstructure:"flags" json:"flags,omitempty"`
	}

	// GenerateOptions adds the generated artifact's location to ResolveOptions.
	GenerateOptions struct {
		ResolveOptions `mapstructure:",squash"`
		Target         string `mapstructure:"target" json:"target,omitempty"`
		Namespace      string `mapstructure:"namespace" json:"namespace,omitempty"`
	}

	// Provided holds options given explicitly by the caller. Zero fields are
	// left to the lower layers.
	Provided struct {
		Platform    types.PlatformName
		SearchPaths []string
		Exclude     []string
		Flags       map[string]any
		Target      string
		Namespace   string
	}
)

// Decode converts a merged layer into GenerateOptions for platform.
func Decode(layer Layer, platform types.PlatformName) (GenerateOptions, error) {
	var out GenerateOptions
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &out,
		TagName: "mapstructure",
	})
	if err != nil {
		return GenerateOptions{}, err
	}
	if err := dec.Decode(map[string]any(layer)); err != nil {
		return GenerateOptions{}, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	out.Platform = platform
	return out, nil
}

// Layer returns the non-zero provided options as a Layer.
func (p Provided) Layer() Layer {
	l := Layer{}
	if len(p.SearchPaths) > 0 {
		l[KeySearchPaths] = slices.Clone(p.SearchPaths)
	}
	if len(p.Exclude) > 0 {
		l[KeyExclude] = slices.Clone(p.Exclude)
	}
	if len(p.Flags) > 0 {
		l[KeyFlags] = maps.Clone(p.Flags)
	}
	if p.Target != "" {
		l[KeyTarget] = p.Target
	}
	if p.Namespace != "" {
		l[KeyNamespace] = p.Namespace
	}
	return l
}

// Validate checks the platform and excluded names.
func (o SearchOptions) Validate() error {
	if err := o.Platform.Validate(); err != nil {
		return err
	}
	for _, name := range o.Exclude {
		if err := name.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a copy that shares no slices with o.
func (o SearchOptions) Clone() SearchOptions {
	o.SearchPaths = slices.Clone(o.SearchPaths)
	o.Exclude = slices.Clone(o.Exclude)
	return o
}

// Clone returns a copy that shares no slices or maps with o.
func (o ResolveOptions) Clone() ResolveOptions {
	o.SearchOptions = o.SearchOptions.Clone()
	o.Flags = maps.Clone(o.Flags)
	return o
}

// Clone returns a copy that shares no slices or maps with o.
func (o GenerateOptions) Clone() GenerateOptions {
	o.ResolveOptions = o.ResolveOptions.Clone()
	return o
}
