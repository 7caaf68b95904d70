// SPDX-License-Identifier: MPL-2.0

// Package builtin assembles the registry of platforms shipped with autolink.
package builtin

import (
	"github.com/invowk/autolink/internal/platform"
	"github.com/invowk/autolink/internal/platform/android"
	"github.com/invowk/autolink/internal/platform/ios"
	"github.com/invowk/autolink/pkg/types"
)

// NewRegistry returns a registry with the ios and android capabilities.
func NewRegistry() *platform.Registry {
	r := platform.NewRegistry()
	r.MustRegister(types.PlatformIOS, ios.New())
	r.MustRegister(types.PlatformAndroid, android.New())
	return r
}
