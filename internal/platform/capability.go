// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"context"

	"github.com/invowk/autolink/internal/discovery"
	"github.com/invowk/autolink/pkg/types"
)

type (
	// ModuleDescriptor is the platform-specific description of one module.
	// Concrete descriptors embed PackageInfo.
	ModuleDescriptor interface {
		PackageName() types.PackageName
		PackageVersion() string
	}

	// PackageInfo carries the fields every descriptor shares.
	PackageInfo struct {
		Name    types.PackageName `json:"packageName"`
		Version string            `json:"packageVersion"`
	}

	// ResolveParams are the merged options a capability may consult.
	ResolveParams struct {
		Platform types.PlatformName
		Flags    map[string]any
	}

	// Capability resolves and generates for one platform.
	//
	// ResolveModule returns a nil descriptor (and nil error) when the package
	// has nothing to link on the platform. Implementations must be safe for
	// concurrent ResolveModule calls.
	Capability interface {
		ResolveModule(ctx context.Context, name types.PackageName, rev discovery.PackageRevision, params ResolveParams) (ModuleDescriptor, error)
		GeneratePackageList(ctx context.Context, descriptors []ModuleDescriptor, target, namespace string) error
	}
)

// PackageName implements ModuleDescriptor.
func (p PackageInfo) PackageName() types.PackageName { return p.Name }

// PackageVersion implements ModuleDescriptor.
func (p PackageInfo) PackageVersion() string { return p.Version }
