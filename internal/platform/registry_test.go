// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/invowk/autolink/internal/discovery"
	"github.com/invowk/autolink/pkg/types"
)

type stubCapability struct{}

func (stubCapability) ResolveModule(context.Context, types.PackageName, discovery.PackageRevision, ResolveParams) (ModuleDescriptor, error) {
	return nil, nil
}

func (stubCapability) GeneratePackageList(context.Context, []ModuleDescriptor, string, string) error {
	return nil
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if err := r.Register(types.PlatformIOS, stubCapability{}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	r.MustRegister(types.PlatformAndroid, stubCapability{})

	if _, err := r.Lookup(types.PlatformIOS); err != nil {
		t.Errorf("Lookup(ios) error = %v", err)
	}
	if got, want := r.Platforms(), []types.PlatformName{"android", "ios"}; !slices.Equal(got, want) {
		t.Errorf("Platforms() = %v, want %v", got, want)
	}
}

func TestRegistry_LookupUnsupported(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.MustRegister(types.PlatformIOS, stubCapability{})

	_, err := r.Lookup(types.PlatformWeb)
	if !errors.Is(err, ErrUnsupportedPlatform) {
		t.Fatalf("Lookup(web) error = %v, want ErrUnsupportedPlatform", err)
	}
	var upe *UnsupportedPlatformError
	if !errors.As(err, &upe) {
		t.Fatalf("error is not *UnsupportedPlatformError: %T", err)
	}
	if upe.Platform != types.PlatformWeb || !slices.Equal(upe.Supported, []types.PlatformName{"ios"}) {
		t.Errorf("UnsupportedPlatformError = %+v", upe)
	}
}

func TestRegistry_RegisterErrors(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.MustRegister(types.PlatformIOS, stubCapability{})

	if err := r.Register(types.PlatformIOS, stubCapability{}); !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("duplicate Register() error = %v, want ErrAlreadyRegistered", err)
	}
	if err := r.Register("Not Valid", stubCapability{}); !errors.Is(err, types.ErrInvalidPlatformName) {
		t.Errorf("Register(invalid) error = %v, want ErrInvalidPlatformName", err)
	}
	if err := r.Register(types.PlatformAndroid, nil); err == nil {
		t.Error("Register(nil) error = nil")
	}
}

func TestPackageInfo(t *testing.T) {
	t.Parallel()

	var d ModuleDescriptor = PackageInfo{Name: "expo-camera", Version: "13.0.0"}
	if d.PackageName() != "expo-camera" || d.PackageVersion() != "13.0.0" {
		t.Errorf("PackageInfo accessors = %s %s", d.PackageName(), d.PackageVersion())
	}
}
