// SPDX-License-Identifier: MPL-2.0

package generate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/invowk/autolink/internal/discovery"
	"github.com/invowk/autolink/internal/options"
	"github.com/invowk/autolink/internal/platform"
	"github.com/invowk/autolink/pkg/types"
)

type recordingCapability struct {
	err       error
	target    string
	namespace string
	count     int
}

func (r *recordingCapability) ResolveModule(context.Context, types.PackageName, discovery.PackageRevision, platform.ResolveParams) (platform.ModuleDescriptor, error) {
	return nil, nil
}

func (r *recordingCapability) GeneratePackageList(_ context.Context, ds []platform.ModuleDescriptor, target, namespace string) error {
	if r.err != nil {
		return r.err
	}
	r.target, r.namespace, r.count = target, namespace, len(ds)
	return platform.WriteTarget(target, []byte("generated"))
}

func generateOptions(p types.PlatformName, target, namespace string) options.GenerateOptions {
	var o options.GenerateOptions
	o.Platform = p
	o.Target = target
	o.Namespace = namespace
	return o
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	capability := &recordingCapability{}
	reg := platform.NewRegistry()
	reg.MustRegister(types.PlatformAndroid, capability)

	target := filepath.Join(t.TempDir(), "List.java")
	ds := []platform.ModuleDescriptor{platform.PackageInfo{Name: "a"}, platform.PackageInfo{Name: "b"}}
	res, err := New(reg).Generate(context.Background(), ds, generateOptions(types.PlatformAndroid, target, "com.app"))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if res.Target != target || res.Modules != 2 || len(res.Diagnostics) != 0 {
		t.Errorf("Result = %+v", res)
	}
	if capability.target != target || capability.namespace != "com.app" || capability.count != 2 {
		t.Errorf("capability saw %+v", capability)
	}
}

func TestGenerate_UnsupportedPlatformIsNotFatal(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), "Out.txt")
	res, err := New(platform.NewRegistry()).Generate(context.Background(), nil, generateOptions(types.PlatformWeb, target, ""))
	if err != nil {
		t.Fatalf("Generate() error = %v, want nil", err)
	}
	if res.Target != "" {
		t.Errorf("Target = %q, want empty", res.Target)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Code != discovery.CodeUnsupportedPlatform {
		t.Fatalf("Diagnostics = %v, want unsupported_platform", res.Diagnostics)
	}
	if !errors.Is(res.Diagnostics[0].Cause, platform.ErrUnsupportedPlatform) {
		t.Errorf("Cause = %v", res.Diagnostics[0].Cause)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Errorf("artifact written for unsupported platform (stat error %v)", err)
	}
}

func TestGenerate_EmitterErrorPropagates(t *testing.T) {
	t.Parallel()

	errDisk := errors.New("disk full")
	reg := platform.NewRegistry()
	reg.MustRegister(types.PlatformIOS, &recordingCapability{err: errDisk})

	_, err := New(reg).Generate(context.Background(), nil, generateOptions(types.PlatformIOS, "x.swift", ""))
	if !errors.Is(err, errDisk) {
		t.Errorf("Generate() error = %v, want %v", err, errDisk)
	}
}
