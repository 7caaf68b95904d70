// SPDX-License-Identifier: MPL-2.0

// Package ios links modules into Apple projects through CocoaPods and
// generates the Swift modules provider.
package ios

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-viper/mapstructure/v2"

	"github.com/invowk/autolink/internal/discovery"
	"github.com/invowk/autolink/internal/platform"
	"github.com/invowk/autolink/pkg/types"
)

// PodspecPattern locates a package's podspec, one directory deep.
const PodspecPattern = "*/*.podspec"

type (
	// ModuleDescriptor describes a pod to link.
	ModuleDescriptor struct {
		platform.PackageInfo
		PodName                string         `json:"podName"`
		PodspecDir             string         `json:"podspecDir"`
		Flags                  map[string]any `json:"flags,omitempty"`
		ModulesClassNames      []string       `json:"modulesClassNames"`
		AppDelegateSubscribers []string       `json:"appDelegateSubscribers"`
	}

	// Capability implements platform.Capability for iOS.
	Capability struct{}

	// section is the "ios" object of a module config.
	section struct {
		ModulesClassNames      []string `mapstructure:"modulesClassNames"`
		AppDelegateSubscribers []string `mapstructure:"appDelegateSubscribers"`
	}
)

// New returns the iOS capability.
func New() *Capability { return &Capability{} }

// ResolveModule returns nil when the package ships no podspec.
func (c *Capability) ResolveModule(ctx context.Context, name types.PackageName, rev discovery.PackageRevision, params platform.ResolveParams) (platform.ModuleDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	podspec, err := findPodspec(os.DirFS(rev.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to search podspec in %s: %w", rev.Path, err)
	}
	if podspec == "" {
		return nil, nil
	}

	var sec section
	if raw := rev.Config.Section(string(types.PlatformIOS)); raw != nil {
		if err := mapstructure.Decode(raw, &sec); err != nil {
			return nil, fmt.Errorf("invalid ios section in %s: %w", rev.Config.Path, err)
		}
	}

	return &ModuleDescriptor{
		PackageInfo:            platform.PackageInfo{Name: name, Version: rev.Version},
		PodName:                strings.TrimSuffix(path.Base(podspec), path.Ext(podspec)),
		PodspecDir:             filepath.Join(rev.Path, filepath.FromSlash(path.Dir(podspec))),
		Flags:                  params.Flags,
		ModulesClassNames:      nonNil(sec.ModulesClassNames),
		AppDelegateSubscribers: nonNil(sec.AppDelegateSubscribers),
	}, nil
}

// GeneratePackageList writes the Swift modules provider to target.
// namespace is unused on iOS.
func (c *Capability) GeneratePackageList(ctx context.Context, descriptors []platform.ModuleDescriptor, target, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	content, err := renderProvider(descriptors)
	if err != nil {
		return err
	}
	return platform.WriteTarget(target, content)
}

// findPodspec returns the first podspec one level below the package root,
// ignoring node_modules.
func findPodspec(fsys fs.FS) (string, error) {
	matches, err := doublestar.Glob(fsys, PodspecPattern, doublestar.WithFilesOnly())
	if err != nil {
		return "", err
	}
	for _, m := range matches {
		if strings.HasPrefix(m, "node_modules/") {
			continue
		}
		return m, nil
	}
	return "", nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
