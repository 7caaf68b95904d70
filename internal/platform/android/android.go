// SPDX-License-Identifier: MPL-2.0

// Package android links modules into Gradle projects and generates the Java
// package list.
package android

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-viper/mapstructure/v2"

	"github.com/invowk/autolink/internal/discovery"
	"github.com/invowk/autolink/internal/platform"
	"github.com/invowk/autolink/pkg/types"
)

const (
	// BuildGradlePattern locates a package's Gradle project, one directory deep.
	BuildGradlePattern = "*/build.gradle"
	// PackageSourcePattern locates ReactPackage-style classes in a project.
	PackageSourcePattern = "src/**/*Package.{java,kt}"
)

var (
	nonWordRun  = regexp.MustCompile(`\W+`)
	packageDecl = regexp.MustCompile(`(?m)^\s*package\s+([\w.]+)\s*;?\s*$`)
)

type (
	// ModuleDescriptor describes a Gradle project to link.
	ModuleDescriptor struct {
		platform.PackageInfo
		ProjectName       string   `json:"projectName"`
		SourceDir         string   `json:"sourceDir"`
		ModulesClassNames []string `json:"modulesClassNames"`
		// Packages are fully qualified class names of the project's packages.
		Packages []string `json:"packages"`
	}

	// Capability implements platform.Capability for Android.
	Capability struct{}

	section struct {
		ModulesClassNames []string `mapstructure:"modulesClassNames"`
	}
)

// New returns the Android capability.
func New() *Capability { return &Capability{} }

// ProjectName converts a package name to a Gradle project name: the scope
// marker is dropped and every run of non-word characters becomes "-".
func ProjectName(name types.PackageName) string {
	return nonWordRun.ReplaceAllString(strings.TrimPrefix(string(name), "@"), "-")
}

// ResolveModule returns nil when the package has no Gradle project.
func (c *Capability) ResolveModule(ctx context.Context, name types.PackageName, rev discovery.PackageRevision, _ platform.ResolveParams) (platform.ModuleDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	gradle, err := firstMatch(os.DirFS(rev.Path), BuildGradlePattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search build.gradle in %s: %w", rev.Path, err)
	}
	if gradle == "" {
		return nil, nil
	}
	sourceDir := filepath.Join(rev.Path, filepath.FromSlash(path.Dir(gradle)))

	var sec section
	if raw := rev.Config.Section(string(types.PlatformAndroid)); raw != nil {
		if err := mapstructure.Decode(raw, &sec); err != nil {
			return nil, fmt.Errorf("invalid android section in %s: %w", rev.Config.Path, err)
		}
	}

	packages, err := findPackages(sourceDir)
	if err != nil {
		return nil, err
	}

	modules := sec.ModulesClassNames
	if modules == nil {
		modules = []string{}
	}
	return &ModuleDescriptor{
		PackageInfo:       platform.PackageInfo{Name: name, Version: rev.Version},
		ProjectName:       ProjectName(name),
		SourceDir:         sourceDir,
		ModulesClassNames: modules,
		Packages:          packages,
	}, nil
}

// GeneratePackageList writes ExpoModulesPackageList.java into target, in
// the Java package namespace.
func (c *Capability) GeneratePackageList(ctx context.Context, descriptors []platform.ModuleDescriptor, target, namespace string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	content, err := renderPackageList(descriptors, namespace)
	if err != nil {
		return err
	}
	return platform.WriteTarget(target, content)
}

func firstMatch(fsys fs.FS, pattern string) (string, error) {
	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return "", err
	}
	for _, m := range matches {
		if !strings.HasPrefix(m, "node_modules/") {
			return m, nil
		}
	}
	return "", nil
}

// findPackages returns the fully qualified names of package classes under
// sourceDir/src. Files without a package declaration are skipped.
func findPackages(sourceDir string) ([]string, error) {
	fsys := os.DirFS(sourceDir)
	matches, err := doublestar.Glob(fsys, PackageSourcePattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to search packages in %s: %w", sourceDir, err)
	}

	packages := []string{}
	for _, m := range matches {
		data, err := fs.ReadFile(fsys, m)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", m, err)
		}
		decl := packageDecl.FindSubmatch(data)
		if decl == nil {
			continue
		}
		class := strings.TrimSuffix(path.Base(m), path.Ext(m))
		packages = append(packages, string(decl[1])+"."+class)
	}
	return packages, nil
}
