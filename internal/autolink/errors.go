// SPDX-License-Identifier: MPL-2.0

package autolink

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/invowk/autolink/internal/issue"
	"github.com/invowk/autolink/internal/manifest"
	"github.com/invowk/autolink/internal/options"
	"github.com/invowk/autolink/internal/platform"
	"github.com/invowk/autolink/internal/platform/android"
	"github.com/invowk/autolink/internal/resolver"
	"github.com/invowk/autolink/pkg/types"
)

// wrapError turns err into an *issue.ActionableError for operation and
// resource, choosing suggestions and a catalog issue from the error chain.
// Context cancellation passes through unchanged.
func wrapError(err error, operation, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	ec := issue.NewErrorContext().
		WithOperation(operation).
		WithResource(resource).
		Wrap(err)

	var (
		unsupported *platform.UnsupportedPlatformError
		moduleErr   *resolver.ModuleError
	)
	switch {
	case errors.As(err, &unsupported):
		ec.WithIssue(issue.UnsupportedPlatformId).
			WithSuggestion(fmt.Sprintf("Use one of the supported platforms: %s", joinPlatforms(unsupported.Supported)))
	case errors.Is(err, platform.ErrUnsupportedPlatform):
		ec.WithIssue(issue.UnsupportedPlatformId)
	case errors.As(err, &moduleErr):
		ec.WithResource(moduleErr.Path).
			WithIssue(issue.ModuleResolveFailedId).
			WithSuggestions(
				fmt.Sprintf("Check the native project files of %s", moduleErr.Package),
				"Exclude the package, or rerun with the isolate failure policy to skip it",
			)
	case errors.Is(err, manifest.ErrInvalidModuleConfig):
		ec.WithIssue(issue.ModuleConfigParseErrorId).
			WithSuggestion("Fix the JSON syntax of the module config, or reinstall the package")
	case errors.Is(err, manifest.ErrInvalidManifest):
		ec.WithIssue(issue.ManifestParseErrorId).
			WithSuggestion("Fix the JSON syntax of package.json")
	case errors.Is(err, fs.ErrPermission):
		ec.WithIssue(issue.PermissionDeniedId).
			WithSuggestion("Check the permissions of the path")
	case errors.Is(err, types.ErrInvalidPlatformName):
		ec.WithSuggestion("Platform names are lower-case identifiers such as ios or android")
	case errors.Is(err, types.ErrInvalidPackageName):
		ec.WithSuggestion("Excluded names must be valid package names such as expo-camera or @expo/vector-icons")
	case errors.Is(err, options.ErrInvalidOptions):
		ec.WithIssue(issue.ManifestParseErrorId).
			WithSuggestion("Check the types of the expo.autolinking section in package.json")
	case errors.Is(err, platform.ErrInvalidTarget):
		ec.WithIssue(issue.GenerateFailedId).
			WithSuggestion("Pass a file path with --target")
	case errors.Is(err, android.ErrInvalidNamespace):
		ec.WithIssue(issue.GenerateFailedId).
			WithSuggestion("Pass a Java package name such as expo.modules with --namespace")
	case errors.Is(err, resolver.ErrInvalidFailurePolicy):
		ec.WithSuggestion(fmt.Sprintf("Set resolve.failure_policy to %q or %q", resolver.FailFast, resolver.Isolate))
	case operation == "generate package list":
		ec.WithIssue(issue.GenerateFailedId)
	}

	return ec.Build()
}

func joinPlatforms(names []types.PlatformName) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return strings.Join(parts, ", ")
}
