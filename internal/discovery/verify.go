// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// Verify counts names that were found at more than one location and returns a
// warning per such name. Revisions whose version is not valid semver get an
// extra warning. Verify never modifies results.
func Verify(results *SearchResults) (int, []Diagnostic) {
	var (
		count       int
		diagnostics []Diagnostic
	)
	for _, name := range results.Names() {
		primary, _ := results.Get(name)

		if !isSemver(primary.Version) {
			diagnostics = append(diagnostics, Diagnostic{
				Severity: SeverityWarning,
				Code:     CodeNonSemverVersion,
				Message:  fmt.Sprintf("package %q has non-semver version %q", name, primary.Version),
				Path:     primary.Path,
			})
		}

		if !primary.HasDuplicates() {
			continue
		}
		count++

		var b strings.Builder
		fmt.Fprintf(&b, "found multiple revisions of %q\n", name)
		fmt.Fprintf(&b, "  - %s (%s) [used]\n", primary.Path, primary.Version)
		for _, dup := range primary.Duplicates {
			fmt.Fprintf(&b, "  - %s (%s)\n", dup.Path, dup.Version)
		}
		diagnostics = append(diagnostics, Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeDuplicateModule,
			Message:  strings.TrimSuffix(b.String(), "\n"),
			Path:     primary.Path,
		})
	}
	return count, diagnostics
}

// isSemver accepts npm-style versions, which omit the leading "v".
func isSemver(version string) bool {
	if version == "" {
		return false
	}
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	return semver.IsValid(version)
}
