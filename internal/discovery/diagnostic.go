// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"
	"fmt"
)

const (
	// SeverityWarning indicates a recoverable discovery warning.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a non-fatal error diagnostic.
	SeverityError Severity = "error"
)

const (
	// CodeModuleManifestMissing reports a config file whose package has no package.json.
	CodeModuleManifestMissing DiagnosticCode = "module_manifest_missing"
	// CodeModuleNameInvalid reports a package.json without a usable name.
	CodeModuleNameInvalid DiagnosticCode = "module_name_invalid"
	// CodeDuplicateModule reports a module found at more than one location.
	CodeDuplicateModule DiagnosticCode = "duplicate_module"
	// CodeNonSemverVersion reports a revision whose version is not semver.
	CodeNonSemverVersion DiagnosticCode = "non_semver_version"
	// CodeModuleResolveFailed reports a package dropped after its platform
	// resolver failed under the isolate policy.
	CodeModuleResolveFailed DiagnosticCode = "module_resolve_failed"
	// CodeUnsupportedPlatform reports a generation request for a platform
	// without a registered generator.
	CodeUnsupportedPlatform DiagnosticCode = "unsupported_platform"
	// CodeConfigLoadFailed reports a tool config that could not be loaded;
	// defaults were used instead.
	CodeConfigLoadFailed DiagnosticCode = "config_load_failed"
)

var (
	// ErrInvalidSeverity is returned when a Severity value is not recognized.
	ErrInvalidSeverity = errors.New("invalid severity")
	// ErrInvalidDiagnosticCode is returned when a DiagnosticCode value is not recognized.
	ErrInvalidDiagnosticCode = errors.New("invalid diagnostic code")
)

type (
	// Severity represents discovery diagnostic severity.
	Severity string

	// DiagnosticCode is a machine-readable diagnostic identifier.
	DiagnosticCode string

	// Diagnostic represents a structured diagnostic that is returned
	// to callers (rather than written to stderr) for consistent rendering policy.
	Diagnostic struct {
		// Severity is the diagnostic level (warning or error).
		Severity Severity
		// Code is a machine-readable identifier (e.g., "duplicate_module").
		Code DiagnosticCode
		// Message is the human-readable description.
		Message string
		// Path is the file path associated with this diagnostic (optional).
		Path string
		// Cause is the underlying error (optional, for programmatic inspection).
		Cause error
	}
)

// Validate returns an error wrapping ErrInvalidSeverity for unknown values.
func (s Severity) Validate() error {
	switch s {
	case SeverityWarning, SeverityError:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSeverity, string(s))
	}
}

// Validate returns an error wrapping ErrInvalidDiagnosticCode for unknown values.
func (c DiagnosticCode) Validate() error {
	switch c {
	case CodeModuleManifestMissing, CodeModuleNameInvalid, CodeDuplicateModule,
		CodeNonSemverVersion, CodeModuleResolveFailed, CodeUnsupportedPlatform,
		CodeConfigLoadFailed:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDiagnosticCode, string(c))
	}
}

// String returns the human-readable form of the diagnostic.
func (d Diagnostic) String() string {
	if d.Path == "" {
		return fmt.Sprintf("%s [%s] %s", d.Severity, d.Code, d.Message)
	}
	return fmt.Sprintf("%s [%s] %s (%s)", d.Severity, d.Code, d.Message, d.Path)
}

// HasErrors reports whether any diagnostic has error severity.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
