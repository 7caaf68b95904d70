// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidTarget is returned when a generation target path is unusable.
var ErrInvalidTarget = errors.New("invalid generation target")

// windowsReservedNames are filenames that cannot be used on Windows,
// regardless of extension.
var windowsReservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"COM5": true, "COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true,
	"LPT5": true, "LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// IsWindowsReservedName checks if a filename is a Windows reserved name.
// It handles filenames with extensions by checking just the base name portion.
func IsWindowsReservedName(name string) bool {
	upper := strings.ToUpper(name)
	if idx := strings.LastIndex(upper, "."); idx != -1 {
		upper = upper[:idx]
	}
	return windowsReservedNames[upper]
}

// ValidateTarget rejects empty targets, directories, and file names that
// cannot exist on every platform generated projects are checked out on.
func ValidateTarget(target string) error {
	if strings.TrimSpace(target) == "" {
		return fmt.Errorf("%w: target path is empty", ErrInvalidTarget)
	}
	base := filepath.Base(target)
	if IsWindowsReservedName(base) {
		return fmt.Errorf("%w: %q is a reserved file name", ErrInvalidTarget, base)
	}
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInvalidTarget, target)
	}
	return nil
}

// WriteTarget writes content to target, creating parent directories.
func WriteTarget(target string, content []byte) error {
	if err := ValidateTarget(target); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", target, err)
	}
	if err := os.WriteFile(target, content, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return nil
}
