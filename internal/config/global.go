// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride replaces the platform config directory when set.
// os.UserHomeDir ignores HOME on some platforms, so tests pin the
// directory here instead.
var configDirOverride string

// SetConfigDirOverride makes ConfigDir return dir.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// Reset drops any override set by SetConfigDirOverride.
func Reset() {
	configDirOverride = ""
}
