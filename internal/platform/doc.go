// SPDX-License-Identifier: MPL-2.0

// Package platform defines the capability a target platform implements to
// take part in autolinking, and the registry that maps platform names to
// capabilities.
//
// A Capability turns a discovered package into a platform-specific
// ModuleDescriptor and renders the generated package list for a set of
// descriptors. Implementations live in sub-packages (ios, android); the
// builtin sub-package registers them.
package platform
