// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/invowk/autolink/pkg/types"
)

var (
	// ErrUnsupportedPlatform is returned when no capability is registered
	// for a platform.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	// ErrAlreadyRegistered is returned when a platform is registered twice.
	ErrAlreadyRegistered = errors.New("platform already registered")
)

type (
	// UnsupportedPlatformError names the platform that has no capability.
	UnsupportedPlatformError struct {
		Platform  types.PlatformName
		Supported []types.PlatformName
	}

	// Registry maps platform names to capabilities. It is safe for
	// concurrent use.
	Registry struct {
		mu   sync.RWMutex
		caps map[types.PlatformName]Capability
	}
)

// Error implements the error interface.
func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported platform %q (supported: %v)", e.Platform, e.Supported)
}

// Unwrap returns ErrUnsupportedPlatform for errors.Is() compatibility.
func (e *UnsupportedPlatformError) Unwrap() error { return ErrUnsupportedPlatform }

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{caps: make(map[types.PlatformName]Capability)}
}

// Register adds cap under name.
func (r *Registry) Register(name types.PlatformName, c Capability) error {
	if err := name.Validate(); err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("register %q: nil capability", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.caps[name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
	}
	r.caps[name] = c
	return nil
}

// MustRegister is like Register but panics on error. It is meant for
// process start-up.
func (r *Registry) MustRegister(name types.PlatformName, c Capability) {
	if err := r.Register(name, c); err != nil {
		panic(err)
	}
}

// Lookup returns the capability for name or an *UnsupportedPlatformError.
func (r *Registry) Lookup(name types.PlatformName) (Capability, error) {
	r.mu.RLock()
	c, ok := r.caps[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &UnsupportedPlatformError{Platform: name, Supported: r.Platforms()}
	}
	return c, nil
}

// Platforms returns the registered platform names, sorted.
func (r *Registry) Platforms() []types.PlatformName {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.caps))
}
