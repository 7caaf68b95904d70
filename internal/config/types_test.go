// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
	"time"

	"github.com/invowk/autolink/pkg/types"
)

func TestDefaultConfig_Valid(t *testing.T) {
	t.Parallel()

	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	t.Parallel()

	cfg := Config{
		DefaultPlatform: "iOS",
		LogLevel:        "loud",
		Resolve:         ResolveConfig{FailurePolicy: "retry", Concurrency: -2},
		Generate:        GenerateConfig{WatchDebounce: -time.Second},
		UI:              UIConfig{ColorScheme: "neon"},
	}
	err := cfg.Validate()
	var ice *InvalidConfigError
	if !errors.As(err, &ice) {
		t.Fatalf("error = %v, want *InvalidConfigError", err)
	}
	if len(ice.FieldErrors) != 6 {
		t.Errorf("got %d field errors, want 6: %v", len(ice.FieldErrors), ice.FieldErrors)
	}
	for _, target := range []error{ErrInvalidConfig, types.ErrInvalidPlatformName, ErrInvalidLogLevel, ErrInvalidFailurePolicy, ErrInvalidColorScheme} {
		if !errors.Is(err, target) {
			t.Errorf("error should wrap %v", target)
		}
	}
}

func TestEnumValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"color auto", ColorSchemeAuto.Validate(), nil},
		{"color bad", ColorScheme("DARK").Validate(), ErrInvalidColorScheme},
		{"level info", LogLevelInfo.Validate(), nil},
		{"level bad", LogLevel("").Validate(), ErrInvalidLogLevel},
		{"policy isolate", FailurePolicyIsolate.Validate(), nil},
		{"policy bad", FailurePolicy("failfast").Validate(), ErrInvalidFailurePolicy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.wantErr == nil {
				if tt.err != nil {
					t.Errorf("unexpected error: %v", tt.err)
				}
				return
			}
			if !errors.Is(tt.err, tt.wantErr) {
				t.Errorf("error = %v, want %v", tt.err, tt.wantErr)
			}
		})
	}
}
