// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestPackageName_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   PackageName
		wantErr bool
	}{
		{"plain", PackageName("expo-camera"), false},
		{"scoped", PackageName("@expo/vector-icons"), false},
		{"empty", PackageName(""), true},
		{"whitespace", PackageName("expo camera"), true},
		{"scope without name", PackageName("@expo/"), true},
		{"scope without slash", PackageName("@expo"), true},
		{"nested scoped", PackageName("@expo/a/b"), true},
		{"unscoped with slash", PackageName("expo/camera"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.value.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("PackageName(%q).Validate() error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPackageName) {
					t.Errorf("error should wrap ErrInvalidPackageName, got: %v", err)
				}
				var pnErr *InvalidPackageNameError
				if !errors.As(err, &pnErr) {
					t.Errorf("error should be *InvalidPackageNameError, got: %T", err)
				}
			}
		})
	}
}

func TestPackageName_IsScoped(t *testing.T) {
	t.Parallel()

	if !PackageName("@expo/vector-icons").IsScoped() {
		t.Error("IsScoped() = false for scoped name")
	}
	if PackageName("expo-camera").IsScoped() {
		t.Error("IsScoped() = true for unscoped name")
	}
}
