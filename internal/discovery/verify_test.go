// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"strings"
	"testing"
)

func TestVerify(t *testing.T) {
	t.Parallel()

	r := NewSearchResults()
	r.Add("bar", PackageRevision{Path: "/one/bar", Version: "1.0.0"})
	r.Add("bar", PackageRevision{Path: "/two/bar", Version: "0.9.0"})
	r.Add("foo", PackageRevision{Path: "/one/foo", Version: "3.1.4-beta.1"})

	count, diags := Verify(r)
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %v, want 1", diags)
	}
	d := diags[0]
	if d.Code != CodeDuplicateModule || d.Severity != SeverityWarning {
		t.Errorf("diagnostic = %+v, want duplicate_module warning", d)
	}
	for _, want := range []string{`"bar"`, "/one/bar", "/two/bar", "[used]"} {
		if !strings.Contains(d.Message, want) {
			t.Errorf("message %q does not contain %q", d.Message, want)
		}
	}

	// Verify is read-only.
	bar, _ := r.Get("bar")
	if len(bar.Duplicates) != 1 {
		t.Errorf("Verify mutated duplicates: %+v", bar.Duplicates)
	}
}

func TestVerify_NonSemverVersion(t *testing.T) {
	t.Parallel()

	r := NewSearchResults()
	r.Add("odd", PackageRevision{Path: "/odd", Version: "latest"})
	r.Add("none", PackageRevision{Path: "/none"})

	count, diags := Verify(r)
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
	if len(diags) != 2 {
		t.Fatalf("diagnostics = %v, want 2", diags)
	}
	for _, d := range diags {
		if d.Code != CodeNonSemverVersion {
			t.Errorf("code = %s, want %s", d.Code, CodeNonSemverVersion)
		}
	}
}

func TestVerify_Empty(t *testing.T) {
	t.Parallel()

	count, diags := Verify(NewSearchResults())
	if count != 0 || len(diags) != 0 {
		t.Errorf("Verify(empty) = %d, %v", count, diags)
	}
}
