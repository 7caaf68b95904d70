// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/invowk/autolink/internal/discovery"
	"github.com/invowk/autolink/internal/options"
	"github.com/invowk/autolink/internal/platform"
	"github.com/invowk/autolink/pkg/types"
)

var errBoom = errors.New("boom")

// fakeCapability resolves every package to a PackageInfo, except those it is
// told to skip or fail. Delays make completion order differ from input order.
type fakeCapability struct {
	absent  map[types.PackageName]bool
	fail    map[types.PackageName]bool
	delay   map[types.PackageName]time.Duration
	running atomic.Int32
	peak    atomic.Int32
}

func (f *fakeCapability) ResolveModule(ctx context.Context, name types.PackageName, rev discovery.PackageRevision, _ platform.ResolveParams) (platform.ModuleDescriptor, error) {
	n := f.running.Add(1)
	defer f.running.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	select {
	case <-time.After(f.delay[name]):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if f.fail[name] {
		return nil, errBoom
	}
	if f.absent[name] {
		return nil, nil
	}
	return platform.PackageInfo{Name: name, Version: rev.Version}, nil
}

func (f *fakeCapability) GeneratePackageList(context.Context, []platform.ModuleDescriptor, string, string) error {
	return nil
}

func newResults(names ...types.PackageName) *discovery.SearchResults {
	r := discovery.NewSearchResults()
	for _, n := range names {
		r.Add(n, discovery.PackageRevision{Path: "/nm/" + string(n), Version: "1.0.0"})
	}
	return r
}

func newResolver(c platform.Capability, opts ...Option) *Resolver {
	reg := platform.NewRegistry()
	reg.MustRegister(types.PlatformIOS, c)
	return New(reg, opts...)
}

func iosOptions() options.ResolveOptions {
	var o options.ResolveOptions
	o.Platform = types.PlatformIOS
	return o
}

func descriptorNames(ds []platform.ModuleDescriptor) []types.PackageName {
	names := make([]types.PackageName, 0, len(ds))
	for _, d := range ds {
		names = append(names, d.PackageName())
	}
	return names
}

func TestResolve_SortedByName(t *testing.T) {
	t.Parallel()

	capability := &fakeCapability{delay: map[types.PackageName]time.Duration{
		"zeta":  0,
		"alpha": 20 * time.Millisecond,
		"mango": 10 * time.Millisecond,
	}}
	got, diags, err := newResolver(capability).Resolve(context.Background(), newResults("zeta", "alpha", "mango"), iosOptions())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(diags) != 0 {
		t.Errorf("diagnostics = %v", diags)
	}
	if names, want := descriptorNames(got), []types.PackageName{"alpha", "mango", "zeta"}; !slices.Equal(names, want) {
		t.Errorf("order = %v, want %v", names, want)
	}
}

func TestResolve_AbsentDropped(t *testing.T) {
	t.Parallel()

	capability := &fakeCapability{absent: map[types.PackageName]bool{"b": true}}
	got, _, err := newResolver(capability).Resolve(context.Background(), newResults("a", "b", "c"), iosOptions())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if names, want := descriptorNames(got), []types.PackageName{"a", "c"}; !slices.Equal(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}
}

func TestResolve_Empty(t *testing.T) {
	t.Parallel()

	got, diags, err := newResolver(&fakeCapability{}).Resolve(context.Background(), discovery.NewSearchResults(), iosOptions())
	if err != nil || len(got) != 0 || len(diags) != 0 {
		t.Errorf("Resolve(empty) = %v, %v, %v", got, diags, err)
	}
}

func TestResolve_FailFast(t *testing.T) {
	t.Parallel()

	capability := &fakeCapability{
		fail:  map[types.PackageName]bool{"bad": true},
		delay: map[types.PackageName]time.Duration{"slow": 5 * time.Second},
	}
	start := time.Now()
	got, _, err := newResolver(capability).Resolve(context.Background(), newResults("good", "bad", "slow"), iosOptions())
	if !errors.Is(err, errBoom) {
		t.Fatalf("Resolve() error = %v, want errBoom", err)
	}
	var merr *ModuleError
	if !errors.As(err, &merr) || merr.Package != "bad" {
		t.Errorf("error = %#v, want *ModuleError for bad", err)
	}
	if got != nil {
		t.Errorf("descriptors = %v, want nil", got)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("fail-fast did not cancel the slow call (took %v)", elapsed)
	}
}

func TestResolve_Isolate(t *testing.T) {
	t.Parallel()

	capability := &fakeCapability{fail: map[types.PackageName]bool{"bad": true}}
	got, diags, err := newResolver(capability, WithPolicy(Isolate)).Resolve(context.Background(), newResults("good", "bad", "also-good"), iosOptions())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if names, want := descriptorNames(got), []types.PackageName{"also-good", "good"}; !slices.Equal(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %v, want 1", diags)
	}
	d := diags[0]
	if d.Code != discovery.CodeModuleResolveFailed || d.Severity != discovery.SeverityError || d.Path != "/nm/bad" {
		t.Errorf("diagnostic = %+v", d)
	}
	if !errors.Is(d.Cause, errBoom) {
		t.Errorf("Cause = %v, want errBoom", d.Cause)
	}
}

func TestResolve_CancelledContext(t *testing.T) {
	t.Parallel()

	for _, policy := range []FailurePolicy{FailFast, Isolate} {
		t.Run(string(policy), func(t *testing.T) {
			t.Parallel()

			capability := &fakeCapability{delay: map[types.PackageName]time.Duration{
				"first":  5 * time.Second,
				"second": 5 * time.Second,
			}}
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()

			got, diags, err := newResolver(capability, WithPolicy(policy)).Resolve(ctx, newResults("first", "second"), iosOptions())
			if !errors.Is(err, context.DeadlineExceeded) {
				t.Fatalf("Resolve() error = %v, want context.DeadlineExceeded", err)
			}
			var merr *ModuleError
			if errors.As(err, &merr) {
				t.Errorf("error = %#v, want the bare context error", err)
			}
			if got != nil || diags != nil {
				t.Errorf("descriptors = %v, diagnostics = %v, want nil", got, diags)
			}
		})
	}
}

func TestResolve_AlreadyCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := newResolver(&fakeCapability{}, WithPolicy(Isolate)).Resolve(ctx, newResults("good"), iosOptions())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Resolve() error = %v, want context.Canceled", err)
	}
}

func TestResolve_UnsupportedPlatform(t *testing.T) {
	t.Parallel()

	opts := iosOptions()
	opts.Platform = types.PlatformWeb
	_, _, err := newResolver(&fakeCapability{}).Resolve(context.Background(), newResults("a"), opts)
	if !errors.Is(err, platform.ErrUnsupportedPlatform) {
		t.Errorf("Resolve() error = %v, want ErrUnsupportedPlatform", err)
	}
}

func TestResolve_InvalidPolicy(t *testing.T) {
	t.Parallel()

	_, _, err := newResolver(&fakeCapability{}, WithPolicy("retry")).Resolve(context.Background(), newResults("a"), iosOptions())
	if !errors.Is(err, ErrInvalidFailurePolicy) {
		t.Errorf("Resolve() error = %v, want ErrInvalidFailurePolicy", err)
	}
}

func TestResolve_ConcurrencyLimit(t *testing.T) {
	t.Parallel()

	capability := &fakeCapability{delay: map[types.PackageName]time.Duration{}}
	names := []types.PackageName{"a", "b", "c", "d", "e", "f"}
	for _, n := range names {
		capability.delay[n] = 5 * time.Millisecond
	}
	got, _, err := newResolver(capability, WithConcurrency(2)).Resolve(context.Background(), newResults(names...), iosOptions())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(got) != len(names) {
		t.Errorf("got %d descriptors, want %d", len(got), len(names))
	}
	if peak := capability.peak.Load(); peak > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak)
	}
}

func TestFailurePolicy_Validate(t *testing.T) {
	t.Parallel()

	for _, p := range []FailurePolicy{FailFast, Isolate} {
		if err := p.Validate(); err != nil {
			t.Errorf("%q.Validate() = %v", p, err)
		}
	}
	if err := FailurePolicy("").Validate(); !errors.Is(err, ErrInvalidFailurePolicy) {
		t.Errorf("empty policy error = %v", err)
	}
}
