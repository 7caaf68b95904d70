// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"encoding/json"

	"github.com/invowk/autolink/internal/manifest"
	"github.com/invowk/autolink/pkg/types"
)

const (
	// AddedPrimary means the name was new and the revision became primary.
	AddedPrimary AddOutcome = iota
	// AddedDuplicate means the revision was recorded as a new duplicate.
	AddedDuplicate
	// AlreadyKnown means the revision's path was already recorded for the name.
	AlreadyKnown
)

type (
	// AddOutcome reports what SearchResults.Add did with a revision.
	AddOutcome int

	// PackageRevision is one on-disk location providing a named module.
	PackageRevision struct {
		// Path is the canonical (symlink-resolved) absolute package directory.
		Path string `json:"path"`
		// Version is the version string from the package's package.json.
		Version string `json:"version"`
		// Config is the module config that declared the package.
		Config *manifest.ModuleConfig `json:"-"`
	}

	// PrimaryRevision is the authoritative revision of a name plus every
	// other distinct location the same name was found at.
	PrimaryRevision struct {
		PackageRevision
		Duplicates []PackageRevision `json:"duplicates"`

		seen map[string]struct{}
	}

	// SearchResults maps module names to their primary revisions. The first
	// revision added for a name wins; Names returns names in the order they
	// were first added.
	SearchResults struct {
		order  []types.PackageName
		byName map[types.PackageName]*PrimaryRevision
	}
)

// String returns a readable outcome name.
func (o AddOutcome) String() string {
	switch o {
	case AddedPrimary:
		return "primary"
	case AddedDuplicate:
		return "duplicate"
	case AlreadyKnown:
		return "known"
	default:
		return "unknown"
	}
}

// NewSearchResults returns empty results.
func NewSearchResults() *SearchResults {
	return &SearchResults{byName: make(map[types.PackageName]*PrimaryRevision)}
}

// Add folds rev into the results under name.
func (r *SearchResults) Add(name types.PackageName, rev PackageRevision) AddOutcome {
	primary, ok := r.byName[name]
	if !ok {
		r.order = append(r.order, name)
		r.byName[name] = &PrimaryRevision{
			PackageRevision: rev,
			Duplicates:      []PackageRevision{},
			seen:            map[string]struct{}{rev.Path: {}},
		}
		return AddedPrimary
	}

	if _, dup := primary.seen[rev.Path]; dup {
		return AlreadyKnown
	}
	primary.seen[rev.Path] = struct{}{}
	primary.Duplicates = append(primary.Duplicates, rev)
	return AddedDuplicate
}

// AddCandidates folds candidates in order.
func (r *SearchResults) AddCandidates(candidates []Candidate) {
	for _, c := range candidates {
		r.Add(c.Name, c.Revision)
	}
}

// Get returns the primary revision for name.
func (r *SearchResults) Get(name types.PackageName) (*PrimaryRevision, bool) {
	p, ok := r.byName[name]
	return p, ok
}

// Names returns the module names in first-discovery order.
func (r *SearchResults) Names() []types.PackageName {
	names := make([]types.PackageName, len(r.order))
	copy(names, r.order)
	return names
}

// Len returns the number of distinct module names.
func (r *SearchResults) Len() int {
	return len(r.order)
}

// HasDuplicates reports whether the name was found at more than one location.
func (p *PrimaryRevision) HasDuplicates() bool {
	return len(p.Duplicates) > 0
}

// MarshalJSON encodes the results as a name-keyed object.
func (r *SearchResults) MarshalJSON() ([]byte, error) {
	if r == nil || r.byName == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r.byName)
}
