package hierarchy

import (
	"github.com/google/uuid"
)

// OrganizationVersion is one historical version of an organization.
type OrganizationVersion struct {
	ID uuid.UUID `json:"id"`

	// UnificRootID is the lineage the version belongs to.
	UnificRootID uuid.UUID `json:"unific_root_id"`

	// ParentID references another lineage, not a version. Equal to
	// UnificRootID (or absent) means top level.
	ParentID uuid.NullUUID `json:"parent_id"`

	// VersioningID points at the version record that orders this version
	// within its lineage. Not used by the detector.
	VersioningID uuid.NullUUID `json:"versioning_id"`

	// Name is used for reports only.
	Name string `json:"name,omitempty"`
}

// IsTopLevel reports whether the version has no logical parent: either no
// parent at all or the self-parent sentinel.
func (v OrganizationVersion) IsTopLevel() bool {
	return !v.ParentID.Valid || v.ParentID.UUID == v.UnificRootID
}

// TraversalMode selects which versions of a lineage a walk inspects.
type TraversalMode int

const (
	// TraversalUp follows the parent of the lineage's representative version.
	TraversalUp TraversalMode = iota

	// TraversalUpAndSiblings follows every distinct parent recorded on any
	// version of the lineage.
	TraversalUpAndSiblings
)

func (m TraversalMode) String() string {
	switch m {
	case TraversalUp:
		return "up"
	case TraversalUpAndSiblings:
		return "up+siblings"
	default:
		return "unknown"
	}
}

// Finding is one lineage that is reachable from itself.
type Finding struct {
	Lineage uuid.UUID `json:"lineage"`

	// Cycle is the closed path that flagged the lineage; the first and last
	// element are equal.
	Cycle []uuid.UUID `json:"cycle"`

	// Trail is the diagnostic origin map of the walk that found the cycle:
	// parent lineage -> the lineage it was reached from.
	Trail map[uuid.UUID]uuid.UUID `json:"trail"`
}

// DanglingParent is a version whose parent lineage is not in the snapshot.
type DanglingParent struct {
	Lineage uuid.UUID `json:"lineage"`
	Version uuid.UUID `json:"version"`
	Parent  uuid.UUID `json:"parent"`
}

// Report is the result of a detector run.
type Report struct {
	Strategy string `json:"strategy"`
	Lineages int    `json:"lineages"`

	// Findings holds one entry per flagged lineage, in snapshot order.
	Findings []Finding `json:"findings"`

	// Tainted lists lineages that are not on a cycle but whose ancestry runs
	// into one, in snapshot order.
	Tainted []uuid.UUID `json:"tainted"`

	Dangling []DanglingParent `json:"dangling"`

	// Names maps lineage ids to the name of their representative version.
	Names map[uuid.UUID]string `json:"-"`
}

// HasCycles reports whether any lineage was flagged.
func (r *Report) HasCycles() bool {
	return len(r.Findings) > 0
}

// Flagged returns the flagged lineage ids in report order.
func (r *Report) Flagged() []uuid.UUID {
	ids := make([]uuid.UUID, len(r.Findings))
	for i, f := range r.Findings {
		ids[i] = f.Lineage
	}
	return ids
}

// Finding returns the finding for a lineage.
func (r *Report) Finding(lineage uuid.UUID) (Finding, bool) {
	for _, f := range r.Findings {
		if f.Lineage == lineage {
			return f, true
		}
	}
	return Finding{}, false
}

// Name returns the display name of a lineage, falling back to its id.
func (r *Report) Name(lineage uuid.UUID) string {
	if name := r.Names[lineage]; name != "" {
		return name
	}
	return lineage.String()
}
