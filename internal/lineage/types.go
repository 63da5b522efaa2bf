package lineage

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
)

// VersionOrder is the major/minor key used to process records deterministically.
type VersionOrder struct {
	Major int `json:"major" yaml:"major"`
	Minor int `json:"minor" yaml:"minor"`
}

// Less reports whether o sorts before other.
func (o VersionOrder) Less(other VersionOrder) bool {
	if o.Major != other.Major {
		return o.Major < other.Major
	}
	return o.Minor < other.Minor
}

func (o VersionOrder) String() string {
	return fmt.Sprintf("%d.%d", o.Major, o.Minor)
}

// VersionRecord is one entry of a version history.
type VersionRecord struct {
	ID                uuid.UUID     `json:"id"`
	PreviousVersionID uuid.NullUUID `json:"previous_version_id"`
	UnificRootID      uuid.NullUUID `json:"unific_root_id"`
	Order             VersionOrder  `json:"order"`
}

// IsResolved reports whether the record already carries a unific root.
// Resolved records are never reassigned.
func (r VersionRecord) IsResolved() bool {
	return r.UnificRootID.Valid
}

// hasOwnRoot reports whether the record heads its chain: no predecessor, or
// the self-referencing sentinel.
func (r VersionRecord) hasOwnRoot() bool {
	return !r.PreviousVersionID.Valid || r.PreviousVersionID.UUID == r.ID
}

// recordLess orders records by version order, then by id bytes.
func recordLess(a, b VersionRecord) int {
	if a.Order.Less(b.Order) {
		return -1
	}
	if b.Order.Less(a.Order) {
		return 1
	}
	return bytes.Compare(a.ID[:], b.ID[:])
}

// Assignment is a unific root computed for a record that had none.
type Assignment struct {
	VersionID    uuid.UUID `json:"version_id"`
	UnificRootID uuid.UUID `json:"unific_root_id"`
}

// AnomalyKind classifies a malformed chain found during resolution.
type AnomalyKind string

const (
	// AnomalyDanglingPredecessor: previous_version_id points at a record absent
	// from the input. The record became its own root.
	AnomalyDanglingPredecessor AnomalyKind = "dangling_predecessor"

	// AnomalyCycle: following predecessors from the record returns to it. The
	// record became the root of the cycle.
	AnomalyCycle AnomalyKind = "cycle"

	// AnomalyDuplicateID: the same id appeared more than once; only the first
	// occurrence (in version order) was used.
	AnomalyDuplicateID AnomalyKind = "duplicate_id"
)

// Anomaly describes one malformed chain.
type Anomaly struct {
	Kind              AnomalyKind `json:"kind"`
	VersionID         uuid.UUID   `json:"version_id"`
	PreviousVersionID uuid.UUID   `json:"previous_version_id,omitempty"`
}

func (a Anomaly) String() string {
	switch a.Kind {
	case AnomalyDanglingPredecessor:
		return fmt.Sprintf("%s: predecessor %s not found", a.VersionID, a.PreviousVersionID)
	case AnomalyCycle:
		return fmt.Sprintf("%s: predecessor chain through %s returns to itself", a.VersionID, a.PreviousVersionID)
	default:
		return fmt.Sprintf("%s: %s", a.VersionID, a.Kind)
	}
}

// Stats summarizes a resolution run.
type Stats struct {
	Total           int `json:"total"`
	AlreadyResolved int `json:"already_resolved"`
	Assigned        int `json:"assigned"`
	Lineages        int `json:"lineages"`
	Dangling        int `json:"dangling"`
	Cycles          int `json:"cycles"`
	Duplicates      int `json:"duplicates"`
}

// Resolution is the result of Resolve.
type Resolution struct {
	// Roots maps every input version id to its lineage id.
	Roots map[uuid.UUID]uuid.UUID `json:"roots"`

	// Pending holds the assignments for records that were unresolved, in
	// processing order. These are the rows to persist.
	Pending []Assignment `json:"pending"`

	Anomalies []Anomaly `json:"anomalies"`
	Stats     Stats     `json:"stats"`
}

// RootOf returns the lineage id of a version.
func (r *Resolution) RootOf(id uuid.UUID) (uuid.UUID, bool) {
	root, ok := r.Roots[id]
	return root, ok
}
