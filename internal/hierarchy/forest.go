package hierarchy

import "github.com/google/uuid"

// forest groups versions into lineages.
type forest struct {
	order    []uuid.UUID // lineages in first-appearance order
	index    map[uuid.UUID]int
	versions map[uuid.UUID][]OrganizationVersion
	dangling []DanglingParent
}

func newForest(versions []OrganizationVersion) *forest {
	f := &forest{
		index:    make(map[uuid.UUID]int),
		versions: make(map[uuid.UUID][]OrganizationVersion),
	}
	for _, v := range versions {
		l := v.UnificRootID
		if _, ok := f.index[l]; !ok {
			f.index[l] = len(f.order)
			f.order = append(f.order, l)
		}
		f.versions[l] = append(f.versions[l], v)
	}

	for _, l := range f.order {
		for _, v := range f.versions[l] {
			if !v.IsTopLevel() && !f.has(v.ParentID.UUID) {
				f.dangling = append(f.dangling, DanglingParent{
					Lineage: l,
					Version: v.ID,
					Parent:  v.ParentID.UUID,
				})
			}
		}
	}
	return f
}

func (f *forest) has(lineage uuid.UUID) bool {
	_, ok := f.index[lineage]
	return ok
}

// representative is the first version of the lineage in feed order.
func (f *forest) representative(lineage uuid.UUID) OrganizationVersion {
	return f.versions[lineage][0]
}

// expand returns the versions a walk inspects for the lineage. Sibling
// expansion keeps one version per distinct parent so that long edit histories
// with the same parent cost one step.
func (f *forest) expand(lineage uuid.UUID, mode TraversalMode) []OrganizationVersion {
	if mode == TraversalUp {
		return []OrganizationVersion{f.representative(lineage)}
	}

	all := f.versions[lineage]
	out := make([]OrganizationVersion, 0, 1)
	seen := make(map[uuid.NullUUID]bool, len(all))
	for _, v := range all {
		key := v.ParentID
		if v.IsTopLevel() {
			key = uuid.NullUUID{}
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

// parents returns the distinct in-snapshot parent lineages of a lineage under
// the given mode, skipping the sentinel and dangling references.
func (f *forest) parents(lineage uuid.UUID, mode TraversalMode) []uuid.UUID {
	var out []uuid.UUID
	for _, v := range f.expand(lineage, mode) {
		if v.IsTopLevel() || !f.has(v.ParentID.UUID) {
			continue
		}
		out = append(out, v.ParentID.UUID)
	}
	return out
}

func (f *forest) names() map[uuid.UUID]string {
	names := make(map[uuid.UUID]string, len(f.order))
	for _, l := range f.order {
		names[l] = f.representative(l).Name
	}
	return names
}
