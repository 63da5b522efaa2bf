package lineage

import (
	"slices"

	"github.com/google/uuid"
)

// ProgressFunc receives resolution progress. It is called at most once per
// whole percent, and always for the last record.
type ProgressFunc func(done, total int)

// Option configures Resolve.
type Option func(*resolveOptions)

type resolveOptions struct {
	progress ProgressFunc
}

// WithProgress reports progress through fn.
func WithProgress(fn ProgressFunc) Option {
	return func(o *resolveOptions) {
		o.progress = fn
	}
}

// Percent converts done/total into a whole percentage.
func Percent(done, total int) int {
	if total <= 0 {
		return 100
	}
	return done * 100 / total
}

type progressTracker struct {
	fn    ProgressFunc
	total int
	last  int
}

func (p *progressTracker) advance(done int) {
	if p.fn == nil {
		return
	}
	pct := Percent(done, p.total)
	if pct > p.last || done == p.total {
		p.last = pct
		p.fn(done, p.total)
	}
}

// Resolve assigns a unific root to every record.
//
// Records are processed in ascending version order (ties broken by id), so the
// result is deterministic for a given set of records regardless of the order
// of the input slice. Records that already carry a unific root keep it and do
// not appear in Resolution.Pending; running Resolve over its own output is
// therefore a no-op.
func Resolve(records []VersionRecord, opts ...Option) *Resolution {
	var o resolveOptions
	for _, opt := range opts {
		opt(&o)
	}

	ordered := slices.Clone(records)
	slices.SortStableFunc(ordered, recordLess)

	res := &Resolution{
		Roots:     make(map[uuid.UUID]uuid.UUID, len(ordered)),
		Pending:   []Assignment{},
		Anomalies: []Anomaly{},
	}

	// Index by id, dropping duplicates.
	index := make(map[uuid.UUID]int, len(ordered))
	unique := ordered[:0]
	for _, r := range ordered {
		if _, dup := index[r.ID]; dup {
			res.Anomalies = append(res.Anomalies, Anomaly{Kind: AnomalyDuplicateID, VersionID: r.ID})
			res.Stats.Duplicates++
			continue
		}
		index[r.ID] = len(unique)
		unique = append(unique, r)
	}
	ordered = unique

	labels := make([]uuid.UUID, len(ordered))
	for i, r := range ordered {
		if r.IsResolved() {
			labels[i] = r.UnificRootID.UUID
		} else {
			labels[i] = r.ID
		}
	}
	sets := NewDisjointSet(labels)

	progress := &progressTracker{fn: o.progress, total: len(ordered), last: -1}
	for i, r := range ordered {
		if !r.IsResolved() && !r.hasOwnRoot() {
			link(sets, index, i, r, res)
		}
		progress.advance(i + 1)
	}

	lineages := make(map[uuid.UUID]struct{})
	for i, r := range ordered {
		root := sets.Label(i)
		res.Roots[r.ID] = root
		lineages[root] = struct{}{}
		if r.IsResolved() {
			res.Stats.AlreadyResolved++
			continue
		}
		res.Pending = append(res.Pending, Assignment{VersionID: r.ID, UnificRootID: root})
	}

	res.Stats.Total = len(ordered)
	res.Stats.Assigned = len(res.Pending)
	res.Stats.Lineages = len(lineages)
	return res
}

// link processes the predecessor edge of record i.
func link(sets *DisjointSet, index map[uuid.UUID]int, i int, r VersionRecord, res *Resolution) {
	prevID := r.PreviousVersionID.UUID
	j, ok := index[prevID]
	if !ok {
		res.Anomalies = append(res.Anomalies, Anomaly{
			Kind:              AnomalyDanglingPredecessor,
			VersionID:         r.ID,
			PreviousVersionID: prevID,
		})
		res.Stats.Dangling++
		return
	}

	// i has not linked yet, so it heads its own set. Sharing a set with the
	// predecessor means the predecessor's chain leads back to i.
	if !sets.Union(i, j) {
		res.Anomalies = append(res.Anomalies, Anomaly{
			Kind:              AnomalyCycle,
			VersionID:         r.ID,
			PreviousVersionID: prevID,
		})
		res.Stats.Cycles++
	}
}
