package hierarchy

import (
	"maps"
	"slices"

	"github.com/google/uuid"
)

// Options configures a Detector.
type Options struct {
	// Exhaustive expands every version of every lineage and finds cycles as
	// strongly connected components. The default walk expands siblings only
	// at the lineage a walk starts from and follows representatives above it.
	Exhaustive bool
}

// Detector finds lineages that are their own ancestors.
type Detector struct {
	opts Options
}

// NewDetector creates a detector.
func NewDetector(opts Options) *Detector {
	return &Detector{opts: opts}
}

// Strategy names the traversal strategy in reports.
func (d *Detector) Strategy() string {
	if d.opts.Exhaustive {
		return "exhaustive"
	}
	return "walk"
}

// FindCycles analyses a snapshot of organization versions. It never mutates
// its input and always terminates.
func (d *Detector) FindCycles(versions []OrganizationVersion) *Report {
	f := newForest(versions)

	var st *classifier
	if d.opts.Exhaustive {
		st = findComponents(f)
	} else {
		st = walkLineages(f)
	}

	report := &Report{
		Strategy: d.Strategy(),
		Lineages: len(f.order),
		Findings: []Finding{},
		Tainted:  []uuid.UUID{},
		Dangling: slices.Clone(f.dangling),
		Names:    f.names(),
	}
	if report.Dangling == nil {
		report.Dangling = []DanglingParent{}
	}
	for _, l := range f.order {
		if finding, ok := st.findings[l]; ok {
			report.Findings = append(report.Findings, finding)
			continue
		}
		if st.class[l] == reachesCycle {
			report.Tainted = append(report.Tainted, l)
		}
	}
	return report
}

// classification of a lineage once a walk has finished with it.
type classification uint8

const (
	unclassified classification = iota
	acyclic
	onCycle
	reachesCycle
)

type classifier struct {
	class    map[uuid.UUID]classification
	findings map[uuid.UUID]Finding
}

func newClassifier() *classifier {
	return &classifier{
		class:    make(map[uuid.UUID]classification),
		findings: make(map[uuid.UUID]Finding),
	}
}

// flag records a finding. Members of one cycle share cycle and trail, so
// callers pass values they no longer modify.
func (c *classifier) flag(lineage uuid.UUID, cycle []uuid.UUID, trail map[uuid.UUID]uuid.UUID) {
	if c.class[lineage] == onCycle {
		return
	}
	c.class[lineage] = onCycle
	c.findings[lineage] = Finding{
		Lineage: lineage,
		Cycle:   cycle,
		Trail:   trail,
	}
}

func (c *classifier) taint(lineage uuid.UUID) {
	if c.class[lineage] != onCycle {
		c.class[lineage] = reachesCycle
	}
}

func (c *classifier) troubled(lineage uuid.UUID) bool {
	cl := c.class[lineage]
	return cl == onCycle || cl == reachesCycle
}

// walkLineages runs one walk per unclassified lineage.
func walkLineages(f *forest) *classifier {
	c := newClassifier()
	for _, start := range f.order {
		if c.class[start] != unclassified {
			continue
		}
		visited := map[uuid.UUID]bool{start: true}
		for _, v := range f.expand(start, TraversalUpAndSiblings) {
			b := newBranch(start)
			b.walk(f, c, v, visited)
		}
		for l := range visited {
			if c.class[l] == unclassified {
				c.class[l] = acyclic
			}
		}
	}
	return c
}

// branch is one upward walk from the start lineage through one of its
// versions. It owns its chain, position index and origin trail.
type branch struct {
	chain []uuid.UUID
	pos   map[uuid.UUID]int
	trail map[uuid.UUID]uuid.UUID
}

func newBranch(start uuid.UUID) *branch {
	return &branch{
		chain: []uuid.UUID{start},
		pos:   map[uuid.UUID]int{start: 0},
		trail: make(map[uuid.UUID]uuid.UUID),
	}
}

// walk follows parents from version v of the start lineage. Every lineage
// above the start is expanded in TraversalUp mode.
func (b *branch) walk(f *forest, c *classifier, v OrganizationVersion, visited map[uuid.UUID]bool) {
	cur := b.chain[0]
	for {
		if v.IsTopLevel() || !f.has(v.ParentID.UUID) {
			return
		}
		parent := v.ParentID.UUID

		if idx, onChain := b.pos[parent]; onChain {
			if _, ok := b.trail[parent]; !ok {
				b.trail[parent] = cur
			}
			cycle := append(slices.Clone(b.chain[idx:]), parent)
			trail := maps.Clone(b.trail)
			for _, l := range b.chain[idx:] {
				c.flag(l, cycle, trail)
			}
			for _, l := range b.chain[:idx] {
				c.taint(l)
			}
			return
		}

		switch {
		case c.troubled(parent):
			for _, l := range b.chain {
				c.taint(l)
			}
			return
		case c.class[parent] == acyclic:
			return
		}

		b.trail[parent] = cur
		b.pos[parent] = len(b.chain)
		b.chain = append(b.chain, parent)
		visited[parent] = true

		cur = parent
		v = f.expand(parent, TraversalUp)[0]
	}
}
