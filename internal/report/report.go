// Package report renders maintenance results for operators.
//
// Every view has a text form (String) and a JSON form (its exported fields).
// Lineages are shown by name; names are NFC-normalized and listings are
// sorted with Finnish collation so å, ä and ö sort after z.
package report

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/vrk-kpa/ptv-releases-sub007/internal/hierarchy"
	"github.com/vrk-kpa/ptv-releases-sub007/internal/maintenance"
)

// Arrow separates lineages in a rendered cycle path.
const Arrow = " → "

// Lineage is a lineage id with its display name.
type Lineage struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Cycle is one flagged lineage and the path that flagged it.
type Cycle struct {
	Lineage Lineage   `json:"lineage"`
	Path    []Lineage `json:"path"`
}

// PathString renders the path as "A → B → A".
func (c Cycle) PathString() string {
	names := make([]string, len(c.Path))
	for i, l := range c.Path {
		names[i] = l.Name
	}
	return strings.Join(names, Arrow)
}

// Dangling is a version whose parent lineage is missing.
type Dangling struct {
	Lineage Lineage   `json:"lineage"`
	Version uuid.UUID `json:"version"`
	Parent  uuid.UUID `json:"parent"`
}

// Hierarchy is the operator view of a hierarchy check.
type Hierarchy struct {
	Strategy string     `json:"strategy"`
	Lineages int        `json:"lineages"`
	Cycles   []Cycle    `json:"cycles"`
	Tainted  []Lineage  `json:"tainted"`
	Dangling []Dangling `json:"dangling"`
}

// NewHierarchy builds the view of a detector report.
func NewHierarchy(r *hierarchy.Report) *Hierarchy {
	ref := func(id uuid.UUID) Lineage {
		return Lineage{ID: id, Name: norm.NFC.String(r.Name(id))}
	}

	h := &Hierarchy{
		Strategy: r.Strategy,
		Lineages: r.Lineages,
		Cycles:   make([]Cycle, 0, len(r.Findings)),
		Tainted:  make([]Lineage, 0, len(r.Tainted)),
		Dangling: make([]Dangling, 0, len(r.Dangling)),
	}
	for _, f := range r.Findings {
		c := Cycle{Lineage: ref(f.Lineage), Path: make([]Lineage, len(f.Cycle))}
		for i, id := range f.Cycle {
			c.Path[i] = ref(id)
		}
		h.Cycles = append(h.Cycles, c)
	}
	for _, id := range r.Tainted {
		h.Tainted = append(h.Tainted, ref(id))
	}
	for _, d := range r.Dangling {
		h.Dangling = append(h.Dangling, Dangling{Lineage: ref(d.Lineage), Version: d.Version, Parent: d.Parent})
	}

	cmp := lineageOrder()
	slices.SortStableFunc(h.Cycles, func(a, b Cycle) int { return cmp(a.Lineage, b.Lineage) })
	slices.SortStableFunc(h.Tainted, cmp)
	slices.SortStableFunc(h.Dangling, func(a, b Dangling) int { return cmp(a.Lineage, b.Lineage) })
	return h
}

// HasCycles reports whether any lineage was flagged.
func (h *Hierarchy) HasCycles() bool {
	return len(h.Cycles) > 0
}

func (h *Hierarchy) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hierarchy check (%s strategy)\n", h.Strategy)
	fmt.Fprintf(&b, "  lineages: %d\n", h.Lineages)
	fmt.Fprintf(&b, "  flagged:  %d\n", len(h.Cycles))
	fmt.Fprintf(&b, "  tainted:  %d\n", len(h.Tainted))
	fmt.Fprintf(&b, "  dangling: %d\n", len(h.Dangling))

	if !h.HasCycles() {
		b.WriteString("\nNo cycles found.\n")
	} else {
		b.WriteString("\nCycles:\n")
		for _, c := range h.Cycles {
			fmt.Fprintf(&b, "  %s: %s\n", c.Lineage.Name, c.PathString())
		}
	}

	if len(h.Tainted) > 0 {
		b.WriteString("\nLeading into a cycle:\n")
		for _, l := range h.Tainted {
			fmt.Fprintf(&b, "  %s\n", l.Name)
		}
	}

	if len(h.Dangling) > 0 {
		b.WriteString("\nMissing parents:\n")
		for _, d := range h.Dangling {
			fmt.Fprintf(&b, "  %s: version %s references %s\n", d.Lineage.Name, d.Version, d.Parent)
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// Resolve is the operator view of a lineage resolution.
type Resolve struct {
	*maintenance.ResolveSummary
}

// NewResolve wraps a resolver summary.
func NewResolve(s *maintenance.ResolveSummary) *Resolve {
	return &Resolve{ResolveSummary: s}
}

func (r *Resolve) String() string {
	st := r.Resolution.Stats

	var b strings.Builder
	fmt.Fprintf(&b, "Lineage resolution\n")
	fmt.Fprintf(&b, "  records:          %d\n", st.Total)
	fmt.Fprintf(&b, "  already resolved: %d\n", st.AlreadyResolved)
	fmt.Fprintf(&b, "  assigned:         %d\n", st.Assigned)
	fmt.Fprintf(&b, "  lineages:         %d\n", st.Lineages)
	if r.DryRun {
		fmt.Fprintf(&b, "  written:          0 (dry run)\n")
	} else {
		fmt.Fprintf(&b, "  written:          %d\n", r.Written)
	}

	if len(r.Resolution.Anomalies) > 0 {
		b.WriteString("\nMalformed chains:\n")
		for _, a := range r.Resolution.Anomalies {
			fmt.Fprintf(&b, "  %-20s %s\n", a.Kind, a)
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// Maintain is the operator view of a full maintenance pass.
type Maintain struct {
	Resolve   *Resolve   `json:"resolve"`
	Hierarchy *Hierarchy `json:"hierarchy"`
}

// NewMaintain builds the view of a maintenance pass.
func NewMaintain(m *maintenance.MaintainResult) *Maintain {
	return &Maintain{
		Resolve:   NewResolve(m.Resolve),
		Hierarchy: NewHierarchy(m.Hierarchy),
	}
}

func (m *Maintain) String() string {
	return m.Resolve.String() + "\n\n" + m.Hierarchy.String()
}

// lineageOrder compares lineages by name with Finnish collation, then by id.
func lineageOrder() func(a, b Lineage) int {
	col := collate.New(language.Finnish)
	return func(a, b Lineage) int {
		if c := col.CompareString(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	}
}
