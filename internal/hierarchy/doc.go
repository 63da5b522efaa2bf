// Package hierarchy detects cycles in the organization parent hierarchy.
//
// Organizations are versioned: every edit appends a version that shares the
// organization's lineage id (unific root). Parent references point at
// lineages, not at versions, so the hierarchy is a graph over lineages whose
// edges are read from one or more versions of each lineage. A version whose
// parent is its own lineage id is top level (the sentinel), as is a version
// without a parent.
//
// Two strategies are available:
//
//   - walk (default): one upward walk per unclassified lineage. The start
//     lineage is expanded with TraversalUpAndSiblings, every lineage above it
//     with TraversalUp (its representative version). Lineages visited by a
//     walk are classified and never walked again.
//   - exhaustive: every lineage is expanded with TraversalUpAndSiblings and
//     cycles are strongly connected components.
//
// The walk can miss a cycle that only exists through a non-representative
// version of a lineage classified by an earlier walk; the exhaustive strategy
// does not have that blind spot.
//
// Parent references to lineages absent from the snapshot are reported as
// dangling and treated as "no further parent". The detector is read-only.
package hierarchy
