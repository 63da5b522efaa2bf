// Package lineage collapses append-only version histories into stable lineage
// identifiers ("unific roots").
//
// Every version record optionally points at its predecessor. Following those
// links from any record should end at a record without a predecessor (or one
// that references itself); that record's id is the lineage id shared by the
// whole chain.
//
// # Resolution
//
// Resolve processes records in ascending version order and maintains a
// disjoint-set forest over them:
//   - a record without a predecessor (or with a self reference) heads its own set
//   - a record that already carries a unific root heads a set labelled with it
//   - the edge record -> predecessor merges the record's set into the
//     predecessor's set, inheriting the predecessor's label
//   - an edge whose endpoints already share a set closes a cycle; the record
//     keeps its own label and becomes the root of the remaining chain
//
// A predecessor that is missing from the input is a malformed chain: the record
// becomes its own root. Neither case is an error; both are listed in
// Resolution.Anomalies.
//
// Resolve never mutates its input and never writes to storage. Persisting the
// computed assignments is the caller's job (see internal/maintenance).
package lineage
