// Package store provides SQLite-backed storage for a registry snapshot.
//
// The store holds the two tables the lineage engine reads and writes:
//   - versioning: version records with predecessor links and unific roots
//   - organization_versioned: organization versions with parent lineages
//
// # Rules
//
// Deterministic reads: every list query has a total ORDER BY so repeated runs
// see the same feed.
//
// Write-once roots: SaveUnificRoots only fills unific_root_id where it is
// NULL, inside a single transaction. Either every assignment of a batch is
// written or none is.
//
// Idempotent imports: inserts use ON CONFLICT(id) DO NOTHING.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package store
