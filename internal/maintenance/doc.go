// Package maintenance sequences a batch maintenance pass over the registry.
//
// A pass loads a snapshot through the repository interfaces, resolves
// version lineages and persists the new unific roots as one unit, then
// checks the organization hierarchy for cycles. Storage problems surface as
// ErrStorage; data problems (malformed chains, cycles) are reported, never
// fatal and never repaired.
package maintenance
