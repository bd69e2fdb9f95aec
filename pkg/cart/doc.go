// Package cart defines the read-only cart snapshot consumed by the admission
// engine.
//
// A Snapshot is loaded by the calling page (or by a CartStore) for the duration
// of a single evaluation and is never mutated by the engine. Optional
// collaborator data is modelled explicitly:
//
//   - Line.CategoryIDs is nil when the catalog returned no category data.
//   - Line.Variant is nil when the variant could not be resolved.
//   - Variant.InventoryQuantity is nil when the inventory level is unknown.
//
// Absent fields are not errors; the evaluators apply named fail-safe policies
// to them. Malformed values (non-positive quantities, negative inventory) are
// rejected by Validate.
package cart
