// Package storage persists the product catalog and shopper carts.
//
// Two implementations are provided:
//
//   - SQLiteStore: durable storage backed by SQLite. The driver is selectable:
//     "sqlite" (modernc.org/sqlite, pure Go, the default) or "sqlite3"
//     (github.com/mattn/go-sqlite3, requires cgo).
//   - MemoryStore: in-memory storage for tests and one-shot CLI checks.
//
// Both implement remediation.Catalog (ListByCategory) and checkout.CartStore
// (Snapshot). Cart snapshots are assembled at read time: category memberships
// and inventory fields come from the current catalog, so a snapshot always
// reflects the latest stock. A line whose product or variant is unknown to
// the catalog is returned without categories or variant data.
//
// Candidates are listed newest first, ties broken by product ID. Prices are
// resolved for the query's currency, preferring a region-specific price over
// the currency default.
package storage
