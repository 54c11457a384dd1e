// Package store provides persistent storage for pressbook using SQLite.
//
// # Architecture
//
// The package uses an interface-driven architecture with specialized
// interfaces:
//
//   - CatalogStore: authors, publishers, categories, shelves, books
//   - InventoryStore: stock, outlets, distributions, returns
//   - SalesStore: customers, sales
//   - AccountStore: login accounts
//   - ActivityStore: append-only activity log
//   - StateStore: durable key/value slot (session mirror)
//
// SQLiteStore implements all interfaces in a single struct, allowing easy
// composition while maintaining clear interface boundaries.
//
// # Collections
//
// Each entity is a flat record in its own table with a TEXT primary key.
// Foreign-key fields (a stock row's ISBN, a sale's customer ID) are plain
// strings and are never validated by the store: deleting a referenced record
// leaves dangling references, which resolve to a placeholder at display time.
//
// # Semantics
//
// Per collection: Add fails with ErrConflict on a duplicate key, Update
// merges a typed patch and fails with ErrNotFound on an absent key, Delete
// of an absent key is a no-op, List returns insertion order. Each operation
// is atomic with respect to its own collection; there is no multi-collection
// transaction primitive.
//
// Every successful mutation reports its collection name to the registered
// ChangeListener, which is how live queries invalidate.
//
// # Schema versioning
//
// PRAGMA user_version tracks the schema version. Opening is idempotent:
// version steps are applied at most once and never transform existing rows,
// so reopening with the same or a lower target version preserves all data.
//
// # Error Handling
//
// Common errors:
//
//   - ErrNotFound: requested record does not exist
//   - ErrConflict: insert collided with an existing primary key
//   - ErrStorageUnavailable: the database could not be opened
//
// All methods accept context.Context for cancellation support.
package store
