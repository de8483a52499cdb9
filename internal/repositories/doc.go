// Package repositories implements SQLite persistence for the catalog snapshot.
//
// The store keeps exactly one [models.Snapshot]: the result of the most recent successful fetch.
// Saving replaces the previous snapshot inside one transaction, so readers see either the old
// catalog or the new one, never a mix.
//
// Key Implementations:
//   - [SnapshotRepository] : replace-all snapshot storage implementing [models.SnapshotStore]
//   - [CachingProvider] : wraps a provider and saves every successful fetch
//
// Track order is kept through the position column, which records document order.
package repositories
