// Package storage defines the durable key/value contract used to cache
// localization bundles between runs, plus two implementations.
//
// Responsibilities:
//   - Store only reads and writes JSON-serialized values under string keys.
//   - Callers own the key naming; the bootstrap core uses a single
//     configurable key for the negotiated localization bundle.
//   - Values are never expired or removed by the core. Clear exists for
//     operators and tests standing in for external storage clearing.
//
// Implementations:
//
//	MemoryStore  process-local, backed by github.com/patrickmn/go-cache
//	SQLiteStore  durable, backed by modernc.org/sqlite through database/sql
package storage
