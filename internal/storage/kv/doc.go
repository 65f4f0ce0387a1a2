// Package kv provides the key-value stores behind the local repository
// backend. The local backend keeps one JSON snapshot per collection, so all
// it needs is Get/Set/Delete of opaque byte values by key.
//
// Key Types
//
//   - type Store: interface used by repositories/local
//   - type SQLiteStore: modernc SQLite file (or :memory:) with goose migrations
//   - type RedisStore: go-redis client, handy when several processes share one household
//   - type MemoryStore: map-backed store for tests and throwaway sessions
package kv
