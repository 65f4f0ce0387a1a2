// Package docstore persists JSON documents partitioned by owner uid and
// collection name. It backs the remote repositories: PostgreSQL (pgx) and
// MySQL (gorm) implementations are provided, plus an in-memory store.
package docstore
