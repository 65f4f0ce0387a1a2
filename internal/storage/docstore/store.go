package docstore

import (
	"context"
	"fmt"
)

//go:generate mockgen -destination=mocks/mock_store.go -source=store.go Store

// Document is one stored record.
type Document struct {
	ID   string
	Data []byte
}

// Store is a per-owner document collection store.
type Store interface {
	// List returns the documents of a collection in insertion order.
	List(ctx context.Context, ownerUID, collection string) ([]Document, error)

	// Put upserts a document. Replacing keeps its original position.
	Put(ctx context.Context, ownerUID, collection, id string, data []byte) error

	// Delete removes a document; deleting an unknown id is not an error.
	Delete(ctx context.Context, ownerUID, collection, id string) error

	Close() error
}

// Drivers accepted by Open.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMemory   = "memory"
)

// Open connects to the database named by driver and dsn and brings its
// schema up to date.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case DriverPostgres:
		return OpenPostgres(ctx, dsn)
	case DriverMySQL:
		return OpenMySQL(ctx, dsn)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown docstore driver %q", driver)
	}
}
