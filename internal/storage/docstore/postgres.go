package docstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/famledger/internal/dbx"
	"github.com/dmitrijs2005/famledger/internal/storage/docstore/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresStore keeps documents in the jsonb "documents" table.
type PostgresStore struct {
	db   dbx.DBTX
	conn *sql.DB
}

// NewPostgresStore binds a store to an already migrated handle.
func NewPostgresStore(db dbx.DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded schema (documents and sharing tables).
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return gooseUpContext(ctx, db, ".")
}

// Connection attempts made before giving up on a database that is still
// starting up.
var (
	connectAttempts = 5
	connectInterval = 2 * time.Second
)

func pingWithRetry(ctx context.Context, ping func(context.Context) error) error {
	var err error
	for i := 0; i < connectAttempts; i++ {
		if err = ping(ctx); err == nil {
			return nil
		}
		if i == connectAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(connectInterval):
		}
	}
	return fmt.Errorf("failed to connect after %d attempts: %w", connectAttempts, err)
}

// OpenPostgres connects through the pgx stdlib driver and migrates.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := pingWithRetry(ctx, db.PingContext); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return &PostgresStore{db: db, conn: db}, nil
}

// Conn exposes the pool opened by OpenPostgres (nil otherwise), so other
// repositories can share it.
func (s *PostgresStore) Conn() *sql.DB {
	return s.conn
}

func (s *PostgresStore) List(ctx context.Context, ownerUID, collection string) ([]Document, error) {
	query :=
		`SELECT id, data FROM documents
		 WHERE owner_uid = $1 AND collection = $2
		 ORDER BY created_at, id
		 `

	rows, err := s.db.QueryContext(ctx, query, ownerUID, collection)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Data); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return docs, nil
}

func (s *PostgresStore) Put(ctx context.Context, ownerUID, collection, id string, data []byte) error {
	query :=
		`INSERT INTO documents (owner_uid, collection, id, data)
		 VALUES ($1, $2, $3, $4::jsonb)
		 ON CONFLICT (owner_uid, collection, id)
		 DO UPDATE SET data = EXCLUDED.data, updated_at = now()
		 `

	if _, err := s.db.ExecContext(ctx, query, ownerUID, collection, id, string(data)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, ownerUID, collection, id string) error {
	query :=
		`DELETE FROM documents
		 WHERE owner_uid = $1 AND collection = $2 AND id = $3
		 `

	if _, err := s.db.ExecContext(ctx, query, ownerUID, collection, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
