package sharing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/famledger/internal/common"
	"github.com/dmitrijs2005/famledger/internal/dbx"
)

// PostgresRepository uses the shares and shared_emails tables created by
// the docstore migrations.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ResolveDataOwner(ctx context.Context, email string) (string, error) {
	query :=
		`SELECT owner_uid FROM shares
		 WHERE email = $1
		 `

	var owner string
	err := r.db.QueryRowContext(ctx, query, email).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return owner, nil
}

func (r *PostgresRepository) GetSharedEmails(ctx context.Context, ownerUID string) ([]string, error) {
	query :=
		`SELECT email FROM shared_emails
		 WHERE owner_uid = $1
		 ORDER BY created_at, email
		 `

	rows, err := r.db.QueryContext(ctx, query, ownerUID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	emails := []string{}
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		emails = append(emails, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return emails, nil
}

func (r *PostgresRepository) AddSharedEmail(ctx context.Context, ownerUID, email string) error {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		// a previous owner loses the grant
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM shared_emails WHERE email = $1 AND owner_uid <> $2`, email, ownerUID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO shares (email, owner_uid) VALUES ($1, $2)
			 ON CONFLICT (email) DO UPDATE SET owner_uid = EXCLUDED.owner_uid`, email, ownerUID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO shared_emails (owner_uid, email) VALUES ($1, $2)
			 ON CONFLICT (owner_uid, email) DO NOTHING`, ownerUID, email)
		return err
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) RemoveSharedEmail(ctx context.Context, ownerUID, email string) error {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := dbx.ExecAffected(ctx, tx,
			`DELETE FROM shared_emails WHERE owner_uid = $1 AND email = $2`, ownerUID, email)
		if err != nil {
			return err
		}
		if n == 0 {
			return common.ErrorNotFound
		}
		_, err = tx.ExecContext(ctx,
			`DELETE FROM shares WHERE email = $1 AND owner_uid = $2`, email, ownerUID)
		return err
	})
	if errors.Is(err, common.ErrorNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
