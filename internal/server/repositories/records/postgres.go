package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/cuivault/internal/common"
	"github.com/dmitrijs2005/cuivault/internal/dbx"
	"github.com/dmitrijs2005/cuivault/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx)
// opened with the pgx stdlib driver.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts rec. A unique violation on id yields
// common.ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, rec *models.VaultRecord) error {
	query := `
		INSERT INTO vault_records (id, ciphertext, nonce, tag, algorithm, mime_type, size, storage_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.Ciphertext, rec.Nonce, rec.Tag, rec.Algorithm, rec.MimeType, rec.Size, rec.StorageKey, rec.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Get loads the record with id or returns common.ErrorNotFound.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.VaultRecord, error) {
	query := `SELECT id, ciphertext, nonce, tag, algorithm, mime_type, size, storage_key, created_at
		FROM vault_records WHERE id=$1`

	rec := &models.VaultRecord{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID, &rec.Ciphertext, &rec.Nonce, &rec.Tag, &rec.Algorithm, &rec.MimeType, &rec.Size, &rec.StorageKey, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select record: %w", err)
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, nil
}

// Delete removes the record with id and reports whether a row was removed.
func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	query := `DELETE FROM vault_records WHERE id=$1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}
