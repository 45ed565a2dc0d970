package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cuivault/internal/common"
	"github.com/dmitrijs2005/cuivault/internal/dbx"
	"github.com/dmitrijs2005/cuivault/internal/server/models"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteRepository implements Repository for single-node deployments on the
// modernc SQLite driver. created_at is stored as Unix microseconds.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository constructs a repository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts rec. A taken id yields common.ErrorAlreadyExists.
func (r *SQLiteRepository) Create(ctx context.Context, rec *models.VaultRecord) error {
	query := `INSERT INTO vault_records (id, ciphertext, nonce, tag, algorithm, mime_type, size, storage_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.Ciphertext, rec.Nonce, rec.Tag, rec.Algorithm, rec.MimeType, rec.Size, rec.StorageKey, rec.CreatedAt.UnixMicro())
	if err != nil {
		var sqlErr *sqlite.Error
		if errors.As(err, &sqlErr) && sqlErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// Get loads the record with id or returns common.ErrorNotFound.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.VaultRecord, error) {
	query := `SELECT id, ciphertext, nonce, tag, algorithm, mime_type, size, storage_key, created_at
		FROM vault_records WHERE id=?`

	rec := &models.VaultRecord{}
	var created int64
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID, &rec.Ciphertext, &rec.Nonce, &rec.Tag, &rec.Algorithm, &rec.MimeType, &rec.Size, &rec.StorageKey, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select record: %w", err)
	}
	rec.CreatedAt = time.UnixMicro(created).UTC()
	return rec, nil
}

// Delete removes the record with id and reports whether a row was removed.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM vault_records WHERE id=?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}
