package records

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/cuivault/internal/common"
	"github.com/dmitrijs2005/cuivault/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE vault_records (
  id TEXT PRIMARY KEY,
  ciphertext BLOB,
  nonce BLOB NOT NULL,
  tag BLOB NOT NULL,
  algorithm TEXT NOT NULL,
  mime_type TEXT NOT NULL,
  size INTEGER NOT NULL,
  storage_key TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL
);
`)
	require.NoError(t, err)
	return db
}

func TestSQLite_CreateGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	rec := &models.VaultRecord{
		ID:         "0123456789abcdef0123456789abcdef",
		Ciphertext: []byte{1, 2, 3},
		Nonce:      []byte("nonce-12byte"),
		Tag:        []byte("tag-16-bytes-xxx"),
		Algorithm:  "aes-256-gcm",
		MimeType:   "application/pdf",
		Size:       3,
		CreatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 123456000, time.UTC),
	}
	require.NoError(t, r.Create(ctx, rec))

	got, err := r.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Ciphertext, got.Ciphertext)
	assert.Equal(t, rec.Nonce, got.Nonce)
	assert.Equal(t, rec.Tag, got.Tag)
	assert.Equal(t, "application/pdf", got.MimeType)
	assert.Equal(t, int64(3), got.Size)
	assert.Empty(t, got.StorageKey)
	assert.True(t, rec.CreatedAt.Equal(got.CreatedAt))
}

func TestSQLite_DuplicateID(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	rec := &models.VaultRecord{ID: "dup", Nonce: []byte("n"), Tag: []byte("t"), Algorithm: "aes-256-gcm", MimeType: "text/plain", CreatedAt: time.Now()}
	require.NoError(t, r.Create(ctx, rec))
	assert.ErrorIs(t, r.Create(ctx, rec), common.ErrorAlreadyExists)
}

func TestSQLite_BlobBackedRowHasNoInlineCiphertext(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	rec := &models.VaultRecord{ID: "b1", Nonce: []byte("n"), Tag: []byte("t"), Algorithm: "aes-256-gcm",
		MimeType: "text/plain", StorageKey: "records/b1", CreatedAt: time.Now()}
	require.NoError(t, r.Create(ctx, rec))

	got, err := r.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Empty(t, got.Ciphertext)
	assert.Equal(t, "records/b1", got.StorageKey)
}

func TestSQLite_GetNotFound(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	got, err := r.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Nil(t, got)
}

func TestSQLite_DeleteIdempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, &models.VaultRecord{ID: "x", Nonce: []byte("n"), Tag: []byte("t"),
		Algorithm: "aes-256-gcm", MimeType: "text/plain", CreatedAt: time.Now()}))

	removed, err := r.Delete(ctx, "x")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = r.Delete(ctx, "x")
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = r.Get(ctx, "x")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
