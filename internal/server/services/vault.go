// Package services contains server-side business logic. This file implements
// VaultService, which seals uploads, persists them and opens them again for
// viewers. Authorization happens before any call reaches this layer.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cuivault/internal/common"
	"github.com/dmitrijs2005/cuivault/internal/cryptox"
	"github.com/dmitrijs2005/cuivault/internal/logging"
	"github.com/dmitrijs2005/cuivault/internal/server/blobstore"
	"github.com/dmitrijs2005/cuivault/internal/server/models"
	"github.com/dmitrijs2005/cuivault/internal/server/repositories/repomanager"
)

// VaultService is safe for concurrent use. Its only shared state is the
// immutable cipher and the connection pool.
type VaultService struct {
	db             *sql.DB
	repomanager    repomanager.RepositoryManager
	cipher         *cryptox.Cipher
	blobs          blobstore.Store
	maxUploadBytes int64
	log            logging.Logger
	now            func() time.Time
}

// NewVaultService constructs a VaultService. Uploads longer than
// maxUploadBytes are rejected with common.ErrPayloadTooLarge.
func NewVaultService(db *sql.DB, m repomanager.RepositoryManager, c *cryptox.Cipher, maxUploadBytes int64, log logging.Logger) *VaultService {
	return &VaultService{
		db:             db,
		repomanager:    m,
		cipher:         c,
		maxUploadBytes: maxUploadBytes,
		log:            log,
		now:            time.Now,
	}
}

// WithBlobStore makes the service keep ciphertext bodies in b instead of the
// record row.
func (s *VaultService) WithBlobStore(b blobstore.Store) *VaultService {
	s.blobs = b
	return s
}

// MaxUploadBytes returns the plaintext size ceiling.
func (s *VaultService) MaxUploadBytes() int64 {
	return s.maxUploadBytes
}

// Upload seals plaintext and stores the record. Nothing is stored when the
// payload exceeds the ceiling. The caller keeps ownership of plaintext and
// is expected to wipe it.
func (s *VaultService) Upload(ctx context.Context, mimeType string, plaintext []byte) (*models.UploadReceipt, error) {
	if int64(len(plaintext)) > s.maxUploadBytes {
		return nil, common.ErrPayloadTooLarge
	}
	if mimeType == "" {
		mimeType = common.DefaultMimeType
	}

	sealed, err := s.cipher.Encrypt(plaintext)
	if err != nil {
		return nil, err
	}

	id, err := common.NewVaultID()
	if err != nil {
		return nil, fmt.Errorf("generate vault id: %w", err)
	}

	rec := &models.VaultRecord{
		ID:         id,
		Ciphertext: sealed.Ciphertext,
		Nonce:      sealed.Nonce,
		Tag:        sealed.Tag,
		Algorithm:  string(sealed.Algorithm),
		MimeType:   mimeType,
		Size:       int64(len(plaintext)),
		CreatedAt:  s.now().UTC().Truncate(time.Microsecond),
	}

	if s.blobs != nil {
		rec.StorageKey = blobstore.KeyFor(id)
		if err := s.blobs.Put(ctx, rec.StorageKey, sealed.Ciphertext); err != nil {
			return nil, err
		}
		rec.Ciphertext = nil
	}

	if err := s.repomanager.Records(s.db).Create(ctx, rec); err != nil {
		if s.blobs != nil {
			if derr := s.blobs.Delete(ctx, rec.StorageKey); derr != nil {
				s.log.Error(ctx, "orphaned blob after failed insert", "vault_id", id, "error", derr)
			}
		}
		return nil, err
	}

	s.log.Info(ctx, "record stored", "vault_id", id, "size", rec.Size, "algorithm", rec.Algorithm)

	return &models.UploadReceipt{
		VaultID:   id,
		SHA256:    cryptox.Digest(plaintext),
		Size:      rec.Size,
		MimeType:  mimeType,
		CreatedAt: rec.CreatedAt,
	}, nil
}

// View loads and decrypts a record. A malformed id is reported as
// common.ErrorNotFound. Authentication failure of the stored ciphertext is
// logged as a security event and returned as common.ErrIntegrity.
func (s *VaultService) View(ctx context.Context, id string) (*models.Document, error) {
	if !common.IsValidVaultID(id) {
		return nil, common.ErrorNotFound
	}

	rec, err := s.repomanager.Records(s.db).Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ciphertext := rec.Ciphertext
	if rec.StorageKey != "" {
		if s.blobs == nil {
			return nil, fmt.Errorf("%w: record %s is blob-backed but no blob store is configured", common.ErrorInternal, id)
		}
		ciphertext, err = s.blobs.Get(ctx, rec.StorageKey)
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Critical(ctx, "ciphertext body missing", "vault_id", id)
			return nil, common.ErrIntegrity
		}
		if err != nil {
			return nil, err
		}
	}

	plaintext, err := s.cipher.Decrypt(&cryptox.Sealed{
		Ciphertext: ciphertext,
		Nonce:      rec.Nonce,
		Tag:        rec.Tag,
		Algorithm:  cryptox.Algorithm(rec.Algorithm),
	})
	if err != nil {
		s.log.Critical(ctx, "stored ciphertext failed authentication", "vault_id", id, "algorithm", rec.Algorithm)
		return nil, common.ErrIntegrity
	}

	return &models.Document{
		VaultID:   rec.ID,
		MimeType:  rec.MimeType,
		CreatedAt: rec.CreatedAt,
		Content:   plaintext,
	}, nil
}

// Delete removes a record. It reports false when nothing was removed.
func (s *VaultService) Delete(ctx context.Context, id string) (bool, error) {
	if !common.IsValidVaultID(id) {
		return false, nil
	}

	removed, err := s.repomanager.Records(s.db).Delete(ctx, id)
	if err != nil {
		return false, err
	}

	if removed {
		s.log.Info(ctx, "record deleted", "vault_id", id)
		if s.blobs != nil {
			if err := s.blobs.Delete(ctx, blobstore.KeyFor(id)); err != nil {
				s.log.Error(ctx, "blob removal failed", "vault_id", id, "error", err)
			}
		}
	}
	return removed, nil
}
