// Package models defines server-side data models persisted in the database.
package models

import "time"

// VaultRecord is one encrypted object. Records are written once, read any
// number of times and deleted once; there is no update.
type VaultRecord struct {
	// ID is 128 random bits as lowercase hex, assigned by the vault.
	ID string
	// Ciphertext is the AEAD output without the tag. Empty when the body
	// lives in the blob store under StorageKey.
	Ciphertext []byte
	// Nonce is the 96-bit AEAD nonce, unique per record.
	Nonce []byte
	// Tag is the detached 128-bit authentication tag.
	Tag []byte
	// Algorithm names the AEAD the record was sealed with.
	Algorithm string
	// MimeType is stored verbatim from the upload and not sniffed.
	MimeType string
	// Size is the plaintext length in bytes.
	Size int64
	// StorageKey is the object key of the ciphertext in the blob store, or
	// empty when the ciphertext is stored inline.
	StorageKey string
	// CreatedAt is assigned by the server, UTC.
	CreatedAt time.Time
}

// UploadReceipt is returned to the uploader. It never contains key material.
type UploadReceipt struct {
	VaultID   string
	SHA256    string
	Size      int64
	MimeType  string
	CreatedAt time.Time
}

// Document is a decrypted record ready to be served.
type Document struct {
	VaultID   string
	MimeType  string
	CreatedAt time.Time
	Content   []byte
}
