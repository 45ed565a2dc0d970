// Package records persists VaultRecord rows. The API is deliberately small:
// create once, point lookup, delete once. There is no update and no listing.
package records

import (
	"context"

	"github.com/dmitrijs2005/cuivault/internal/server/models"
)

// Repository is the record store contract shared by every backend.
//
// Create fails with common.ErrorAlreadyExists when the id is taken.
// Get returns common.ErrorNotFound on a miss and nothing else about the id.
// Delete reports whether a row was actually removed; a miss is not an error.
type Repository interface {
	Create(ctx context.Context, rec *models.VaultRecord) error
	Get(ctx context.Context, id string) (*models.VaultRecord, error)
	Delete(ctx context.Context, id string) (bool, error)
}
