// Package auth decides whether a request may perform an operation on the
// vault. Two mechanisms sit behind one interface: capability tokens for
// upload and view, and a static administrative secret for delete.
package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"github.com/dmitrijs2005/cuivault/internal/capability"
	"github.com/dmitrijs2005/cuivault/internal/common"
)

// Operation is a vault operation subject to authorization.
type Operation string

const (
	OpUpload Operation = "upload"
	OpView   Operation = "view"
	OpDelete Operation = "delete"
)

// Request describes one authorization decision.
type Request struct {
	Operation Operation
	// VaultID is the record named by the request path; empty for uploads.
	VaultID string
	// Credential is the bearer token or the admin secret as presented.
	Credential string
}

// Authorizer returns nil when the request is allowed, an error wrapping
// common.ErrUnauthenticated when the credential is missing or invalid, and
// one wrapping common.ErrForbidden when a valid credential does not cover
// the named record.
type Authorizer interface {
	Authorize(ctx context.Context, req Request) error
}

// CapabilityAuthorizer verifies capability tokens.
type CapabilityAuthorizer struct {
	codec  *capability.Codec
	replay capability.ReplayGuard
}

// NewCapabilityAuthorizer verifies tokens with codec. Tokens may be replayed
// until they expire unless WithReplayGuard is set.
func NewCapabilityAuthorizer(codec *capability.Codec) *CapabilityAuthorizer {
	return &CapabilityAuthorizer{codec: codec}
}

// WithReplayGuard makes every token single-use.
func (a *CapabilityAuthorizer) WithReplayGuard(g capability.ReplayGuard) *CapabilityAuthorizer {
	a.replay = g
	return a
}

// Authorize accepts upload and view requests whose token verifies, carries
// the matching action and, for views, is bound to req.VaultID. A token bound
// to another record yields common.ErrForbidden; every other failure yields
// common.ErrUnauthenticated.
func (a *CapabilityAuthorizer) Authorize(_ context.Context, req Request) error {
	var want capability.Action
	switch req.Operation {
	case OpUpload:
		want = capability.ActionUpload
	case OpView:
		want = capability.ActionView
	default:
		return fmt.Errorf("%w: capability tokens do not grant %s", common.ErrUnauthenticated, req.Operation)
	}

	if req.Credential == "" {
		return fmt.Errorf("%w: missing token", common.ErrUnauthenticated)
	}

	claims, err := a.codec.Verify(req.Credential)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrUnauthenticated, err)
	}

	if claims.Action != want {
		return fmt.Errorf("%w: token grants %s, request needs %s", common.ErrUnauthenticated, claims.Action, want)
	}

	if want == capability.ActionView && claims.VaultID != req.VaultID {
		return fmt.Errorf("%w: token is bound to another record", common.ErrForbidden)
	}

	if a.replay != nil {
		if err := a.replay.Spend(claims.TokenID, claims.ExpiresAt); err != nil {
			return fmt.Errorf("%w: %w", common.ErrUnauthenticated, err)
		}
	}

	return nil
}

// AdminAuthorizer checks the static administrative secret. Only the digest
// of the secret is retained.
type AdminAuthorizer struct {
	digest [sha256.Size]byte
}

// NewAdminAuthorizer fails with common.ErrConfiguration on an empty secret.
func NewAdminAuthorizer(secret string) (*AdminAuthorizer, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: empty admin secret", common.ErrConfiguration)
	}
	return &AdminAuthorizer{digest: sha256.Sum256([]byte(secret))}, nil
}

// Authorize accepts delete requests carrying the admin secret. The
// comparison runs in constant time over the digests.
func (a *AdminAuthorizer) Authorize(_ context.Context, req Request) error {
	if req.Operation != OpDelete {
		return fmt.Errorf("%w: admin secret only grants delete", common.ErrUnauthenticated)
	}

	got := sha256.Sum256([]byte(req.Credential))
	if subtle.ConstantTimeCompare(got[:], a.digest[:]) != 1 {
		return fmt.Errorf("%w: admin secret mismatch", common.ErrUnauthenticated)
	}
	return nil
}
