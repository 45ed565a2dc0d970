// Package capability issues and verifies capability tokens: HS256-signed,
// time-bounded bearer credentials that authorize one action on one vault
// record. The codec holds no server-side state; an optional ReplayGuard adds
// single-use semantics on top.
package capability

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cuivault/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Action is the single operation a token authorizes.
type Action string

const (
	ActionUpload Action = "upload"
	ActionView   Action = "view"
)

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	return a == ActionUpload || a == ActionView
}

// Claims is the verified content of a token.
type Claims struct {
	Action    Action
	VaultID   string
	ExpiresAt time.Time
	TokenID   string
}

// wireClaims is the JWT payload. Short claim names keep URLs compact.
type wireClaims struct {
	jwt.RegisteredClaims
	Action  Action `json:"act"`
	VaultID string `json:"vid,omitempty"`
}

// Codec signs and verifies tokens with one shared secret.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// NewCodec returns a Codec keyed by secret. The secret is copied.
func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: empty token secret", common.ErrConfiguration)
	}
	return &Codec{secret: append([]byte(nil), secret...), now: time.Now}, nil
}

// WithClock returns a copy of c that reads time from now. Used by tests and
// by callers that need a deterministic clock.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	return &Codec{secret: c.secret, now: now}
}

func checkShape(action Action, vaultID string) error {
	switch action {
	case ActionUpload:
		if vaultID != "" {
			return errors.New("upload token must not name a record")
		}
	case ActionView:
		if vaultID == "" {
			return errors.New("view token must name a record")
		}
	default:
		return fmt.Errorf("unknown action %q", action)
	}
	return nil
}

// Issue signs claims. A TokenID is generated when empty.
func (c *Codec) Issue(claims Claims) (string, error) {
	if err := checkShape(claims.Action, claims.VaultID); err != nil {
		return "", err
	}
	if claims.ExpiresAt.IsZero() {
		return "", errors.New("token expiry is required")
	}
	if claims.TokenID == "" {
		claims.TokenID = uuid.NewString()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, wireClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        claims.TokenID,
			IssuedAt:  jwt.NewNumericDate(c.now()),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
		Action:  claims.Action,
		VaultID: claims.VaultID,
	})

	return token.SignedString(c.secret)
}

// IssueUpload mints an upload token valid for ttl.
func (c *Codec) IssueUpload(ttl time.Duration) (string, time.Time, error) {
	exp := c.now().Add(ttl)
	tok, err := c.Issue(Claims{Action: ActionUpload, ExpiresAt: exp})
	return tok, exp, err
}

// IssueView mints a view token bound to vaultID valid for ttl.
func (c *Codec) IssueView(vaultID string, ttl time.Duration) (string, time.Time, error) {
	exp := c.now().Add(ttl)
	tok, err := c.Issue(Claims{Action: ActionView, VaultID: vaultID, ExpiresAt: exp})
	return tok, exp, err
}

// Verify checks signature, expiry and claim shape. Every failure wraps
// common.ErrInvalidToken; the wrapped detail is for server-side logs only.
func (c *Codec) Verify(token string) (*Claims, error) {
	wc := &wireClaims{}

	_, err := jwt.ParseWithClaims(token, wc, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if err := checkShape(wc.Action, wc.VaultID); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	return &Claims{
		Action:    wc.Action,
		VaultID:   wc.VaultID,
		ExpiresAt: wc.ExpiresAt.Time,
		TokenID:   wc.ID,
	}, nil
}
