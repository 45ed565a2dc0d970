// Package vaultclient is the Go client of the CUI vault. Issuer mints
// capability tokens for the calling application's session layer; Client
// talks to the vault HTTP API.
package vaultclient

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/cuivault/internal/capability"
	"github.com/dmitrijs2005/cuivault/internal/common"
)

// Grant is a minted token together with the URL it is meant for.
type Grant struct {
	Token     string
	URL       string
	ExpiresAt time.Time
}

// Issuer mints tokens with the secret shared with the vault.
type Issuer struct {
	base      string
	codec     *capability.Codec
	uploadTTL time.Duration
	viewTTL   time.Duration
}

// NewIssuer validates baseURL and secret. uploadTTL and viewTTL set the
// lifetime of the tokens minted by MintUpload and MintView.
func NewIssuer(baseURL string, secret []byte, uploadTTL, viewTTL time.Duration) (*Issuer, error) {
	base, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if uploadTTL <= 0 || viewTTL <= 0 {
		return nil, fmt.Errorf("%w: token ttl must be positive", common.ErrConfiguration)
	}
	codec, err := capability.NewCodec(secret)
	if err != nil {
		return nil, err
	}
	return &Issuer{base: base, codec: codec, uploadTTL: uploadTTL, viewTTL: viewTTL}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(raw), "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: invalid vault url %q", common.ErrConfiguration, raw)
	}
	return u.String(), nil
}

// MintUpload returns an upload grant. The token goes in the Authorization
// header of the POST to Grant.URL.
func (i *Issuer) MintUpload() (*Grant, error) {
	tok, exp, err := i.codec.IssueUpload(i.uploadTTL)
	if err != nil {
		return nil, err
	}
	return &Grant{Token: tok, URL: i.base + "/v1/files/upload", ExpiresAt: exp}, nil
}

// MintView returns a view grant bound to vaultID. Grant.URL already carries
// the token and can be handed to a browser as is.
func (i *Issuer) MintView(vaultID string) (*Grant, error) {
	if !common.IsValidVaultID(vaultID) {
		return nil, fmt.Errorf("%w: malformed vault id", common.ErrBadRequest)
	}
	tok, exp, err := i.codec.IssueView(vaultID, i.viewTTL)
	if err != nil {
		return nil, err
	}
	q := url.Values{common.TokenQueryParam: {tok}}
	return &Grant{
		Token:     tok,
		URL:       i.base + "/v1/files/" + vaultID + "?" + q.Encode(),
		ExpiresAt: exp,
	}, nil
}
