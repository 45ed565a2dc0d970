package vaultclient

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/cuivault/internal/capability"
	"github.com/dmitrijs2005/cuivault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("token-secret-token-secret-token-s")

const testID = "0123456789abcdef0123456789abcdef"

func TestNewIssuer_Validation(t *testing.T) {
	tests := []struct {
		name   string
		base   string
		secret []byte
		up     time.Duration
		view   time.Duration
	}{
		{"no scheme", "vault.local", testSecret, time.Minute, time.Minute},
		{"empty url", "", testSecret, time.Minute, time.Minute},
		{"empty secret", "https://vault.local", nil, time.Minute, time.Minute},
		{"zero upload ttl", "https://vault.local", testSecret, 0, time.Minute},
		{"negative view ttl", "https://vault.local", testSecret, time.Minute, -time.Second},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewIssuer(tc.base, tc.secret, tc.up, tc.view)
			assert.ErrorIs(t, err, common.ErrConfiguration)
		})
	}
}

func TestMintUpload(t *testing.T) {
	iss, err := NewIssuer("https://vault.local/", testSecret, 5*time.Minute, time.Minute)
	require.NoError(t, err)

	g, err := iss.MintUpload()
	require.NoError(t, err)
	assert.Equal(t, "https://vault.local/v1/files/upload", g.URL)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), g.ExpiresAt, 5*time.Second)

	codec, err := capability.NewCodec(testSecret)
	require.NoError(t, err)
	claims, err := codec.Verify(g.Token)
	require.NoError(t, err)
	assert.Equal(t, capability.ActionUpload, claims.Action)
}

func TestMintView(t *testing.T) {
	iss, err := NewIssuer("https://vault.local", testSecret, time.Minute, 2*time.Minute)
	require.NoError(t, err)

	g, err := iss.MintView(testID)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(g.URL, "https://vault.local/v1/files/"+testID+"?token="))

	u, err := url.Parse(g.URL)
	require.NoError(t, err)
	assert.Equal(t, g.Token, u.Query().Get(common.TokenQueryParam))

	codec, err := capability.NewCodec(testSecret)
	require.NoError(t, err)
	claims, err := codec.Verify(g.Token)
	require.NoError(t, err)
	assert.Equal(t, capability.ActionView, claims.Action)
	assert.Equal(t, testID, claims.VaultID)
}

func TestMintView_RejectsMalformedID(t *testing.T) {
	iss, err := NewIssuer("https://vault.local", testSecret, time.Minute, time.Minute)
	require.NoError(t, err)

	for _, id := range []string{"", "abc", "../../etc/passwd", strings.ToUpper(testID)} {
		_, err := iss.MintView(id)
		assert.ErrorIs(t, err, common.ErrBadRequest, "id %q", id)
	}
}
