// Package cryptox wraps the vault master key in an authenticated cipher.
//
// A Cipher is built once at startup from the configured key and shared by
// every request. It never exposes the key and never accepts a caller
// supplied nonce.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/cuivault/internal/common"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// KeySize is the only accepted master key length (256 bits).
	KeySize = 32
	// NonceSize is the AEAD nonce length (96 bits).
	NonceSize = 12
	// TagSize is the AEAD authentication tag length (128 bits).
	TagSize = 16
)

// Algorithm names an AEAD construction. Every record stores the algorithm it
// was sealed with.
type Algorithm string

const (
	AlgorithmAESGCM           Algorithm = "aes-256-gcm"
	AlgorithmChaCha20Poly1305 Algorithm = "chacha20-poly1305"
)

// ParseAlgorithm maps a configuration string to a known Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(s))); a {
	case AlgorithmAESGCM, AlgorithmChaCha20Poly1305:
		return a, nil
	default:
		return "", fmt.Errorf("%w: unknown cipher %q", common.ErrConfiguration, s)
	}
}

// Sealed is the output of one encryption: ciphertext without the tag, the
// nonce it was produced under, and the detached tag.
type Sealed struct {
	Ciphertext []byte
	Nonce      []byte
	Tag        []byte
	Algorithm  Algorithm
}

// Cipher encrypts and decrypts vault payloads under one master key.
// It is safe for concurrent use.
type Cipher struct {
	def   Algorithm
	aeads map[Algorithm]cipher.AEAD
}

// NewCipher validates key and prepares both supported AEADs. New records are
// sealed with def; records sealed with the other algorithm still open.
func NewCipher(key []byte, def Algorithm) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: master key must be %d bytes, got %d", common.ErrConfiguration, KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConfiguration, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConfiguration, err)
	}

	chacha, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConfiguration, err)
	}

	c := &Cipher{
		def: def,
		aeads: map[Algorithm]cipher.AEAD{
			AlgorithmAESGCM:           gcm,
			AlgorithmChaCha20Poly1305: chacha,
		},
	}
	if _, ok := c.aeads[def]; !ok {
		return nil, fmt.Errorf("%w: unknown cipher %q", common.ErrConfiguration, def)
	}
	return c, nil
}

// Algorithm returns the algorithm new records are sealed with.
func (c *Cipher) Algorithm() Algorithm {
	return c.def
}

// Encrypt seals plaintext under a fresh random nonce.
func (c *Cipher) Encrypt(plaintext []byte) (*Sealed, error) {
	aead := c.aeads[c.def]

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("nonce generation: %w", err)
	}

	out := aead.Seal(nil, nonce, plaintext, nil)
	split := len(out) - TagSize

	return &Sealed{
		Ciphertext: out[:split:split],
		Nonce:      nonce,
		Tag:        out[split:],
		Algorithm:  c.def,
	}, nil
}

// Decrypt verifies and opens s. Any mismatch returns common.ErrIntegrity and
// no plaintext.
func (c *Cipher) Decrypt(s *Sealed) ([]byte, error) {
	aead, ok := c.aeads[s.Algorithm]
	if !ok || len(s.Nonce) != NonceSize || len(s.Tag) != TagSize {
		return nil, common.ErrIntegrity
	}

	buf := make([]byte, 0, len(s.Ciphertext)+TagSize)
	buf = append(buf, s.Ciphertext...)
	buf = append(buf, s.Tag...)

	plaintext, err := aead.Open(buf[:0], s.Nonce, buf, nil)
	if err != nil {
		return nil, common.ErrIntegrity
	}
	return plaintext, nil
}

// ParseHexKey decodes a hex-encoded master key and checks its length.
func ParseHexKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: master key is not valid hex", common.ErrConfiguration)
	}
	if len(key) != KeySize {
		common.WipeByteArray(key)
		return nil, fmt.Errorf("%w: master key must be %d hex chars", common.ErrConfiguration, KeySize*2)
	}
	return key, nil
}

// GenerateHexKey returns a fresh random master key in the form ParseHexKey
// accepts.
func GenerateHexKey() (string, error) {
	return common.MakeRandHexString(KeySize)
}

// Digest returns the lowercase hex SHA-256 of data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
