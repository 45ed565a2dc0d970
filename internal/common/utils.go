package common

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
)

// MakeRandHexString generates a random hexadecimal string of the given size.
// The size parameter specifies the number of random bytes to generate before
// encoding them as a hexadecimal string. As a result, the final string length
// will be twice the size (since each byte expands to two hex characters).
//
// It returns an error if the random number generator fails.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// NewVaultID returns a fresh 128-bit record identifier as lowercase hex.
func NewVaultID() (string, error) {
	return MakeRandHexString(VaultIDSize)
}

var vaultIDPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

// IsValidVaultID reports whether id has the shape produced by NewVaultID.
func IsValidVaultID(id string) bool {
	return vaultIDPattern.MatchString(id)
}

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// This is useful for removing sensitive data such as secrets or cryptographic
// keys from memory after use.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
