// Package common contains shared constants and sentinel errors used across
// the vault server, its HTTP client and the operator CLI.
package common

// AdminSecretHeaderName carries the static administrative secret on
// backend-to-backend delete calls.
const AdminSecretHeaderName = "X-Vault-Admin-Secret"

// TokenQueryParam is the query parameter carrying a view token on GET
// requests issued directly by a browser.
const TokenQueryParam = "token"

// VaultIDSize is the number of random bytes in a vault record id. The id is
// transported as lowercase hex, twice as many characters.
const VaultIDSize = 16

// DefaultMimeType is stored when an upload part carries no Content-Type.
const DefaultMimeType = "application/octet-stream"
