// Package config loads runtime configuration for the vaultctl operator CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment variables VAULT_URL, VAULT_TOKEN_SECRET, VAULT_ADMIN_SECRET.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-u string           vault base URL
//	-upload-ttl string  lifetime of minted upload tokens ("5m")
//	-view-ttl string    lifetime of minted view tokens ("2m")
//	-timeout string     HTTP client timeout
//
// Secrets are never taken from flags. When absent from the JSON file and the
// environment the CLI prompts for them.
//
// # JSON schema
//
//	{
//	  "vault_url": "https://vault.internal:8443",
//	  "token_secret": "...",
//	  "admin_secret": "...",
//	  "upload_ttl": "5m",
//	  "view_ttl": "2m",
//	  "timeout": "1m"
//	}
package config
