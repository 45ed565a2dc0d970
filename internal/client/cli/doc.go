// Package cli implements vaultctl, the operator command line for the vault.
//
// Commands
//
//	keygen                 print a random 256-bit key as hex
//	mint-upload            print an upload token and its URL
//	mint-view <id>         print a view URL for a record
//	upload <file> [mime]   mint an upload token and store a file
//	view <id> [out]        mint a view token and fetch a record
//	delete <id>            delete a record with the admin secret
//	health                 call the vault health route
//
// Secrets come from configuration (see package config); missing ones are
// prompted for without echo.
package cli
