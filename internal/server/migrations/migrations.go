// Package migrations embeds the goose schema migrations for each supported
// database dialect.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Postgres returns the PostgreSQL migrations rooted at ".".
func Postgres() fs.FS {
	sub, _ := fs.Sub(files, "postgres")
	return sub
}

// SQLite returns the SQLite migrations rooted at ".".
func SQLite() fs.FS {
	sub, _ := fs.Sub(files, "sqlite")
	return sub
}
