package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/cuivault/internal/dbx"
	"github.com/dmitrijs2005/cuivault/internal/logging"
	"github.com/dmitrijs2005/cuivault/internal/server/migrations"
	"github.com/dmitrijs2005/cuivault/internal/server/repositories/records"
	_ "modernc.org/sqlite"
)

// SQLiteRepositoryManager serves single-node deployments and tests.
type SQLiteRepositoryManager struct {
	log logging.Logger
}

// Records returns a SQLite repository over db.
func (m *SQLiteRepositoryManager) Records(db dbx.DBTX) records.Repository {
	return records.NewSQLiteRepository(db)
}

// RunMigrations applies the embedded SQLite migrations.
func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrate(ctx, db, migrations.SQLite(), "sqlite3", m.log)
}

// NewSQLiteRepositoryManager constructs a manager that discards migration
// progress until WithLogger is called.
func NewSQLiteRepositoryManager() *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{}
}

// WithLogger sets where migration progress is written. Without one it is
// discarded.
func (m *SQLiteRepositoryManager) WithLogger(l logging.Logger) *SQLiteRepositoryManager {
	m.log = l
	return m
}
