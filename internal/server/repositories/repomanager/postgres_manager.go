package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/cuivault/internal/dbx"
	"github.com/dmitrijs2005/cuivault/internal/logging"
	"github.com/dmitrijs2005/cuivault/internal/server/migrations"
	"github.com/dmitrijs2005/cuivault/internal/server/repositories/records"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresRepositoryManager serves deployments on PostgreSQL through pgx.
type PostgresRepositoryManager struct {
	log logging.Logger
}

// Records returns a Postgres repository over db.
func (m *PostgresRepositoryManager) Records(db dbx.DBTX) records.Repository {
	return records.NewPostgresRepository(db)
}

// RunMigrations applies the embedded Postgres migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrate(ctx, db, migrations.Postgres(), "pgx", m.log)
}

// NewPostgresRepositoryManager constructs a manager that discards migration
// progress until WithLogger is called.
func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

// WithLogger sets where migration progress is written. Without one it is
// discarded.
func (m *PostgresRepositoryManager) WithLogger(l logging.Logger) *PostgresRepositoryManager {
	m.log = l
	return m
}
