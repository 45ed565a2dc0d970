// Package repomanager vends dialect-specific repositories and applies the
// embedded schema migrations for the configured database driver.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/dmitrijs2005/cuivault/internal/common"
	"github.com/dmitrijs2005/cuivault/internal/dbx"
	"github.com/dmitrijs2005/cuivault/internal/logging"
	"github.com/dmitrijs2005/cuivault/internal/server/repositories/records"
	"github.com/pressly/goose/v3"
)

// Supported database/sql driver names.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// RepositoryManager hides the SQL dialect from the service layer. It applies
// the dialect's migrations and vends repositories over a connection or
// transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Records(db dbx.DBTX) records.Repository
}

// gooseUpContext is a seam for tests.
var gooseUpContext = goose.UpContext

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

// gooseLogger routes goose progress lines into the structured logger.
type gooseLogger struct {
	ctx context.Context
	log logging.Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.log.Info(g.ctx, strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "goose")
}

// Fatalf keeps goose's contract that it does not return.
func (g gooseLogger) Fatalf(format string, v ...any) {
	msg := strings.TrimSpace(fmt.Sprintf(format, v...))
	g.log.Error(g.ctx, msg, "component", "goose")
	panic(msg)
}

func migrate(ctx context.Context, db *sql.DB, fsys fs.FS, dialect string, log logging.Logger) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)

	if log == nil {
		log = logging.Nop()
	}
	goose.SetLogger(gooseLogger{ctx: ctx, log: log})
	defer goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	return gooseUpContext(ctx, db, ".")
}

// New returns the manager for driver. Migration progress is written to log.
func New(driver string, log logging.Logger) (RepositoryManager, error) {
	switch driver {
	case DriverPostgres:
		return NewPostgresRepositoryManager().WithLogger(log), nil
	case DriverSQLite:
		return NewSQLiteRepositoryManager().WithLogger(log), nil
	default:
		return nil, fmt.Errorf("%w: unsupported database driver %q", common.ErrConfiguration, driver)
	}
}
