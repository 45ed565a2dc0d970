// Package server wires the vault together: configuration, storage, the
// cipher, authorizers, the HTTP API and the optional gRPC health service. It
// also owns the process lifecycle and graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dmitrijs2005/cuivault/internal/capability"
	"github.com/dmitrijs2005/cuivault/internal/common"
	"github.com/dmitrijs2005/cuivault/internal/cryptox"
	"github.com/dmitrijs2005/cuivault/internal/dbx"
	"github.com/dmitrijs2005/cuivault/internal/filex"
	"github.com/dmitrijs2005/cuivault/internal/logging"
	"github.com/dmitrijs2005/cuivault/internal/server/auth"
	"github.com/dmitrijs2005/cuivault/internal/server/blobstore"
	"github.com/dmitrijs2005/cuivault/internal/server/config"
	"github.com/dmitrijs2005/cuivault/internal/server/httpapi"
	"github.com/dmitrijs2005/cuivault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/cuivault/internal/server/services"
	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/cuivault/internal/server/grpc"
)

const dbPingTimeout = 5 * time.Second

// App owns the vault server: configuration, the database handle and its
// file lock, the HTTP router and the optional gRPC health server.
type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	dbLock  *flock.Flock
	handler http.Handler
	health  *gs.HealthServer
}

// NewApp validates c and builds every component. Log lines go to logOut.
func NewApp(ctx context.Context, c *config.Config, logOut io.Writer) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	level, _ := logging.ParseLevel(c.LogLevel)
	logger := logging.NewJSONLogger(logOut, level)

	for _, w := range c.Warnings() {
		logger.Warn(ctx, w)
	}

	key, err := cryptox.ParseHexKey(c.MasterKey)
	if err != nil {
		return nil, err
	}
	alg, err := cryptox.ParseAlgorithm(c.Cipher)
	if err != nil {
		return nil, err
	}
	cipher, err := cryptox.NewCipher(key, alg)
	common.WipeByteArray(key)
	if err != nil {
		return nil, err
	}

	codec, err := capability.NewCodec([]byte(c.TokenSecret))
	if err != nil {
		return nil, err
	}
	tokens := auth.NewCapabilityAuthorizer(codec)
	if c.SingleUseTokens {
		tokens.WithReplayGuard(capability.NewMemoryReplayGuard())
	}
	admin, err := auth.NewAdminAuthorizer(c.AdminSecret)
	if err != nil {
		return nil, err
	}

	rm, err := repomanager.New(c.DatabaseDriver, logger.With("module", "migrations"))
	if err != nil {
		return nil, err
	}

	db, lock, err := openDB(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app := &App{config: c, logger: logger, db: db, dbLock: lock}

	if err := rm.RunMigrations(ctx, db); err != nil {
		app.closeDB()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	svc := services.NewVaultService(db, rm, cipher, c.MaxUploadBytes, logger.With("module", "vault_service"))

	if c.BlobStoreEnabled() {
		blobs, err := blobstore.NewS3Store(ctx, blobstore.Options{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			Endpoint:     c.S3BaseEndpoint,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
			UsePathStyle: c.S3UsePathStyle,
		})
		if err != nil {
			app.closeDB()
			return nil, err
		}
		svc.WithBlobStore(blobs)
	}

	httpLogger := logger.With("module", "http")
	app.handler = httpapi.NewRouter(httpapi.RouterOptions{
		Handler:           httpapi.NewVaultHandler(svc, tokens, admin, httpLogger),
		Log:               httpLogger,
		AllowedOrigins:    c.AllowedOrigins,
		RequestTimeout:    c.RequestTimeout,
		RateLimitRPS:      c.RateLimitRPS,
		RateLimitBurst:    c.RateLimitBurst,
		TrustProxyHeaders: c.TrustProxyHeaders,
	})

	if c.GRPCHealthAddr != "" {
		app.health = gs.NewHealthServer(c.GRPCHealthAddr, logger)
	}
	return app, nil
}

// openDB opens the pool. SQLite gets a single connection: writers serialize
// anyway and an in-memory database exists per connection. A file-backed
// SQLite database is also locked against a second vaultd process; the lock
// is nil otherwise.
func openDB(ctx context.Context, c *config.Config) (*sql.DB, *flock.Flock, error) {
	pool := dbx.PoolConfig{
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
		ConnMaxIdleTime: c.ConnMaxIdleTime,
	}

	var lock *flock.Flock
	if c.DatabaseDriver == repomanager.DriverSQLite {
		pool.MaxOpenConns, pool.MaxIdleConns = 1, 1
		if path := sqliteFilePath(c.DatabaseDSN); path != "" {
			l, err := filex.TryLock(path)
			if err != nil {
				return nil, nil, err
			}
			lock = l
		}
	}

	db, err := dbx.Open(ctx, c.DatabaseDriver, c.DatabaseDSN, pool, dbPingTimeout)
	if err != nil {
		if lock != nil {
			_ = lock.Unlock()
		}
		return nil, nil, err
	}
	return db, lock, nil
}

func (app *App) closeDB() {
	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close", "error", err)
	}
	if app.dbLock != nil {
		if err := app.dbLock.Unlock(); err != nil {
			app.logger.Error(context.Background(), "db unlock", "error", err)
		}
	}
}

// sqliteFilePath returns the database file named by dsn, or "" for an
// in-memory database.
func sqliteFilePath(dsn string) string {
	path, _, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	if path == "" || path == ":memory:" {
		return ""
	}
	return path
}

func (app *App) newHTTPServer() *http.Server {
	return &http.Server{
		Addr:              app.config.Addr(),
		Handler:           app.handler,
		ReadHeaderTimeout: app.config.ReadHeaderTimeout,
		ReadTimeout:       app.config.ReadTimeout,
		WriteTimeout:      app.config.WriteTimeout,
		IdleTimeout:       app.config.IdleTimeout,
	}
}

// Run listens on the configured address and serves until SIGINT or SIGTERM.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	lis, err := net.Listen("tcp", app.config.Addr())
	if err != nil {
		app.closeDB()
		return err
	}
	return app.Serve(ctx, lis)
}

// Serve serves HTTP on lis until ctx is done, then drains in-flight requests
// within the configured shutdown timeout and closes the database.
func (app *App) Serve(ctx context.Context, lis net.Listener) error {
	defer app.closeDB()

	srv := app.newHTTPServer()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Info(ctx, "Starting vault HTTP server", "address", lis.Addr().String(), "tls", app.config.TLSEnabled())
		if app.health != nil {
			app.health.SetServing(true)
		}

		var err error
		if app.config.TLSEnabled() {
			err = srv.ServeTLS(lis, app.config.TLSCertFile, app.config.TLSKeyFile)
		} else {
			err = srv.Serve(lis)
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		app.logger.Info(context.Background(), "Stopping vault HTTP server...")
		if app.health != nil {
			app.health.SetServing(false)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if app.health != nil {
		g.Go(func() error {
			return app.health.Run(ctx)
		})
	}

	return g.Wait()
}
