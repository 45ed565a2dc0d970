package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestOpen_AppliesPoolLimits(t *testing.T) {
	db, err := Open(context.Background(), "sqlite", "file:dbx_open?mode=memory&cache=shared",
		PoolConfig{MaxOpenConns: 3, MaxIdleConns: 2, ConnMaxLifetime: time.Minute}, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.Equal(t, 3, db.Stats().MaxOpenConnections)

	var one int
	require.NoError(t, db.QueryRow(`SELECT 1`).Scan(&one))
	require.Equal(t, 1, one)
}

func TestOpen_DBTXSatisfiedByDBAndTx(t *testing.T) {
	db, err := Open(context.Background(), "sqlite", "file:dbx_tx?mode=memory&cache=shared", PoolConfig{}, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var _ DBTX = db

	tx, err := db.Begin()
	require.NoError(t, err)
	var _ DBTX = tx
	require.NoError(t, tx.Rollback())
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "no-such-driver", "x", PoolConfig{}, time.Second)
	require.Error(t, err)
}

func TestOpen_OpenErrorFromSeam(t *testing.T) {
	orig := sqlOpen
	t.Cleanup(func() { sqlOpen = orig })

	sqlOpen = func(driverName, dataSourceName string) (*sql.DB, error) {
		return nil, errors.New("boom")
	}

	_, err := Open(context.Background(), "sqlite", ":memory:", PoolConfig{}, time.Second)
	require.ErrorContains(t, err, "db open error: boom")
}
