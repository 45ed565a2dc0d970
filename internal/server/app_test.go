package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/cuivault/internal/common"
	"github.com/dmitrijs2005/cuivault/internal/filex"
	"github.com/dmitrijs2005/cuivault/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(dsn string) *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.DatabaseDriver = "sqlite"
	c.DatabaseDSN = dsn
	c.MasterKey = strings.Repeat("0f", 32)
	c.TokenSecret = strings.Repeat("t", 32)
	c.AdminSecret = strings.Repeat("a", 32)
	c.RateLimitRPS = 0
	c.ShutdownTimeout = 2 * time.Second
	return c
}

func TestNewApp_InvalidConfig(t *testing.T) {
	c := testConfig(":memory:")
	c.MasterKey = "short"

	_, err := NewApp(context.Background(), c, &bytes.Buffer{})
	assert.ErrorIs(t, err, common.ErrConfiguration)
}

func TestNewApp_WarnsOnWildcardOrigin(t *testing.T) {
	c := testConfig(":memory:")
	c.AllowedOrigins = []string{"*"}
	logs := &bytes.Buffer{}

	app, err := NewApp(context.Background(), c, logs)
	require.NoError(t, err)
	defer app.db.Close()

	assert.Contains(t, logs.String(), "wildcard")
	assert.NotContains(t, logs.String(), c.TokenSecret)
	assert.NotContains(t, logs.String(), c.MasterKey)
}

func TestNewApp_MigrationLogIsJSON(t *testing.T) {
	logs := &bytes.Buffer{}

	app, err := NewApp(context.Background(), testConfig(":memory:"), logs)
	require.NoError(t, err)
	defer app.db.Close()

	found := false
	for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "non-JSON log line: %q", line)
		if msg, _ := entry["msg"].(string); strings.Contains(msg, "migrated database") {
			found = true
			assert.Equal(t, "goose", entry["component"])
			assert.Equal(t, "migrations", entry["module"])
		}
	}
	assert.True(t, found, "goose summary missing from %s", logs.String())
}

func TestApp_ServeAndShutdown(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "nested", "vault.db")
	app, err := NewApp(context.Background(), testConfig(dsn), &bytes.Buffer{})
	require.NoError(t, err)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, lis) }()

	url := "http://" + lis.Addr().String() + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after context cancel")
	}
}

func TestNewApp_SQLiteFileIsExclusive(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "vault.db")

	first, err := NewApp(context.Background(), testConfig(dsn), &bytes.Buffer{})
	require.NoError(t, err)

	_, err = NewApp(context.Background(), testConfig(dsn), &bytes.Buffer{})
	assert.ErrorIs(t, err, filex.ErrLocked)

	first.closeDB()

	second, err := NewApp(context.Background(), testConfig(dsn), &bytes.Buffer{})
	require.NoError(t, err)
	second.closeDB()
}

func TestSqliteFilePath(t *testing.T) {
	assert.Equal(t, "", sqliteFilePath(":memory:"))
	assert.Equal(t, "", sqliteFilePath("file::memory:?cache=shared"))
	assert.Equal(t, "/var/lib/vault.db", sqliteFilePath("file:/var/lib/vault.db?_pragma=busy_timeout(5000)"))
	assert.Equal(t, "vault.db", sqliteFilePath("vault.db"))
}
