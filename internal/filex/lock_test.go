package filex

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryLock_Exclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "vault.db")

	l, err := TryLock(path)
	require.NoError(t, err)
	assert.FileExists(t, path+".lock")

	_, err = TryLock(path)
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, l.Unlock())

	again, err := TryLock(path)
	require.NoError(t, err)
	require.NoError(t, again.Unlock())
}
