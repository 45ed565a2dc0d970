package capability

import (
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/cuivault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryReplayGuard_SecondSpendRejected(t *testing.T) {
	g := NewMemoryReplayGuard()
	exp := time.Now().Add(time.Minute)

	require.NoError(t, g.Spend("t1", exp))
	assert.ErrorIs(t, g.Spend("t1", exp), common.ErrTokenReplay)
	assert.NoError(t, g.Spend("t2", exp))
}

func TestMemoryReplayGuard_EmptyIDRejected(t *testing.T) {
	g := NewMemoryReplayGuard()
	assert.ErrorIs(t, g.Spend("", time.Now().Add(time.Minute)), common.ErrTokenReplay)
}

func TestMemoryReplayGuard_SweepsExpired(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	g := NewMemoryReplayGuard()
	g.now = func() time.Time { return now }

	require.NoError(t, g.Spend("old", now.Add(30*time.Second)))
	require.NoError(t, g.Spend("new", now.Add(10*time.Minute)))
	assert.Equal(t, 2, g.tracked())

	now = now.Add(2 * time.Minute)
	require.NoError(t, g.Spend("newer", now.Add(time.Minute)))
	assert.Equal(t, 2, g.tracked(), "expired id must be swept")
}

func TestMemoryReplayGuard_ConcurrentSingleWinner(t *testing.T) {
	g := NewMemoryReplayGuard()
	exp := time.Now().Add(time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.Spend("shared", exp) == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}
