package capability

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/cuivault/internal/common"
)

// ReplayGuard records spent token ids. Spend returns common.ErrTokenReplay
// when id was already spent and has not expired yet.
type ReplayGuard interface {
	Spend(id string, expiresAt time.Time) error
}

// MemoryReplayGuard keeps spent ids in process memory until their token
// expiry. Entries are swept lazily on Spend.
type MemoryReplayGuard struct {
	mu         sync.Mutex
	spent      map[string]time.Time
	now        func() time.Time
	lastSweep  time.Time
	sweepEvery time.Duration
}

// NewMemoryReplayGuard returns an empty guard that sweeps expired ids at
// most once a minute.
func NewMemoryReplayGuard() *MemoryReplayGuard {
	return &MemoryReplayGuard{
		spent:      make(map[string]time.Time),
		now:        time.Now,
		sweepEvery: time.Minute,
	}
}

// Spend marks id as used until expiresAt. An empty id is always rejected.
func (g *MemoryReplayGuard) Spend(id string, expiresAt time.Time) error {
	if id == "" {
		return common.ErrTokenReplay
	}

	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	if now.Sub(g.lastSweep) >= g.sweepEvery {
		for k, exp := range g.spent {
			if !now.Before(exp) {
				delete(g.spent, k)
			}
		}
		g.lastSweep = now
	}

	if exp, ok := g.spent[id]; ok && now.Before(exp) {
		return common.ErrTokenReplay
	}
	g.spent[id] = expiresAt
	return nil
}

// tracked reports how many ids are currently held.
func (g *MemoryReplayGuard) tracked() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.spent)
}
