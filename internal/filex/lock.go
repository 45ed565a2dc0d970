package filex

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrLocked means another process holds the lock.
var ErrLocked = errors.New("file is locked by another process")

// TryLock takes an exclusive advisory lock on path + ".lock" without
// blocking. The caller releases it with Unlock.
func TryLock(path string) (*flock.Flock, error) {
	if err := EnsureParentDir(path); err != nil {
		return nil, err
	}

	l := flock.New(path + ".lock")
	ok, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", l.Path(), err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, l.Path())
	}
	return l, nil
}
