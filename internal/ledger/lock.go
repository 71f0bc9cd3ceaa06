package ledger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/tartampluch/birthday-reminder/internal/config"
)

// RunLock serializes invocations that share a ledger.
type RunLock struct {
	path string
	lock *flock.Flock
}

// TryLock takes the lock file next to the ledger without blocking.
// It returns ok=false when another process holds it.
func TryLock(ledgerPath string) (*RunLock, bool, error) {
	lockPath := ledgerPath + config.LockSuffix
	if err := os.MkdirAll(filepath.Dir(lockPath), config.DirPermUserRWX); err != nil {
		return nil, false, fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	l := &RunLock{path: lockPath, lock: flock.New(lockPath)}
	ok, err := l.lock.TryLock()
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", config.ErrLockAcquire, err)
	}
	if !ok {
		return nil, false, nil
	}
	return l, true, nil
}

// Path returns the lock file location.
func (l *RunLock) Path() string {
	return l.path
}

// Unlock releases the lock. The lock file is left in place.
func (l *RunLock) Unlock() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
