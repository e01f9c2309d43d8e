// Package runlock enforces one cleaning run at a time across processes.
package runlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/lakshaymaurya-felt/tuxmole/internal/core"
)

// ErrLocked is returned when another process already holds the run lock.
var ErrLocked = errors.New("another cleaning run is already in progress")

// Lock is a held run lock.
type Lock struct {
	flock *flock.Flock
	path  string
}

// DefaultPath returns the lock file location. None of the candidates lies
// under a directory the catalog purges.
//
//	$XDG_RUNTIME_DIR/tuxmole.lock       when a runtime dir is set
//	/run/lock/tuxmole.lock              as root (sudo drops XDG_RUNTIME_DIR)
//	$XDG_STATE_HOME/tuxmole/run.lock    otherwise, default ~/.local/state
func DefaultPath() string {
	return resolvePath(os.Getenv("XDG_RUNTIME_DIR"), os.Getenv("XDG_STATE_HOME"), core.IsElevated(), core.HomeDir())
}

func resolvePath(runtimeDir, stateDir string, elevated bool, home string) string {
	switch {
	case runtimeDir != "":
		return filepath.Join(runtimeDir, "tuxmole.lock")
	case elevated:
		return filepath.Join("/run", "lock", "tuxmole.lock")
	case stateDir != "":
		return filepath.Join(stateDir, "tuxmole", "run.lock")
	default:
		return filepath.Join(home, ".local", "state", "tuxmole", "run.lock")
	}
}

// Acquire takes the lock at path without blocking.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	fl := flock.New(path)
	acquired, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to try lock on %s: %w", path, err)
	}
	if !acquired {
		return nil, ErrLocked
	}
	return &Lock{flock: fl, path: path}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Release unlocks. The lock file itself is left in place.
func (l *Lock) Release() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", l.path, err)
	}
	return nil
}
