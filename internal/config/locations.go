package config

import (
	"path/filepath"

	"github.com/lakshaymaurya-felt/tuxmole/internal/core"
)

// Locations anchors every well-known path in the catalog. Tests point both
// fields at temporary directories.
type Locations struct {
	// Root prefixes system paths such as /var/cache. "/" in production.
	Root string

	// Home is the user's home directory.
	Home string
}

// DefaultLocations returns the real filesystem root and the user's home.
func DefaultLocations() Locations {
	return Locations{Root: "/", Home: core.HomeDir()}
}

// system resolves an absolute system path under Root.
func (l Locations) system(parts ...string) string {
	return filepath.Join(append([]string{l.Root}, parts...)...)
}

// home resolves a path under Home.
func (l Locations) home(parts ...string) string {
	return filepath.Join(append([]string{l.Home}, parts...)...)
}
