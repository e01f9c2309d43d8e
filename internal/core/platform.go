package core

import (
	"context"
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v4/host"
	"golang.org/x/sys/unix"
)

// IsElevated reports whether the process runs with an effective UID of 0.
// System locations such as /var/cache and /var/log are only writable then.
func IsElevated() bool {
	return unix.Geteuid() == 0
}

// HomeDir returns the user's home directory, falling back to /tmp when it
// cannot be determined.
func HomeDir() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return home
	}
	return "/tmp"
}

// HostString returns a human-readable platform description.
// Examples: "fedora 40 (linux 6.8.9)", "ubuntu 24.04 (linux 6.5.0)"
func HostString(ctx context.Context) string {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return "unknown host"
	}

	name := info.Platform
	if name == "" {
		name = info.OS
	}
	if info.PlatformVersion != "" {
		name += " " + info.PlatformVersion
	}

	return fmt.Sprintf("%s (%s %s)", name, info.OS, info.KernelVersion)
}
