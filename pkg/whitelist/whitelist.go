// Package whitelist holds user-protected path patterns that cleaning must
// never touch.
package whitelist

import (
	"path/filepath"
	"strings"

	"github.com/IGLOU-EU/go-wildcard"
)

// Whitelist matches absolute paths against protected patterns.
// Patterns use '*' wildcards; a leading "~/" expands to the home directory.
// A pattern without wildcards also protects everything beneath it.
type Whitelist struct {
	patterns []string
}

// New builds a Whitelist, expanding "~/" against home and dropping blanks.
func New(home string, patterns []string) *Whitelist {
	wl := &Whitelist{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.HasPrefix(p, "~/") {
			p = filepath.Join(home, p[2:])
		}
		wl.patterns = append(wl.patterns, p)
	}
	return wl
}

// With returns a copy that also protects paths. Each path is matched
// exactly and as a directory prefix.
func (w *Whitelist) With(paths ...string) *Whitelist {
	out := &Whitelist{patterns: w.Patterns()}
	for _, p := range paths {
		if p = strings.TrimSpace(p); p != "" {
			out.patterns = append(out.patterns, p)
		}
	}
	return out
}

// Patterns returns the expanded patterns.
func (w *Whitelist) Patterns() []string {
	if w == nil {
		return nil
	}
	return append([]string(nil), w.patterns...)
}

// IsWhitelisted reports whether path is protected. A nil Whitelist protects
// nothing.
func (w *Whitelist) IsWhitelisted(path string) bool {
	if w == nil {
		return false
	}
	for _, pattern := range w.patterns {
		if !strings.Contains(pattern, "*") {
			clean := filepath.Clean(pattern)
			if path == clean || strings.HasPrefix(path, clean+string(filepath.Separator)) {
				return true
			}
			continue
		}
		if wildcard.Match(pattern, path) {
			return true
		}
	}
	return false
}
