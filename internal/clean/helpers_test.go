package clean

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lakshaymaurya-felt/tuxmole/internal/config"
)

// writeFile creates path (and parents) holding size bytes.
func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", size)), 0o644))
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func testLocations(t *testing.T) config.Locations {
	t.Helper()
	base := t.TempDir()
	loc := config.Locations{Root: filepath.Join(base, "root"), Home: filepath.Join(base, "home")}
	require.NoError(t, os.MkdirAll(loc.Root, 0o755))
	require.NoError(t, os.MkdirAll(loc.Home, 0o755))
	return loc
}

// recordingSink collects events.
type recordingSink struct {
	mu     sync.Mutex
	events []string
}

func (s *recordingSink) Accept(msg string) {
	s.mu.Lock()
	s.events = append(s.events, msg)
	s.mu.Unlock()
}

func (s *recordingSink) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

// fakeTools resolves the listed tools and records invocations instead of
// spawning anything.
type fakeTools struct {
	installed map[string]bool
	calls     atomic.Int32
	block     chan struct{}

	mu   sync.Mutex
	argv [][]string
}

func newFakeTools(installed ...string) *fakeTools {
	f := &fakeTools{installed: map[string]bool{}}
	for _, name := range installed {
		f.installed[name] = true
	}
	return f
}

func (f *fakeTools) runner() *ToolRunner {
	return &ToolRunner{
		LookPath: func(name string) (string, error) {
			if f.installed[name] {
				return "/usr/bin/" + name, nil
			}
			return "", errors.New("not found")
		},
		Run: func(ctx context.Context, path string, args []string) error {
			f.calls.Add(1)
			f.mu.Lock()
			f.argv = append(f.argv, append([]string{path}, args...))
			f.mu.Unlock()
			if f.block != nil {
				select {
				case <-f.block:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return errors.New("exit status 1")
		},
	}
}

func (f *fakeTools) invocations() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.argv...)
}

func newTestEngine(loc config.Locations, sink Sink, tools *ToolRunner) *Engine {
	if tools == nil {
		tools = newFakeTools().runner()
	}
	return NewEngine(Options{
		Catalog: config.NewCatalog(loc),
		Sink:    sink,
		Tools:   tools,
	})
}
