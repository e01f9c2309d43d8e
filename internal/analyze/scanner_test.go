package analyze

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakshaymaurya-felt/tuxmole/internal/clean"
	"github.com/lakshaymaurya-felt/tuxmole/internal/config"
	"github.com/lakshaymaurya-felt/tuxmole/pkg/whitelist"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", size)), 0o644))
}

func TestScanner_SumsSizes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a"), 10)
	writeFile(t, filepath.Join(root, "sub", "b"), 20)
	writeFile(t, filepath.Join(root, "sub", "deep", "c"), 30)

	tree, err := NewScanner(2, nil).Scan(context.Background(), root, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(60), tree.Size)
	assert.Equal(t, 3, tree.Files)
	require.Len(t, tree.Children, 2)
	assert.Equal(t, "sub", tree.Children[0].Name, "largest first")
	assert.Equal(t, int64(50), tree.Children[0].Size)
}

func TestScanner_MatchPrunesEmptyDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.swp"), 4)
	writeFile(t, filepath.Join(root, "other", "skip.txt"), 9)

	match := func(name string) bool { return strings.HasSuffix(name, ".swp") }
	tree, err := NewScanner(0, nil).Scan(context.Background(), root, match)
	require.NoError(t, err)

	assert.Equal(t, int64(4), tree.Size)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "keep.swp", tree.Children[0].Name)
}

func TestScanner_SkipsSymlinksAndExcludes(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	writeFile(t, filepath.Join(outside, "big"), 100)
	writeFile(t, filepath.Join(root, "node_modules", "x"), 50)
	writeFile(t, filepath.Join(root, "real"), 1)
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "link")))

	s := NewScanner(4, []string{"node_modules"})
	tree, err := s.Scan(context.Background(), root, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(1), tree.Size)
	assert.Positive(t, s.ScannedCount())
}

func TestScanner_MissingRoot(t *testing.T) {
	_, err := NewScanner(1, nil).Scan(context.Background(), filepath.Join(t.TempDir(), "nope"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestScanner_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a"), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewScanner(1, nil).Scan(ctx, root, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEstimate_CountsOverlapOnce(t *testing.T) {
	base := t.TempDir()
	loc := config.Locations{Root: filepath.Join(base, "root"), Home: filepath.Join(base, "home")}
	writeFile(t, filepath.Join(loc.Home, ".vim", "session.swp"), 5)
	writeFile(t, filepath.Join(loc.Home, "draft.swo"), 3)
	writeFile(t, filepath.Join(loc.Home, ".local", "share", "Trash", "file1"), 10)
	writeFile(t, filepath.Join(loc.Home, ".mozilla", "firefox", "p.default", "cache2", "e"), 7)

	cat := config.NewCatalog(loc)
	s := NewScanner(4, nil)

	var ops []config.Operation
	for _, id := range []string{"trash", "firefox_cache", "vim", "apt"} {
		op, ok := cat.Lookup(id)
		require.True(t, ok)
		ops = append(ops, op)
	}

	got, err := s.EstimateAll(context.Background(), ops, nil)
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, Estimate{ID: "trash", Name: "Trash", Files: 1, Bytes: 10}, withoutTrees(got[0]))
	assert.Equal(t, 1, got[1].Files)
	assert.Equal(t, int64(7), got[1].Bytes)
	assert.Equal(t, 2, got[2].Files)
	assert.Equal(t, int64(8), got[2].Bytes)
	assert.Zero(t, got[3].Files)

	assert.True(t, fileExists(filepath.Join(loc.Home, ".vim", "session.swp")))
}

func TestPrintEstimates(t *testing.T) {
	var buf bytes.Buffer
	PrintEstimates(&buf, []Estimate{
		{ID: "trash", Files: 1, Bytes: 10},
		{ID: "vim", Files: 2, Bytes: 1526},
	})

	out := buf.String()
	assert.Contains(t, out, "trash")
	assert.Contains(t, out, "10.00 B")
	assert.Contains(t, out, "1.50 KB")
	assert.Contains(t, out, "3 files")
}

func TestPrintStaticTree(t *testing.T) {
	root := &DirEntry{Path: "/home/u/.cache", Name: ".cache", IsDir: true, Size: 30, Children: []*DirEntry{
		{Name: "pip", IsDir: true, Size: 20, Children: []*DirEntry{{Name: "wheel", Size: 20}}},
		{Name: "x", Size: 10},
	}}

	var buf bytes.Buffer
	PrintStaticTree(&buf, root, 1, 0)
	out := buf.String()

	assert.Contains(t, out, "/home/u/.cache/")
	assert.Contains(t, out, "├── pip/")
	assert.Contains(t, out, "└── x")
	assert.NotContains(t, out, "wheel", "depth limit")

	buf.Reset()
	PrintStaticTree(&buf, nil, 0, 0)
	assert.Contains(t, buf.String(), "No data")
}

func withoutTrees(e Estimate) Estimate {
	e.Trees = nil
	return e
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestEstimate_AgreesWithDryRun(t *testing.T) {
	base := t.TempDir()
	loc := config.Locations{Root: filepath.Join(base, "root"), Home: filepath.Join(base, "home")}
	outside := filepath.Join(base, "outside.bin")
	writeFile(t, outside, 100)

	trash := filepath.Join(loc.Home, ".local", "share", "Trash")
	writeFile(t, filepath.Join(trash, "a"), 10)
	writeFile(t, filepath.Join(trash, "keep", "c"), 5)
	require.NoError(t, os.Symlink(outside, filepath.Join(trash, "linked")))
	require.NoError(t, os.Symlink(filepath.Join(base, "gone"), filepath.Join(trash, "dangling")))

	writeFile(t, filepath.Join(loc.Home, ".vim", "session.swp"), 5)
	require.NoError(t, os.Symlink(outside, filepath.Join(loc.Home, "alias.swp")))

	wl := whitelist.New(loc.Home, []string{"~/.local/share/Trash/keep"})
	cat := config.NewCatalog(loc)
	ids := []string{"trash", "vim"}

	var ops []config.Operation
	for _, id := range ids {
		op, ok := cat.Lookup(id)
		require.True(t, ok)
		ops = append(ops, op)
	}
	estimates, err := NewScanner(4, nil).EstimateAll(context.Background(), ops, wl)
	require.NoError(t, err)

	engine := clean.NewEngine(clean.Options{
		Catalog:   cat,
		Sink:      clean.SinkFunc(func(string) {}),
		Tools:     &clean.ToolRunner{LookPath: func(string) (string, error) { return "", os.ErrNotExist }},
		Whitelist: wl,
	})
	h, err := engine.Start(context.Background(), clean.RunRequest{Mode: clean.DryRun, Operations: ids})
	require.NoError(t, err)
	h.Wait()

	results := h.Results()
	require.Len(t, results, len(estimates))
	for i, est := range estimates {
		assert.Equal(t, results[i].ID, est.ID)
		assert.EqualValues(t, results[i].Files, est.Files, est.ID)
		assert.EqualValues(t, results[i].Bytes, est.Bytes, est.ID)
	}

	assert.Equal(t, 2, estimates[0].Files, "a and the linked file, not the protected one")
	assert.Equal(t, int64(110), estimates[0].Bytes)
	assert.Equal(t, 1, estimates[1].Files, "pattern steps skip symlinks")
}
