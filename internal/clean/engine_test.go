package clean

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakshaymaurya-felt/tuxmole/internal/config"
)

func startAndWait(t *testing.T, e *Engine, mode Mode, ids ...string) *RunHandle {
	t.Helper()
	h, err := e.Start(context.Background(), RunRequest{Mode: mode, Operations: ids})
	require.NoError(t, err)
	select {
	case <-h.Finished():
	case <-time.After(10 * time.Second):
		t.Fatal("run did not finish")
	}
	require.True(t, h.Done())
	return h
}

func seedTrashAndVim(t *testing.T, loc config.Locations) (trash, swap string) {
	t.Helper()
	trash = filepath.Join(loc.Home, ".local", "share", "Trash", "file1")
	swap = filepath.Join(loc.Home, ".vim", "session.swp")
	writeFile(t, trash, 10)
	writeFile(t, swap, 5)
	return trash, swap
}

func TestEngine_DryRunTrashAndVim(t *testing.T) {
	loc := testLocations(t)
	trash, swap := seedTrashAndVim(t, loc)

	e := newTestEngine(loc, &recordingSink{}, nil)
	startAndWait(t, e, DryRun, "trash", "vim")

	s := e.Stats()
	assert.Equal(t, uint64(2), s.FilesDeleted)
	assert.Equal(t, uint64(15), s.BytesFreed)
	assert.Zero(t, s.DirectoriesCleaned)
	assert.True(t, exists(trash))
	assert.True(t, exists(swap))
}

func TestEngine_EventsInOperationOrder(t *testing.T) {
	loc := testLocations(t)
	seedTrashAndVim(t, loc)

	sink := &recordingSink{}
	e := newTestEngine(loc, sink, nil)
	startAndWait(t, e, Live, "trash", "vim")

	want := []string{
		"Emptying Trash...",
		"Deleted: file1 (10.00 B)",
		"Cleaning Vim Swap files...",
		"Deleted: session.swp (5.00 B)",
	}
	assert.Equal(t, want, sink.all())
	assert.Equal(t, want, e.Events(0))
	assert.Equal(t, want[2:], e.Events(2))
}

func TestEngine_DryRunMatchesLive(t *testing.T) {
	seed := func(loc config.Locations) {
		seedTrashAndVim(t, loc)
		writeFile(t, filepath.Join(loc.Home, "notes.txt~"), 3)
		writeFile(t, filepath.Join(loc.Home, "proj", "m.pyc"), 2048)
		writeFile(t, filepath.Join(loc.Home, ".mozilla", "firefox", "abc.default", "cache2", "entries", "X"), 7)
	}
	ids := []string{"trash", "firefox_cache", "pycache", "vim", "backup_files"}

	dryLoc, liveLoc := testLocations(t), testLocations(t)
	seed(dryLoc)
	seed(liveLoc)

	drySink, liveSink := &recordingSink{}, &recordingSink{}
	dry := newTestEngine(dryLoc, drySink, nil)
	live := newTestEngine(liveLoc, liveSink, nil)

	dryHandle := startAndWait(t, dry, DryRun, ids...)
	liveHandle := startAndWait(t, live, Live, ids...)

	assert.Equal(t, liveSink.all(), drySink.all())
	assert.Equal(t, live.Stats().FilesDeleted, dry.Stats().FilesDeleted)
	assert.Equal(t, live.Stats().BytesFreed, dry.Stats().BytesFreed)
	assert.Equal(t, liveHandle.Results(), dryHandle.Results())

	assert.True(t, exists(filepath.Join(dryLoc.Home, "proj", "m.pyc")))
	assert.False(t, exists(filepath.Join(liveLoc.Home, "proj", "m.pyc")))
	assert.True(t, exists(filepath.Join(liveLoc.Home, ".mozilla", "firefox", "abc.default", "cache2", "entries")))
}

func TestEngine_LiveIsIdempotent(t *testing.T) {
	loc := testLocations(t)
	seedTrashAndVim(t, loc)

	e := newTestEngine(loc, &recordingSink{}, nil)
	startAndWait(t, e, Live, "trash", "vim")
	require.Equal(t, uint64(2), e.Stats().FilesDeleted)

	startAndWait(t, e, Live, "trash", "vim")
	s := e.Stats()
	assert.Zero(t, s.FilesDeleted)
	assert.Zero(t, s.BytesFreed)
}

func TestEngine_UnknownAndDuplicateIDsIgnored(t *testing.T) {
	loc := testLocations(t)
	seedTrashAndVim(t, loc)

	e := newTestEngine(loc, &recordingSink{}, nil)
	h := startAndWait(t, e, DryRun, "bogus", "trash", "trash")

	assert.Equal(t, []string{"trash"}, h.Operations)
	assert.Equal(t, []OperationResult{{ID: "trash", Files: 1, Bytes: 10}}, h.Results())
}

func TestEngine_EmptyRequestFinishes(t *testing.T) {
	e := newTestEngine(testLocations(t), &recordingSink{}, nil)
	h := startAndWait(t, e, Live)

	completed, total := h.Progress()
	assert.Zero(t, completed)
	assert.Zero(t, total)
	assert.Zero(t, e.Stats().FilesDeleted)
}

func TestEngine_StartIsNonBlockingAndGuarded(t *testing.T) {
	tools := newFakeTools("apt-get")
	tools.block = make(chan struct{})

	e := newTestEngine(testLocations(t), &recordingSink{}, tools.runner())
	h, err := e.Start(context.Background(), RunRequest{Mode: Live, Operations: []string{"apt"}})
	require.NoError(t, err)
	assert.False(t, h.Done())
	assert.Same(t, h, e.Current())

	_, err = e.Start(context.Background(), RunRequest{Mode: DryRun, Operations: []string{"trash"}})
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(tools.block)
	h.Wait()
	assert.True(t, h.Done())

	_, err = e.Start(context.Background(), RunRequest{Mode: DryRun, Operations: []string{"trash"}})
	assert.NoError(t, err)
	e.Current().Wait()
}

func TestEngine_AbortStopsBeforeNextOperation(t *testing.T) {
	loc := testLocations(t)
	appData := filepath.Join(loc.Home, ".var", "app", "org.example", "blob")
	writeFile(t, appData, 4)

	tools := newFakeTools("apt-get", "flatpak")
	tools.block = make(chan struct{})
	defer close(tools.block)

	sink := &recordingSink{}
	e := newTestEngine(loc, sink, tools.runner())
	h, err := e.Start(context.Background(), RunRequest{Mode: Live, Operations: []string{"apt", "flatpak"}})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return tools.calls.Load() == 1 }, 5*time.Second, 5*time.Millisecond)
	h.Abort()
	h.Wait()

	assert.True(t, h.AbortRequested())
	assert.True(t, exists(appData))
	assert.Equal(t, []string{"Running APT cleanup...", "Running: apt-get autoremove -y"}, sink.all())
	assert.Equal(t, int32(1), tools.calls.Load(), "second apt-get step never runs")

	completed, total := h.Progress()
	assert.Equal(t, 1, completed)
	assert.Equal(t, 2, total)
}

func TestEngine_RunsInCatalogOrder(t *testing.T) {
	loc := testLocations(t)
	seedTrashAndVim(t, loc)

	sink := &recordingSink{}
	e := newTestEngine(loc, sink, nil)
	h := startAndWait(t, e, DryRun, "vim", "trash")

	assert.Equal(t, []string{"trash", "vim"}, h.Operations)
	assert.Equal(t, "Emptying Trash...", sink.all()[0])
}

func TestEngine_CancelledContextAborts(t *testing.T) {
	loc := testLocations(t)
	trash, _ := seedTrashAndVim(t, loc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newTestEngine(loc, &recordingSink{}, nil)
	h, err := e.Start(ctx, RunRequest{Mode: Live, Operations: []string{"trash"}})
	require.NoError(t, err)
	h.Wait()

	assert.True(t, exists(trash))
	assert.Zero(t, e.Stats().FilesDeleted)
}

func TestEngine_GatedOperationsSkipSilently(t *testing.T) {
	loc := testLocations(t)
	appData := filepath.Join(loc.Home, ".var", "app", "org.example", "cache", "blob")
	writeFile(t, appData, 4)

	sink := &recordingSink{}
	e := newTestEngine(loc, sink, newFakeTools().runner())
	startAndWait(t, e, Live, "clipboard", "apt", "dnf", "flatpak")

	assert.Empty(t, sink.all())
	assert.True(t, exists(appData))
}

func TestEngine_DryRunNeverSpawnsTools(t *testing.T) {
	loc := testLocations(t)
	tools := newFakeTools("xclip", "apt-get", "dnf", "flatpak")
	sink := &recordingSink{}

	e := newTestEngine(loc, sink, tools.runner())
	startAndWait(t, e, DryRun, "clipboard", "apt", "dnf", "flatpak")

	assert.Zero(t, tools.calls.Load())
	assert.Equal(t, []string{
		"Clearing Clipboard...",
		"Running: xclip -selection clipboard /dev/null",
		"Running APT cleanup...",
		"Running: apt-get autoremove -y",
		"Running: apt-get clean",
		"Running DNF cleanup...",
		"Running: dnf autoremove -y",
		"Running: dnf clean all",
		"Cleaning Flatpak cache...",
		"Running: flatpak uninstall --unused -y",
	}, sink.all())
}

func TestEngine_WorkerPanicStillCompletes(t *testing.T) {
	loc := testLocations(t)
	seedTrashAndVim(t, loc)

	sink := SinkFunc(func(msg string) {
		if msg == "Cleaning Vim Swap files..." {
			panic("sink exploded")
		}
	})
	e := newTestEngine(loc, sink, nil)
	h := startAndWait(t, e, DryRun, "trash", "vim")

	assert.Equal(t, uint64(1), e.Stats().FilesDeleted)
	assert.Len(t, h.Results(), 1)

	_, err := e.Start(context.Background(), RunRequest{Mode: DryRun})
	assert.NoError(t, err)
	e.Current().Wait()
}

func TestEngine_ConcurrentStatsReads(t *testing.T) {
	loc := testLocations(t)
	for i := range 200 {
		writeFile(t, filepath.Join(loc.Home, ".cache", "thumbnails", "normal", string(rune('a'+i%26))+string(rune('0'+i/26))+".png"), 7)
	}

	e := newTestEngine(loc, &recordingSink{}, nil)
	h, err := e.Start(context.Background(), RunRequest{Mode: Live, Operations: []string{"thumbnails"}})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !h.Done() {
				s := e.Stats()
				if s.BytesFreed != s.FilesDeleted*7 {
					t.Errorf("torn snapshot: %+v", s)
					return
				}
				_ = e.Events(0)
			}
		}()
	}
	h.Wait()
	wg.Wait()

	assert.Equal(t, uint64(200), e.Stats().FilesDeleted)
}

func TestEngine_PauseIsInterruptedByAbort(t *testing.T) {
	loc := testLocations(t)
	seedTrashAndVim(t, loc)

	e := NewEngine(Options{
		Catalog: config.NewCatalog(loc),
		Sink:    &recordingSink{},
		Tools:   newFakeTools().runner(),
		Pause:   time.Hour,
	})
	h, err := e.Start(context.Background(), RunRequest{Mode: DryRun, Operations: []string{"trash", "vim"}})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(h.Results()) == 1 }, 5*time.Second, 5*time.Millisecond)
	h.Abort()

	select {
	case <-h.Finished():
	case <-time.After(5 * time.Second):
		t.Fatal("abort did not interrupt the pause")
	}
	assert.Equal(t, uint64(1), e.Stats().FilesDeleted)
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "dry-run", DryRun.String())
	assert.Equal(t, "live", Live.String())
}
