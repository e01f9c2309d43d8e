package clean

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"slices"

	"github.com/lakshaymaurya-felt/tuxmole/internal/core"
	"github.com/lakshaymaurya-felt/tuxmole/internal/logger"
	"github.com/lakshaymaurya-felt/tuxmole/pkg/whitelist"
)

// candidate is a file queued for removal.
type candidate struct {
	path string
	size int64
}

// executor removes files for one run. In dry-run mode it touches nothing
// and remembers what it pretended to remove, so a later step reaching the
// same file sees it gone exactly as live mode would.
type executor struct {
	mode      Mode
	events    Sink
	stats     *Aggregator
	whitelist *whitelist.Whitelist
	log       *logger.Logger
	remove    func(string) error
	simulated map[string]struct{}
}

func newExecutor(mode Mode, events Sink, stats *Aggregator, wl *whitelist.Whitelist, log *logger.Logger) *executor {
	return &executor{
		mode:      mode,
		events:    events,
		stats:     stats,
		whitelist: wl,
		log:       log,
		remove:    os.Remove,
		simulated: make(map[string]struct{}),
	}
}

// purgeDirectory removes every file beneath root, deepest first. root itself
// and all directories are kept.
func (x *executor) purgeDirectory(ctx context.Context, root string) error {
	if !isDir(root) {
		x.log.Debugf("skip missing directory %s", root)
		return nil
	}
	return x.deleteAll(ctx, collect(ContentsFirst(root)))
}

// purgePattern removes files beneath root whose name matches pattern.
func (x *executor) purgePattern(ctx context.Context, root, pattern string) error {
	if !isDir(root) {
		x.log.Debugf("skip missing directory %s", root)
		return nil
	}
	return x.deleteAll(ctx, collect(MatchFiles(root, pattern)))
}

// purgeDiscovered purges every directory named name beneath root.
func (x *executor) purgeDiscovered(ctx context.Context, root, name string) error {
	if !isDir(root) {
		x.log.Debugf("skip missing directory %s", root)
		return nil
	}
	for _, dir := range slices.Collect(FindDirs(root, name)) {
		if err := x.purgeDirectory(ctx, dir); err != nil {
			return err
		}
	}
	return nil
}

// scan counts files beneath root matching pattern without removing any.
func (x *executor) scan(ctx context.Context, root, pattern string) error {
	count := 0
	for range MatchFiles(root, pattern) {
		if err := ctx.Err(); err != nil {
			return err
		}
		count++
	}
	x.log.Debugf("scanned %d %s entries under %s", count, pattern, root)
	return nil
}

// deleteAll removes the fixed candidate list. A file that cannot be removed
// is skipped without an event or a stats change.
func (x *executor) deleteAll(ctx context.Context, files []candidate) error {
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if x.whitelist.IsWhitelisted(f.path) {
			x.log.Debugf("skip protected %s", f.path)
			continue
		}
		if !x.removeOne(f.path) {
			continue
		}
		x.events.Accept(fmt.Sprintf("Deleted: %s (%s)", filepath.Base(f.path), core.FormatSize(f.size)))
		x.stats.AddFile(f.size)
	}
	return nil
}

func (x *executor) removeOne(path string) bool {
	if x.mode == DryRun {
		if _, seen := x.simulated[path]; seen {
			return false
		}
		x.simulated[path] = struct{}{}
		return true
	}
	if err := x.remove(path); err != nil {
		x.log.Debugf("remove %s: %v", path, err)
		return false
	}
	return true
}

func collect(seq iter.Seq2[string, int64]) []candidate {
	var files []candidate
	for path, size := range seq {
		files = append(files, candidate{path: path, size: size})
	}
	return files
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
