// Package analyze measures what the cleaning operations would reclaim
// without touching anything.
package analyze

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DirEntry represents a file or directory in the scan tree.
type DirEntry struct {
	Path     string      `json:"path"`
	Name     string      `json:"name"`
	Size     int64       `json:"size"`
	Files    int         `json:"files"`
	IsDir    bool        `json:"is_dir"`
	Children []*DirEntry `json:"children,omitempty"`
	ModTime  time.Time   `json:"mod_time"`
}

// IsOld returns true if the entry hasn't been modified in 6+ months.
func (e *DirEntry) IsOld() bool {
	return time.Since(e.ModTime) > 180*24*time.Hour
}

// Percentage returns the entry's size as a percentage of its parent's size.
func (e *DirEntry) Percentage(parentSize int64) float64 {
	if parentSize == 0 {
		return 0
	}
	return float64(e.Size) / float64(parentSize) * 100
}

// Leaves yields every matched file in the tree.
func (e *DirEntry) Leaves() iter.Seq[*DirEntry] {
	return func(yield func(*DirEntry) bool) {
		e.leaves(yield)
	}
}

func (e *DirEntry) leaves(yield func(*DirEntry) bool) bool {
	if !e.IsDir {
		if e.Files == 0 {
			return true
		}
		return yield(e)
	}
	for _, c := range e.Children {
		if !c.leaves(yield) {
			return false
		}
	}
	return true
}

// Scanner performs parallel recursive directory scanning.
type Scanner struct {
	sem          chan struct{}
	exclude      map[string]bool
	mu           sync.Mutex
	warnings     []string
	scannedCount atomic.Int64
}

// NewScanner creates a scanner with bounded concurrency.
// exclude is a list of directory names to skip.
func NewScanner(maxConcurrency int, exclude []string) *Scanner {
	if maxConcurrency <= 0 {
		maxConcurrency = 8
	}
	excMap := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		excMap[e] = true
	}
	return &Scanner{
		sem:     make(chan struct{}, maxConcurrency),
		exclude: excMap,
	}
}

// Warnings returns any warnings accumulated during scanning.
func (s *Scanner) Warnings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.warnings...)
}

// ScannedCount returns the number of entries scanned so far.
func (s *Scanner) ScannedCount() int64 {
	return s.scannedCount.Load()
}

func (s *Scanner) addWarning(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.warnings) < 500 {
		s.warnings = append(s.warnings, msg)
	}
}

// Scan walks rootPath in parallel and returns a tree holding only the
// files for which match returns true, with directory sizes summed from
// their children. Symlinked directories are never followed. With a nil
// match every file counts, including symlinks to regular files at their
// target's size; with a match, symlinks are skipped.
func (s *Scanner) Scan(ctx context.Context, rootPath string, match func(name string) bool) (*DirEntry, error) {
	rootPath = filepath.Clean(rootPath)

	info, err := os.Lstat(rootPath)
	if err != nil {
		return nil, err
	}

	root := &DirEntry{
		Path:    rootPath,
		Name:    info.Name(),
		IsDir:   info.IsDir(),
		ModTime: info.ModTime(),
	}

	if !info.IsDir() {
		if match == nil || match(info.Name()) {
			root.Size = info.Size()
			root.Files = 1
		}
		return root, nil
	}

	s.scanDir(ctx, root, match)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.calculateSizes(root)

	return root, nil
}

// scanDir recursively scans a directory, using the semaphore only during I/O
// to prevent deadlocks from nested goroutine semaphore acquisition.
func (s *Scanner) scanDir(ctx context.Context, entry *DirEntry, match func(string) bool) {
	if ctx.Err() != nil {
		return
	}

	s.sem <- struct{}{}
	entries, err := os.ReadDir(entry.Path)
	<-s.sem

	if err != nil {
		s.addWarning("cannot read " + entry.Path + ": " + err.Error())
		return
	}

	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, e := range entries {
		childPath := filepath.Join(entry.Path, e.Name())
		s.scannedCount.Add(1)

		var info fs.FileInfo
		var err error
		switch {
		case e.Type()&fs.ModeSymlink != 0:
			// Only a full-contents scan counts links, and only links to
			// regular files, sized by their target.
			if match != nil {
				continue
			}
			info, err = os.Stat(childPath)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
		case e.IsDir() && s.exclude[e.Name()]:
			continue
		case !e.IsDir() && !e.Type().IsRegular():
			continue
		case !e.IsDir() && match != nil && !match(e.Name()):
			continue
		default:
			info, err = e.Info()
			if err != nil {
				s.addWarning("cannot stat " + childPath + ": " + err.Error())
				continue
			}
		}

		child := &DirEntry{
			Path:    childPath,
			Name:    e.Name(),
			IsDir:   info.IsDir(),
			ModTime: info.ModTime(),
		}

		if !child.IsDir {
			child.Size = info.Size()
			child.Files = 1
		} else {
			wg.Add(1)
			go func(dir *DirEntry) {
				defer wg.Done()
				s.scanDir(ctx, dir, match)
			}(child)
		}

		mu.Lock()
		entry.Children = append(entry.Children, child)
		mu.Unlock()
	}

	wg.Wait()
}

// calculateSizes walks the tree bottom-up, summing sizes from children and
// dropping directories that hold no matching files, then sorts each level
// by size descending.
func (s *Scanner) calculateSizes(entry *DirEntry) {
	if !entry.IsDir {
		return
	}

	var total int64
	var files int
	kept := entry.Children[:0]
	for _, child := range entry.Children {
		s.calculateSizes(child)
		if child.IsDir && child.Files == 0 {
			continue
		}
		total += child.Size
		files += child.Files
		kept = append(kept, child)
	}
	entry.Children = kept
	entry.Size = total
	entry.Files = files

	sort.Slice(entry.Children, func(i, j int) bool {
		if entry.Children[i].Size != entry.Children[j].Size {
			return entry.Children[i].Size > entry.Children[j].Size
		}
		return entry.Children[i].Name < entry.Children[j].Name
	})
}
