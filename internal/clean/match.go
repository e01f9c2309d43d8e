package clean

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
)

type patternShape int

const (
	shapeExact patternShape = iota
	shapePrefix
	shapeSuffix
	shapeContains
)

// Pattern is a glob-lite filename pattern: at most one leading and/or
// trailing '*'. There are no character classes and no multi-segment globs.
type Pattern struct {
	shape patternShape
	text  string
}

// ParsePattern classifies p by where its '*' wildcards sit.
//
//	*text*  substring
//	*suffix suffix
//	prefix* prefix
//	name    exact
func ParsePattern(p string) Pattern {
	lead := strings.HasPrefix(p, "*")
	trail := strings.HasSuffix(p, "*") && len(p) > 1

	switch {
	case lead && trail:
		return Pattern{shape: shapeContains, text: p[1 : len(p)-1]}
	case lead:
		return Pattern{shape: shapeSuffix, text: p[1:]}
	case trail:
		return Pattern{shape: shapePrefix, text: p[:len(p)-1]}
	default:
		return Pattern{shape: shapeExact, text: p}
	}
}

// Match reports whether a bare filename matches.
func (p Pattern) Match(name string) bool {
	switch p.shape {
	case shapeContains:
		return strings.Contains(name, p.text)
	case shapeSuffix:
		return strings.HasSuffix(name, p.text)
	case shapePrefix:
		return strings.HasPrefix(name, p.text)
	default:
		return name == p.text
	}
}

// MatchFiles lazily yields (path, size) for every regular file beneath root
// whose name matches pattern. Unreadable subtrees are skipped. A missing root
// yields nothing.
func MatchFiles(root, pattern string) iter.Seq2[string, int64] {
	p := ParsePattern(pattern)
	return func(yield func(string, int64) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() && path != root {
					return fs.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() || !p.Match(d.Name()) {
				return nil
			}
			info, infoErr := d.Info()
			if infoErr != nil {
				return nil
			}
			if !yield(path, info.Size()) {
				return fs.SkipAll
			}
			return nil
		})
	}
}

// ContentsFirst lazily yields (path, size) for every file beneath root,
// deepest first: a directory's subdirectories are fully drained before its
// own files. root itself is never yielded. Symlinked directories are not
// followed; symlinks to files are reported with the target's size.
func ContentsFirst(root string) iter.Seq2[string, int64] {
	return func(yield func(string, int64) bool) {
		walkContentsFirst(root, yield)
	}
}

func walkContentsFirst(dir string, yield func(string, int64) bool) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return true
	}

	var files []fs.DirEntry
	for _, e := range entries {
		if e.IsDir() {
			if !walkContentsFirst(filepath.Join(dir, e.Name()), yield) {
				return false
			}
			continue
		}
		files = append(files, e)
	}

	for _, e := range files {
		path := filepath.Join(dir, e.Name())
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if !yield(path, info.Size()) {
			return false
		}
	}
	return true
}

// FindDirs lazily yields every directory beneath root named name.
// Matching directories are not descended into.
func FindDirs(root, name string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() && path != root {
					return fs.SkipDir
				}
				return nil
			}
			if !d.IsDir() || d.Name() != name {
				return nil
			}
			if !yield(path) {
				return fs.SkipAll
			}
			return fs.SkipDir
		})
	}
}
