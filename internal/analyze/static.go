package analyze

import (
	"fmt"
	"io"
	"strings"

	"github.com/lakshaymaurya-felt/tuxmole/internal/core"
)

// maxShow caps the entries printed per tree level.
const maxShow = 20

// PrintEstimates writes one line per operation followed by a total.
func PrintEstimates(w io.Writer, estimates []Estimate) {
	var files int
	var total int64
	for _, e := range estimates {
		fmt.Fprintf(w, "  %-16s %8d files  %12s\n", e.ID, e.Files, core.FormatSize(e.Bytes))
		files += e.Files
		total += e.Bytes
	}
	fmt.Fprintln(w, "  "+strings.Repeat("-", 42))
	fmt.Fprintf(w, "  %-16s %8d files  %12s\n", "total", files, core.FormatSize(total))
}

// PrintStaticTree writes a plain-text tree of root, honouring depth (0 is
// unlimited) and minimum size filters.
func PrintStaticTree(w io.Writer, root *DirEntry, maxDepth int, minSize int64) {
	if root == nil {
		fmt.Fprintln(w, "  No data to display.")
		return
	}
	printEntry(w, root, "", true, 0, maxDepth, minSize)
}

func printEntry(w io.Writer, entry *DirEntry, prefix string, isLast bool, depth, maxDepth int, minSize int64) {
	if maxDepth > 0 && depth > maxDepth {
		return
	}
	if minSize > 0 && entry.Size < minSize {
		return
	}

	connector := "├── "
	childPrefix := "│   "
	if isLast {
		connector = "└── "
		childPrefix = "    "
	}

	name := entry.Name
	if depth == 0 {
		connector = ""
		childPrefix = ""
		name = entry.Path
	}
	if entry.IsDir {
		name += "/"
	}

	fmt.Fprintf(w, "  %s%s%s  %s\n", prefix, connector, name, core.FormatSize(entry.Size))

	children := entry.Children
	if len(children) > maxShow {
		children = children[:maxShow]
	}
	for i, child := range children {
		last := i == len(children)-1 && len(entry.Children) <= maxShow
		printEntry(w, child, prefix+childPrefix, last, depth+1, maxDepth, minSize)
	}
	if rest := len(entry.Children) - maxShow; rest > 0 {
		fmt.Fprintf(w, "  %s└── ... and %d more entries\n", prefix+childPrefix, rest)
	}
}
