package config

// StepKind identifies what a catalog step does.
type StepKind int

const (
	// StepDirectoryPurge removes every file beneath Path, keeping Path itself.
	StepDirectoryPurge StepKind = iota
	// StepPatternPurge removes files beneath Path whose name matches Pattern.
	StepPatternPurge
	// StepDiscoverPurge finds every directory named DirName beneath Path and
	// purges each one.
	StepDiscoverPurge
	// StepExternalTool runs Tool with Args.
	StepExternalTool
	// StepScan walks Path counting files that match Pattern. It never deletes.
	StepScan
)

// String returns the step kind name.
func (k StepKind) String() string {
	switch k {
	case StepDirectoryPurge:
		return "directory-purge"
	case StepPatternPurge:
		return "pattern-purge"
	case StepDiscoverPurge:
		return "discover-purge"
	case StepExternalTool:
		return "external-tool"
	case StepScan:
		return "scan"
	default:
		return "unknown"
	}
}

// Step is one unit of work inside an operation.
type Step struct {
	Kind    StepKind
	Path    string
	Pattern string
	DirName string
	Tool    string
	Args    []string
}

// Operation represents a cleanup the user can enable.
type Operation struct {
	// ID is the unique identifier used in run requests.
	ID string

	// Name is the short display name.
	Name string

	// Description is a human-readable description.
	Description string

	// Category groups related operations (system, browsers, dev, privacy, packages).
	Category string

	// DefaultEnabled marks operations selected when the user picks nothing.
	DefaultEnabled bool

	// RequiresAdmin indicates whether elevated privileges are needed to be effective.
	RequiresAdmin bool

	// Banner is emitted to the event stream before the steps run.
	Banner string

	// Gate names a tool that must be on PATH; without it the operation is a
	// silent no-op.
	Gate string

	Steps []Step
}

// Roots returns the filesystem roots the operation reads or purges.
func (o Operation) Roots() []string {
	var roots []string
	for _, s := range o.Steps {
		if s.Kind != StepExternalTool && s.Path != "" {
			roots = append(roots, s.Path)
		}
	}
	return roots
}

// Catalog is the ordered, immutable operation table.
type Catalog struct {
	ops   []Operation
	index map[string]int
}

// NewCatalog builds the catalog with every path anchored at loc.
func NewCatalog(loc Locations) *Catalog {
	ops := operations(loc)
	index := make(map[string]int, len(ops))
	for i, op := range ops {
		index[op.ID] = i
	}
	return &Catalog{ops: ops, index: index}
}

// Lookup returns the operation with the given id.
func (c *Catalog) Lookup(id string) (Operation, bool) {
	i, ok := c.index[id]
	if !ok {
		return Operation{}, false
	}
	return c.ops[i], true
}

// Operations returns every operation in declaration order.
func (c *Catalog) Operations() []Operation {
	return append([]Operation(nil), c.ops...)
}

// IDs returns every identifier in declaration order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.ops))
	for i, op := range c.ops {
		ids[i] = op.ID
	}
	return ids
}

// DefaultIDs returns the identifiers enabled by default, in declaration order.
func (c *Catalog) DefaultIDs() []string {
	var ids []string
	for _, op := range c.ops {
		if op.DefaultEnabled {
			ids = append(ids, op.ID)
		}
	}
	return ids
}

// Ordered filters ids down to known identifiers, dropping duplicates, and
// returns them in declaration order.
func (c *Catalog) Ordered(ids []string) []string {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []string
	for _, op := range c.ops {
		if want[op.ID] {
			out = append(out, op.ID)
		}
	}
	return out
}

// ByCategory returns the operations in category, in declaration order.
func (c *Catalog) ByCategory(category string) []Operation {
	var result []Operation
	for _, op := range c.ops {
		if op.Category == category {
			result = append(result, op)
		}
	}
	return result
}

func dirPurge(path string) Step {
	return Step{Kind: StepDirectoryPurge, Path: path}
}

func patternPurge(root, pattern string) Step {
	return Step{Kind: StepPatternPurge, Path: root, Pattern: pattern}
}

func tool(name string, args ...string) Step {
	return Step{Kind: StepExternalTool, Tool: name, Args: args}
}

func operations(loc Locations) []Operation {
	systemCache := []Step{
		dirPurge(loc.system("var", "cache")),
		dirPurge(loc.system("tmp")),
		dirPurge(loc.system("var", "tmp")),
		dirPurge(loc.home(".cache")),
	}

	return []Operation{
		// ── System ──────────────────────────────────────────────
		{
			ID:             "tmp",
			Name:           "Temporary Files",
			Description:    "/tmp, /var/tmp cleaning",
			Category:       "system",
			DefaultEnabled: true,
			RequiresAdmin:  true,
			Steps:          systemCache,
		},
		{
			ID:             "trash",
			Name:           "Trash",
			Description:    "Empty recycle bin",
			Category:       "system",
			DefaultEnabled: true,
			Banner:         "Emptying Trash...",
			Steps:          []Step{dirPurge(loc.home(".local", "share", "Trash"))},
		},
		{
			ID:            "logs",
			Name:          "System Logs",
			Description:   "Old log files & rotated logs",
			Category:      "system",
			RequiresAdmin: true,
			Banner:        "Cleaning System Logs...",
			Steps: []Step{
				dirPurge(loc.system("var", "log")),
				patternPurge(loc.home(".local", "share"), "*.log"),
				patternPurge(loc.home(".config"), "*.log"),
			},
		},
		{
			ID:             "var_cache",
			Name:           "System Cache",
			Description:    "General system cache",
			Category:       "system",
			DefaultEnabled: true,
			RequiresAdmin:  true,
			Steps:          systemCache,
		},
		{
			ID:             "thumbnails",
			Name:           "Thumbnails",
			Description:    "Cached image thumbnails",
			Category:       "system",
			DefaultEnabled: true,
			Banner:         "Cleaning Thumbnails...",
			Steps: []Step{
				dirPurge(loc.home(".thumbnails")),
				dirPurge(loc.home(".cache", "thumbnails")),
				dirPurge(loc.home(".local", "share", "thumbnails")),
			},
		},
		{
			ID:          "clipboard",
			Name:        "Clipboard",
			Description: "Clear current clipboard",
			Category:    "system",
			Banner:      "Clearing Clipboard...",
			Gate:        "xclip",
			Steps:       []Step{tool("xclip", "-selection", "clipboard", "/dev/null")},
		},
		{
			ID:          "broken_desktop",
			Name:        "Broken Shortcuts",
			Description: "Invalid .desktop files",
			Category:    "system",
			Banner:      "Scanning broken shortcuts...",
			Steps: []Step{{
				Kind:    StepScan,
				Path:    loc.home(".local", "share", "applications"),
				Pattern: "*.desktop",
			}},
		},

		// ── Browsers ────────────────────────────────────────────
		{
			ID:             "chrome_cache",
			Name:           "Google Chrome Cache",
			Description:    "Cache files",
			Category:       "browsers",
			DefaultEnabled: true,
			Banner:         "Cleaning Chrome Cache...",
			Steps:          []Step{dirPurge(loc.home(".config", "google-chrome", "Default", "Cache"))},
		},
		{
			ID:             "firefox_cache",
			Name:           "Firefox Cache",
			Description:    "Cache files",
			Category:       "browsers",
			DefaultEnabled: true,
			Banner:         "Cleaning Firefox Cache...",
			Steps: []Step{{
				Kind:    StepDiscoverPurge,
				Path:    loc.home(".mozilla", "firefox"),
				DirName: "cache2",
			}},
		},
		{
			ID:             "brave_cache",
			Name:           "Brave Cache",
			Description:    "Cache files",
			Category:       "browsers",
			DefaultEnabled: true,
			Banner:         "Cleaning Brave Cache...",
			Steps:          []Step{dirPurge(loc.home(".config", "BraveSoftware", "Brave-Browser", "Default", "Cache"))},
		},

		// ── Developer ───────────────────────────────────────────
		{
			ID:             "pycache",
			Name:           "Python Cache",
			Description:    "*.pyc, __pycache__",
			Category:       "dev",
			DefaultEnabled: true,
			Banner:         "Cleaning Python Cache...",
			Steps: []Step{
				patternPurge(loc.Home, "*.pyc"),
				// Matches files only, so __pycache__ directories stay.
				patternPurge(loc.Home, "__pycache__"),
			},
		},
		{
			ID:             "vim",
			Name:           "Vim Swap",
			Description:    "*.swp files",
			Category:       "dev",
			DefaultEnabled: true,
			Banner:         "Cleaning Vim Swap files...",
			Steps: []Step{
				patternPurge(loc.Home, "*.swp"),
				patternPurge(loc.Home, "*.swo"),
				patternPurge(loc.home(".vim"), "*.swp"),
			},
		},
		{
			ID:             "backup_files",
			Name:           "Backup Files",
			Description:    "*~, *.bak files",
			Category:       "dev",
			DefaultEnabled: true,
			Banner:         "Cleaning Backup files...",
			Steps: []Step{
				patternPurge(loc.Home, "*~"),
				patternPurge(loc.Home, "*.bak"),
			},
		},

		// ── Privacy ─────────────────────────────────────────────
		{
			ID:             "recent_docs",
			Name:           "Recent Documents",
			Description:    "Clear recently used files list",
			Category:       "privacy",
			DefaultEnabled: true,
			Steps:          []Step{patternPurge(loc.home(".local", "share"), "recently-used.xbel")},
		},

		// ── Package managers ────────────────────────────────────
		{
			ID:             "apt",
			Name:           "APT (Debian/Ubuntu)",
			Description:    "Autoremove & Clean",
			Category:       "packages",
			DefaultEnabled: true,
			RequiresAdmin:  true,
			Banner:         "Running APT cleanup...",
			Gate:           "apt-get",
			Steps: []Step{
				tool("apt-get", "autoremove", "-y"),
				tool("apt-get", "clean"),
			},
		},
		{
			ID:             "dnf",
			Name:           "DNF (Fedora)",
			Description:    "Autoremove & Clean",
			Category:       "packages",
			DefaultEnabled: true,
			RequiresAdmin:  true,
			Banner:         "Running DNF cleanup...",
			Gate:           "dnf",
			Steps: []Step{
				tool("dnf", "autoremove", "-y"),
				tool("dnf", "clean", "all"),
			},
		},
		{
			ID:             "flatpak",
			Name:           "Flatpak",
			Description:    "Unused runtimes & cache",
			Category:       "packages",
			DefaultEnabled: true,
			Banner:         "Cleaning Flatpak cache...",
			Gate:           "flatpak",
			Steps: []Step{
				tool("flatpak", "uninstall", "--unused", "-y"),
				dirPurge(loc.home(".var", "app")),
			},
		},
	}
}

// Categories returns category names in display order.
func Categories() []string {
	return []string{"system", "browsers", "dev", "privacy", "packages"}
}
