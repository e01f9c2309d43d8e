package cmd

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/tuxmole/internal/analyze"
	"github.com/lakshaymaurya-felt/tuxmole/internal/config"
	"github.com/lakshaymaurya-felt/tuxmole/internal/ui"
)

var (
	listSizes bool
	listTree  bool
	listDepth int
	listJSON  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the cleanup catalog",
	Long: `List every cleanup operation by category.

With --sizes each operation's targets are scanned (read-only) and the
space it would reclaim right now is shown. External tools such as
apt-get are not measured.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listSizes, "sizes", false, "Measure what each operation would reclaim")
	listCmd.Flags().BoolVar(&listTree, "tree", false, "With --sizes, show the largest entries under each target")
	listCmd.Flags().IntVar(&listDepth, "depth", 2, "Maximum tree depth for --tree")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
}

// catalogEntry is the JSON form of an operation.
type catalogEntry struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Default       bool     `json:"default"`
	RequiresAdmin bool     `json:"requires_admin"`
	Requires      string   `json:"requires,omitempty"`
	Targets       []string `json:"targets,omitempty"`
	Files         *int     `json:"files,omitempty"`
	Bytes         *int64   `json:"bytes,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := newSession(false)
	if err != nil {
		return err
	}
	defer s.Close()

	ops := s.catalog.Operations()
	out := cmd.OutOrStdout()

	var estimates []analyze.Estimate
	if listSizes {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		scanner := analyze.NewScanner(0, nil)
		estimates, err = scanner.EstimateAll(ctx, ops, s.whitelist)
		if err != nil {
			return fmt.Errorf("measure operations: %w", err)
		}
		for _, w := range scanner.Warnings() {
			s.log.Debugf("%s", w)
		}
	}

	if listJSON {
		entries := make([]catalogEntry, len(ops))
		for i, op := range ops {
			entries[i] = catalogEntry{
				ID:            op.ID,
				Name:          op.Name,
				Description:   op.Description,
				Category:      op.Category,
				Default:       op.DefaultEnabled,
				RequiresAdmin: op.RequiresAdmin,
				Requires:      op.Gate,
				Targets:       op.Roots(),
			}
			if estimates != nil {
				entries[i].Files = &estimates[i].Files
				entries[i].Bytes = &estimates[i].Bytes
			}
		}
		return writeReport(out, entries)
	}

	printCatalog(out, s.catalog)
	if listSizes {
		fmt.Fprintln(out)
		fmt.Fprintln(out, ui.TitleStyle.Render("Reclaimable now"))
		analyze.PrintEstimates(out, estimates)
	}
	if listSizes && listTree {
		for _, est := range estimates {
			for _, tree := range est.Trees {
				fmt.Fprintln(out)
				analyze.PrintStaticTree(out, tree, listDepth, 0)
			}
		}
	}
	return nil
}

func printCatalog(w io.Writer, cat *config.Catalog) {
	idStyle := lipgloss.NewStyle().Bold(true).Foreground(ui.ColorPrimary).Width(16)
	tag := lipgloss.NewStyle().Foreground(ui.ColorWarning)

	for i, category := range config.Categories() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, ui.TitleStyle.Render(category))
		for _, op := range cat.ByCategory(category) {
			marker := " "
			if op.DefaultEnabled {
				marker = ui.IconSuccess
			}
			line := fmt.Sprintf("  %s %s %-22s %s", marker, idStyle.Render(op.ID), op.Name, ui.MutedStyle.Render(op.Description))
			if op.RequiresAdmin {
				line += " " + tag.Render("[root]")
			}
			if op.Gate != "" {
				line += " " + ui.MutedStyle.Render("(needs "+op.Gate+")")
			}
			fmt.Fprintln(w, line)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, ui.MutedStyle.Render(ui.IconSuccess+" = enabled by default"))
}
