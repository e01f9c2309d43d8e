package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lakshaymaurya-felt/tuxmole/internal/clean"
	"github.com/lakshaymaurya-felt/tuxmole/internal/core"
	"github.com/lakshaymaurya-felt/tuxmole/internal/ui"
)

// ─── Palette ─────────────────────────────────────────────────────────────────

var (
	clrGreen  = lipgloss.AdaptiveColor{Light: "#16a34a", Dark: "#4ade80"}
	clrYellow = lipgloss.AdaptiveColor{Light: "#ca8a04", Dark: "#facc15"}
	clrOrange = lipgloss.AdaptiveColor{Light: "#ea580c", Dark: "#fb923c"}
	clrRed    = lipgloss.AdaptiveColor{Light: "#dc2626", Dark: "#f87171"}
)

// ─── Top-level renderer ─────────────────────────────────────────────────────

func (m RunModel) renderView() string {
	w := m.Width
	if w < 50 {
		w = 50
	}

	sections := []string{
		m.renderHeader(),
		"",
		m.renderProgress(),
		m.renderCounters(),
		"",
		m.renderLog(w),
	}
	if disks := m.renderDisks(); disks != "" {
		sections = append(sections, "", disks)
	}
	sections = append(sections, "", m.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// State returns the headline for the current phase of the run.
func (m RunModel) State() string {
	switch {
	case m.finished && m.run.AbortRequested():
		return "Aborted"
	case m.finished:
		return "Done"
	case m.run.AbortRequested():
		return "Aborting..."
	default:
		return "Cleaning"
	}
}

func (m RunModel) renderHeader() string {
	title := ui.TitleStyle.Render("tuxmole")
	mode := ui.MutedStyle.Render("(" + m.mode.String() + ")")

	state := m.State()
	var badge string
	switch state {
	case "Aborted", "Aborting...":
		badge = lipgloss.NewStyle().Bold(true).Foreground(ui.ColorWarning).Render(state)
	case "Done":
		badge = lipgloss.NewStyle().Bold(true).Foreground(ui.ColorSuccess).Render(ui.IconSuccess + " " + state)
	default:
		badge = m.spinner.View() + " " + state
	}
	return fmt.Sprintf("  %s %s  %s", title, mode, badge)
}

func (m RunModel) renderProgress() string {
	completed, total := m.run.Progress()
	pct := 1.0
	if total > 0 {
		pct = float64(completed) / float64(total)
	}
	return fmt.Sprintf("  %s  %d/%d operations", m.progress.ViewAs(pct), completed, total)
}

func (m RunModel) renderCounters() string {
	label := lipgloss.NewStyle().Foreground(ui.ColorMuted)
	value := lipgloss.NewStyle().Bold(true).Foreground(ui.ColorPrimary)

	return fmt.Sprintf("  %s %s   %s %s   %s %s",
		label.Render("Files"), value.Render(fmt.Sprintf("%d", m.Stats.FilesDeleted)),
		label.Render("Freed"), value.Render(core.FormatSizeU(m.Stats.BytesFreed)),
		label.Render("Elapsed"), value.Render(m.run.Elapsed().Round(100*time.Millisecond).String()),
	)
}

// logHeight returns how many event lines fit in the terminal.
func (m RunModel) logHeight() int {
	h := m.Height - 12
	if len(m.Disks) > 0 {
		h -= len(m.Disks) + 1
	}
	if h < 3 {
		h = 3
	}
	return h
}

func (m RunModel) renderLog(w int) string {
	tail := m.Log
	if n := m.logHeight(); len(tail) > n {
		tail = tail[len(tail)-n:]
	}

	deleted := lipgloss.NewStyle().Foreground(clrGreen)
	banner := lipgloss.NewStyle().Bold(true).Foreground(ui.ColorSecondary)
	running := lipgloss.NewStyle().Foreground(ui.ColorMuted)

	lines := make([]string, 0, len(tail))
	for _, ev := range tail {
		ev = truncate(ev, w-6)
		switch {
		case strings.HasPrefix(ev, "Deleted"):
			lines = append(lines, "  "+deleted.Render(ev))
		case strings.HasPrefix(ev, "Running"):
			lines = append(lines, "  "+running.Render(ui.IconArrow+" "+ev))
		default:
			lines = append(lines, "  "+banner.Render(ev))
		}
	}
	if len(lines) == 0 {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(ui.ColorMuted).
			Italic(true).
			Render("  Waiting for events…"))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorMuted).
		Render(strings.Join(lines, "\n"))
}

func (m RunModel) renderDisks() string {
	if len(m.Disks) == 0 {
		if m.Err != nil {
			return lipgloss.NewStyle().
				Foreground(ui.ColorError).
				Render("  " + ui.IconError + " " + m.Err.Error())
		}
		return ""
	}

	var lines []string
	for _, d := range m.Disks {
		lines = append(lines, fmt.Sprintf("  %-12s %s %5.1f%%  %s free",
			truncate(d.Path, 12), colorBar(d.UsedPercent, 20), d.UsedPercent, core.FormatSizeU(d.Free)))
	}
	return strings.Join(lines, "\n")
}

func (m RunModel) renderFooter() string {
	hints := "a/esc abort"
	if m.finished {
		hints = "q quit"
	}
	return lipgloss.NewStyle().
		Foreground(ui.ColorMuted).
		Italic(true).
		Render("  " + hints)
}

// ─── Drawing primitives ─────────────────────────────────────────────────────

// colorBar renders a ████░░░░ bar colored by severity.
func colorBar(pct float64, width int) string {
	pct = max(0, min(pct, 100))
	filled := min(int(pct/100*float64(width)), width)

	barColor := clrGreen
	switch {
	case pct >= 90:
		barColor = clrRed
	case pct >= 75:
		barColor = clrOrange
	case pct >= 50:
		barColor = clrYellow
	}

	fStr := lipgloss.NewStyle().Foreground(barColor).Render(strings.Repeat("█", filled))
	eStr := lipgloss.NewStyle().Foreground(ui.ColorMuted).Render(strings.Repeat("░", width-filled))
	return fStr + eStr
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Summary renders the one-shot report printed after a run.
func Summary(mode clean.Mode, stats clean.Statistics, results []clean.OperationResult, aborted bool, elapsed time.Duration) string {
	verb := "Freed"
	if mode == clean.DryRun {
		verb = "Would free"
	}

	head := lipgloss.NewStyle().Bold(true).Foreground(ui.ColorSuccess).Render(ui.IconSuccess + " Cleanup complete")
	if aborted {
		head = lipgloss.NewStyle().Bold(true).Foreground(ui.ColorWarning).Render("Cleanup aborted")
	}

	var b strings.Builder
	b.WriteString(head + "\n")
	for _, r := range results {
		if r.Files == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %s %-16s %6d files  %s\n",
			ui.MutedStyle.Render(ui.IconPipe), r.ID, r.Files, core.FormatSizeU(r.Bytes))
	}
	fmt.Fprintf(&b, "  %s %s across %d files in %s (%s)\n",
		verb,
		lipgloss.NewStyle().Bold(true).Foreground(ui.ColorPrimary).Render(core.FormatSizeU(stats.BytesFreed)),
		stats.FilesDeleted,
		elapsed.Round(time.Millisecond),
		mode,
	)
	return b.String()
}
