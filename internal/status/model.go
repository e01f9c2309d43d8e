// Package status renders a live view of a cleaning run.
package status

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lakshaymaurya-felt/tuxmole/internal/clean"
)

// DefaultRefresh is how often the dashboard polls the engine.
const DefaultRefresh = 100 * time.Millisecond

// maxLogLines bounds the event tail kept in memory.
const maxLogLines = 200

// Run is the part of a run handle the dashboard drives.
type Run interface {
	Done() bool
	Abort()
	AbortRequested() bool
	Progress() (completed, total int)
	Elapsed() time.Duration
}

// Source exposes a run's counters and event stream.
type Source interface {
	Stats() clean.Statistics
	Events(from int) []string
}

// ─── Messages ────────────────────────────────────────────────────────────────

type tickMsg time.Time

type diskMsg struct {
	disks []DiskMetrics
	err   error
}

// ─── Model ───────────────────────────────────────────────────────────────────

// RunModel is the bubbletea Model that follows one cleaning run.
type RunModel struct {
	source Source
	run    Run
	mode   clean.Mode

	spinner  spinner.Model
	progress progress.Model

	Stats     clean.Statistics
	Log       []string
	next      int
	Disks     []DiskMetrics
	diskPaths []string
	Err       error

	Width    int
	Height   int
	interval time.Duration
	finished bool
	quitting bool
}

// NewRunModel creates a RunModel watching run. diskPaths are measured when
// the dashboard opens and again once the run finishes.
func NewRunModel(source Source, run Run, mode clean.Mode, diskPaths []string) RunModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return RunModel{
		source:    source,
		run:       run,
		mode:      mode,
		spinner:   sp,
		progress:  progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		diskPaths: diskPaths,
		Width:     80,
		Height:    24,
		interval:  DefaultRefresh,
	}
}

// Finished reports whether the run was seen to complete.
func (m RunModel) Finished() bool {
	return m.finished
}

func (m RunModel) doTick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m RunModel) collectDisks() tea.Cmd {
	paths := m.diskPaths
	if len(paths) == 0 {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		disks, err := CollectDiskMetrics(ctx, paths)
		return diskMsg{disks: disks, err: err}
	}
}

// poll pulls fresh counters and any new events from the source.
func (m *RunModel) poll() {
	m.Stats = m.source.Stats()
	fresh := m.source.Events(m.next)
	m.next += len(fresh)
	m.Log = append(m.Log, fresh...)
	if len(m.Log) > maxLogLines {
		m.Log = m.Log[len(m.Log)-maxLogLines:]
	}
}

// ─── tea.Model interface ─────────────────────────────────────────────────────

func (m RunModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.doTick(), m.collectDisks())
}

func (m RunModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.progress.Width = min(max(msg.Width-24, 10), 60)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "a", "esc":
			if !m.finished && !m.run.AbortRequested() {
				m.run.Abort()
			}
		case "q":
			if m.finished {
				m.quitting = true
				return m, tea.Quit
			}
		case "ctrl+c":
			if !m.finished {
				m.run.Abort()
			}
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		if m.finished {
			return m, nil
		}
		m.poll()
		if m.run.Done() {
			// The worker may have emitted its last events between the
			// first poll and the completion flag.
			m.poll()
			m.finished = true
			return m, m.collectDisks()
		}
		return m, m.doTick()

	case diskMsg:
		if msg.err != nil {
			m.Err = msg.err
			return m, nil
		}
		m.Disks = msg.disks
		return m, nil

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		if p, ok := pm.(progress.Model); ok {
			m.progress = p
		}
		return m, cmd
	}

	return m, nil
}

func (m RunModel) View() string {
	if m.quitting {
		return ""
	}
	return m.renderView()
}
