package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/tuxmole/internal/clean"
	"github.com/lakshaymaurya-felt/tuxmole/internal/config"
	"github.com/lakshaymaurya-felt/tuxmole/internal/core"
	"github.com/lakshaymaurya-felt/tuxmole/internal/runlock"
	"github.com/lakshaymaurya-felt/tuxmole/internal/status"
)

var (
	dryRun    bool
	cleanOnly []string
	cleanAll  bool
	cleanText bool
	cleanJSON bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Free up disk space",
	Long: `Deep cleanup of caches, logs, temp files, trash and package manager
leftovers to reclaim disk space.

Without --only or --all, the operations listed under "enabled" in the
config file run, or the default set when there is none. Ids given to
--only must all exist; unknown ids in the config file are skipped with a
warning.

Examples:
  tm clean --dry-run                 # Preview the default set
  tm clean --only trash,vim          # Clean just these
  tm clean --all --plain             # Everything, line-by-line output
  tm clean --dry-run --json          # Machine-readable report`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview the cleanup plan without deleting")
	cleanCmd.Flags().StringSliceVar(&cleanOnly, "only", nil, "Comma-separated operation ids to run; unknown ids are rejected (see 'tm list')")
	cleanCmd.Flags().BoolVar(&cleanAll, "all", false, "Run every operation in the catalog")
	cleanCmd.Flags().BoolVar(&cleanText, "plain", false, "Print events line by line instead of the live view")
	cleanCmd.Flags().BoolVar(&cleanJSON, "json", false, "Print a JSON report when the run ends")
	cleanCmd.MarkFlagsMutuallyExclusive("only", "all")

	_ = cleanCmd.RegisterFlagCompletionFunc("only", completeOperationIDs)
}

// selectOperations resolves the ids to run, in catalog order.
func selectOperations(cat *config.Catalog, only []string, all bool, enabled []string) ([]string, error) {
	switch {
	case len(only) > 0:
		var unknown []string
		for _, id := range only {
			if _, ok := cat.Lookup(id); !ok {
				unknown = append(unknown, id)
			}
		}
		if len(unknown) > 0 {
			return nil, fmt.Errorf("unknown operation(s): %s (see 'tm list')", strings.Join(unknown, ", "))
		}
		return cat.Ordered(only), nil
	case all:
		return cat.IDs(), nil
	case len(enabled) > 0:
		return cat.Ordered(enabled), nil
	default:
		return cat.DefaultIDs(), nil
	}
}

// needsRoot returns the selected operations that only fully work as root.
func needsRoot(cat *config.Catalog, ids []string) []string {
	var out []string
	for _, id := range ids {
		if op, ok := cat.Lookup(id); ok && op.RequiresAdmin {
			out = append(out, id)
		}
	}
	return out
}

func runClean(cmd *cobra.Command, args []string) error {
	interactive := !cleanText && !cleanJSON && isatty.IsTerminal(os.Stdout.Fd())

	s, err := newSession(interactive)
	if err != nil {
		return err
	}
	defer s.Close()

	ids, err := selectOperations(s.catalog, cleanOnly, cleanAll, s.settings.Enabled)
	if err != nil {
		return err
	}

	mode := clean.Live
	if dryRun {
		mode = clean.DryRun
	}
	if mode == clean.Live && !core.IsElevated() {
		if rooted := needsRoot(s.catalog, ids); len(rooted) > 0 {
			s.log.Warnf("not running as root: %s will skip files owned by other users", strings.Join(rooted, ", "))
		}
	}

	lock, err := runlock.Acquire(runlock.DefaultPath())
	if err != nil {
		if errors.Is(err, runlock.ErrLocked) {
			return fmt.Errorf("%w (lock: %s)", err, runlock.DefaultPath())
		}
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			s.log.Warnf("%v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var sink clean.Sink = clean.SinkFunc(func(string) {})
	if !interactive && !cleanJSON {
		sink = clean.NewConsoleSink(cmd.OutOrStdout())
	}

	engine := newCleanEngine(s, lock, sink)

	h, err := engine.Start(ctx, clean.RunRequest{Mode: mode, Operations: ids})
	if err != nil {
		return err
	}

	if interactive {
		model := status.NewRunModel(engine, h, mode, []string{"/", s.home})
		if _, err := tea.NewProgram(model, tea.WithContext(ctx)).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			s.log.Errorf("live view: %v", err)
		}
		if !h.Done() {
			h.Abort()
		}
	}
	h.Wait()

	aborted := h.AbortRequested() || ctx.Err() != nil
	out := cmd.OutOrStdout()
	if cleanJSON {
		return writeReport(out, newReport(h, engine, aborted))
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, status.Summary(mode, engine.Stats(), h.Results(), aborted, h.Elapsed()))
	return nil
}

// newCleanEngine builds the engine for a run holding lock. The lock file is
// always protected so no operation can delete it out from under the run.
func newCleanEngine(s *session, lock *runlock.Lock, sink clean.Sink) *clean.Engine {
	return clean.NewEngine(clean.Options{
		Catalog:   s.catalog,
		Sink:      sink,
		Tools:     clean.NewToolRunner(s.settings.ToolTimeout, s.log),
		Whitelist: s.whitelist.With(lock.Path()),
		Logger:    s.log,
		Pause:     s.settings.Pause,
	})
}

// report is the JSON form of a finished run.
type report struct {
	RunID      string                  `json:"run_id"`
	Mode       string                  `json:"mode"`
	Operations []string                `json:"operations"`
	Aborted    bool                    `json:"aborted"`
	ElapsedMS  int64                   `json:"elapsed_ms"`
	Statistics clean.Statistics        `json:"statistics"`
	Results    []clean.OperationResult `json:"results"`
	Events     []string                `json:"events"`
}

func newReport(h *clean.RunHandle, engine *clean.Engine, aborted bool) report {
	r := report{
		RunID:      h.ID.String(),
		Mode:       h.Mode.String(),
		Operations: h.Operations,
		Aborted:    aborted,
		ElapsedMS:  h.Elapsed().Milliseconds(),
		Statistics: engine.Stats(),
		Results:    h.Results(),
		Events:     engine.Events(0),
	}
	if r.Operations == nil {
		r.Operations = []string{}
	}
	if r.Results == nil {
		r.Results = []clean.OperationResult{}
	}
	if r.Events == nil {
		r.Events = []string{}
	}
	return r
}

func writeReport(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func completeOperationIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// --only takes a comma-separated list; complete its last element.
	done, partial := "", toComplete
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		done, partial = toComplete[:i+1], toComplete[i+1:]
	}

	cat := config.NewCatalog(config.DefaultLocations())
	var out []string
	for _, op := range cat.Operations() {
		if strings.HasPrefix(op.ID, partial) {
			out = append(out, done+op.ID+"\t"+op.Name)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
