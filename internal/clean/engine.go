// Package clean is the cleaning engine: it runs catalog operations on a
// background goroutine and reports progress through an event stream and a
// statistics aggregator.
package clean

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/lakshaymaurya-felt/tuxmole/internal/config"
	"github.com/lakshaymaurya-felt/tuxmole/internal/logger"
	"github.com/lakshaymaurya-felt/tuxmole/pkg/whitelist"
)

// Mode selects whether a run mutates anything.
type Mode int

const (
	// DryRun reports what would happen without deleting or spawning anything.
	DryRun Mode = iota
	// Live deletes files and runs tools.
	Live
)

// String returns the mode name.
func (m Mode) String() string {
	if m == Live {
		return "live"
	}
	return "dry-run"
}

// ErrRunInProgress is returned by Start while the previous run is still going.
var ErrRunInProgress = errors.New("a cleaning run is already in progress")

// RunRequest asks for one run over the given operation ids.
type RunRequest struct {
	Mode       Mode
	Operations []string
}

// Options configures an Engine.
type Options struct {
	Catalog *config.Catalog

	// Sink receives every event. Defaults to a ConsoleSink on stdout.
	Sink Sink

	// Tools invokes external programs. Defaults to the real search path.
	Tools *ToolRunner

	Whitelist *whitelist.Whitelist
	Logger    *logger.Logger

	// Pause separates consecutive operations.
	Pause time.Duration
}

// Engine runs cleaning operations one run at a time.
type Engine struct {
	catalog   *config.Catalog
	tools     *ToolRunner
	whitelist *whitelist.Whitelist
	log       *logger.Logger
	pause     time.Duration
	stats     *Aggregator
	events    *Log

	mu      sync.Mutex
	current *RunHandle
}

// NewEngine creates an Engine. Catalog is required.
func NewEngine(opts Options) *Engine {
	sink := opts.Sink
	if sink == nil {
		sink = NewConsoleSink(os.Stdout)
	}
	tools := opts.Tools
	if tools == nil {
		tools = NewToolRunner(0, opts.Logger)
	}
	if opts.Pause < 0 {
		opts.Pause = 0
	}

	return &Engine{
		catalog:   opts.Catalog,
		tools:     tools,
		whitelist: opts.Whitelist,
		log:       opts.Logger,
		pause:     opts.Pause,
		stats:     NewAggregator(),
		events:    NewLog(sink),
	}
}

// Start begins a run and returns immediately. It fails with
// ErrRunInProgress while the previous run has not finished. Operations run
// in catalog order whatever the request order; unknown and repeated ids are
// dropped silently. Cancelling ctx aborts the run.
func (e *Engine) Start(ctx context.Context, req RunRequest) (*RunHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current != nil && !e.current.Done() {
		return nil, ErrRunInProgress
	}

	ids, ops := e.resolve(req.Operations)

	e.stats.Reset()
	e.events.reset()

	runCtx, cancel := context.WithCancel(ctx)
	h := newRunHandle(req.Mode, ids, cancel)
	e.current = h

	go e.run(runCtx, h, ops)
	return h, nil
}

// Stats returns a snapshot of the current run's statistics.
func (e *Engine) Stats() Statistics {
	return e.stats.Snapshot()
}

// Events returns the current run's events from index from onwards.
func (e *Engine) Events(from int) []string {
	return e.events.Events(from)
}

// Current returns the latest run handle, or nil before the first run.
func (e *Engine) Current() *RunHandle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// resolve drops unknown and repeated ids and puts the rest in catalog
// declaration order.
func (e *Engine) resolve(requested []string) ([]string, []config.Operation) {
	for _, id := range requested {
		if _, ok := e.catalog.Lookup(id); !ok {
			e.log.Debugf("ignoring unknown operation %q", id)
		}
	}

	ids := e.catalog.Ordered(requested)
	ops := make([]config.Operation, 0, len(ids))
	for _, id := range ids {
		op, _ := e.catalog.Lookup(id)
		ops = append(ops, op)
	}
	return ids, ops
}

func (e *Engine) run(ctx context.Context, h *RunHandle, ops []config.Operation) {
	defer h.finish()
	defer func() {
		if r := recover(); r != nil {
			e.log.Errorf("run %s: worker panic: %v", h.ID, r)
		}
	}()

	e.log.Infof("run %s started (%s, %d operations)", h.ID, h.Mode, len(ops))
	x := newExecutor(h.Mode, e.events, e.stats, e.whitelist, e.log)

	for i, op := range ops {
		if ctx.Err() != nil {
			e.log.Infof("run %s aborted after %d of %d operations", h.ID, i, len(ops))
			return
		}

		before := e.stats.Snapshot()
		e.runOperation(ctx, x, h.Mode, op)
		after := e.stats.Snapshot()

		h.record(OperationResult{
			ID:    op.ID,
			Files: after.FilesDeleted - before.FilesDeleted,
			Bytes: after.BytesFreed - before.BytesFreed,
		})

		if i < len(ops)-1 {
			sleep(ctx, e.pause)
		}
	}

	e.log.Infof("run %s finished in %s", h.ID, h.Elapsed().Round(time.Millisecond))
}

func (e *Engine) runOperation(ctx context.Context, x *executor, mode Mode, op config.Operation) {
	if op.Gate != "" && !e.tools.Available(op.Gate) {
		e.log.Debugf("%s: %s not installed, skipping", op.ID, op.Gate)
		return
	}
	if op.Banner != "" {
		e.events.Accept(op.Banner)
	}

	for _, step := range op.Steps {
		var err error
		switch step.Kind {
		case config.StepDirectoryPurge:
			err = x.purgeDirectory(ctx, step.Path)
		case config.StepPatternPurge:
			err = x.purgePattern(ctx, step.Path, step.Pattern)
		case config.StepDiscoverPurge:
			err = x.purgeDiscovered(ctx, step.Path, step.DirName)
		case config.StepScan:
			err = x.scan(ctx, step.Path, step.Pattern)
		case config.StepExternalTool:
			e.tools.Invoke(ctx, mode, e.events, step.Tool, step.Args)
			err = ctx.Err()
		}
		if err != nil {
			return
		}
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
