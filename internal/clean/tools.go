package clean

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/lakshaymaurya-felt/tuxmole/internal/logger"
)

// defaultToolTimeout bounds a single external tool invocation.
const defaultToolTimeout = 10 * time.Minute

// ToolRunner checks for and invokes external cleanup tools.
type ToolRunner struct {
	// LookPath resolves a tool on the search path. Defaults to exec.LookPath.
	LookPath func(name string) (string, error)

	// Run executes a resolved tool. Defaults to runCommand.
	Run func(ctx context.Context, path string, args []string) error

	// Timeout bounds each invocation.
	Timeout time.Duration

	Logger *logger.Logger
}

// NewToolRunner returns a ToolRunner backed by the real search path.
func NewToolRunner(timeout time.Duration, log *logger.Logger) *ToolRunner {
	if timeout <= 0 {
		timeout = defaultToolTimeout
	}
	return &ToolRunner{
		LookPath: exec.LookPath,
		Run:      runCommand,
		Timeout:  timeout,
		Logger:   log,
	}
}

// Available reports whether name resolves on the search path.
func (r *ToolRunner) Available(name string) bool {
	_, err := r.lookup(name)
	return err == nil
}

func (r *ToolRunner) lookup(name string) (string, error) {
	if r.LookPath == nil {
		return exec.LookPath(name)
	}
	return r.LookPath(name)
}

// Invoke runs tool with args. A missing tool is a silent no-op. The command
// line is announced on events in both modes; only live mode spawns it.
// Failures are logged at debug level and never returned.
func (r *ToolRunner) Invoke(ctx context.Context, mode Mode, events Sink, tool string, args []string) {
	path, err := r.lookup(tool)
	if err != nil {
		r.Logger.Debugf("tool %s not found: %v", tool, err)
		return
	}

	events.Accept("Running: " + strings.Join(append([]string{tool}, args...), " "))
	if mode == DryRun {
		return
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaultToolTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	run := r.Run
	if run == nil {
		run = runCommand
	}
	if err := run(runCtx, path, args); err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			err = context.DeadlineExceeded
		}
		r.Logger.Debugf("%s", describeToolError(tool, err, timeout))
	}
}

// runCommand executes path with stdin, stdout and stderr detached.
func runCommand(ctx context.Context, path string, args []string) error {
	cmd := exec.CommandContext(ctx, path, args...)
	return cmd.Run()
}

// describeToolError turns an exec error into a log line.
func describeToolError(tool string, err error, timeout time.Duration) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("%s timed out after %s", tool, timeout)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Sprintf("%s exited with code %d", tool, exitErr.ExitCode())
	}
	return fmt.Sprintf("%s failed: %v", tool, err)
}
