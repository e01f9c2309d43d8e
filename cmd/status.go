package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/tuxmole/internal/core"
	"github.com/lakshaymaurya-felt/tuxmole/internal/runlock"
	"github.com/lakshaymaurya-felt/tuxmole/internal/status"
	"github.com/lakshaymaurya-felt/tuxmole/internal/ui"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show disk usage and run state",
	Long:  "Print free space on the root and home filesystems, host details, and whether a cleaning run is in progress.",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output as JSON")
}

// statusReport is the JSON form of tm status.
type statusReport struct {
	Host       string               `json:"host"`
	Elevated   bool                 `json:"elevated"`
	RunActive  bool                 `json:"run_active"`
	ConfigPath string               `json:"config_path,omitempty"`
	Disks      []status.DiskMetrics `json:"disks"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	s, err := newSession(false)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	disks, err := status.CollectDiskMetrics(ctx, []string{"/", s.home})
	if err != nil {
		return fmt.Errorf("disk usage: %w", err)
	}

	rep := statusReport{
		Host:       core.HostString(ctx),
		Elevated:   core.IsElevated(),
		RunActive:  runActive(),
		Disks:      dedupeDisks(disks),
		ConfigPath: activeConfigPath(s.home),
	}

	out := cmd.OutOrStdout()
	if statusJSON {
		return writeReport(out, rep)
	}

	fmt.Fprintln(out, ui.TitleStyle.Render("tuxmole "+appVersion))
	fmt.Fprintf(out, "  Host      %s\n", rep.Host)
	fmt.Fprintf(out, "  Root      %t\n", rep.Elevated)
	run := "idle"
	if rep.RunActive {
		run = "cleaning in progress"
	}
	fmt.Fprintf(out, "  Run       %s\n", run)
	if rep.ConfigPath != "" {
		fmt.Fprintf(out, "  Config    %s\n", rep.ConfigPath)
	}
	fmt.Fprintln(out)
	for _, d := range rep.Disks {
		fmt.Fprintf(out, "  %-20s %s free of %s (%.1f%% used)\n",
			d.Path, humanize.IBytes(d.Free), humanize.IBytes(d.Total), d.UsedPercent)
	}
	return nil
}

// runActive reports whether another process holds the run lock.
func runActive() bool {
	lock, err := runlock.Acquire(runlock.DefaultPath())
	if errors.Is(err, runlock.ErrLocked) {
		return true
	}
	if err == nil {
		_ = lock.Release()
	}
	return false
}

// dedupeDisks drops entries that describe the same filesystem as an
// earlier one, such as a home directory on the root partition.
func dedupeDisks(disks []status.DiskMetrics) []status.DiskMetrics {
	var out []status.DiskMetrics
	for _, d := range disks {
		dup := false
		for _, o := range out {
			if o.Total == d.Total && o.Used == d.Used && o.Free == d.Free {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, d)
		}
	}
	return out
}
