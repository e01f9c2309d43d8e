package status

import (
	"context"

	"github.com/shirou/gopsutil/v4/disk"
)

// DiskMetrics is the usage of the filesystem holding Path.
type DiskMetrics struct {
	Path        string  `json:"path"`
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	Free        uint64  `json:"free"`
	UsedPercent float64 `json:"used_percent"`
}

// CollectDiskMetrics reports usage for each path. Paths that cannot be
// measured are left out; an error is returned only when none could be.
func CollectDiskMetrics(ctx context.Context, paths []string) ([]DiskMetrics, error) {
	var (
		out     []DiskMetrics
		lastErr error
	)
	for _, p := range paths {
		u, err := disk.UsageWithContext(ctx, p)
		if err != nil {
			lastErr = err
			continue
		}
		out = append(out, DiskMetrics{
			Path:        p,
			Total:       u.Total,
			Used:        u.Used,
			Free:        u.Free,
			UsedPercent: u.UsedPercent,
		})
	}
	if len(out) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}
