package core

import "fmt"

// sizeUnits stops at TB; larger values keep scaling in TB.
var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatSize renders a byte count with base-1024 scaling and two decimals,
// e.g. 1536 → "1.50 KB". Negative values are treated as zero.
func FormatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return FormatSizeU(uint64(bytes))
}

// FormatSizeU is FormatSize for unsigned counters.
func FormatSizeU(bytes uint64) string {
	size := float64(bytes)
	unit := 0
	for size >= 1024 && unit < len(sizeUnits)-1 {
		size /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f %s", size, sizeUnits[unit])
}
