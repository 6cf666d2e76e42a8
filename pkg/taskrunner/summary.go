package taskrunner

import (
	"fmt"
	"strings"
	"time"
)

// SummaryData captures the figures reported after a successful run.
type SummaryData struct {
	TotalTasks           int
	DurationHuman        string
	DurationMilliseconds int64
}

// NewSummaryData derives summary figures from a task count and elapsed time.
func NewSummaryData(taskCount int, elapsed time.Duration) SummaryData {
	return SummaryData{
		TotalTasks:           taskCount,
		DurationHuman:        elapsed.Round(time.Millisecond).String(),
		DurationMilliseconds: elapsed.Milliseconds(),
	}
}

// RenderSummaryLine returns the summary line printed after a successful run.
func RenderSummaryLine(data SummaryData) string {
	durationHuman := strings.TrimSpace(data.DurationHuman)
	if durationHuman == "" {
		durationHuman = "0s"
	}

	parts := []string{
		fmt.Sprintf("Summary: total.tasks=%d", data.TotalTasks),
		fmt.Sprintf("duration_human=%s", durationHuman),
		fmt.Sprintf("duration_ms=%d", data.DurationMilliseconds),
	}
	return strings.Join(parts, " ")
}
