package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// LayoutSplitWidth is the minimum width for the results/preview split.
	LayoutSplitWidth = 120
)

// Log display limits.
const (
	// LogTailLines is the number of lines read from the end of the log file.
	LogTailLines = 2000
)

// Timing and content limits.
const (
	// DefaultUIInterval is the refresh cadence for clocks and log follow.
	DefaultUIInterval = time.Second

	// MaxDetailSubjects is the number of subjects listed on the detail page.
	MaxDetailSubjects = 10
)
