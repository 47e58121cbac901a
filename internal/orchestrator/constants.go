package orchestrator

import "time"

// Orchestrator configuration constants
const (
	// Pauses used when config leaves them unset
	DefaultSleepInterval = time.Second
	DefaultSurfaceWait   = time.Second

	// Event history size when config leaves it unset
	DefaultHistorySize = 200

	// StartBanner is logged once per run
	StartBanner = "=== OCR Started (Window Aware) ==="
)
