package server

import "time"

// Server configuration constants
const (
	// Default and maximum events returned by /api/events
	DefaultEventLimit = 50
	MaxEventLimit     = 1000

	// Per-connection event buffer; slow clients miss events
	WSEventBuffer = 64

	WSWriteTimeout  = 5 * time.Second
	ShutdownTimeout = 5 * time.Second
	ReadTimeout     = 10 * time.Second
)
