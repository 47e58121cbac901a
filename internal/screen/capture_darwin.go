//go:build darwin

package screen

import (
	"context"
	"os/exec"
)

type darwinBackend struct{}

func (darwinBackend) name() string { return "screencapture" }

// command uses -x (no sound), -t png, -m (main display only).
func (darwinBackend) command(ctx context.Context, path string) (*exec.Cmd, error) {
	return exec.CommandContext(ctx, "screencapture", "-x", "-t", "png", "-m", path), nil
}

// New creates a platform-specific screen capturer.
func New() (Capturer, error) {
	return newExec(darwinBackend{})
}
