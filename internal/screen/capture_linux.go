//go:build linux

package screen

import (
	"context"
	"os/exec"

	"github.com/GriffinCanCode/screenwatch/internal/errors"
)

type linuxBackend struct{}

func (linuxBackend) name() string { return "screenshot tool" }

// command tries gnome-screenshot first, then scrot, then ImageMagick import.
func (linuxBackend) command(ctx context.Context, path string) (*exec.Cmd, error) {
	tool, ok := lookup("gnome-screenshot", "scrot", "import")
	if !ok {
		return nil, errors.New(errors.CaptureFailed, "no screenshot tool found (install gnome-screenshot or scrot)")
	}
	switch tool {
	case "gnome-screenshot":
		return exec.CommandContext(ctx, tool, "-f", path), nil
	case "scrot":
		return exec.CommandContext(ctx, tool, "-o", path), nil
	default:
		return exec.CommandContext(ctx, tool, "-window", "root", path), nil
	}
}

// New creates a platform-specific screen capturer.
func New() (Capturer, error) {
	return newExec(linuxBackend{})
}
