//go:build windows

package surface

import (
	"context"
	"os/exec"
)

const psTitles = `Get-Process | Where-Object { $_.MainWindowTitle } | ForEach-Object { $_.MainWindowTitle }`

type powershell struct{}

func (powershell) name() string { return "powershell" }

func (powershell) command(ctx context.Context) *exec.Cmd {
	return exec.CommandContext(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", psTitles)
}

// New returns the host's window detector.
func New() Detector {
	return execDetector{powershell{}}
}
