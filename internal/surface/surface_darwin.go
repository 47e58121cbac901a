//go:build darwin

package surface

import (
	"context"
	"os/exec"
)

const osaTitles = `tell application "System Events"
	set out to ""
	repeat with p in (every process whose background only is false)
		repeat with w in (every window of p)
			set out to out & (name of w as text) & linefeed
		end repeat
	end repeat
	return out
end tell`

type osascript struct{}

func (osascript) name() string { return "osascript" }

func (osascript) command(ctx context.Context) *exec.Cmd {
	return exec.CommandContext(ctx, "osascript", "-e", osaTitles)
}

// New returns the host's window detector.
func New() Detector {
	return execDetector{osascript{}}
}
