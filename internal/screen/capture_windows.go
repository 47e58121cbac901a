//go:build windows

package screen

import (
	"context"
	"os/exec"
	"strings"
)

const psCapture = `Add-Type -AssemblyName System.Windows.Forms,System.Drawing
$b = [System.Windows.Forms.Screen]::PrimaryScreen.Bounds
$bmp = New-Object System.Drawing.Bitmap $b.Width, $b.Height
$g = [System.Drawing.Graphics]::FromImage($bmp)
$g.CopyFromScreen($b.Location, [System.Drawing.Point]::Empty, $b.Size)
$bmp.Save('{{path}}', [System.Drawing.Imaging.ImageFormat]::Png)
$g.Dispose(); $bmp.Dispose()`

type windowsBackend struct{}

func (windowsBackend) name() string { return "powershell capture" }

func (windowsBackend) command(ctx context.Context, path string) (*exec.Cmd, error) {
	script := strings.ReplaceAll(psCapture, "{{path}}", strings.ReplaceAll(path, "'", "''"))
	return exec.CommandContext(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", script), nil
}

// New creates a platform-specific screen capturer.
func New() (Capturer, error) {
	return newExec(windowsBackend{})
}
