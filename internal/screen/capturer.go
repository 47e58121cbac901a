// Package screen provides platform-agnostic full-screen capture.
package screen

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/GriffinCanCode/screenwatch/internal/errors"
)

// Capturer captures the primary display as a raster image.
type Capturer interface {
	Capture(ctx context.Context) (image.Image, error)
	Close() error
}

// backend implements platform-specific capture into a file.
type backend interface {
	name() string
	command(ctx context.Context, path string) (*exec.Cmd, error)
}

// execCapturer runs a platform screenshot tool into a temp file and decodes it.
type execCapturer struct {
	backend
	tempDir string
}

func newExec(b backend) (*execCapturer, error) {
	dir, err := os.MkdirTemp("", "screenwatch-capture-*")
	if err != nil {
		return nil, errors.Wrap(err, errors.CaptureFailed, "create capture temp dir")
	}
	return &execCapturer{backend: b, tempDir: dir}, nil
}

func (c *execCapturer) Capture(ctx context.Context) (image.Image, error) {
	path := filepath.Join(c.tempDir, "screen.png")
	defer os.Remove(path)

	cmd, err := c.command(ctx, path)
	if err != nil {
		return nil, err
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrapf(err, errors.CaptureFailed, "%s failed", c.name()).
			WithMetadata("stderr", stderr.String())
	}
	return decodeFile(path)
}

func (c *execCapturer) Close() error {
	return os.RemoveAll(c.tempDir)
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CaptureFailed, "read screenshot")
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrap(err, errors.CaptureFailed, "decode screenshot")
	}
	slog.Debug("screen captured", "format", format, "bounds", img.Bounds())
	return img, nil
}

// lookup returns the first tool from names found on PATH.
func lookup(names ...string) (string, bool) {
	for _, n := range names {
		if _, err := exec.LookPath(n); err == nil {
			return n, true
		}
	}
	return "", false
}
