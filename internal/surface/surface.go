// Package surface answers whether the monitored window is currently open.
package surface

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/GriffinCanCode/screenwatch/internal/errors"
)

// Detector reports whether a window whose title contains the given
// substring (case-insensitive) is open.
type Detector interface {
	Visible(ctx context.Context, title string) (bool, error)
}

// lister enumerates window titles on the host.
type lister interface {
	name() string
	command(ctx context.Context) *exec.Cmd
}

// execDetector runs a platform tool that prints one window title per line.
type execDetector struct {
	lister
}

func (d execDetector) Visible(ctx context.Context, title string) (bool, error) {
	titles, err := d.titles(ctx)
	if err != nil {
		return false, err
	}
	return Match(titles, title), nil
}

func (d execDetector) titles(ctx context.Context) ([]string, error) {
	var stdout, stderr bytes.Buffer
	cmd := d.command(ctx)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrapf(err, errors.SurfaceFailed, "%s failed", d.name()).
			WithMetadata("stderr", strings.TrimSpace(stderr.String()))
	}
	return parseTitles(stdout.Bytes()), nil
}

func parseTitles(out []byte) []string {
	var titles []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			titles = append(titles, line)
		}
	}
	return titles
}

// Match reports whether any title contains sub, ignoring case. An empty sub
// matches any non-empty window list.
func Match(titles []string, sub string) bool {
	sub = strings.ToLower(sub)
	for _, t := range titles {
		if strings.Contains(strings.ToLower(t), sub) {
			return true
		}
	}
	return false
}

// Always is a Detector that reports every surface as visible.
type Always struct{}

func (Always) Visible(context.Context, string) (bool, error) { return true, nil }
