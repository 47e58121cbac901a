package ocr

import (
	"bytes"
	"context"
	"image"
	"os/exec"
	"strconv"
	"strings"

	"github.com/GriffinCanCode/screenwatch/internal/errors"
)

// Tesseract runs the tesseract CLI, feeding a PNG on stdin and reading text
// from stdout.
type Tesseract struct {
	Path string // binary, resolved through PATH when not absolute
	PSM  int    // page segmentation mode; 0 leaves the engine default
	Lang string // optional -l value
}

// Args returns the command line arguments after the binary name.
func (t Tesseract) Args() []string {
	args := []string{"stdin", "stdout"}
	if t.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(t.PSM))
	}
	if t.Lang != "" {
		args = append(args, "-l", t.Lang)
	}
	return args
}

func (t Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return "", err
	}
	path := t.Path
	if path == "" {
		path = "tesseract"
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, t.Args()...)
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if errors.Is(err, exec.ErrNotFound) {
			return "", errors.Wrapf(err, errors.OCRUnavailable, "tesseract binary %q not found", path)
		}
		return "", errors.Wrap(err, errors.OCRExtractFailed, "tesseract failed").
			WithMetadata("stderr", strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
