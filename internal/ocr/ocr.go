// Package ocr turns images into recognized text.
package ocr

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"time"

	"github.com/GriffinCanCode/screenwatch/internal/errors"
	"github.com/GriffinCanCode/screenwatch/internal/resilience"
)

// Recognizer extracts text from an image. Any returned error is a
// recognition failure and is expected to be transient.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// Func adapts a function to Recognizer.
type Func func(ctx context.Context, img image.Image) (string, error)

func (f Func) Recognize(ctx context.Context, img image.Image) (string, error) {
	return f(ctx, img)
}

var pngEncoder = png.Encoder{CompressionLevel: png.BestSpeed}

// EncodePNG serializes img for backends that take encoded bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, errors.New(errors.OCRInvalidImage, "nil image")
	}
	var buf bytes.Buffer
	if err := pngEncoder.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(err, errors.OCRInvalidImage, "encode png")
	}
	return buf.Bytes(), nil
}

// Guarded bounds each call with a timeout and, when given a breaker, fails
// fast while the backend keeps failing.
type Guarded struct {
	next    Recognizer
	breaker *resilience.Breaker
	timeout time.Duration
}

// Guard wraps next. A zero timeout disables the per-call deadline and a nil
// breaker sends every call to next.
func Guard(next Recognizer, timeout time.Duration, breaker *resilience.Breaker) *Guarded {
	return &Guarded{next: next, breaker: breaker, timeout: timeout}
}

func (g *Guarded) Recognize(ctx context.Context, img image.Image) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	var (
		text string
		err  error
	)
	if g.breaker != nil {
		text, err = resilience.Execute(g.breaker, func() (string, error) {
			return g.next.Recognize(ctx, img)
		})
	} else {
		text, err = g.next.Recognize(ctx, img)
	}
	switch {
	case err == nil:
		return text, nil
	case errors.Is(err, resilience.ErrOpen):
		return "", errors.Wrap(err, errors.OCRUnavailable, "recognizer circuit open")
	case errors.Is(err, context.DeadlineExceeded):
		return "", errors.Wrapf(err, errors.Timeout, "recognition exceeded %s", g.timeout)
	default:
		return "", err
	}
}

// Breaker returns the guard's breaker, nil when it has none.
func (g *Guarded) Breaker() *resilience.Breaker {
	return g.breaker
}
