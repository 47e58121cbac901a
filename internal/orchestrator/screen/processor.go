// Package screen turns captured frames into recognized text, reusing the
// previous recognition when the frame has not changed.
package screen

import (
	"bytes"
	"context"
	"image"
	"log/slog"
	"sync"

	"github.com/corona10/goimagehash"

	"github.com/GriffinCanCode/screenwatch/internal/imaging"
	"github.com/GriffinCanCode/screenwatch/internal/ocr"
	screencap "github.com/GriffinCanCode/screenwatch/internal/screen"
)

// Frame is the outcome of one sensing pass.
type Frame struct {
	Raw    image.Image // full capture, kept as evidence
	Text   string      // recognized text, not yet normalized
	Hash   string      // perceptual hash of the preprocessed frame
	Cached bool        // Text was reused from the previous frame
}

// Processor captures, preprocesses and recognizes a frame.
type Processor struct {
	capturer   screencap.Capturer
	recognizer ocr.Recognizer
	opts       imaging.Options
	cache      bool

	mu       sync.Mutex
	lastHash *goimagehash.ImageHash
	lastPix  []byte
	lastText string
}

// NewProcessor creates a processor. With cache enabled an unchanged frame
// skips recognition.
func NewProcessor(capturer screencap.Capturer, recognizer ocr.Recognizer, opts imaging.Options, cache bool) *Processor {
	return &Processor{capturer: capturer, recognizer: recognizer, opts: opts, cache: cache}
}

// Sense runs capture, preprocess and recognition. Errors from capture or
// recognition are returned unchanged.
func (p *Processor) Sense(ctx context.Context) (Frame, error) {
	raw, err := p.capturer.Capture(ctx)
	if err != nil {
		return Frame{}, err
	}
	bw := imaging.Preprocess(raw, p.opts)

	hash := perceptionHash(bw)
	frame := Frame{Raw: raw}
	if hash != nil {
		frame.Hash = hash.ToString()
	}

	if p.cache {
		if text, ok := p.reuse(hash, bw); ok {
			frame.Text, frame.Cached = text, true
			return frame, nil
		}
	}

	text, err := p.recognizer.Recognize(ctx, bw)
	if err != nil {
		p.forget()
		return Frame{}, err
	}
	p.remember(hash, bw, text)
	frame.Text = text
	return frame, nil
}

// perceptionHash returns nil when the frame cannot be hashed; such a frame is
// always recognized.
func perceptionHash(img image.Image) *goimagehash.ImageHash {
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		slog.Debug("perceptual hash failed, recognizing without cache", "error", err)
		return nil
	}
	return hash
}

// reuse reports the previous text when the frame is perceptually similar and
// pixel-identical to the last recognized one. A small digit change can leave
// the perceptual hash untouched, so the hash only gates the exact comparison.
func (p *Processor) reuse(hash *goimagehash.ImageHash, bw *image.Gray) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if hash == nil || p.lastHash == nil {
		return "", false
	}
	dist, err := p.lastHash.Distance(hash)
	if err != nil || dist > MaxHashDistance {
		return "", false
	}
	if !bytes.Equal(p.lastPix, bw.Pix) {
		return "", false
	}
	slog.Debug("skipping OCR due to unchanged frame", "distance", dist)
	return p.lastText, true
}

func (p *Processor) remember(hash *goimagehash.ImageHash, bw *image.Gray, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastHash = hash
	p.lastPix = append(p.lastPix[:0], bw.Pix...)
	p.lastText = text
}

func (p *Processor) forget() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastHash = nil
	p.lastPix = nil
	p.lastText = ""
}

// Text returns the latest recognized text.
func (p *Processor) Text() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastText
}
