// Package imaging prepares captured frames for text recognition.
package imaging

import (
	"image"
	"image/draw"

	"github.com/nfnt/resize"
)

// Filter chain defaults.
const (
	DefaultContrast  = 2.0
	DefaultScale     = 2
	DefaultThreshold = 180
)

// Options tunes the preprocessing chain.
type Options struct {
	Contrast  float64 // 1.0 leaves the image unchanged
	Scale     uint    // integer upscale factor
	Threshold uint8   // luminance below becomes black, the rest white
}

// DefaultOptions returns the stock filter chain.
func DefaultOptions() Options {
	return Options{Contrast: DefaultContrast, Scale: DefaultScale, Threshold: DefaultThreshold}
}

// Preprocess converts img to grayscale, boosts contrast, upscales and
// binarizes it.
func Preprocess(img image.Image, opts Options) *image.Gray {
	gray := Grayscale(img)
	Contrast(gray, opts.Contrast)
	if opts.Scale > 1 {
		b := gray.Bounds()
		scaled := resize.Resize(uint(b.Dx())*opts.Scale, uint(b.Dy())*opts.Scale, gray, resize.Bicubic)
		gray = Grayscale(scaled)
	}
	Threshold(gray, opts.Threshold)
	return gray
}

// Grayscale returns a luminance copy of img with origin at (0,0).
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}

// Contrast stretches pixel values away from the image's mean luminance by
// factor, in place.
func Contrast(img *image.Gray, factor float64) {
	if factor == 1 || len(img.Pix) == 0 {
		return
	}
	mean := meanLuma(img)
	var lut [256]uint8
	for v := range lut {
		lut[v] = clamp(mean + factor*(float64(v)-mean))
	}
	for i, v := range img.Pix {
		img.Pix[i] = lut[v]
	}
}

// Threshold maps values below t to black and the rest to white, in place.
func Threshold(img *image.Gray, t uint8) {
	for i, v := range img.Pix {
		if v < t {
			img.Pix[i] = 0
		} else {
			img.Pix[i] = 255
		}
	}
}

func meanLuma(img *image.Gray) float64 {
	b := img.Bounds()
	var sum, n float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			sum += float64(img.GrayAt(x, y).Y)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(int(sum/n + 0.5))
}

func clamp(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}
