package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestGrayscaleCopiesAndRebases(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 14, 12))
	src.Set(10, 10, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	g := Grayscale(src)
	if g.Bounds() != image.Rect(0, 0, 4, 2) {
		t.Fatalf("bounds = %v, want (0,0)-(4,2)", g.Bounds())
	}
	if got := g.GrayAt(0, 0).Y; got != 255 {
		t.Errorf("GrayAt(0,0) = %d, want 255", got)
	}

	in := image.NewGray(image.Rect(0, 0, 1, 1))
	out := Grayscale(in)
	out.Pix[0] = 9
	if in.Pix[0] != 0 {
		t.Error("Grayscale must not alias its input")
	}
}

func TestContrast(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 2, 1))
	g.Pix[0], g.Pix[1] = 100, 140 // mean 120

	Contrast(g, 2.0)
	if g.Pix[0] != 80 || g.Pix[1] != 160 {
		t.Errorf("Pix = %v, want [80 160]", g.Pix)
	}

	g.Pix[0], g.Pix[1] = 0, 255
	Contrast(g, 2.0)
	if g.Pix[0] != 0 || g.Pix[1] != 255 {
		t.Errorf("Pix = %v, want clamped [0 255]", g.Pix)
	}
}

func TestThreshold(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 3, 1))
	copy(g.Pix, []uint8{179, 180, 250})

	Threshold(g, 180)
	want := []uint8{0, 255, 255}
	for i := range want {
		if g.Pix[i] != want[i] {
			t.Errorf("Pix[%d] = %d, want %d", i, g.Pix[i], want[i])
		}
	}
}

func TestPreprocess(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for x := 0; x < 8; x++ {
		for y := 0; y < 4; y++ {
			c := color.RGBA{A: 255}
			if x >= 4 {
				c = color.RGBA{R: 230, G: 230, B: 230, A: 255}
			}
			src.Set(x, y, c)
		}
	}

	out := Preprocess(src, DefaultOptions())
	if out.Bounds() != image.Rect(0, 0, 16, 8) {
		t.Fatalf("bounds = %v, want 16x8", out.Bounds())
	}
	for _, v := range out.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("pixel %d is not binary", v)
		}
	}
	if out.GrayAt(0, 0).Y != 0 || out.GrayAt(15, 7).Y != 255 {
		t.Errorf("corners = %d,%d; want 0,255", out.GrayAt(0, 0).Y, out.GrayAt(15, 7).Y)
	}
}

func TestPreprocessNoScale(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 3, 3))
	out := Preprocess(src, Options{Contrast: 1, Scale: 1, Threshold: 1})
	if out.Bounds().Dx() != 3 {
		t.Errorf("width = %d, want 3", out.Bounds().Dx())
	}
}
