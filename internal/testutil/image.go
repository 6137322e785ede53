package testutil

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"
)

// SolidRGBA returns a w×h frame filled with c.
func SolidRGBA(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

// WithPixel returns a copy of img with the pixel at (x, y) replaced by c.
func WithPixel(img *image.RGBA, x, y int, c color.RGBA) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	copy(out.Pix, img.Pix)
	out.SetRGBA(x, y, c)
	return out
}

// WritePNG encodes img to path, failing the test on error.
func WritePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}
