package imagediff

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// ErrEmptyImage is returned for operations that need at least one pixel.
var ErrEmptyImage = errors.New("image has no pixels")

// SizeMismatchError reports frames with different dimensions.
type SizeMismatchError struct {
	Actual   image.Point
	Expected image.Point
}

// Error implements the error interface.
func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("image is not the right size. Expected = %dx%d, actual = %dx%d.",
		e.Expected.X, e.Expected.Y, e.Actual.X, e.Actual.Y)
}

// Diff is the per-pixel, per-channel absolute difference of two frames.
type Diff struct {
	Width  int
	Height int

	// Pix holds 4 bytes per pixel in RGBA order, rows packed without padding.
	Pix []uint8

	// AlphaDiffers is set when any pixel's alpha differs at all,
	// regardless of tolerance.
	AlphaDiffers bool
}

// Difference computes |expected - actual| for every channel of every pixel.
func Difference(actual, expected *image.RGBA) (*Diff, error) {
	as, es := actual.Bounds().Size(), expected.Bounds().Size()
	if as != es {
		return nil, &SizeMismatchError{Actual: as, Expected: es}
	}

	d := &Diff{
		Width:  as.X,
		Height: as.Y,
		Pix:    make([]uint8, as.X*as.Y*4),
	}

	ab, eb := actual.Bounds(), expected.Bounds()
	for y := 0; y < as.Y; y++ {
		arow := actual.Pix[actual.PixOffset(ab.Min.X, ab.Min.Y+y):]
		erow := expected.Pix[expected.PixOffset(eb.Min.X, eb.Min.Y+y):]
		out := d.Pix[y*as.X*4:]
		for i := 0; i < as.X*4; i += 4 {
			if arow[i+3] != erow[i+3] {
				d.AlphaDiffers = true
			}
			out[i] = channelDiff(erow[i], arow[i])
			out[i+1] = channelDiff(erow[i+1], arow[i+1])
			out[i+2] = channelDiff(erow[i+2], arow[i+2])
			out[i+3] = channelDiff(erow[i+3], arow[i+3])
		}
	}

	return d, nil
}

func channelDiff(lhs, rhs uint8) uint8 {
	v := int16(lhs) - int16(rhs)
	if v < 0 {
		v = -v
	}
	return uint8(v)
}

// Outliers counts channel samples strictly greater than tolerance.
func (d *Diff) Outliers(tolerance uint8) int {
	count := 0
	for _, v := range d.Pix {
		if v > tolerance {
			count++
		}
	}
	return count
}

// MaxDifference returns the largest single-channel difference.
func (d *Diff) MaxDifference() (uint8, error) {
	if len(d.Pix) == 0 {
		return 0, ErrEmptyImage
	}
	var maxDiff uint8
	for _, v := range d.Pix {
		if v > maxDiff {
			maxDiff = v
		}
	}
	return maxDiff, nil
}

// ColorImage returns the red, green and blue differences as a 3-byte
// stride image.
func (d *Diff) ColorImage() *RGB {
	img := NewRGB(image.Rect(0, 0, d.Width, d.Height))
	for i, j := 0, 0; i < len(d.Pix); i, j = i+4, j+3 {
		copy(img.Pix[j:j+3], d.Pix[i:i+3])
	}
	return img
}

// AlphaImage returns the alpha differences as a grayscale image.
func (d *Diff) AlphaImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, d.Width, d.Height))
	for i, j := 3, 0; i < len(d.Pix); i, j = i+4, j+1 {
		img.Pix[j] = d.Pix[i]
	}
	return img
}

// ToRGBA converts img to a zero-origin *image.RGBA.
// An *image.RGBA that already starts at the origin is returned unchanged.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// RGB is an in-memory image of 8-bit red, green and blue samples
// with no alpha channel.
type RGB struct {
	// Pix holds the samples in R, G, B order, 3 bytes per pixel.
	Pix    []uint8
	Stride int
	Rect   image.Rectangle
}

// NewRGB returns a new RGB image with the given bounds.
func NewRGB(r image.Rectangle) *RGB {
	return &RGB{
		Pix:    make([]uint8, 3*r.Dx()*r.Dy()),
		Stride: 3 * r.Dx(),
		Rect:   r,
	}
}

// ColorModel implements image.Image.
func (p *RGB) ColorModel() color.Model { return color.RGBAModel }

// Bounds implements image.Image.
func (p *RGB) Bounds() image.Rectangle { return p.Rect }

// At implements image.Image.
func (p *RGB) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return color.RGBA{}
	}
	i := (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*3
	return color.RGBA{R: p.Pix[i], G: p.Pix[i+1], B: p.Pix[i+2], A: 0xff}
}

// Opaque reports that every pixel is fully opaque.
func (p *RGB) Opaque() bool { return true }
