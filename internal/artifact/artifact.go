// Package artifact reads reference images and writes diagnostic images
// for failed comparisons.
package artifact

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/roach88/snapcheck/internal/imagediff"
)

// Sink persists diagnostic images.
type Sink interface {
	WriteImage(name string, img image.Image) error
}

// DirSink writes PNG files into a directory, usually the test directory.
type DirSink struct {
	Dir string
}

// WriteImage encodes img as PNG at Dir/name.
func (s DirSink) WriteImage(name string, img image.Image) error {
	path := filepath.Join(s.Dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Discard drops every image.
type Discard struct{}

// WriteImage implements Sink.
func (Discard) WriteImage(string, image.Image) error { return nil }

// ActualName is the file name of the captured frame for a failed comparison.
func ActualName(comparison, env string) string {
	return fmt.Sprintf("%s.actual-%s.png", comparison, env)
}

// ColorDifferenceName is the file name of the RGB difference image.
func ColorDifferenceName(comparison, env string) string {
	return fmt.Sprintf("%s.difference-color-%s.png", comparison, env)
}

// AlphaDifferenceName is the file name of the alpha difference image.
func AlphaDifferenceName(comparison, env string) string {
	return fmt.Sprintf("%s.difference-alpha-%s.png", comparison, env)
}

// ExpectedName is the file name of the reference frame for a comparison.
func ExpectedName(comparison string) string {
	return comparison + ".expected.png"
}

// LoadPNG decodes a PNG file into the RGBA layout the comparison expects.
func LoadPNG(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return imagediff.ToRGBA(img), nil
}
