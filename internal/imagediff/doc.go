// Package imagediff computes per-channel differences between two RGBA
// frames and derives outlier counts from them.
//
// Both frames must share dimensions and use the *image.RGBA layout
// (row-major, 4 bytes per pixel). Decoded images in any other layout should
// be normalized with ToRGBA first.
//
// An outlier is a single channel sample whose absolute difference exceeds
// the tolerance; one pixel can contribute up to four outliers.
package imagediff
