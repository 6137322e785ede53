//go:build jpegxr

package options

func init() {
	compiled.JPEGXR = true
}
