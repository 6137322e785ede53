//go:build lzma

package options

func init() {
	compiled.LZMA = true
}
