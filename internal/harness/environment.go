package harness

import "github.com/roach88/snapcheck/internal/options"

// Headless is an Environment with no renderer. Cases that require a
// non-optional renderer cannot run in it when renderers are probed.
type Headless struct{}

// IsRenderSupported implements options.Environment.
func (Headless) IsRenderSupported(options.RenderOptions) bool { return false }

// CreateRenderer implements options.Environment.
func (Headless) CreateRenderer(uint32, uint32) (options.RenderInterface, options.RenderBackend, bool) {
	return nil, nil, false
}
