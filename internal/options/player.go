package options

import (
	"fmt"
	"image"
	"time"
)

// Quality is the stage quality handed to the player.
type Quality string

const (
	QualityLow       Quality = "Low"
	QualityMedium    Quality = "Medium"
	QualityHigh      Quality = "High"
	QualityHigh8x8   Quality = "High8x8"
	QualityHigh16x16 Quality = "High16x16"
)

// QualityForSampleCount maps an anti-aliasing sample count to a stage quality.
func QualityForSampleCount(sampleCount uint32) Quality {
	switch sampleCount {
	case 16:
		return QualityHigh16x16
	case 8:
		return QualityHigh8x8
	case 4:
		return QualityHigh
	case 2:
		return QualityMedium
	default:
		return QualityLow
	}
}

// Runtime selects the player flavor.
type Runtime string

const (
	RuntimeFlashPlayer Runtime = "flash_player"
	RuntimeAIR         Runtime = "air"
)

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Runtime) UnmarshalText(text []byte) error {
	switch Runtime(text) {
	case RuntimeFlashPlayer, RuntimeAIR:
		*r = Runtime(text)
		return nil
	}
	return fmt.Errorf("unknown runtime %q: must be %q or %q", text, RuntimeFlashPlayer, RuntimeAIR)
}

// OrDefault returns RuntimeFlashPlayer for the zero value.
func (r Runtime) OrDefault() Runtime {
	if r == "" {
		return RuntimeFlashPlayer
	}
	return r
}

// Mode selects the player execution mode.
type Mode string

const (
	ModeDebug   Mode = "debug"
	ModeRelease Mode = "release"
)

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	switch Mode(text) {
	case ModeDebug, ModeRelease:
		*m = Mode(text)
		return nil
	}
	return fmt.Errorf("unknown mode %q: must be %q or %q", text, ModeDebug, ModeRelease)
}

// ViewportDimensions is the size of the player's stage in pixels.
type ViewportDimensions struct {
	Width       uint32  `yaml:"width" json:"width"`
	Height      uint32  `yaml:"height" json:"height"`
	ScaleFactor float64 `yaml:"scale_factor" json:"scale_factor"`
}

// RenderOptions requests a renderer for the test.
type RenderOptions struct {
	// Optional allows the test to run without rendering when the
	// environment cannot provide the requested renderer.
	Optional bool `yaml:"optional" json:"optional"`

	// SampleCount is the anti-aliasing sample count. Zero means 1.
	SampleCount uint32 `yaml:"sample_count" json:"sample_count"`
}

// Samples returns the effective sample count.
func (r RenderOptions) Samples() uint32 {
	if r.SampleCount == 0 {
		return 1
	}
	return r.SampleCount
}

// PlayerOptions are the execution parameters for the player under test.
type PlayerOptions struct {
	MaxExecutionDuration *time.Duration     `yaml:"max_execution_duration,omitempty" json:"max_execution_duration,omitempty"`
	ViewportDimensions   *ViewportDimensions `yaml:"viewport_dimensions,omitempty" json:"viewport_dimensions,omitempty"`
	WithRenderer         *RenderOptions      `yaml:"with_renderer,omitempty" json:"with_renderer,omitempty"`
	WithAudio            bool                `yaml:"with_audio" json:"with_audio"`
	WithVideo            bool                `yaml:"with_video" json:"with_video"`
	Runtime              Runtime             `yaml:"runtime,omitempty" json:"runtime,omitempty"`
	Mode                 *Mode               `yaml:"mode,omitempty" json:"mode,omitempty"`
}

// Builder is the player construction interface of the runtime under test.
// Each method returns the builder to continue the chain.
type Builder interface {
	WithMaxExecutionDuration(d time.Duration) Builder
	WithQuality(q Quality) Builder
	WithAudio() Builder
	// WithVideo attaches a video backend. It fails when no decoder is available.
	WithVideo() (Builder, error)
	WithRuntime(r Runtime) Builder
	WithMode(m Mode) Builder
}

// RenderInterface captures frames from a renderer created by an Environment.
type RenderInterface interface {
	// Name identifies the rendering environment (e.g. "wgpu-vulkan").
	// It is used in diagnostic image file names.
	Name() string

	// Capture reads back the current frame.
	Capture(backend RenderBackend) (*image.RGBA, error)
}

// RenderBackend is an opaque renderer handle owned by the player.
type RenderBackend any

// Environment provides rendering capabilities for the host.
type Environment interface {
	// IsRenderSupported reports whether the requested renderer can be created.
	// Probing may be expensive.
	IsRenderSupported(r RenderOptions) bool

	// CreateRenderer creates a renderer of the given size.
	// ok is false when the environment has no renderer.
	CreateRenderer(width, height uint32) (iface RenderInterface, backend RenderBackend, ok bool)
}

// Media is the content the player runs.
type Media interface {
	// PixelSize returns the intrinsic stage size in pixels.
	PixelSize() (width, height uint32)
}

// Setup applies the options to a player builder.
// Mode defaults to ModeDebug: tests assume a debugger build of the player.
func (p *PlayerOptions) Setup(b Builder) (Builder, error) {
	if p.MaxExecutionDuration != nil {
		b = b.WithMaxExecutionDuration(*p.MaxExecutionDuration)
	}

	if p.WithRenderer != nil {
		b = b.WithQuality(QualityForSampleCount(p.WithRenderer.SampleCount))
	}

	if p.WithAudio {
		b = b.WithAudio()
	}

	mode := ModeDebug
	if p.Mode != nil {
		mode = *p.Mode
	}
	b = b.WithRuntime(p.Runtime.OrDefault()).WithMode(mode)

	if p.WithVideo {
		var err error
		b, err = b.WithVideo()
		if err != nil {
			return nil, fmt.Errorf("failed to set up video backend: %w", err)
		}
	}

	return b, nil
}

// CanRun reports whether the environment can run the test.
//
// The renderer is only probed when checkRenderer is set, so listing tests
// does not pay for creating one.
func (p *PlayerOptions) CanRun(checkRenderer bool, env Environment) bool {
	if p.WithRenderer == nil {
		return true
	}
	if checkRenderer && !p.WithRenderer.Optional && !env.IsRenderSupported(*p.WithRenderer) {
		return false
	}
	return true
}

// Viewport returns the configured viewport or the media's intrinsic size at
// scale 1.0.
func (p *PlayerOptions) Viewport(m Media) ViewportDimensions {
	if p.ViewportDimensions != nil {
		return *p.ViewportDimensions
	}
	w, h := m.PixelSize()
	return ViewportDimensions{Width: w, Height: h, ScaleFactor: 1.0}
}

// CreateRenderer creates a renderer when one is configured.
func (p *PlayerOptions) CreateRenderer(env Environment, dims ViewportDimensions) (RenderInterface, RenderBackend, bool) {
	if p.WithRenderer == nil {
		return nil, nil, false
	}
	return env.CreateRenderer(dims.Width, dims.Height)
}
