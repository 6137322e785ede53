package options

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/snapcheck/internal/approx"
	"github.com/roach88/snapcheck/internal/expr"
)

// DefaultOutputPath is the expected log file, relative to the test directory.
const DefaultOutputPath = "output.txt"

// ConfigFileNames are the recognized test configuration files, in lookup order.
var ConfigFileNames = []string{"test.yaml", "test.yml", "test.cue"}

// TestOptions is the configuration of a single test case.
// It is immutable once loaded.
type TestOptions struct {
	NumFrames            *uint32  `yaml:"num_frames,omitempty" json:"num_frames,omitempty"`
	NumTicks             *uint32  `yaml:"num_ticks,omitempty" json:"num_ticks,omitempty"`
	TickRate             *float64 `yaml:"tick_rate,omitempty" json:"tick_rate,omitempty"`
	OutputPath           string   `yaml:"output_path" json:"output_path"`
	SleepToMeetFrameRate bool     `yaml:"sleep_to_meet_frame_rate" json:"sleep_to_meet_frame_rate"`

	// ImageComparisons maps a capture name to its comparison rules.
	ImageComparisons map[string]ImageComparison `yaml:"image_comparisons,omitempty" json:"image_comparisons,omitempty"`

	// Ignore skips the test entirely.
	Ignore bool `yaml:"ignore" json:"ignore"`

	// KnownFailure marks the test as expected to fail.
	KnownFailure bool `yaml:"known_failure" json:"known_failure"`

	Approximations   *approx.Approximations `yaml:"approximations,omitempty" json:"approximations,omitempty"`
	PlayerOptions    PlayerOptions          `yaml:"player_options" json:"player_options"`
	LogFetch         bool                   `yaml:"log_fetch" json:"log_fetch"`
	RequiredFeatures RequiredFeatures       `yaml:"required_features" json:"required_features"`
	Fonts            map[string]FontOptions `yaml:"fonts,omitempty" json:"fonts,omitempty"`
}

// Default returns options with every default applied.
func Default() TestOptions {
	return TestOptions{
		OutputPath: DefaultOutputPath,
	}
}

// Format is a configuration document syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// FormatForPath picks the document format from the file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", fmt.Errorf("unsupported configuration format %q", filepath.Ext(path))
	}
}

// Load reads, decodes and validates a test configuration file.
func Load(path string) (*TestOptions, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Message: "cannot load test options", Cause: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Message: "failed to read test options", Cause: err}
	}

	opts, err := Parse(data, format)
	if err != nil {
		var ce *ConfigError
		if errors.As(err, &ce) && ce.Path == "" {
			ce.Path = path
		}
		return nil, err
	}
	return opts, nil
}

// Find returns the configuration file in dir, or "" if there is none.
func Find(dir string) string {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Parse decodes and validates a configuration document.
// Unknown fields are rejected. An empty document yields the defaults.
func Parse(data []byte, format Format) (*TestOptions, error) {
	if format == FormatCUE {
		jsonData, err := cueToJSON(data)
		if err != nil {
			return nil, &ConfigError{Message: "failed to evaluate CUE", Cause: err}
		}
		data = jsonData
	}

	opts := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		return nil, &ConfigError{Message: "failed to parse test options", Cause: err}
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &opts, nil
}

// Validate checks semantic consistency of the options.
//
// At most one image comparison may use each non-manual trigger. Filters
// must parse; whether their predicates are known is decided when the check
// runs.
func (o *TestOptions) Validate() error {
	seen := make(map[Trigger]string)
	for _, name := range o.ComparisonNames() {
		trigger := o.ImageComparisons[name].Trigger.OrDefault()
		if trigger.IsManual() {
			continue
		}
		if first, ok := seen[trigger]; ok {
			return &ConfigError{
				Field: "image_comparisons",
				Message: fmt.Sprintf("multiple captures are set to trigger %s (%s and %s). This likely isn't intended!",
					trigger, first, name),
			}
		}
		seen[trigger] = name
	}

	if o.TickRate != nil && *o.TickRate <= 0 {
		return &ConfigError{Field: "tick_rate", Message: fmt.Sprintf("must be positive, got %v", *o.TickRate)}
	}

	if o.OutputPath == "" {
		return &ConfigError{Field: "output_path", Message: "must not be empty"}
	}

	if v := o.PlayerOptions.ViewportDimensions; v != nil && v.ScaleFactor <= 0 {
		return &ConfigError{
			Field:   "player_options.viewport_dimensions.scale_factor",
			Message: fmt.Sprintf("must be positive, got %v", v.ScaleFactor),
		}
	}

	for _, name := range o.ComparisonNames() {
		if err := validateComparison(name, o.ImageComparisons[name]); err != nil {
			return err
		}
	}

	return nil
}

func validateComparison(name string, c ImageComparison) error {
	field := "image_comparisons." + name
	if c.MaxOutliers != nil && *c.MaxOutliers < 0 {
		return &ConfigError{Field: field + ".max_outliers", Message: "must be non-negative"}
	}
	for i, check := range c.Checks {
		checkField := fmt.Sprintf("%s.checks[%d]", field, i)
		if check.MaxOutliers < 0 {
			return &ConfigError{Field: checkField + ".max_outliers", Message: "must be non-negative"}
		}
		if check.Filter != "" {
			if _, err := expr.Parse(check.Filter); err != nil {
				return &ConfigError{Field: checkField + ".filter", Message: "invalid filter", Cause: err}
			}
		}
	}
	return nil
}

// ComparisonNames returns the image comparison names in sorted order.
func (o *TestOptions) ComparisonNames() []string {
	names := make([]string, 0, len(o.ImageComparisons))
	for name := range o.ImageComparisons {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OutputPathIn joins the configured output path to the test directory.
func (o *TestOptions) OutputPathIn(testDir string) string {
	return filepath.Join(testDir, o.OutputPath)
}

// CanRun reports whether the test can run with the given features and
// environment. Ignored tests are not considered here.
func (o *TestOptions) CanRun(checkRenderer bool, env Environment, have Features) bool {
	return o.RequiredFeatures.CanRun(have) && o.PlayerOptions.CanRun(checkRenderer, env)
}
