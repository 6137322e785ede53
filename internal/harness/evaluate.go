package harness

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/snapcheck/internal/approx"
	"github.com/roach88/snapcheck/internal/artifact"
	"github.com/roach88/snapcheck/internal/expr"
	"github.com/roach88/snapcheck/internal/options"
)

// Outcome is the verdict of one evaluated case.
type Outcome string

const (
	OutcomePassed         Outcome = "passed"
	OutcomeFailed         Outcome = "failed"
	OutcomeKnownFailure   Outcome = "known_failure"
	OutcomeUnexpectedPass Outcome = "unexpected_pass"
	OutcomeIgnored        Outcome = "ignored"
)

// Failed reports whether the outcome should fail a test run.
func (o Outcome) Failed() bool {
	return o == OutcomeFailed || o == OutcomeUnexpectedPass
}

// Outputs is what the player produced for one case.
type Outputs struct {
	// Log is the text the player traced.
	Log string

	// Captures maps a comparison name to its captured frame.
	Captures map[string]*image.RGBA
}

// Config controls how cases are evaluated.
type Config struct {
	// Environment names the rendering environment in diagnostic file names.
	Environment string

	// Host is what check filters are evaluated against.
	Host expr.Host

	// Exprs caches parsed filters across cases. Nil parses on every use.
	Exprs *expr.Cache

	// Sink receives diagnostic images. Nil writes them into the case directory.
	Sink artifact.Sink

	// Parallelism bounds concurrent image comparisons per case.
	// Zero uses GOMAXPROCS.
	Parallelism int

	// Logger receives evaluation records. Nil discards them.
	Logger *slog.Logger
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (c Config) parallelism() int {
	if c.Parallelism > 0 {
		return c.Parallelism
	}
	return runtime.GOMAXPROCS(0)
}

// Result is the evaluated outcome of one case.
type Result struct {
	Case        string                     `json:"case"`
	Outcome     Outcome                    `json:"outcome"`
	Errors      []string                   `json:"errors"`
	Comparisons []options.ComparisonReport `json:"comparisons,omitempty"`
}

// Evaluate compares the outputs of a case against its expected artifacts.
//
// The log is compared first, exactly or through the case's approximations.
// Every image comparison then runs independently; one failing comparison
// does not stop the others. Errors are reported in comparison name order.
//
// The returned error is non-nil only when ctx is cancelled.
func Evaluate(ctx context.Context, c Case, out Outputs, cfg Config) (*Result, error) {
	log := cfg.logger().With("case", c.Name)
	result := &Result{Case: c.Name, Errors: []string{}}

	if c.Options.Ignore {
		log.Debug("case ignored")
		result.Outcome = OutcomeIgnored
		return result, nil
	}

	if err := compareLog(c, out.Log); err != nil {
		log.Info("log comparison failed", "error", err)
		result.Errors = append(result.Errors, err.Error())
	}

	names := c.Options.ComparisonNames()
	reports := make([]*options.ComparisonReport, len(names))
	errs := make([]error, len(names))

	env := options.TestEnv{
		Sink:         cfg.Sink,
		Environment:  cfg.Environment,
		KnownFailure: c.Options.KnownFailure,
		Host:         cfg.Host,
		Exprs:        cfg.Exprs,
		Logger:       log,
	}
	if env.Sink == nil {
		env.Sink = artifact.DirSink{Dir: c.Dir}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.parallelism())
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i], errs[i] = compareImage(c, name, out.Captures[name], env)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range names {
		if reports[i] != nil {
			result.Comparisons = append(result.Comparisons, *reports[i])
		}
		if errs[i] != nil {
			result.Errors = append(result.Errors, errs[i].Error())
		}
	}

	for name := range out.Captures {
		if _, ok := c.Options.ImageComparisons[name]; !ok {
			log.Warn("capture has no image comparison", "comparison", name)
		}
	}

	failed := len(result.Errors) > 0
	switch {
	case c.Options.KnownFailure && failed:
		result.Outcome = OutcomeKnownFailure
	case c.Options.KnownFailure:
		result.Outcome = OutcomeUnexpectedPass
		result.Errors = append(result.Errors,
			"case is marked known_failure but passed; remove the marker")
	case failed:
		result.Outcome = OutcomeFailed
	default:
		result.Outcome = OutcomePassed
	}

	log.Info("case evaluated", "outcome", result.Outcome, "errors", len(result.Errors))
	return result, nil
}

func compareLog(c Case, actual string) error {
	path := c.Options.OutputPathIn(c.Dir)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read expected output: %w", err)
	}
	expected := string(data)

	if c.Options.Approximations != nil {
		return c.Options.Approximations.CompareOutput(actual, expected)
	}
	return compareExact(actual, expected)
}

// compareExact requires every line to match after newline and Unicode
// normalization.
func compareExact(actual, expected string) error {
	actualLines := approx.SplitLines(actual)
	expectedLines := approx.SplitLines(expected)
	if len(actualLines) != len(expectedLines) {
		return &approx.OutputMismatchError{
			Cause: fmt.Errorf("number of lines of output didn't match (expected %d, found %d)",
				len(expectedLines), len(actualLines)),
		}
	}
	for i := range expectedLines {
		if actualLines[i] != expectedLines[i] {
			return &approx.OutputMismatchError{
				Line:     i + 1,
				Actual:   actualLines[i],
				Expected: expectedLines[i],
			}
		}
	}
	return nil
}

func compareImage(c Case, name string, actual *image.RGBA, env options.TestEnv) (*options.ComparisonReport, error) {
	if actual == nil {
		return nil, &options.ComparisonError{
			Code:       options.ErrCodeMissingCapture,
			Comparison: name,
			Check:      options.NoCheck,
			Message:    "no frame was captured",
		}
	}

	comparison := c.Options.ImageComparisons[name]
	expected, err := artifact.LoadPNG(filepath.Join(c.Dir, artifact.ExpectedName(name)))
	if err != nil {
		// Keep the frame so it can be promoted to the reference image.
		if !env.KnownFailure && env.Sink != nil {
			if werr := env.Sink.WriteImage(artifact.ActualName(name, env.Environment), actual); werr != nil {
				err = errors.Join(err, werr)
			}
		}
		return nil, &options.ComparisonError{
			Code:       options.ErrCodeArtifactFailed,
			Comparison: name,
			Check:      options.NoCheck,
			Message:    "cannot read reference image",
			Cause:      err,
		}
	}

	return comparison.Test(name, actual, expected, env)
}

// LoadOutputs reads previously captured outputs of c from root/<case name>.
// The log is read from the file named like the case's output path and each
// capture from {comparison}.png. Missing captures are left out.
func LoadOutputs(root string, c Case) (Outputs, error) {
	dir := filepath.Join(root, filepath.FromSlash(c.Name))

	logPath := filepath.Join(dir, filepath.Base(c.Options.OutputPath))
	data, err := os.ReadFile(logPath)
	if err != nil {
		return Outputs{}, fmt.Errorf("failed to read captured log: %w", err)
	}

	out := Outputs{Log: string(data), Captures: make(map[string]*image.RGBA)}
	for _, name := range c.Options.ComparisonNames() {
		path := filepath.Join(dir, name+".png")
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		img, err := artifact.LoadPNG(path)
		if err != nil {
			return Outputs{}, fmt.Errorf("capture %s: %w", name, err)
		}
		out.Captures[name] = img
	}
	return out, nil
}
