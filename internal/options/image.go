package options

import (
	"fmt"
	"image"
	"io"
	"log/slog"
	"strconv"

	"github.com/roach88/snapcheck/internal/artifact"
	"github.com/roach88/snapcheck/internal/expr"
	"github.com/roach88/snapcheck/internal/imagediff"
)

// ImageComparison configures how one captured frame is compared against
// its reference image.
type ImageComparison struct {
	// Tolerance and MaxOutliers define the single implicit check of a
	// simple comparison.
	Tolerance   *uint8 `yaml:"tolerance,omitempty" json:"tolerance,omitempty"`
	MaxOutliers *int   `yaml:"max_outliers,omitempty" json:"max_outliers,omitempty"`

	// Checks is the ordered check list of an advanced comparison.
	Checks []ImageComparisonCheck `yaml:"checks,omitempty" json:"checks,omitempty"`

	Trigger Trigger `yaml:"trigger,omitempty" json:"trigger,omitempty"`
}

// ImageComparisonCheck is a single tolerance rule.
type ImageComparisonCheck struct {
	// Tolerance is the per-channel difference allowed before a sample
	// counts as an outlier.
	Tolerance uint8 `yaml:"tolerance" json:"tolerance"`

	// MaxOutliers is the number of outlier samples allowed.
	MaxOutliers int `yaml:"max_outliers" json:"max_outliers"`

	// Filter gates the check on host attributes. Empty means always run.
	Filter string `yaml:"filter,omitempty" json:"filter,omitempty"`
}

// CheckSet is the resolved form of a comparison's checks.
//
// This is a sealed interface - only SimpleChecks and AdvancedChecks
// implement it.
type CheckSet interface {
	// Resolve returns the checks in evaluation order.
	Resolve() []ImageComparisonCheck
	checkSet()
}

// SimpleChecks is a single implicit check with no filter.
type SimpleChecks struct {
	Tolerance   uint8
	MaxOutliers int
}

// AdvancedChecks is an explicit ordered check list.
type AdvancedChecks struct {
	Checks []ImageComparisonCheck
}

func (SimpleChecks) checkSet()   {}
func (AdvancedChecks) checkSet() {}

// Resolve implements CheckSet.
func (s SimpleChecks) Resolve() []ImageComparisonCheck {
	return []ImageComparisonCheck{{Tolerance: s.Tolerance, MaxOutliers: s.MaxOutliers}}
}

// Resolve implements CheckSet.
func (a AdvancedChecks) Resolve() []ImageComparisonCheck {
	return a.Checks
}

// CheckSet resolves the comparison into simple or advanced mode.
// Unset simple fields default to zero.
func (c ImageComparison) CheckSet() (CheckSet, error) {
	hasSimple := c.Tolerance != nil || c.MaxOutliers != nil
	if hasSimple && len(c.Checks) > 0 {
		return nil, fmt.Errorf("both simple and advanced checks are defined. " +
			"Either remove 'tolerance' & 'max_outliers', or move it to 'checks'")
	}

	if len(c.Checks) > 0 {
		return AdvancedChecks{Checks: c.Checks}, nil
	}

	s := SimpleChecks{}
	if c.Tolerance != nil {
		s.Tolerance = *c.Tolerance
	}
	if c.MaxOutliers != nil {
		s.MaxOutliers = *c.MaxOutliers
	}
	return s, nil
}

// TestEnv is what the comparison pipeline needs from the running test.
type TestEnv struct {
	// Sink receives diagnostic images. Nil discards them.
	Sink artifact.Sink

	// Environment names the rendering environment in diagnostic file names.
	Environment string

	// KnownFailure suppresses diagnostic images.
	KnownFailure bool

	// Host is evaluated by check filters.
	Host expr.Host

	// Exprs caches parsed filters. Nil parses on every use.
	Exprs *expr.Cache

	// Logger receives per-check outcomes. Nil discards them.
	Logger *slog.Logger
}

func (e TestEnv) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (e TestEnv) sink() artifact.Sink {
	if e.Sink == nil || e.KnownFailure {
		return artifact.Discard{}
	}
	return e.Sink
}

func (e TestEnv) evaluate(filter string) (bool, error) {
	if filter == "" {
		return true, nil
	}
	var (
		parsed *expr.Expression
		err    error
	)
	if e.Exprs != nil {
		parsed, err = e.Exprs.Parse(filter)
	} else {
		parsed, err = expr.Parse(filter)
	}
	if err != nil {
		return false, err
	}
	return parsed.Eval(e.Host.Lookup)
}

// CheckReport records the outcome of one check.
type CheckReport struct {
	Index         int   `json:"index"`
	Skipped       bool  `json:"skipped"`
	Passed        bool  `json:"passed"`
	Tolerance     uint8 `json:"tolerance"`
	Outliers      int   `json:"outliers"`
	MaxOutliers   int   `json:"max_outliers"`
	MaxDifference uint8 `json:"max_difference"`
}

// ComparisonReport records every check evaluated for one comparison.
type ComparisonReport struct {
	Name   string        `json:"name"`
	Checks []CheckReport `json:"checks"`
}

// Test compares actual against expected.
//
// The pipeline runs in order: size check, check resolution, then each check
// in declared order. Filtered-out checks are recorded as skipped. The first
// failing check stops the pipeline and writes diagnostic images. A
// comparison where every check was filtered out fails.
//
// The returned report is non-nil even on failure and holds the checks
// evaluated so far.
func (c ImageComparison) Test(name string, actual, expected *image.RGBA, env TestEnv) (*ComparisonReport, error) {
	log := env.logger().With("comparison", name)
	sink := env.sink()
	report := &ComparisonReport{Name: name}

	saveActual := func() error {
		if err := sink.WriteImage(artifact.ActualName(name, env.Environment), actual); err != nil {
			return artifactError(name, NoCheck, err)
		}
		return nil
	}

	as, es := actual.Bounds().Size(), expected.Bounds().Size()
	if as != es {
		if err := saveActual(); err != nil {
			return report, err
		}
		return report, &ComparisonError{
			Code:       ErrCodeSizeMismatch,
			Comparison: name,
			Check:      NoCheck,
			Message: fmt.Sprintf("image is not the right size. Expected = %dx%d, actual = %dx%d.",
				es.X, es.Y, as.X, as.Y),
			Details: map[string]string{
				"expected_width":  strconv.Itoa(es.X),
				"expected_height": strconv.Itoa(es.Y),
				"actual_width":    strconv.Itoa(as.X),
				"actual_height":   strconv.Itoa(as.Y),
			},
		}
	}

	diff, err := imagediff.Difference(actual, expected)
	if err != nil {
		return report, err
	}

	set, err := c.CheckSet()
	if err != nil {
		return report, &ComparisonError{
			Code:       ErrCodeMixedCheckModes,
			Comparison: name,
			Check:      NoCheck,
			Message:    err.Error(),
		}
	}

	anyExecuted := false
	for i, check := range set.Resolve() {
		run, err := env.evaluate(check.Filter)
		if err != nil {
			return report, &ComparisonError{
				Code:       ErrCodeFilterFailed,
				Comparison: name,
				Check:      i,
				Message:    "cannot evaluate filter",
				Cause:      err,
			}
		}
		if !run {
			log.Info("check skipped: filtered out", "check", i, "filter", check.Filter)
			report.Checks = append(report.Checks, CheckReport{
				Index:       i,
				Skipped:     true,
				Tolerance:   check.Tolerance,
				MaxOutliers: check.MaxOutliers,
			})
			continue
		}

		outliers := diff.Outliers(check.Tolerance)
		maxDifference, err := diff.MaxDifference()
		if err != nil {
			return report, &ComparisonError{
				Code:       ErrCodeEmptyImage,
				Comparison: name,
				Check:      i,
				Message:    "cannot compare images",
				Cause:      err,
			}
		}

		anyExecuted = true
		result := CheckReport{
			Index:         i,
			Passed:        outliers <= check.MaxOutliers,
			Tolerance:     check.Tolerance,
			Outliers:      outliers,
			MaxOutliers:   check.MaxOutliers,
			MaxDifference: maxDifference,
		}
		report.Checks = append(report.Checks, result)

		if result.Passed {
			log.Info("check succeeded", "check", i, "outliers", outliers, "max_difference", maxDifference)
			continue
		}

		log.Info("check failed", "check", i, "outliers", outliers,
			"max_outliers", check.MaxOutliers, "max_difference", maxDifference)

		if err := saveActual(); err != nil {
			return report, err
		}
		if err := sink.WriteImage(artifact.ColorDifferenceName(name, env.Environment), diff.ColorImage()); err != nil {
			return report, artifactError(name, i, err)
		}
		if diff.AlphaDiffers {
			if err := sink.WriteImage(artifact.AlphaDifferenceName(name, env.Environment), diff.AlphaImage()); err != nil {
				return report, artifactError(name, i, err)
			}
		}

		return report, &ComparisonError{
			Code:       ErrCodeOutliersExceeded,
			Comparison: name,
			Check:      i,
			Message: fmt.Sprintf("Number of outliers (%d) is bigger than allowed limit of %d. Max difference is %d",
				outliers, check.MaxOutliers, maxDifference),
			Details: map[string]string{
				"tolerance":      strconv.Itoa(int(check.Tolerance)),
				"outliers":       strconv.Itoa(outliers),
				"max_outliers":   strconv.Itoa(check.MaxOutliers),
				"max_difference": strconv.Itoa(int(maxDifference)),
			},
		}
	}

	if !anyExecuted {
		return report, &ComparisonError{
			Code:       ErrCodeNoChecksExecuted,
			Comparison: name,
			Check:      NoCheck,
			Message:    "No checks executed.",
		}
	}

	return report, nil
}

func artifactError(name string, check int, err error) *ComparisonError {
	return &ComparisonError{
		Code:       ErrCodeArtifactFailed,
		Comparison: name,
		Check:      check,
		Message:    "cannot write diagnostic image",
		Cause:      err,
	}
}
