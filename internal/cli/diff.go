package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/snapcheck/internal/artifact"
	"github.com/roach88/snapcheck/internal/expr"
	"github.com/roach88/snapcheck/internal/options"
)

// DiffOptions holds flags for the diff command.
type DiffOptions struct {
	*RootOptions
	Tolerance   uint8
	MaxOutliers int
	Filter      string
	Name        string
	Environment string
	OutDir      string
}

// DiffResult is the outcome of a standalone image comparison.
type DiffResult struct {
	Passed bool                      `json:"passed"`
	Report *options.ComparisonReport `json:"report"`
	Error  string                    `json:"error,omitempty"`
	Code   string                    `json:"code,omitempty"`
}

// NewDiffCommand creates the diff command.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DiffOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "diff <actual.png> <expected.png>",
		Short: "Compare two images with a single check",
		Long: `Compare two PNG images the way an image comparison check does.

A sample is an outlier when its channel difference exceeds --tolerance.
The comparison fails when there are more than --max-outliers outliers.
With --out, diagnostic images of a failure are written to that directory.

Examples:
  snapcheck diff frame.png main.expected.png
  snapcheck diff frame.png main.expected.png --tolerance 3 --max-outliers 10
  snapcheck diff frame.png main.expected.png --filter 'os = "linux"' --out ./diag`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().Uint8Var(&opts.Tolerance, "tolerance", 0, "per-channel difference allowed before a sample is an outlier")
	cmd.Flags().IntVar(&opts.MaxOutliers, "max-outliers", 0, "number of outlier samples allowed")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only run the check when this host filter matches")
	cmd.Flags().StringVar(&opts.Name, "name", "diff", "comparison name used in messages and file names")
	cmd.Flags().StringVar(&opts.Environment, "env", "cli", "environment name used in diagnostic file names")
	cmd.Flags().StringVar(&opts.OutDir, "out", "", "directory for diagnostic images")

	return cmd
}

func runDiff(opts *DiffOptions, actualPath, expectedPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	actual, err := artifact.LoadPNG(actualPath)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeImageFailed, "failed to load actual image", err)
	}
	expected, err := artifact.LoadPNG(expectedPath)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeImageFailed, "failed to load expected image", err)
	}

	comparison := options.ImageComparison{
		Checks: []options.ImageComparisonCheck{{
			Tolerance:   opts.Tolerance,
			MaxOutliers: opts.MaxOutliers,
			Filter:      opts.Filter,
		}},
	}

	env := options.TestEnv{
		Environment: opts.Environment,
		Host:        expr.CurrentHost(),
		Logger:      newLogger(opts.RootOptions, cmd),
	}
	if opts.OutDir != "" {
		env.Sink = artifact.DirSink{Dir: opts.OutDir}
	}

	report, cmpErr := comparison.Test(opts.Name, actual, expected, env)
	result := DiffResult{Passed: cmpErr == nil, Report: report}

	var ce *options.ComparisonError
	if cmpErr != nil {
		result.Error = cmpErr.Error()
		if errors.As(cmpErr, &ce) {
			result.Code = string(ce.Code)
		}
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		for _, check := range report.Checks {
			if check.Skipped {
				fmt.Fprintf(w, "check %d: skipped\n", check.Index)
				continue
			}
			fmt.Fprintf(w, "check %d: %d outliers (max %d), max difference %d\n",
				check.Index, check.Outliers, check.MaxOutliers, check.MaxDifference)
		}
		if result.Passed {
			fmt.Fprintln(w, "✓ images match")
		} else {
			fmt.Fprintf(w, "✗ %s\n", result.Error)
		}
	}

	if cmpErr == nil {
		return nil
	}
	// Filter errors are usage errors; everything else is a comparison failure.
	if ce != nil && ce.Code == options.ErrCodeFilterFailed {
		return WrapExitError(ExitCommandError, "invalid filter", cmpErr)
	}
	if ce != nil && ce.Code == options.ErrCodeArtifactFailed {
		return WrapExitError(ExitCommandError, "failed to write diagnostic images", cmpErr)
	}
	return WrapExitError(ExitFailure, "images differ", cmpErr)
}
