package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/snapcheck/internal/approx"
)

// ApproxOptions holds flags for the approx command.
type ApproxOptions struct {
	*RootOptions
	Epsilon     float64
	MaxRelative float64
	Patterns    []string
}

// ApproxResult is the outcome of a log comparison.
type ApproxResult struct {
	Matched  bool   `json:"matched"`
	Line     int    `json:"line,omitempty"`
	Actual   string `json:"actual,omitempty"`
	Expected string `json:"expected,omitempty"`
	Error    string `json:"error,omitempty"`
}

// NewApproxCommand creates the approx command.
func NewApproxCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApproxOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "approx <actual-log> <expected-log>",
		Short: "Compare two logs with numeric approximation",
		Long: `Compare two log files line by line, accepting small numeric differences.

Lines that are numbers are compared within --epsilon / --max-relative.
Each --pattern is a regular expression whose capture groups mark numbers
inside longer lines. Unset tolerances use the float64 machine epsilon.

Examples:
  snapcheck approx actual.txt output.txt --epsilon 0.001
  snapcheck approx actual.txt output.txt --max-relative 1e-6 --pattern 'x = ([-\d.]+)'`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApprox(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().Float64Var(&opts.Epsilon, "epsilon", 0, "absolute difference always accepted")
	cmd.Flags().Float64Var(&opts.MaxRelative, "max-relative", 0, "difference accepted relative to the larger magnitude")
	cmd.Flags().StringArrayVar(&opts.Patterns, "pattern", nil, "regular expression capturing numbers to approximate (repeatable)")

	return cmd
}

func runApprox(opts *ApproxOptions, actualPath, expectedPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	actual, err := os.ReadFile(actualPath)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeNotFound, "failed to read actual log", err)
	}
	expected, err := os.ReadFile(expectedPath)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeNotFound, "failed to read expected log", err)
	}

	a := &approx.Approximations{NumberPatterns: opts.Patterns}
	if cmd.Flags().Changed("epsilon") {
		a.Epsilon = &opts.Epsilon
	}
	if cmd.Flags().Changed("max-relative") {
		a.MaxRelative = &opts.MaxRelative
	}
	if _, err := a.Patterns(); err != nil {
		return fail(formatter, ExitCommandError, ErrCodeGeneric, "invalid pattern", err)
	}

	result := ApproxResult{Matched: true}
	cmpErr := a.CompareOutput(string(actual), string(expected))
	if cmpErr != nil {
		result.Matched = false
		result.Error = cmpErr.Error()
		if mismatch, ok := cmpErr.(*approx.OutputMismatchError); ok {
			result.Line = mismatch.Line
			result.Actual = mismatch.Actual
			result.Expected = mismatch.Expected
		}
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else if result.Matched {
		fmt.Fprintln(formatter.Writer, "✓ logs match")
	} else {
		fmt.Fprintf(formatter.Writer, "✗ %s\n", result.Error)
	}

	if !result.Matched {
		return WrapExitError(ExitFailure, "logs differ", cmpErr)
	}
	return nil
}
