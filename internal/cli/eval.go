package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/snapcheck/internal/expr"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	OS     string
	Arch   string
	Family string
}

// EvalResult is the outcome of evaluating a filter.
type EvalResult struct {
	Expression string `json:"expression"`
	Host       string `json:"host"`
	Matched    bool   `json:"matched"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <expression>",
		Short: "Evaluate a check filter against the host",
		Long: `Evaluate a filter expression against this host, or an overridden one.

Predicates are os = "...", arch = "..." and family = "...", combined with
not(...), all(...) and any(...).

Exit codes:
  0 - Expression matched
  1 - Expression did not match
  2 - Expression failed to parse or uses an unknown predicate

Examples:
  snapcheck eval 'os = "linux"'
  snapcheck eval 'any(arch = "aarch64", os = "macos")' --os macos`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.OS, "os", "", "override the host os")
	cmd.Flags().StringVar(&opts.Arch, "arch", "", "override the host arch")
	cmd.Flags().StringVar(&opts.Family, "family", "", "override the host family")

	return cmd
}

func runEval(opts *EvalOptions, text string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	host := expr.CurrentHost()
	if opts.OS != "" {
		host.OS = opts.OS
	}
	if opts.Arch != "" {
		host.Arch = opts.Arch
	}
	if opts.Family != "" {
		host.Family = opts.Family
	}

	parsed, err := expr.Parse(text)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeInvalidExpr, "failed to parse expression", err)
	}
	formatter.VerboseLog("Parsed: %s", parsed)

	matched, err := parsed.Eval(host.Lookup)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeInvalidExpr, "failed to evaluate expression", err)
	}

	result := EvalResult{
		Expression: parsed.String(),
		Host:       fmt.Sprintf("os=%s arch=%s family=%s", host.OS, host.Arch, host.Family),
		Matched:    matched,
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(formatter.Writer, "%t\n", matched)
	}

	if !matched {
		return NewExitError(ExitFailure, "expression did not match")
	}
	return nil
}
