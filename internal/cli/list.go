package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/snapcheck/internal/harness"
	"github.com/roach88/snapcheck/internal/options"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Filter        string // case filter (glob pattern)
	CheckRenderer bool   // probe renderer support
}

// CaseEntry is one discovered case.
type CaseEntry struct {
	Name     string `json:"name"`
	Runnable bool   `json:"runnable"`
	Reason   string `json:"reason,omitempty"`
}

// ListResult holds the discovered cases.
type ListResult struct {
	Cases  []CaseEntry `json:"cases"`
	Errors []string    `json:"errors,omitempty"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list <tests-root>",
		Short: "List discovered test cases",
		Long: `List every test case under a directory and whether it can run here.

A case cannot run when it is ignored, requires features this build lacks,
or (with --check-renderer) requires a renderer the host cannot create.

Examples:
  snapcheck list ./tests/swfs
  snapcheck list ./tests/swfs --filter "avm2/*"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter cases by glob pattern")
	cmd.Flags().BoolVar(&opts.CheckRenderer, "check-renderer", false, "probe renderer support")

	return cmd
}

func runList(opts *ListOptions, root string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if _, err := os.Stat(root); os.IsNotExist(err) {
		return fail(formatter, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("tests root not found: %s", root), nil)
	}

	cases, discoverErr := harness.Discover(root, opts.Filter)
	if discoverErr != nil && cases == nil && !options.IsConfigError(discoverErr) {
		return fail(formatter, ExitCommandError, ErrCodeGeneric, "failed to discover cases", discoverErr)
	}

	result := ListResult{Cases: make([]CaseEntry, 0, len(cases))}
	features := options.CompiledFeatures()
	for _, c := range cases {
		ok, reason := c.Runnable(opts.CheckRenderer, harness.Headless{}, features)
		result.Cases = append(result.Cases, CaseEntry{Name: c.Name, Runnable: ok, Reason: reason})
	}
	if discoverErr != nil {
		result.Errors = splitJoined(discoverErr)
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		for _, e := range result.Cases {
			if e.Runnable {
				fmt.Fprintf(w, "  %s\n", e.Name)
			} else {
				fmt.Fprintf(w, "- %s (%s)\n", e.Name, e.Reason)
			}
		}
		for _, msg := range result.Errors {
			fmt.Fprintf(w, "✗ %s\n", msg)
		}
		fmt.Fprintf(w, "\n%d cases\n", len(result.Cases))
	}

	if len(result.Errors) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d case(s) failed to load", len(result.Errors)))
	}
	return nil
}

// splitJoined flattens an errors.Join result into its messages.
func splitJoined(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var msgs []string
		for _, e := range joined.Unwrap() {
			msgs = append(msgs, e.Error())
		}
		return msgs
	}
	return []string{err.Error()}
}
