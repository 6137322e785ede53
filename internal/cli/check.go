package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/snapcheck/internal/expr"
	"github.com/roach88/snapcheck/internal/harness"
	"github.com/roach88/snapcheck/internal/options"
	"github.com/roach88/snapcheck/internal/store"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Actual      string // directory of captured outputs
	Filter      string // case filter (glob pattern)
	DBPath      string // result database (optional)
	Environment string // rendering environment name
	Parallelism int    // concurrent comparisons per case
}

// CheckReport is the JSON payload of the check command.
type CheckReport struct {
	Results []*harness.Result `json:"results"`
	Summary harness.Summary   `json:"summary"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <tests-root> --actual <outputs-dir>",
		Short: "Compare captured outputs against golden artifacts",
		Long: `Compare the outputs a player captured against each case's golden artifacts.

The outputs directory mirrors the tests root: for case avm2/foo it holds
avm2/foo/output.txt and one {comparison}.png per image comparison.
Diagnostic images for failed comparisons are written into the case directory.

Exit codes:
  0 - All cases passed (known failures included)
  1 - One or more cases failed or unexpectedly passed
  2 - Command error (invalid paths, database errors, etc.)

Examples:
  snapcheck check ./tests/swfs --actual ./out
  snapcheck check ./tests/swfs --actual ./out --filter "avm2/*" --db results.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Actual, "actual", "", "directory of captured outputs (required)")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter cases by glob pattern")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "record results in this SQLite database")
	cmd.Flags().StringVar(&opts.Environment, "env", "software", "rendering environment name used in diagnostic file names")
	cmd.Flags().IntVar(&opts.Parallelism, "parallel", 0, "concurrent image comparisons per case (0 = GOMAXPROCS)")
	_ = cmd.MarkFlagRequired("actual")

	return cmd
}

func runCheck(ctx context.Context, opts *CheckOptions, root string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	for _, dir := range []string{root, opts.Actual} {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fail(formatter, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("directory not found: %s", dir), nil)
		}
	}

	cases, err := harness.Discover(root, opts.Filter)
	loadErrs := harness.LoadErrors(err)
	if err != nil && len(loadErrs) == 0 {
		return fail(formatter, ExitCommandError, ErrCodeGeneric, "failed to discover cases", err)
	}

	host := expr.CurrentHost()

	var (
		st  *store.Store
		run store.Run
	)
	if opts.DBPath != "" {
		st, err = store.Open(opts.DBPath)
		if err != nil {
			return fail(formatter, ExitCommandError, ErrCodeStoreFailed, "failed to open database", err)
		}
		defer st.Close()

		run, err = st.BeginRun(ctx, opts.Environment, host.OS+"/"+host.Arch)
		if err != nil {
			return fail(formatter, ExitCommandError, ErrCodeStoreFailed, "failed to record run", err)
		}
		formatter.VerboseLog("Recording run %s (seq %d)", run.ID, run.Seq)
	}

	cfg := harness.Config{
		Environment: opts.Environment,
		Host:        host,
		Exprs:       expr.NewCache(),
		Parallelism: opts.Parallelism,
		Logger:      newLogger(opts.RootOptions, cmd),
	}
	features := options.CompiledFeatures()

	results := make([]*harness.Result, 0, len(cases)+len(loadErrs))
	for _, le := range loadErrs {
		cfg.Logger.Warn("case configuration invalid", "case", le.Case, "error", le.Err)
		results = append(results, &harness.Result{
			Case:    le.Case,
			Outcome: harness.OutcomeFailed,
			Errors:  []string{le.Err.Error()},
		})
	}
	for _, c := range cases {
		result, err := checkCase(ctx, c, opts.Actual, cfg, features)
		if err != nil {
			return fail(formatter, ExitCommandError, ErrCodeGeneric, "check interrupted", err)
		}
		results = append(results, result)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Case < results[j].Case })

	if st != nil {
		for _, result := range results {
			if err := harness.Record(ctx, st, run.ID, result); err != nil {
				return fail(formatter, ExitCommandError, ErrCodeStoreFailed, "failed to record result", err)
			}
		}
	}

	summary := harness.Summarize(results)
	if formatter.Format == "json" {
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(CLIResponse{
			Status: "ok",
			Data:   CheckReport{Results: results, Summary: summary},
			RunID:  run.ID,
		}); err != nil {
			return err
		}
	} else if err := harness.WriteText(formatter.Writer, results); err != nil {
		return err
	}

	if !summary.OK() {
		return NewExitError(ExitFailure, fmt.Sprintf("%d case(s) failed", summary.Failed+summary.UnexpectedPass))
	}
	return nil
}

// checkCase evaluates one case. Cases that cannot run here are reported as
// ignored; unreadable outputs fail the case.
func checkCase(ctx context.Context, c harness.Case, actualRoot string, cfg harness.Config, features options.Features) (*harness.Result, error) {
	if ok, reason := c.Runnable(false, harness.Headless{}, features); !ok {
		cfg.Logger.Debug("case skipped", "case", c.Name, "reason", reason)
		return &harness.Result{Case: c.Name, Outcome: harness.OutcomeIgnored, Errors: []string{}}, nil
	}

	out, err := harness.LoadOutputs(actualRoot, c)
	if err != nil {
		outcome := harness.OutcomeFailed
		if c.Options.KnownFailure {
			outcome = harness.OutcomeKnownFailure
		}
		return &harness.Result{Case: c.Name, Outcome: outcome, Errors: []string{err.Error()}}, nil
	}

	return harness.Evaluate(ctx, c, out, cfg)
}
