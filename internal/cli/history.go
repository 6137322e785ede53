package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/snapcheck/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit int    // number of runs to show
	Case  string // show one case across runs
}

// RunSummary is a recorded run with its failing cases.
type RunSummary struct {
	store.Run
	Failures []store.CaseResult `json:"failures"`
}

// CaseHistory is the outcome of one case across runs.
type CaseHistory struct {
	Case    string               `json:"case"`
	Entries []store.HistoryEntry `json:"entries"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history <db>",
		Short: "Show recorded runs and failures",
		Long: `Show runs recorded by check --db, newest first, with their failing cases.

With --case, show the outcome of a single case across every run instead.

Examples:
  snapcheck history results.db
  snapcheck history results.db --limit 3
  snapcheck history results.db --case avm2/bitmap_draw`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 10, "number of runs to show (0 = all)")
	cmd.Flags().StringVar(&opts.Case, "case", "", "show the history of one case")

	return cmd
}

func runHistory(opts *HistoryOptions, dbPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()

	// Opening would create an empty database; a missing one is a usage error.
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fail(formatter, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("database not found: %s", dbPath), nil)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeStoreFailed, "failed to open database", err)
	}
	defer st.Close()

	if opts.Case != "" {
		entries, err := st.History(ctx, opts.Case)
		if err != nil {
			return fail(formatter, ExitCommandError, ErrCodeStoreFailed, "failed to read history", err)
		}
		if formatter.Format == "json" {
			return formatter.Success(CaseHistory{Case: opts.Case, Entries: entries})
		}
		w := formatter.Writer
		if len(entries) == 0 {
			fmt.Fprintf(w, "No results for %s.\n", opts.Case)
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(w, "#%d %s %s\n", e.Seq, e.RunID, e.Outcome)
		}
		return nil
	}

	runs, err := st.Runs(ctx, opts.Limit)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeStoreFailed, "failed to read runs", err)
	}

	summaries := make([]RunSummary, 0, len(runs))
	for _, run := range runs {
		failures, err := st.Failures(ctx, run.ID)
		if err != nil {
			return fail(formatter, ExitCommandError, ErrCodeStoreFailed, "failed to read failures", err)
		}
		summaries = append(summaries, RunSummary{Run: run, Failures: failures})
	}

	if formatter.Format == "json" {
		return formatter.Success(summaries)
	}

	w := formatter.Writer
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	for _, s := range summaries {
		fmt.Fprintf(w, "#%d %s [%s, %s] %d failure(s)\n", s.Seq, s.ID, s.Environment, s.Host, len(s.Failures))
		for _, f := range s.Failures {
			fmt.Fprintf(w, "  %s %s\n", f.Outcome, f.Case)
		}
	}
	return nil
}
