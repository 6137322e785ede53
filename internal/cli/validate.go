package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/snapcheck/internal/options"
)

// CaseValidation is the validation outcome of one case directory.
type CaseValidation struct {
	Dir    string `json:"dir"`
	Config string `json:"config,omitempty"`
	Valid  bool   `json:"valid"`
	Error  string `json:"error,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Cases []CaseValidation `json:"cases"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <case-dir>...",
		Short: "Validate test case configurations",
		Long: `Load and validate the test configuration of each case directory.

Unknown fields, duplicate capture triggers, malformed filters and other
configuration mistakes are reported without running any comparison.

Exit codes:
  0 - All configurations valid
  1 - One or more configurations invalid
  2 - Command error (directory not found, no configuration file)`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dirs []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	result := ValidationResult{Valid: true, Cases: make([]CaseValidation, 0, len(dirs))}
	for _, dir := range dirs {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return fail(formatter, ExitCommandError, ErrCodeNotFound,
				fmt.Sprintf("case directory not found: %s", dir), nil)
		}

		config := options.Find(dir)
		if config == "" {
			return fail(formatter, ExitCommandError, ErrCodeNotFound,
				fmt.Sprintf("no test configuration in %s", dir), nil)
		}

		formatter.VerboseLog("Validating %s", config)
		cv := CaseValidation{Dir: dir, Config: config, Valid: true}
		if _, err := options.Load(config); err != nil {
			cv.Valid = false
			cv.Error = err.Error()
			result.Valid = false
		}
		result.Cases = append(result.Cases, cv)
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		for _, cv := range result.Cases {
			if cv.Valid {
				fmt.Fprintf(w, "✓ %s\n", cv.Dir)
				continue
			}
			fmt.Fprintf(w, "✗ %s\n", cv.Dir)
			fmt.Fprintf(w, "  %s\n", cv.Error)
		}
	}

	if !result.Valid {
		// Validation failures = exit code 1
		return NewExitError(ExitFailure, "validation failed")
	}
	return nil
}
