package harness

import (
	"context"
	"fmt"

	"github.com/roach88/snapcheck/internal/store"
)

// Record persists r as part of run runID.
func Record(ctx context.Context, st *store.Store, runID string, r *Result) error {
	rec := store.CaseResult{
		RunID:   runID,
		Case:    r.Case,
		Outcome: string(r.Outcome),
		Errors:  r.Errors,
	}
	for _, cmp := range r.Comparisons {
		for _, check := range cmp.Checks {
			rec.Checks = append(rec.Checks, store.CheckResult{
				Comparison:    cmp.Name,
				Index:         check.Index,
				Skipped:       check.Skipped,
				Passed:        check.Passed,
				Tolerance:     int(check.Tolerance),
				Outliers:      check.Outliers,
				MaxOutliers:   check.MaxOutliers,
				MaxDifference: int(check.MaxDifference),
			})
		}
	}
	if err := st.WriteResult(ctx, rec); err != nil {
		return fmt.Errorf("record %s: %w", r.Case, err)
	}
	return nil
}
