package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// BeginRun records a new run and returns it.
// The run's seq is one greater than the highest seq recorded so far.
func (s *Store) BeginRun(ctx context.Context, environment, host string) (Run, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("begin run: %w", err)
	}
	defer tx.Rollback()

	var maxSeq sql.NullInt64
	if err := tx.QueryRowContext(ctx, `SELECT MAX(seq) FROM runs`).Scan(&maxSeq); err != nil {
		return Run{}, fmt.Errorf("begin run: read seq: %w", err)
	}

	run := Run{
		ID:          s.ids.Generate(),
		Seq:         maxSeq.Int64 + 1,
		Environment: environment,
		Host:        host,
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, seq, environment, host)
		VALUES (?, ?, ?, ?)
	`, run.ID, run.Seq, run.Environment, run.Host)
	if err != nil {
		return Run{}, fmt.Errorf("begin run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("begin run: commit: %w", err)
	}
	return run, nil
}

// WriteResult records a case result and its checks.
// Uses ON CONFLICT DO NOTHING for idempotency - writing the same case twice
// in a run keeps the first result.
func (s *Store) WriteResult(ctx context.Context, r CaseResult) error {
	errs := r.Errors
	if errs == nil {
		errs = []string{}
	}
	errorsJSON, err := json.Marshal(errs)
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO results (run_id, case_name, outcome, errors)
		VALUES (?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, r.RunID, r.Case, r.Outcome, string(errorsJSON))
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return tx.Commit()
	}

	for _, c := range r.Checks {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO checks
			(run_id, case_name, comparison, idx, skipped, passed, tolerance, outliers, max_outliers, max_difference)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`,
			r.RunID,
			r.Case,
			c.Comparison,
			c.Index,
			c.Skipped,
			c.Passed,
			c.Tolerance,
			c.Outliers,
			c.MaxOutliers,
			c.MaxDifference,
		)
		if err != nil {
			return fmt.Errorf("write result: check %s[%d]: %w", c.Comparison, c.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write result: commit: %w", err)
	}
	return nil
}
