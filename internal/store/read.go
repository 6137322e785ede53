package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// Runs returns up to limit runs, newest first. limit <= 0 returns all runs.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, seq, environment, host FROM runs ORDER BY seq DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Seq, &r.Environment, &r.Host); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns a run by ID.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	var r Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, seq, environment, host FROM runs WHERE id = ?
	`, id).Scan(&r.ID, &r.Seq, &r.Environment, &r.Host)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run: %w", err)
	}
	return r, nil
}

// Results returns every case result of a run ordered by case name,
// with checks ordered by comparison and index.
func (s *Store) Results(ctx context.Context, runID string) ([]CaseResult, error) {
	return s.readResults(ctx, runID, false)
}

// Failures returns the results of a run whose outcome counts as a failure.
func (s *Store) Failures(ctx context.Context, runID string) ([]CaseResult, error) {
	return s.readResults(ctx, runID, true)
}

func (s *Store) readResults(ctx context.Context, runID string, failuresOnly bool) ([]CaseResult, error) {
	query := `
		SELECT run_id, case_name, outcome, errors
		FROM results
		WHERE run_id = ?`
	if failuresOnly {
		query += ` AND outcome IN ('failed', 'unexpected_pass')`
	}
	query += ` ORDER BY case_name COLLATE BINARY ASC`

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	results := []CaseResult{}
	for rows.Next() {
		var (
			r          CaseResult
			errorsJSON string
		)
		if err := rows.Scan(&r.RunID, &r.Case, &r.Outcome, &errorsJSON); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if err := json.Unmarshal([]byte(errorsJSON), &r.Errors); err != nil {
			return nil, fmt.Errorf("decode errors of %s: %w", r.Case, err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	rows.Close()

	for i := range results {
		checks, err := s.readChecks(ctx, runID, results[i].Case)
		if err != nil {
			return nil, err
		}
		results[i].Checks = checks
	}
	return results, nil
}

func (s *Store) readChecks(ctx context.Context, runID, caseName string) ([]CheckResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT comparison, idx, skipped, passed, tolerance, outliers, max_outliers, max_difference
		FROM checks
		WHERE run_id = ? AND case_name = ?
		ORDER BY comparison COLLATE BINARY ASC, idx ASC
	`, runID, caseName)
	if err != nil {
		return nil, fmt.Errorf("query checks: %w", err)
	}
	defer rows.Close()

	var checks []CheckResult
	for rows.Next() {
		var c CheckResult
		if err := rows.Scan(&c.Comparison, &c.Index, &c.Skipped, &c.Passed,
			&c.Tolerance, &c.Outliers, &c.MaxOutliers, &c.MaxDifference); err != nil {
			return nil, fmt.Errorf("scan check: %w", err)
		}
		checks = append(checks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checks: %w", err)
	}
	return checks, nil
}

// History returns the outcomes of a case across runs, oldest first.
func (s *Store) History(ctx context.Context, caseName string) ([]HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.run_id, runs.seq, r.outcome
		FROM results r
		JOIN runs ON runs.id = r.run_id
		WHERE r.case_name = ?
		ORDER BY runs.seq ASC
	`, caseName)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	history := []HistoryEntry{}
	for rows.Next() {
		var h HistoryEntry
		if err := rows.Scan(&h.RunID, &h.Seq, &h.Outcome); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return history, nil
}
