package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/snapcheck/internal/testutil"
)

// createTestStore creates a new store in a temp directory with sequential run IDs.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithIDGenerator(testutil.NewSequentialRunIDs("run")))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestResult creates a case result with no checks.
func createTestResult(runID, name, outcome string, errs ...string) CaseResult {
	return CaseResult{
		RunID:   runID,
		Case:    name,
		Outcome: outcome,
		Errors:  errs,
	}
}
