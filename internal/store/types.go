package store

// Run is a recorded test run.
type Run struct {
	ID          string `json:"id"`
	Seq         int64  `json:"seq"`
	Environment string `json:"environment"`
	Host        string `json:"host"`
}

// CaseResult is the recorded outcome of one test case in a run.
type CaseResult struct {
	RunID   string        `json:"run_id"`
	Case    string        `json:"case"`
	Outcome string        `json:"outcome"`
	Errors  []string      `json:"errors"`
	Checks  []CheckResult `json:"checks,omitempty"`
}

// CheckResult is one evaluated image comparison check.
type CheckResult struct {
	Comparison    string `json:"comparison"`
	Index         int    `json:"index"`
	Skipped       bool   `json:"skipped"`
	Passed        bool   `json:"passed"`
	Tolerance     int    `json:"tolerance"`
	Outliers      int    `json:"outliers"`
	MaxOutliers   int    `json:"max_outliers"`
	MaxDifference int    `json:"max_difference"`
}

// HistoryEntry is one case outcome in a specific run.
type HistoryEntry struct {
	RunID   string `json:"run_id"`
	Seq     int64  `json:"seq"`
	Outcome string `json:"outcome"`
}
