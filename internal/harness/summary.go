package harness

import (
	"fmt"
	"io"
	"strings"
)

// Summary counts outcomes across results.
type Summary struct {
	Total          int `json:"total"`
	Passed         int `json:"passed"`
	Failed         int `json:"failed"`
	KnownFailures  int `json:"known_failures"`
	UnexpectedPass int `json:"unexpected_passes"`
	Ignored        int `json:"ignored"`
}

// Summarize counts the outcomes of results.
func Summarize(results []*Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Outcome {
		case OutcomePassed:
			s.Passed++
		case OutcomeFailed:
			s.Failed++
		case OutcomeKnownFailure:
			s.KnownFailures++
		case OutcomeUnexpectedPass:
			s.UnexpectedPass++
		case OutcomeIgnored:
			s.Ignored++
		}
	}
	return s
}

// OK reports whether no result failed the run.
func (s Summary) OK() bool {
	return s.Failed == 0 && s.UnexpectedPass == 0
}

var outcomeLabels = map[Outcome]string{
	OutcomePassed:         "PASS ",
	OutcomeFailed:         "FAIL ",
	OutcomeKnownFailure:   "KNOWN",
	OutcomeUnexpectedPass: "FIXED",
	OutcomeIgnored:        "SKIP ",
}

// WriteText renders results and their summary as plain text.
// Multi-line errors are indented under their case.
func WriteText(w io.Writer, results []*Result) error {
	var b strings.Builder
	for _, r := range results {
		fmt.Fprintf(&b, "%s %s\n", outcomeLabels[r.Outcome], r.Case)
		for _, msg := range r.Errors {
			for _, line := range strings.Split(msg, "\n") {
				fmt.Fprintf(&b, "      %s\n", line)
			}
		}
	}

	s := Summarize(results)
	fmt.Fprintf(&b, "\n%d cases: %d passed, %d failed, %d known failures, %d unexpected passes, %d ignored\n",
		s.Total, s.Passed, s.Failed, s.KnownFailures, s.UnexpectedPass, s.Ignored)

	_, err := io.WriteString(w, b.String())
	return err
}
