package approx

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// OutputMismatchError reports the first log line that failed comparison.
type OutputMismatchError struct {
	// Line is the 1-based line number, or 0 when the line counts differ.
	Line     int
	Actual   string
	Expected string
	Cause    error
}

// Error implements the error interface.
func (e *OutputMismatchError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("output mismatch: %v", e.Cause)
	}
	msg := fmt.Sprintf("output mismatch at line %d:\n  expected: %q\n  actual:   %q", e.Line, e.Expected, e.Actual)
	if e.Cause != nil {
		msg += "\n  cause: " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *OutputMismatchError) Unwrap() error {
	return e.Cause
}

// SplitLines normalizes log text to NFC with LF line endings and splits it.
// A single trailing newline does not produce an empty final line.
func SplitLines(text string) []string {
	text = norm.NFC.String(strings.ReplaceAll(text, "\r\n", "\n"))
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// CompareOutput compares log output line by line.
//
// Lines that both parse as numbers are compared approximately. Otherwise
// the first number pattern matching the expected line must match the actual
// line the same number of times, every match's capture groups are compared
// approximately in order, and the text left after removing every match must
// be identical. Whitespace is significant. Lines no pattern matches must be
// identical. Two NaNs are accepted as equal here.
func (a *Approximations) CompareOutput(actual, expected string) error {
	patterns, err := a.Patterns()
	if err != nil {
		return err
	}

	actualLines := SplitLines(actual)
	expectedLines := SplitLines(expected)
	if len(actualLines) != len(expectedLines) {
		return &OutputMismatchError{
			Cause: fmt.Errorf("number of lines of output didn't match (expected %d, found %d)",
				len(expectedLines), len(actualLines)),
		}
	}

	for i := range expectedLines {
		if err := a.compareLine(patterns, actualLines[i], expectedLines[i]); err != nil {
			return &OutputMismatchError{
				Line:     i + 1,
				Actual:   actualLines[i],
				Expected: expectedLines[i],
				Cause:    err,
			}
		}
	}
	return nil
}

func (a *Approximations) compareLine(patterns []*regexp.Regexp, actual, expected string) error {
	actualNum, actualErr := strconv.ParseFloat(actual, 64)
	expectedNum, expectedErr := strconv.ParseFloat(expected, 64)
	if actualErr == nil && expectedErr == nil {
		return a.compareNumbers(actualNum, expectedNum)
	}

	for _, re := range patterns {
		expectedMatches := re.FindAllStringSubmatch(expected, -1)
		if expectedMatches == nil {
			continue
		}
		actualMatches := re.FindAllStringSubmatch(actual, -1)
		if actualMatches == nil {
			return fmt.Errorf("pattern %q matches expected line but not actual line", re.String())
		}
		if len(actualMatches) != len(expectedMatches) {
			return fmt.Errorf("pattern %q matched %d times in expected line but %d times in actual line",
				re.String(), len(expectedMatches), len(actualMatches))
		}

		for m, expectedGroups := range expectedMatches {
			actualGroups := actualMatches[m]
			for g := 1; g < len(expectedGroups); g++ {
				if err := a.compareCaptured(actualGroups[g], expectedGroups[g]); err != nil {
					return fmt.Errorf("match %d, capture group %d: %w", m+1, g, err)
				}
			}
		}

		actualRest := re.ReplaceAllString(actual, "")
		expectedRest := re.ReplaceAllString(expected, "")
		if actualRest != expectedRest {
			return fmt.Errorf("non-numeric text differs: expected %q, found %q", expectedRest, actualRest)
		}
		return nil
	}

	if actual != expected {
		return fmt.Errorf("lines differ")
	}
	return nil
}

func (a *Approximations) compareCaptured(actual, expected string) error {
	actualNum, err := strconv.ParseFloat(actual, 64)
	if err != nil {
		return fmt.Errorf("actual %q is not a number", actual)
	}
	expectedNum, err := strconv.ParseFloat(expected, 64)
	if err != nil {
		return fmt.Errorf("expected %q is not a number", expected)
	}
	return a.compareNumbers(actualNum, expectedNum)
}

func (a *Approximations) compareNumbers(actual, expected float64) error {
	if math.IsNaN(actual) && math.IsNaN(expected) {
		return nil
	}
	return a.Compare(actual, expected)
}
