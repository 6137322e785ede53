// Package approx compares floating-point values and log output under
// configurable epsilon and relative tolerances.
package approx

import (
	"fmt"
	"math"
	"regexp"
	"sync"
)

// DefaultTolerance is used for whichever of epsilon or max-relative is unset.
// It is the difference between 1.0 and the next representable float64.
const DefaultTolerance = 2.220446049250313e-16

// Approximations configures approximate numeric comparison.
type Approximations struct {
	// Epsilon is the absolute difference always accepted.
	Epsilon *float64 `yaml:"epsilon,omitempty" json:"epsilon,omitempty"`

	// MaxRelative is the accepted difference relative to the larger magnitude.
	MaxRelative *float64 `yaml:"max_relative,omitempty" json:"max_relative,omitempty"`

	// NumberPatterns are regular expressions whose capture groups identify
	// numbers in log lines that should be approximated rather than matched.
	NumberPatterns []string `yaml:"number_patterns,omitempty" json:"number_patterns,omitempty"`

	once     sync.Once
	patterns []*regexp.Regexp
	err      error
}

// Error reports a failed approximate comparison.
type Error struct {
	Actual      float64
	Expected    float64
	Epsilon     *float64
	MaxRelative *float64
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("approximation failed: expected %v, found %v. Epsilon = %s, Max Relative = %s",
		e.Expected, e.Actual, formatOptional(e.Epsilon), formatOptional(e.MaxRelative))
}

func formatOptional(v *float64) string {
	if v == nil {
		return "None"
	}
	return fmt.Sprintf("Some(%v)", *v)
}

// Compare checks actual against expected.
//
// Dispatch depends on which tolerances are configured; an unset tolerance
// falls back to DefaultTolerance. NaN never compares equal.
func (a *Approximations) Compare(actual, expected float64) error {
	epsilon, maxRelative := DefaultTolerance, DefaultTolerance
	if a.Epsilon != nil {
		epsilon = *a.Epsilon
	}
	if a.MaxRelative != nil {
		maxRelative = *a.MaxRelative
	}

	if RelativeEqual(actual, expected, epsilon, maxRelative) {
		return nil
	}
	return &Error{
		Actual:      actual,
		Expected:    expected,
		Epsilon:     a.Epsilon,
		MaxRelative: a.MaxRelative,
	}
}

// RelativeEqual reports whether a and b are equal within epsilon absolute
// difference or within maxRelative of the larger magnitude.
//
// The comparison is symmetric. Infinities are only equal to themselves and
// NaN is equal to nothing.
func RelativeEqual(a, b, epsilon, maxRelative float64) bool {
	if a == b {
		return true
	}
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return false
	}

	diff := math.Abs(a - b)
	if diff <= epsilon {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	return diff <= largest*maxRelative
}

// Patterns returns the compiled number patterns.
// Patterns are compiled on first use; an invalid pattern makes every call
// return the same error.
func (a *Approximations) Patterns() ([]*regexp.Regexp, error) {
	a.once.Do(func() {
		compiled := make([]*regexp.Regexp, 0, len(a.NumberPatterns))
		for i, p := range a.NumberPatterns {
			re, err := regexp.Compile(p)
			if err != nil {
				a.err = fmt.Errorf("number_patterns[%d]: invalid pattern %q: %w", i, p, err)
				return
			}
			compiled = append(compiled, re)
		}
		a.patterns = compiled
	})
	return a.patterns, a.err
}
