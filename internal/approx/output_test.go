package approx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLines(t *testing.T) {
	assert.Nil(t, SplitLines(""))
	assert.Equal(t, []string{"a", "b"}, SplitLines("a\nb\n"))
	assert.Equal(t, []string{"a", "b"}, SplitLines("a\r\nb"))
	assert.Equal(t, []string{"a", "", "b"}, SplitLines("a\n\nb"))
	// Decomposed e + combining acute becomes the precomposed form.
	assert.Equal(t, []string{"caf\u00e9"}, SplitLines("cafe\u0301"))
}

func TestCompareOutput_NumericLines(t *testing.T) {
	a := &Approximations{Epsilon: f(0.001)}

	assert.NoError(t, a.CompareOutput("1.0001\nhello\n", "1.0\nhello\n"))
	assert.NoError(t, a.CompareOutput("NaN\n", "NaN\n"))
	assert.Error(t, a.CompareOutput("1.1\n", "1.0\n"))
	assert.Error(t, a.CompareOutput("hello\n", "world\n"))
}

func TestCompareOutput_LineCountMismatch(t *testing.T) {
	a := &Approximations{}
	err := a.CompareOutput("a\nb\n", "a\n")
	require.Error(t, err)

	var me *OutputMismatchError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, 0, me.Line)
	assert.Contains(t, err.Error(), "expected 1, found 2")
}

func TestCompareOutput_Patterns(t *testing.T) {
	a := &Approximations{
		Epsilon:        f(0.01),
		NumberPatterns: []string{`width: ([-\d.]+|NaN), height: ([-\d.]+|NaN)`},
	}

	tests := []struct {
		name     string
		actual   string
		expected string
		pass     bool
	}{
		{"within tolerance", "rect width: 10.001, height: 5.999", "rect width: 10, height: 6", true},
		{"outside tolerance", "rect width: 10.5, height: 6", "rect width: 10, height: 6", false},
		{"surrounding text differs", "box width: 10, height: 6", "rect width: 10, height: 6", false},
		{"actual does not match pattern", "rect", "rect width: 10, height: 6", false},
		{"nan captured both sides", "rect width: NaN, height: 6", "rect width: NaN, height: 6", true},
		{"no pattern matches exact", "plain text", "plain text", true},
		{"no pattern matches differs", "plain text", "plain texts", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := a.CompareOutput(tt.actual, tt.expected)
			if tt.pass {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestCompareOutput_ReportsLine(t *testing.T) {
	a := &Approximations{Epsilon: f(0.01)}
	err := a.CompareOutput("ok\n1.5\n", "ok\n1.0\n")
	require.Error(t, err)

	var me *OutputMismatchError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, 2, me.Line)
	assert.Equal(t, "1.5", me.Actual)
	assert.Equal(t, "1.0", me.Expected)

	var ae *Error
	assert.True(t, errors.As(err, &ae), "cause should unwrap to approximation error")
}

func TestCompareOutput_EveryMatchCompared(t *testing.T) {
	a := &Approximations{
		Epsilon:        f(0.001),
		NumberPatterns: []string{`(-?[0-9]+\.?[0-9]*)`},
	}

	assert.NoError(t, a.CompareOutput("x=1.0 y=2.0\n", "x=1.0 y=2.0\n"))
	assert.NoError(t, a.CompareOutput("x=1.0001 y=1.9999\n", "x=1.0 y=2.0\n"))

	err := a.CompareOutput("x=1.0 y=999.0\n", "x=1.0 y=2.0\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "match 2")

	err = a.CompareOutput("x=1.0\n", "x=1.0 y=2.0\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "matched 2 times")
}

func TestCompareOutput_WhitespaceIsSignificant(t *testing.T) {
	a := &Approximations{Epsilon: f(0.001)}

	assert.NoError(t, a.CompareOutput("1.0\n", "1.0\n"))
	assert.Error(t, a.CompareOutput(" 1.0\n", "1.0\n"))
	assert.Error(t, a.CompareOutput("1.0\t\n", "1.0\n"))
}
