package approx

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestCompare_EqualValuesPassUnderEveryMode(t *testing.T) {
	modes := []struct {
		name string
		a    *Approximations
	}{
		{"both unset", &Approximations{}},
		{"epsilon only", &Approximations{Epsilon: f(0.01)}},
		{"max relative only", &Approximations{MaxRelative: f(0.01)}},
		{"both set", &Approximations{Epsilon: f(0.01), MaxRelative: f(0.01)}},
	}

	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			assert.NoError(t, m.a.Compare(1.0, 1.0))
			assert.NoError(t, m.a.Compare(0.0, -0.0))
			assert.NoError(t, m.a.Compare(math.Inf(1), math.Inf(1)))
		})
	}
}

func TestCompare_NaNNeverEqual(t *testing.T) {
	modes := []*Approximations{
		{},
		{Epsilon: f(1)},
		{MaxRelative: f(1)},
		{Epsilon: f(1), MaxRelative: f(1)},
	}

	for _, a := range modes {
		assert.Error(t, a.Compare(math.NaN(), math.NaN()))
		assert.Error(t, a.Compare(math.NaN(), 1.0))
		assert.Error(t, a.Compare(1.0, math.NaN()))
	}
}

func TestCompare_Tolerances(t *testing.T) {
	tests := []struct {
		name     string
		a        *Approximations
		actual   float64
		expected float64
		pass     bool
	}{
		{"far apart with both set", &Approximations{Epsilon: f(0.01), MaxRelative: f(0.01)}, 1.0, 2.0, false},
		{"within epsilon", &Approximations{Epsilon: f(0.01)}, 1.0, 1.005, true},
		{"outside epsilon", &Approximations{Epsilon: f(0.01)}, 1.0, 1.02, false},
		{"within relative", &Approximations{MaxRelative: f(0.01)}, 1000.0, 1005.0, true},
		{"outside relative", &Approximations{MaxRelative: f(0.01)}, 1000.0, 1020.0, false},
		{"relative uses larger magnitude", &Approximations{MaxRelative: f(0.5)}, 1.0, 2.0, true},
		{"epsilon rescues near zero", &Approximations{Epsilon: f(1e-9), MaxRelative: f(0.01)}, 0.0, 1e-10, true},
		{"default is machine epsilon", &Approximations{}, 1.0, 1.0 + DefaultTolerance, true},
		{"default rejects small difference", &Approximations{}, 1.0, 1.0001, false},
		{"infinity vs large", &Approximations{MaxRelative: f(1)}, math.Inf(1), math.MaxFloat64, false},
		{"opposite infinities", &Approximations{Epsilon: f(1)}, math.Inf(1), math.Inf(-1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.a.Compare(tt.actual, tt.expected)
			if tt.pass {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}

			// Symmetry
			errSwapped := tt.a.Compare(tt.expected, tt.actual)
			assert.Equal(t, err == nil, errSwapped == nil)
		})
	}
}

func TestCompare_ErrorCarriesDiagnostics(t *testing.T) {
	a := &Approximations{Epsilon: f(0.01)}
	err := a.Compare(1.0, 2.0)
	require.Error(t, err)

	var ae *Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, 1.0, ae.Actual)
	assert.Equal(t, 2.0, ae.Expected)
	require.NotNil(t, ae.Epsilon)
	assert.Equal(t, 0.01, *ae.Epsilon)
	assert.Nil(t, ae.MaxRelative)
	assert.Equal(t, "approximation failed: expected 2, found 1. Epsilon = Some(0.01), Max Relative = None", err.Error())
}

func TestPatterns_CompiledOnce(t *testing.T) {
	a := &Approximations{NumberPatterns: []string{`x=(\d+)`, `y=(\d+)`}}

	p1, err := a.Patterns()
	require.NoError(t, err)
	require.Len(t, p1, 2)

	p2, err := a.Patterns()
	require.NoError(t, err)
	assert.Same(t, p1[0], p2[0])
}

func TestPatterns_InvalidIsFatal(t *testing.T) {
	a := &Approximations{NumberPatterns: []string{`ok(\d+)`, `broken(`}}

	_, err := a.Patterns()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "number_patterns[1]")

	_, err = a.Patterns()
	assert.Error(t, err, "error must persist across calls")

	err = a.CompareOutput("a", "a")
	assert.Error(t, err)
}
