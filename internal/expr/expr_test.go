package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var linuxHost = Host{OS: "linux", Arch: "x86_64", Family: "unix"}

func TestParse_Valid(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"key value", `os = "linux"`, `os = "linux"`},
		{"no spaces", `os="linux"`, `os = "linux"`},
		{"bare identifier", `unix`, `unix`},
		{"not", `not(os = "aarch64")`, `not(os = "aarch64")`},
		{"all", `all(os = "linux", arch = "x86_64")`, `all(os = "linux", arch = "x86_64")`},
		{"any nested", `any(os="linux", not(family = "windows"))`, `any(os = "linux", not(family = "windows"))`},
		{"trailing comma", `all(os = "linux",)`, `all(os = "linux")`},
		{"empty all", `all()`, `all()`},
		{"surrounding whitespace", "  \tnot( os = \"linux\" )\n", `not(os = "linux")`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, e.String())
			assert.Equal(t, tt.input, e.Source())
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"only whitespace", "   "},
		{"missing value", `os =`},
		{"unquoted value", `os = linux`},
		{"unterminated string", `os = "linux`},
		{"unclosed not", `not(os = "linux"`},
		{"not without operand", `not()`},
		{"not with two operands", `not(os = "linux", arch = "x86")`},
		{"unknown function", `xor(os = "linux")`},
		{"trailing garbage", `os = "linux" extra`},
		{"leading digit", `1os = "linux"`},
		{"double comma", `all(os = "linux",,)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			assert.True(t, IsParseError(err), "expected ParseError, got %T: %v", err, err)
		})
	}
}

func TestParseError_ReportsOffset(t *testing.T) {
	_, err := Parse(`xor(os = "linux")`)
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 0, pe.Offset)
	assert.Contains(t, pe.Error(), "unknown function")
}

func TestHost_Evaluate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"os matches", `os = "linux"`, true},
		{"os differs", `os = "windows"`, false},
		{"arch matches", `arch = "x86_64"`, true},
		{"family matches", `family = "unix"`, true},
		{"not of non-matching", `not(os = "aarch64")`, true},
		{"not of matching", `not(os = "linux")`, false},
		{"all true", `all(os = "linux", arch = "x86_64")`, true},
		{"all one false", `all(os = "linux", arch = "aarch64")`, false},
		{"any one true", `any(os = "windows", arch = "x86_64")`, true},
		{"any none true", `any(os = "windows", arch = "aarch64")`, false},
		{"empty all", `all()`, true},
		{"empty any", `any()`, false},
		{"value is case sensitive", `os = "Linux"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := linuxHost.Evaluate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestHost_UnknownPredicate(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown key", `foo = "bar"`},
		{"bare identifier", `unix`},
		{"hidden behind short circuit in any", `any(os = "linux", foo = "bar")`},
		{"hidden behind short circuit in all", `all(os = "windows", target_env = "gnu")`},
		{"inside not", `not(foo = "bar")`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := linuxHost.Evaluate(tt.input)
			require.Error(t, err)
			assert.False(t, got)
			assert.True(t, IsUnknownPredicate(err), "expected UnknownPredicateError, got %T: %v", err, err)
			assert.False(t, IsParseError(err))
		})
	}
}

func TestUnknownPredicate_NamesPredicate(t *testing.T) {
	_, err := linuxHost.Evaluate(`foo = "bar"`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `foo = "bar"`)
}

func TestEval_CustomLookup(t *testing.T) {
	e := MustParse(`all(gpu = "yes", not(headless))`)

	var seen []string
	got, err := e.Eval(func(p Predicate) (bool, bool) {
		seen = append(seen, p.Key)
		switch p.Key {
		case "gpu":
			return p.Value == "yes", true
		case "headless":
			return false, true
		}
		return false, false
	})
	require.NoError(t, err)
	assert.True(t, got)
	assert.Equal(t, []string{"gpu", "headless"}, seen)
}

func TestCurrentHost_UsesCfgVocabulary(t *testing.T) {
	assert.Equal(t, "macos", osName("darwin"))
	assert.Equal(t, "linux", osName("linux"))
	assert.Equal(t, "windows", osName("windows"))

	assert.Equal(t, "x86_64", archName("amd64"))
	assert.Equal(t, "aarch64", archName("arm64"))
	assert.Equal(t, "x86", archName("386"))
	assert.Equal(t, "riscv64", archName("riscv64"))

	assert.Equal(t, "windows", familyName("windows"))
	assert.Equal(t, "wasm", familyName("js"))
	assert.Equal(t, "unix", familyName("linux"))
	assert.Equal(t, "unix", familyName("darwin"))

	h := CurrentHost()
	assert.NotEqual(t, "darwin", h.OS)
	assert.NotEmpty(t, h.OS)
	assert.NotEmpty(t, h.Arch)
	assert.NotEmpty(t, h.Family)
}

func TestCache_ParsesOnce(t *testing.T) {
	c := NewCache()

	e1, err := c.Parse(`os = "linux"`)
	require.NoError(t, err)
	e2, err := c.Parse(`os = "linux"`)
	require.NoError(t, err)
	assert.Same(t, e1, e2)

	_, err = c.Parse(`os =`)
	require.Error(t, err)
	_, err2 := c.Parse(`os =`)
	assert.Equal(t, err, err2)

	assert.Equal(t, 2, c.Len())
}
