package cli

import (
	"encoding/json"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/snapcheck/internal/harness"
	"github.com/roach88/snapcheck/internal/testutil"
)

const mainComparison = `image_comparisons:
  main:
    tolerance: 0
    max_outliers: 0
`

var (
	gray  = color.RGBA{R: 100, G: 100, B: 100, A: 255}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// writeSuite creates a tests root and a matching outputs root with one
// passing, one failing, one ignored and one known-failure case.
func writeSuite(t *testing.T) (tests, outputs string) {
	t.Helper()
	tests, outputs = t.TempDir(), t.TempDir()
	ref := testutil.SolidRGBA(4, 4, gray)
	refs := map[string]*image.RGBA{"main": ref}

	writeCase(t, tests, "avm1/pass", mainComparison, "hello\n", refs)
	writeOutputs(t, outputs, "avm1/pass", "hello\n", refs)

	writeCase(t, tests, "avm2/fail", mainComparison, "", refs)
	writeOutputs(t, outputs, "avm2/fail", "", map[string]*image.RGBA{"main": testutil.WithPixel(ref, 0, 0, white)})

	writeCase(t, tests, "avm2/ignored", "ignore: true\n", "", nil)

	writeCase(t, tests, "avm2/known", "known_failure: true\n", "a\n", nil)
	writeOutputs(t, outputs, "avm2/known", "b\n", nil)

	return tests, outputs
}

func TestValidate_ValidAndInvalid(t *testing.T) {
	root := t.TempDir()
	good := writeCase(t, root, "good", mainComparison, "", nil)
	bad := writeCase(t, root, "bad", "nm_frames: 1\n", "", nil)

	out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), good)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ "+good)

	out, err = execute(NewValidateCommand(&RootOptions{Format: "text"}), good, bad)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ "+bad)
	assert.Contains(t, out, "nm_frames")
}

func TestValidate_JSON(t *testing.T) {
	root := t.TempDir()
	dir := writeCase(t, root, "good", "", "", nil)

	out, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), dir)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	require.Len(t, resp.Data.Cases, 1)
	assert.Equal(t, filepath.Join(dir, "test.yaml"), resp.Data.Cases[0].Config)
}

func TestValidate_MissingDirectory(t *testing.T) {
	out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), "/nonexistent/case")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E002]")
}

func TestList(t *testing.T) {
	tests, _ := writeSuite(t)

	out, err := execute(NewListCommand(&RootOptions{Format: "text"}), tests)
	require.NoError(t, err)
	assert.Contains(t, out, "  avm1/pass\n")
	assert.Contains(t, out, "- avm2/ignored (ignored)\n")
	assert.Contains(t, out, "4 cases")

	out, err = execute(NewListCommand(&RootOptions{Format: "json"}), tests, "--filter", "avm1/*")
	require.NoError(t, err)

	var resp struct {
		Data ListResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Cases, 1)
	assert.Equal(t, CaseEntry{Name: "avm1/pass", Runnable: true}, resp.Data.Cases[0])
}

func TestList_InvalidCaseFails(t *testing.T) {
	root := t.TempDir()
	writeCase(t, root, "good", "", "", nil)
	writeCase(t, root, "bad", "bogus: true\n", "", nil)

	out, err := execute(NewListCommand(&RootOptions{Format: "text"}), root)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "  good\n")
	assert.Contains(t, out, "✗ case bad")
}

func TestCheck_TextGolden(t *testing.T) {
	tests, outputs := writeSuite(t)

	out, err := execute(NewCheckCommand(&RootOptions{Format: "text"}), tests, "--actual", outputs)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "check_text", []byte(out))

	assert.FileExists(t, filepath.Join(tests, "avm2", "fail", "main.actual-software.png"))
	assert.FileExists(t, filepath.Join(tests, "avm2", "fail", "main.difference-color-software.png"))
}

func TestCheck_PassingSuiteRecordsHistory(t *testing.T) {
	tests, outputs := writeSuite(t)
	require.NoError(t, os.RemoveAll(filepath.Join(tests, "avm2", "fail")))
	db := filepath.Join(t.TempDir(), "results.db")

	out, err := execute(NewCheckCommand(&RootOptions{Format: "json"}), tests, "--actual", outputs, "--db", db)
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		RunID  string      `json:"run_id"`
		Data   CheckReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, 3, resp.Data.Summary.Total)
	assert.True(t, resp.Data.Summary.OK())

	out, err = execute(NewHistoryCommand(&RootOptions{Format: "text"}), db)
	require.NoError(t, err)
	assert.Contains(t, out, "#1 "+resp.RunID+" [software, ")
	assert.Contains(t, out, "0 failure(s)")

	out, err = execute(NewHistoryCommand(&RootOptions{Format: "text"}), db, "--case", "avm2/known")
	require.NoError(t, err)
	assert.Contains(t, out, "#1 "+resp.RunID+" known_failure")
}

func TestCheck_InvalidConfigFailsOnlyItsCase(t *testing.T) {
	tests, outputs := t.TempDir(), t.TempDir()
	writeCase(t, tests, "bad", "bogus: true\n", "", nil)
	writeCase(t, tests, "good", "", "hello\n", nil)
	writeOutputs(t, outputs, "good", "hello\n", nil)
	db := filepath.Join(t.TempDir(), "results.db")

	out, err := execute(NewCheckCommand(&RootOptions{Format: "json"}), tests, "--actual", outputs, "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		RunID string      `json:"run_id"`
		Data  CheckReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Results, 2)

	bad, good := resp.Data.Results[0], resp.Data.Results[1]
	assert.Equal(t, "bad", bad.Case)
	assert.Equal(t, harness.OutcomeFailed, bad.Outcome)
	require.Len(t, bad.Errors, 1)
	assert.Contains(t, bad.Errors[0], "bogus")
	assert.Equal(t, "good", good.Case)
	assert.Equal(t, harness.OutcomePassed, good.Outcome)
	assert.Equal(t, 1, resp.Data.Summary.Failed)

	out, err = execute(NewHistoryCommand(&RootOptions{Format: "text"}), db, "--case", "bad")
	require.NoError(t, err)
	assert.Contains(t, out, "#1 "+resp.RunID+" failed")
}

func TestCheck_MissingActualFlag(t *testing.T) {
	_, err := execute(NewCheckCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "actual")
}

func TestHistory_MissingDatabase(t *testing.T) {
	out, err := execute(NewHistoryCommand(&RootOptions{Format: "text"}), filepath.Join(t.TempDir(), "none.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "database not found")
}

func TestDiff(t *testing.T) {
	dir := t.TempDir()
	ref := testutil.SolidRGBA(3, 3, gray)
	expected := filepath.Join(dir, "expected.png")
	same := filepath.Join(dir, "same.png")
	changed := filepath.Join(dir, "changed.png")
	testutil.WritePNG(t, expected, ref)
	testutil.WritePNG(t, same, ref)
	testutil.WritePNG(t, changed, testutil.WithPixel(ref, 1, 1, white))

	out, err := execute(NewDiffCommand(&RootOptions{Format: "text"}), same, expected)
	require.NoError(t, err)
	assert.Equal(t, "check 0: 0 outliers (max 0), max difference 0\n✓ images match\n", out)

	out, err = execute(NewDiffCommand(&RootOptions{Format: "text"}), changed, expected, "--max-outliers", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "3 outliers (max 3), max difference 155")

	diagDir := t.TempDir()
	out, err = execute(NewDiffCommand(&RootOptions{Format: "json"}), changed, expected, "--out", diagDir, "--name", "frame")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Data DiffResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.False(t, resp.Data.Passed)
	assert.Equal(t, "OUTLIERS_EXCEEDED", resp.Data.Code)
	assert.FileExists(t, filepath.Join(diagDir, "frame.actual-cli.png"))
}

func TestDiff_SizeMismatch(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	testutil.WritePNG(t, a, testutil.SolidRGBA(2, 2, gray))
	testutil.WritePNG(t, b, testutil.SolidRGBA(3, 2, gray))

	out, err := execute(NewDiffCommand(&RootOptions{Format: "text"}), a, b)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Expected = 3x2, actual = 2x2.")
}

func TestDiff_UnknownFilterPredicate(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	testutil.WritePNG(t, a, testutil.SolidRGBA(2, 2, gray))

	_, err := execute(NewDiffCommand(&RootOptions{Format: "text"}), a, a, "--filter", `vendor = "x"`)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestEval(t *testing.T) {
	out, err := execute(NewEvalCommand(&RootOptions{Format: "text"}), `all(os = "linux", not(arch = "x86"))`,
		"--os", "linux", "--arch", "x86_64")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	out, err = execute(NewEvalCommand(&RootOptions{Format: "json"}), `os = "windows"`, "--os", "linux")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Data EvalResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.False(t, resp.Data.Matched)
	assert.Equal(t, `os = "windows"`, resp.Data.Expression)
}

func TestEval_Errors(t *testing.T) {
	out, err := execute(NewEvalCommand(&RootOptions{Format: "text"}), `os = `)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E006]")

	_, err = execute(NewEvalCommand(&RootOptions{Format: "text"}), `vendor = "x"`)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestApprox(t *testing.T) {
	dir := t.TempDir()
	expected := filepath.Join(dir, "expected.txt")
	actual := filepath.Join(dir, "actual.txt")
	require.NoError(t, os.WriteFile(expected, []byte("1.0\nwidth: 10.5px\n"), 0o644))
	require.NoError(t, os.WriteFile(actual, []byte("1.0000001\nwidth: 10.5000001px\n"), 0o644))

	_, err := execute(NewApproxCommand(&RootOptions{Format: "text"}), actual, expected)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out, err := execute(NewApproxCommand(&RootOptions{Format: "text"}), actual, expected,
		"--epsilon", "0.001", "--pattern", `width: ([\d.]+)px`)
	require.NoError(t, err)
	assert.Equal(t, "✓ logs match\n", out)

	out, err = execute(NewApproxCommand(&RootOptions{Format: "json"}), actual, expected, "--epsilon", "0.001")
	require.Error(t, err)

	var resp struct {
		Data ApproxResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.False(t, resp.Data.Matched)
	assert.Equal(t, 2, resp.Data.Line)
}

func TestApprox_InvalidPattern(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "log.txt")
	require.NoError(t, os.WriteFile(f, []byte("x\n"), 0o644))

	_, err := execute(NewApproxCommand(&RootOptions{Format: "text"}), f, f, "--pattern", "(")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
