package cli

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/snapcheck/internal/testutil"
)

// execute runs cmd with args and returns its stdout.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// writeCase creates a case directory with a configuration, an expected
// log and reference images.
func writeCase(t *testing.T, root, name, config, log string, refs map[string]*image.RGBA) string {
	t.Helper()
	dir := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.yaml"), []byte(config), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "output.txt"), []byte(log), 0o644))
	for ref, img := range refs {
		testutil.WritePNG(t, filepath.Join(dir, ref+".expected.png"), img)
	}
	return dir
}

// writeOutputs creates the captured outputs of a case.
func writeOutputs(t *testing.T, root, name, log string, captures map[string]*image.RGBA) {
	t.Helper()
	dir := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "output.txt"), []byte(log), 0o644))
	for capture, img := range captures {
		testutil.WritePNG(t, filepath.Join(dir, capture+".png"), img)
	}
}
