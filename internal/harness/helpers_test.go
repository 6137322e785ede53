package harness

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/snapcheck/internal/expr"
	"github.com/roach88/snapcheck/internal/testutil"
)

var (
	gray  = color.RGBA{R: 100, G: 100, B: 100, A: 255}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// writeCase creates a case directory under root with the given
// configuration, expected log and reference images.
func writeCase(t *testing.T, root, name, config, expectedLog string, refs map[string]*image.RGBA) string {
	t.Helper()
	dir := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.yaml"), []byte(config), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "output.txt"), []byte(expectedLog), 0o644))
	for ref, img := range refs {
		testutil.WritePNG(t, filepath.Join(dir, ref+".expected.png"), img)
	}
	return dir
}

// loadCase discovers exactly one case under root.
func loadCase(t *testing.T, root string) Case {
	t.Helper()
	cases, err := Discover(root, "")
	require.NoError(t, err)
	require.Len(t, cases, 1)
	return cases[0]
}

func testConfig(sink *testutil.MemorySink) Config {
	return Config{
		Environment: "test",
		Host:        expr.Host{OS: "linux", Arch: "x86_64", Family: "unix"},
		Exprs:       expr.NewCache(),
		Sink:        sink,
	}
}
