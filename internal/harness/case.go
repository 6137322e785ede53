package harness

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/roach88/snapcheck/internal/options"
)

// Case is a discovered test case.
type Case struct {
	// Name is the case directory relative to the discovery root, with
	// forward slashes.
	Name string

	// Dir is the case directory.
	Dir string

	Options *options.TestOptions
}

// LoadError reports a case whose configuration failed to load.
type LoadError struct {
	Case string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("case %s: %v", e.Case, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadErrors returns the per-case load errors carried by an error from
// Discover. It returns nil when err holds none.
func LoadErrors(err error) []*LoadError {
	if err == nil {
		return nil
	}
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}

	var out []*LoadError
	for _, e := range errs {
		var le *LoadError
		if errors.As(e, &le) {
			out = append(out, le)
		}
	}
	return out
}

// Discover walks root and returns every test case whose name matches the
// glob filter. An empty filter matches everything.
//
// Cases are sorted by name. Cases whose configuration fails to load are
// left out and their *LoadError values are joined into the returned error,
// so callers get every valid case alongside every invalid one.
func Discover(root, filter string) ([]Case, error) {
	if filter != "" {
		if _, err := path.Match(filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter %q: %w", filter, err)
		}
	}

	var (
		cases    []Case
		loadErrs []error
	)
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}

		configPath := options.Find(p)
		if configPath == "" {
			return nil
		}

		name, err := caseName(root, p)
		if err != nil {
			return err
		}
		if filter != "" {
			if ok, _ := path.Match(filter, name); !ok {
				return nil
			}
		}

		opts, err := options.Load(configPath)
		if err != nil {
			loadErrs = append(loadErrs, &LoadError{Case: name, Err: err})
			return nil
		}
		cases = append(cases, Case{Name: name, Dir: p, Options: opts})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	sort.Slice(cases, func(i, j int) bool { return cases[i].Name < cases[j].Name })
	return cases, errors.Join(loadErrs...)
}

func caseName(root, dir string) (string, error) {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return "", err
	}
	if rel == "." {
		return filepath.Base(filepath.Clean(root)), nil
	}
	return filepath.ToSlash(rel), nil
}

// Runnable reports whether the case can run with the given renderer
// environment and compiled features. When it cannot, reason says why.
func (c Case) Runnable(checkRenderer bool, env options.Environment, have options.Features) (bool, string) {
	if c.Options.Ignore {
		return false, "ignored"
	}
	if missing := c.Options.RequiredFeatures.Missing(have); len(missing) > 0 {
		return false, "missing features: " + strings.Join(missing, ", ")
	}
	if !c.Options.PlayerOptions.CanRun(checkRenderer, env) {
		return false, "renderer not supported"
	}
	return true, ""
}
