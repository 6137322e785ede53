package expr

import "runtime"

// Recognized predicate keys.
const (
	KeyOS     = "os"
	KeyArch   = "arch"
	KeyFamily = "family"
)

// Host holds the attributes filter expressions are evaluated against.
type Host struct {
	OS     string
	Arch   string
	Family string
}

// CurrentHost returns the attributes of the running process.
//
// OS, architecture and family use the cfg vocabulary so configuration files
// stay portable: darwin is reported as "macos", amd64 as "x86_64".
func CurrentHost() Host {
	return Host{
		OS:     osName(runtime.GOOS),
		Arch:   archName(runtime.GOARCH),
		Family: familyName(runtime.GOOS),
	}
}

func osName(goos string) string {
	switch goos {
	case "darwin":
		return "macos"
	default:
		return goos
	}
}

func archName(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	case "386":
		return "x86"
	case "arm":
		return "arm"
	case "ppc64le", "ppc64":
		return "powerpc64"
	case "wasm":
		return "wasm32"
	default:
		return goarch
	}
}

func familyName(goos string) string {
	switch goos {
	case "windows":
		return "windows"
	case "js", "wasip1":
		return "wasm"
	default:
		return "unix"
	}
}

// Lookup resolves os, arch and family predicates by exact string equality.
// Bare identifiers and any other key are unknown.
func (h Host) Lookup(p Predicate) (matched bool, known bool) {
	if !p.HasValue {
		return false, false
	}
	switch p.Key {
	case KeyOS:
		return p.Value == h.OS, true
	case KeyArch:
		return p.Value == h.Arch, true
	case KeyFamily:
		return p.Value == h.Family, true
	default:
		return false, false
	}
}

// Evaluate parses text and evaluates it against the host.
func (h Host) Evaluate(text string) (bool, error) {
	e, err := Parse(text)
	if err != nil {
		return false, err
	}
	return e.Eval(h.Lookup)
}
