package options

// Features are optional capabilities compiled into the player.
type Features struct {
	LZMA   bool
	JPEGXR bool
}

// compiled is populated by build-tagged files.
var compiled Features

// CompiledFeatures returns the features enabled at build time
// (-tags lzma, -tags jpegxr).
func CompiledFeatures() Features {
	return compiled
}

// RequiredFeatures lists capabilities a test needs.
type RequiredFeatures struct {
	LZMA   bool `yaml:"lzma" json:"lzma"`
	JPEGXR bool `yaml:"jpegxr" json:"jpegxr"`
}

// CanRun reports whether every required feature is available.
func (r RequiredFeatures) CanRun(have Features) bool {
	return (!r.LZMA || have.LZMA) && (!r.JPEGXR || have.JPEGXR)
}

// Missing returns the names of required features not in have.
func (r RequiredFeatures) Missing(have Features) []string {
	var missing []string
	if r.LZMA && !have.LZMA {
		missing = append(missing, "lzma")
	}
	if r.JPEGXR && !have.JPEGXR {
		missing = append(missing, "jpegxr")
	}
	return missing
}
