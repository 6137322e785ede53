package options

// FontOptions substitutes a logical font name with a font file.
type FontOptions struct {
	Family string `yaml:"family" json:"family"`
	Path   string `yaml:"path" json:"path"`
	Bold   bool   `yaml:"bold" json:"bold"`
	Italic bool   `yaml:"italic" json:"italic"`
}
