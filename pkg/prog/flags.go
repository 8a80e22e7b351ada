package prog

import "flag"

// FlagSet wraps a [flag.FlagSet]. It also provides the flags shared by more
// than one subprogram; those are registered on first request, so that
// subprograms can share them.
type FlagSet struct {
	*flag.FlagSet
	json   *bool
	config *string
}

// JSON returns a pointer to the value of the -json flag.
func (fs *FlagSet) JSON() *bool {
	if fs.json == nil {
		var json bool
		fs.BoolVar(&json, "json", false,
			"show the output from -buildinfo or -compileonly in JSON")
		fs.json = &json
	}
	return fs.json
}

// Config returns a pointer to the value of the -config flag.
func (fs *FlagSet) Config() *string {
	if fs.config == nil {
		var config string
		fs.StringVar(&config, "config", "",
			"path to the YAML host configuration; defaults to $FSL_CONFIG")
		fs.config = &config
	}
	return fs.config
}
