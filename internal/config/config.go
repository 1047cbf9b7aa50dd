// Package config loads an optional project configuration file that
// overrides the external toolchain binaries and temp-file handling
// the driver otherwise defaults to.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the driver's overridable settings.
type Config struct {
	// CC is the compiler driver used both to preprocess (CC -E -P)
	// and to assemble+link (CC file.s -o out). Defaults to "gcc".
	CC string `toml:"cc"`

	// OutputName is the executable name used when none is given on
	// the command line and none can be derived from the source file's
	// base name (the CLI otherwise names the output after the source
	// file). Defaults to "a.out".
	OutputName string `toml:"output_name"`

	// KeepTemps, when true, leaves the generated .i/.s files on disk
	// instead of deleting them after the run -- useful for debugging
	// a failing compilation.
	KeepTemps bool `toml:"keep_temps"`
}

// Default returns the configuration used when no project file is
// present.
func Default() Config {
	return Config{CC: "gcc", OutputName: "a.out"}
}

// Load reads a TOML config file at path, overlaying it on Default().
// A missing file is not an error; it simply yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
