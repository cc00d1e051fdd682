// Package config loads optional defaults for the harness from a TOML file,
// using github.com/BurntSushi/toml — CLI flags always take precedence over
// whatever a config file sets, so a config file only lowers how much has
// to be typed on the command line every run.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the subset of harness settings a dispatchbench.toml file may
// set. Every field is optional; a zero value means "not set, fall back to
// the flag default."
type Config struct {
	Engine    string `toml:"engine"`
	StepLimit uint64 `toml:"steplimit"`
	Program   string `toml:"program"`
}

// Load reads and parses a TOML config file. A missing file is not an
// error — it returns a zero Config, so the harness just uses flag
// defaults — but a malformed one is.
func Load(path string) (Config, error) {
	var cfg Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}
