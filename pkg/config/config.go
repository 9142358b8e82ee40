// Package config loads run configuration from an optional TOML file.
//
// Flags override file values; file values override defaults. A minimal
// bluntify.toml:
//
//	threads = 8
//	output = "blunted.gfa"
//	provenance = "provenance.txt"
//	exact_cover_limit = 65536
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/rlorigro/GetBlunted/pkg/errors"
)

// Config holds the run options a config file can set.
type Config struct {
	// Threads bounds the biclique-cover worker pool; zero means one
	// worker per CPU.
	Threads int `toml:"threads"`
	// Output is the blunted GFA path.
	Output string `toml:"output"`
	// Provenance is the provenance report path.
	Provenance string `toml:"provenance"`
	// ExactCoverLimit bounds the bipartite graphs the exact biclique
	// cover is attempted on; zero means the built-in default.
	ExactCoverLimit int `toml:"exact_cover_limit"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Output:     "test_bluntify_final.gfa",
		Provenance: "test_bluntify_provenance.txt",
	}
}

// Load reads a TOML config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeIO, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeParse, err, "parse config %s", path)
	}
	return cfg, nil
}
