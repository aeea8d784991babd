package main

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// benchConfig describes a "-bench" run: one expression, an iteration
// count, and a [lo, hi) range for each free variable the expression
// is allowed to use. A uniform-random value in that range is drawn
// for each variable on every iteration.
type benchConfig struct {
	Expression string                 `toml:"expression"`
	Iterations int                    `toml:"iterations"`
	Variables  map[string][2]float64  `toml:"variables"`
}

// loadBenchConfig reads and decodes a TOML bench-config file.
func loadBenchConfig(path string) (*benchConfig, error) {
	var cfg benchConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, errors.Wrapf(err, "decoding bench config %q", path)
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = 1_000_000
	}
	return &cfg, nil
}
