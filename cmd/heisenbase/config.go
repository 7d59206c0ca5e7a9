package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config is the CLI's full configuration, loaded from a TOML file and
// threaded explicitly from main into the builder -- no global
// configuration state, per the "global state: none" design note.
type Config struct {
	// DataDir is where built .hbt files are read from and written to.
	DataDir string `toml:"data_dir"`
	// Workers is the number of parallel sweep workers; 0 means use
	// runtime.GOMAXPROCS(0).
	Workers int `toml:"workers"`
	// CandidatesFile is the YAML popularity-ranked candidate list
	// generate-many reads.
	CandidatesFile string `toml:"candidates_file"`
	// LogLevel is one of the op/go-logging level names (DEBUG, INFO,
	// NOTICE, WARNING, ERROR, CRITICAL).
	LogLevel string `toml:"log_level"`
}

// DefaultConfig returns the configuration used when no TOML file is
// given.
func DefaultConfig() Config {
	return Config{
		DataDir:  ".",
		Workers:  0,
		LogLevel: "INFO",
	}
}

// LoadConfig reads and decodes a TOML configuration file at path.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("heisenbase: loading config %s: %w", path, err)
	}
	return cfg, nil
}
