package config

import (
	"github.com/arthur-debert/fstree/pkg/reader"
	"github.com/arthur-debert/fstree/pkg/types"
	"github.com/arthur-debert/fstree/pkg/writer"
)

// Config is the complete fstree configuration
type Config struct {
	Read    Read          `koanf:"read" toml:"read"`
	Write   Write         `koanf:"write" toml:"write"`
	Verify  Verify        `koanf:"verify" toml:"verify"`
	Logging LoggingConfig `koanf:"logging" toml:"logging"`
}

// Read holds the reader settings
type Read struct {
	// Follow resolves symlinks; false records them as leaves
	Follow   bool                 `koanf:"follow" toml:"follow"`
	Policy   types.ErrorPolicy    `koanf:"policy" toml:"policy"`
	Dangling types.DanglingPolicy `koanf:"dangling" toml:"dangling"`
	// Workers is the number of sibling subtrees read in parallel
	Workers int `koanf:"workers" toml:"workers"`
}

// Write holds the writer settings
type Write struct {
	Overwrite bool              `koanf:"overwrite" toml:"overwrite"`
	Policy    types.ErrorPolicy `koanf:"policy" toml:"policy"`
	Atomic    bool              `koanf:"atomic" toml:"atomic"`
}

// Verify holds the read-copy check settings
type Verify struct {
	Follow bool `koanf:"follow" toml:"follow"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	// File enables the log file under the XDG state directory
	File bool `koanf:"file" toml:"file"`
}

// Default returns the configuration described by the embedded defaults.
func Default() *Config {
	cfg, err := LoadConfiguration(Sources{SkipUserFile: true, SkipEnv: true})
	if err != nil {
		// Fallback to the built-in values if the embedded file is broken
		return &Config{
			Read:    Read{Follow: true, Policy: types.PolicyAbort, Dangling: types.DanglingFail, Workers: 1},
			Write:   Write{Policy: types.PolicyAbort},
			Verify:  Verify{Follow: true},
			Logging: LoggingConfig{File: true},
		}
	}
	return cfg
}

// Validate checks settings that decoding alone cannot reject.
func (c *Config) Validate() error {
	if err := c.ReadOptions().Validate(); err != nil {
		return err
	}
	return c.WriteOptions().Validate()
}

// ReadOptions translates the read settings into reader options.
func (c *Config) ReadOptions() reader.Options {
	return reader.Options{
		Mode:     modeFor(c.Read.Follow),
		Policy:   c.Read.Policy,
		Dangling: c.Read.Dangling,
		Workers:  c.Read.Workers,
	}
}

// WriteOptions translates the write settings into writer options.
func (c *Config) WriteOptions() writer.Options {
	return writer.Options{
		Overwrite: c.Write.Overwrite,
		Policy:    c.Write.Policy,
		Atomic:    c.Write.Atomic,
	}
}

// VerifyOptions returns the reader options used to read a copy back. They
// follow the read settings except for symlink handling.
func (c *Config) VerifyOptions() reader.Options {
	opts := c.ReadOptions()
	opts.Mode = modeFor(c.Verify.Follow)
	return opts
}

func modeFor(follow bool) types.ReadMode {
	if follow {
		return types.ModeFollow
	}
	return types.ModeAware
}
