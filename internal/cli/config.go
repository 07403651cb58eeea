package cli

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ashwinstar/gpdb/internal/codegen"
)

// Config controls how the CLI commands drive the generator.
type Config struct {
	// OptLevel selects the optimization pipeline: none, less, default
	// or aggressive.
	OptLevel string `yaml:"opt_level"`

	// SizeLevel trades speed for module size: 0 (none) to 2 (no inlining).
	SizeLevel int `yaml:"size_level"`

	// VerifyOnly stops after verification without executing anything.
	VerifyOnly bool `yaml:"verify_only"`
}

// DefaultConfig is used when no config file is given.
func DefaultConfig() Config {
	return Config{OptLevel: codegen.OptDefault.String()}
}

// LoadConfig reads a YAML config file. Unknown keys are rejected so typos
// do not silently fall back to defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if _, ok := codegen.ParseOptLevel(cfg.OptLevel); !ok {
		return cfg, fmt.Errorf("config %s: unknown opt_level %q", path, cfg.OptLevel)
	}
	if cfg.SizeLevel < 0 || cfg.SizeLevel > int(codegen.SizeAggressive) {
		return cfg, fmt.Errorf("config %s: size_level %d out of range [0,%d]",
			path, cfg.SizeLevel, codegen.SizeAggressive)
	}
	return cfg, nil
}

// Level returns the parsed optimization level.
func (c Config) Level() codegen.OptLevel {
	level, _ := codegen.ParseOptLevel(c.OptLevel)
	return level
}

// Size returns the parsed size level.
func (c Config) Size() codegen.SizeLevel {
	return codegen.SizeLevel(c.SizeLevel)
}
