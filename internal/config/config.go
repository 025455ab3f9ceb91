// Package config provides the engine configuration: which builtin classes
// self-match in class patterns and which sequence classes never match a
// sequence pattern.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvConfig names a configuration file used when no path is given.
const EnvConfig = "MATCHCORE_CONFIG"

// Config holds configuration for the pattern engines.
type Config struct {
	// SelfMatchTypes are qualified names of classes whose single positional
	// sub-pattern is matched against the subject itself.
	SelfMatchTypes []string `yaml:"self_match_types"`

	// NonSequenceTypes are qualified names of sequence classes that never
	// match a sequence pattern.
	NonSequenceTypes []string `yaml:"non_sequence_types"`

	// Verbose enables trace logging in the driver.
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		SelfMatchTypes: []string{
			"builtins.bool",
			"builtins.bytearray",
			"builtins.bytes",
			"builtins.dict",
			"builtins.float",
			"builtins.frozenset",
			"builtins.int",
			"builtins.list",
			"builtins.set",
			"builtins.str",
			"builtins.tuple",
		},
		NonSequenceTypes: []string{
			"builtins.str",
			"builtins.bytes",
			"builtins.bytearray",
		},
	}
}

// Load reads a YAML configuration file. Keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", absPath, err)
	}
	defer file.Close()

	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", absPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve loads path if set, else the file named by MATCHCORE_CONFIG, else
// returns the defaults.
func Resolve(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	if env := os.Getenv(EnvConfig); env != "" {
		return Load(env)
	}
	return DefaultConfig(), nil
}

// Validate checks that every class name is qualified.
func (c *Config) Validate() error {
	var issues []string
	check := func(field string, names []string) {
		for i, name := range names {
			if !strings.Contains(name, ".") {
				issues = append(issues, fmt.Sprintf("%s[%d] %q must be a qualified class name", field, i, name))
			}
		}
	}
	check("self_match_types", c.SelfMatchTypes)
	check("non_sequence_types", c.NonSequenceTypes)
	if len(issues) > 0 {
		return fmt.Errorf("config: %s", strings.Join(issues, "; "))
	}
	return nil
}
