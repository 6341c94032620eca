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

// Config holds the CLI settings. Command-line flags override file values.
type Config struct {
	TapeExtension string `yaml:"tape_extension"`
	Prompt        string `yaml:"prompt"`
	Timing        bool   `yaml:"timing"`
	Trace         bool   `yaml:"trace"`
	MaxSteps      int    `yaml:"max_steps"`
}

func Default() Config {
	return Config{
		TapeExtension: ".zt",
		Prompt:        ">> ",
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()
	return Decode(file)
}

// Decode parses YAML from r over the defaults. Unknown keys are rejected.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.TapeExtension != "" && !strings.HasPrefix(c.TapeExtension, ".") {
		return fmt.Errorf("config: tape_extension %q must start with '.'", c.TapeExtension)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("config: max_steps must not be negative")
	}
	return nil
}

// TapePath derives the default tape path for a source file by swapping its
// extension.
func (c Config) TapePath(src string) string {
	ext := filepath.Ext(src)
	if ext == "" || ext == c.TapeExtension {
		return src + c.TapeExtension
	}
	return strings.TrimSuffix(src, ext) + c.TapeExtension
}
