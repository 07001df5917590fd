// Package config loads runtime settings from TOML or YAML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidFrameRate = errors.New("runtime.frame_rate must be positive")
	ErrInvalidCapacity  = errors.New("runtime.scheduler_capacity must be positive")
	ErrInvalidEncoding  = errors.New("logging.encoding must be json or console")
)

type Config struct {
	Logging Logging                 `toml:"logging" yaml:"logging"`
	Runtime Runtime                 `toml:"runtime" yaml:"runtime"`
	Systems map[string]SystemConfig `toml:"systems" yaml:"systems"`
}

type Logging struct {
	Level    string `toml:"level" yaml:"level"`
	Encoding string `toml:"encoding" yaml:"encoding"`
}

type Runtime struct {
	FrameRate         int  `toml:"frame_rate" yaml:"frame_rate"`
	SchedulerCapacity int  `toml:"scheduler_capacity" yaml:"scheduler_capacity"`
	Observe           bool `toml:"observe" yaml:"observe"`
}

// SystemConfig overrides a named system. A nil Active leaves the system as is.
type SystemConfig struct {
	Active *bool `toml:"active" yaml:"active"`
}

func Default() *Config {
	return &Config{
		Logging: Logging{Level: "info", Encoding: "console"},
		Runtime: Runtime{FrameRate: 30, SchedulerCapacity: 256},
		Systems: map[string]SystemConfig{},
	}
}

// Load reads path over Default. Files ending in .toml are decoded as TOML,
// everything else as YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err = toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		if err = yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	if cfg.Systems == nil {
		cfg.Systems = map[string]SystemConfig{}
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Runtime.FrameRate <= 0 {
		return ErrInvalidFrameRate
	}
	if c.Runtime.SchedulerCapacity <= 0 {
		return ErrInvalidCapacity
	}
	switch c.Logging.Encoding {
	case "", "json", "console":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidEncoding, c.Logging.Encoding)
	}
	return nil
}

// SystemActive reports the override for name, if any.
func (c *Config) SystemActive(name string) (active, ok bool) {
	sc, found := c.Systems[name]
	if !found || sc.Active == nil {
		return false, false
	}
	return *sc.Active, true
}
