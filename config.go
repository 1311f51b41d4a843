package gochan

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Mode selects the channel flavour in a Config.
type Mode string

const (
	ModeBounded   Mode = "bounded"
	ModeUnbounded Mode = "unbounded"
)

// Config describes a channel in YAML form:
//
//	name: jobs
//	mode: bounded
//	capacity: 64
//
// An empty mode means bounded when capacity is set and unbounded otherwise.
type Config struct {
	Name     string `yaml:"name"`
	Mode     Mode   `yaml:"mode"`
	Capacity int    `yaml:"capacity"` // ignored for unbounded channels
}

// PoolConfig describes a worker pool and the channels feeding it.
type PoolConfig struct {
	Workers int    `yaml:"workers"`
	Jobs    Config `yaml:"jobs"`
	Results Config `yaml:"results"`
}

func (c Config) mode() Mode {
	if c.Mode == "" {
		if c.Capacity > 0 {
			return ModeBounded
		}
		return ModeUnbounded
	}
	return c.Mode
}

// Validate checks the mode and, for bounded channels, the capacity.
func (c Config) Validate() error {
	switch c.mode() {
	case ModeBounded:
		if c.Capacity < 1 {
			return fmt.Errorf("channel %q: %w: got %d", c.Name, ErrInvalidCapacity, c.Capacity)
		}
	case ModeUnbounded:
	default:
		return fmt.Errorf("channel %q: unknown mode %q", c.Name, c.Mode)
	}
	return nil
}

// Validate checks the worker count and both channel configs.
func (c PoolConfig) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if err := c.Jobs.Validate(); err != nil {
		return fmt.Errorf("jobs: %w", err)
	}
	if err := c.Results.Validate(); err != nil {
		return fmt.Errorf("results: %w", err)
	}
	return nil
}

// ParseConfig decodes and validates a channel Config.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse channel config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads a channel Config from a YAML file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParsePoolConfig decodes and validates a PoolConfig.
func ParsePoolConfig(data []byte) (PoolConfig, error) {
	var cfg PoolConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return PoolConfig{}, fmt.Errorf("failed to parse pool config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return PoolConfig{}, err
	}
	return cfg, nil
}

// LoadPoolConfig reads a PoolConfig from a YAML file.
func LoadPoolConfig(path string) (PoolConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PoolConfig{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParsePoolConfig(data)
}

// New builds a channel from cfg. The config name is applied before opts, so
// an explicit WithName wins.
func New[T any](cfg Config, opts ...Option) (*Sender[T], *Receiver[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if cfg.Name != "" {
		opts = append([]Option{WithName(cfg.Name)}, opts...)
	}
	if cfg.mode() == ModeBounded {
		return NewBounded[T](cfg.Capacity, opts...)
	}
	s, r := NewUnbounded[T](opts...)
	return s, r, nil
}
