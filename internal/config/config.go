package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	yaml "github.com/goccy/go-yaml"
	"github.com/inhies/go-bytesize"

	"tinythreads/internal/sched"
)

// Config mirrors tinythreads.yml
type Config struct {
	StackSize   string `yaml:"stack_size"`   // 4KB (by default)
	StackBudget string `yaml:"stack_budget"` // 64KB (by default)
	DelayUS     uint32 `yaml:"delay_us"`     // 500000 (by default)
	SplashUS    uint32 `yaml:"splash_us"`    // 2000000 (by default)
	Segments    int    `yaml:"segments"`     // 8 (by default)
	Layout      string `yaml:"layout"`       // part1 (by default)
	Banner      string `yaml:"banner"`
	LogLevel    string `yaml:"log_level"`
	TraceCSV    string `yaml:"trace_csv"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		StackSize:   "4KB",
		StackBudget: "64KB",
		DelayUS:     500000,
		SplashUS:    2000000,
		Segments:    8,
		Layout:      "part1",
		Banner:      "DT8025 - A3P3",
		LogLevel:    "info",
	}
}

// Load reads YAML and overrides defaults; empty path or a missing file means
// defaults only. A file that does not parse is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	// sanity clamps
	if cfg.Segments <= 0 {
		cfg.Segments = Default().Segments
	}
	if cfg.Layout == "" {
		cfg.Layout = Default().Layout
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = Default().LogLevel
	}
	if cfg.StackSize == "" {
		cfg.StackSize = Default().StackSize
	}
	if cfg.StackBudget == "" {
		cfg.StackBudget = Default().StackBudget
	}

	return cfg, nil
}

// Sched converts the stack settings into a scheduler configuration.
func (c Config) Sched() (sched.Config, error) {
	size, err := bytesize.Parse(c.StackSize)
	if err != nil {
		return sched.Config{}, fmt.Errorf("stack_size %q: %w", c.StackSize, err)
	}
	budget, err := bytesize.Parse(c.StackBudget)
	if err != nil {
		return sched.Config{}, fmt.Errorf("stack_budget %q: %w", c.StackBudget, err)
	}
	return sched.Config{StackSize: size, StackBudget: budget}, nil
}
