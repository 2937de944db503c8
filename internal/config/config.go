// Package config handles intcode.toml profiles and environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"gitlab.com/efronlicht/enve"
	"go.uber.org/zap/zapcore"
)

// FileName is the profile name FindAndLoad looks for.
const FileName = "intcode.toml"

// Environment variables that override the profile.
const (
	EnvLogLevel = "INTCODE_LOG_LEVEL"
	EnvMaxSteps = "INTCODE_MAX_STEPS"
	EnvTimeout  = "INTCODE_TIMEOUT"
)

// Config represents an intcode.toml profile.
type Config struct {
	Program   Program   `toml:"program"`
	Limits    Limits    `toml:"limits"`
	Amplifier Amplifier `toml:"amplifier"`
	Log       Log       `toml:"log"`

	// Path is the file the profile was read from, empty for defaults.
	Path string `toml:"-"`
}

// Program names the program to run and its input.
type Program struct {
	Path   string  `toml:"path"`
	Inputs []int64 `toml:"inputs"`
}

// Limits bounds execution. Zero values mean unlimited.
type Limits struct {
	MaxSteps int64    `toml:"max_steps"`
	Timeout  Duration `toml:"timeout"`
}

// Amplifier configures the amp subcommand.
type Amplifier struct {
	Phases   []int64 `toml:"phases"`
	Signal   int64   `toml:"signal"`
	Feedback bool    `toml:"feedback"`
}

// Log configures logging.
type Log struct {
	Level zapcore.Level `toml:"level"`
}

// Duration is a time.Duration written as a string such as "5s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no profile exists.
func Default() *Config {
	return &Config{
		Amplifier: Amplifier{Phases: []int64{0, 1, 2, 3, 4}},
		Log:       Log{Level: zapcore.InfoLevel},
	}
}

// Load parses the profile at path on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	c.Path = path

	if c.Limits.MaxSteps < 0 {
		return nil, fmt.Errorf("%s: limits.max_steps must not be negative", path)
	}
	if c.Limits.Timeout.Duration < 0 {
		return nil, fmt.Errorf("%s: limits.timeout must not be negative", path)
	}

	// A relative program path is relative to the profile.
	if c.Program.Path != "" && !filepath.IsAbs(c.Program.Path) {
		c.Program.Path = filepath.Join(filepath.Dir(path), c.Program.Path)
	}

	return c, nil
}

// FindAndLoad walks up from startDir to find an intcode.toml file and loads
// it. Defaults are returned when none is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

// ApplyEnv overrides fields with any INTCODE_* environment variables that
// are set and valid.
func (c *Config) ApplyEnv() {
	c.Log.Level = enve.FromTextOr[zapcore.Level](EnvLogLevel, c.Log.Level)
	c.Limits.MaxSteps = enve.Or(parseSteps, EnvMaxSteps, c.Limits.MaxSteps)
	c.Limits.Timeout.Duration = enve.DurationOr(EnvTimeout, c.Limits.Timeout.Duration)
}

func parseSteps(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative step limit %d", n)
	}
	return n, nil
}
