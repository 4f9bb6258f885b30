// Package config loads agentcell settings from YAML with defaulting and
// validation, and bridges them to engine and logging options.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/agentcell/core"
	"github.com/hupe1980/agentcell/engine"
	"github.com/hupe1980/agentcell/logging"
)

// Duration wraps time.Duration with YAML support for strings like "250ms"
// or "5s". Bare integers are nanoseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, perr := time.ParseDuration(s)
		if perr != nil {
			return fmt.Errorf("invalid duration %q: %w", s, perr)
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration value %q", value.Value)
	}
	*d = Duration(n)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// EngineConfig holds execution engine settings.
type EngineConfig struct {
	MaxRetries          int      `yaml:"max_retries"`
	Timeout             Duration `yaml:"timeout"`
	InitialBackoff      Duration `yaml:"initial_backoff"`
	MaxBackoff          Duration `yaml:"max_backoff"`
	CompensationEnabled *bool    `yaml:"compensation_enabled"`
	CompensationTimeout Duration `yaml:"compensation_timeout"`
}

// RunnerConfig holds runner strategy settings.
type RunnerConfig struct {
	// Strategy selects the run strategy: "simple" or "chain".
	Strategy string `yaml:"strategy"`
	MaxSteps int    `yaml:"max_steps"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is json or text.
	Format string `yaml:"format"`
}

// Config is the root configuration document.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Runner  RunnerConfig  `yaml:"runner"`
	Logging LoggingConfig `yaml:"logging"`
}

// Default returns the baseline configuration.
func Default() *Config {
	enabled := true
	return &Config{
		Engine: EngineConfig{
			MaxRetries:          1,
			Timeout:             Duration(30 * time.Second),
			InitialBackoff:      Duration(250 * time.Millisecond),
			MaxBackoff:          Duration(engine.BackoffCap),
			CompensationEnabled: &enabled,
		},
		Runner: RunnerConfig{
			Strategy: "chain",
			MaxSteps: 100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load parses YAML data over the defaults and validates the result.
func Load(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, core.WrapError(core.KindConfig, "failed to parse config", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile reads and parses the YAML file at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.WrapError(core.KindConfig, fmt.Sprintf("failed to read config file %s", path), err)
	}
	return Load(data)
}

// applyDefaults fills fields an explicit document zeroed out where a zero
// value is not meaningful.
func (c *Config) applyDefaults() {
	if c.Engine.CompensationEnabled == nil {
		enabled := true
		c.Engine.CompensationEnabled = &enabled
	}
	if c.Runner.Strategy == "" {
		c.Runner.Strategy = "chain"
	}
	if c.Runner.MaxSteps <= 0 {
		c.Runner.MaxSteps = 100
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

// Validate checks the configuration for inconsistent values.
func (c *Config) Validate() error {
	if c.Engine.MaxRetries < 0 {
		return core.NewError(core.KindConfig, "engine.max_retries must not be negative")
	}
	if c.Engine.Timeout < 0 {
		return core.NewError(core.KindConfig, "engine.timeout must not be negative")
	}
	if c.Engine.InitialBackoff < 0 {
		return core.NewError(core.KindConfig, "engine.initial_backoff must not be negative")
	}
	if c.Engine.MaxBackoff.Std() > engine.BackoffCap {
		return core.Errorf(core.KindConfig, "engine.max_backoff exceeds the %s ceiling", engine.BackoffCap)
	}

	switch c.Runner.Strategy {
	case "simple", "chain":
	default:
		return core.Errorf(core.KindConfig, "unknown runner strategy %q", c.Runner.Strategy)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return core.Errorf(core.KindConfig, "unknown log level %q", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return core.Errorf(core.KindConfig, "unknown log format %q", c.Logging.Format)
	}

	return nil
}

// EngineOptions bridges the engine section to engine.New options.
func (c *Config) EngineOptions() func(o *engine.Options) {
	return func(o *engine.Options) {
		o.MaxRetries = c.Engine.MaxRetries
		o.Timeout = c.Engine.Timeout.Std()
		o.InitialBackoff = c.Engine.InitialBackoff.Std()
		o.MaxBackoff = c.Engine.MaxBackoff.Std()
		if c.Engine.CompensationEnabled != nil {
			o.CompensationEnabled = *c.Engine.CompensationEnabled
		}
		o.CompensationTimeout = c.Engine.CompensationTimeout.Std()
	}
}

// LogLevel maps the configured level to the logging enum.
func (c *Config) LogLevel() logging.LogLevel {
	switch c.Logging.Level {
	case "debug":
		return logging.LogLevelDebug
	case "warn":
		return logging.LogLevelWarn
	case "error":
		return logging.LogLevelError
	default:
		return logging.LogLevelInfo
	}
}

// LoggerConfig bridges the logging section to a logger configuration.
func (c *Config) LoggerConfig() *logging.LoggerConfig {
	lc := logging.DefaultLoggerConfig()
	lc.Level = c.LogLevel()
	lc.Format = c.Logging.Format
	return lc
}
