// Package config loads the simulator configuration from defaults, an optional
// YAML file, the environment and command-line flags, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"fitsim/internal/logging"
)

// Trace exporter modes.
const (
	TraceNone   = "none"
	TraceStdout = "stdout"
	TraceOTLP   = "otlp"
)

// noDefaultTag names a struct tag that never exists, so a second env pass
// only applies variables that are actually set.
const noDefaultTag = "fitsimNoDefault"

type Config struct {
	BaseURL       string        `env:"FITSIM_BASE_URL" envDefault:"http://localhost:3000" mapstructure:"base_url"`
	Timeout       time.Duration `env:"FITSIM_TIMEOUT" envDefault:"10s" mapstructure:"timeout"`
	MaxAttempts   int           `env:"FITSIM_RETRY_ATTEMPTS" envDefault:"3" mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `env:"FITSIM_RETRY_DELAY" envDefault:"2s" mapstructure:"retry_delay"`
	PaceInterval  time.Duration `env:"FITSIM_PACE_INTERVAL" envDefault:"1s" mapstructure:"pace_interval"`
	StageDelay    time.Duration `env:"FITSIM_STAGE_DELAY" envDefault:"2s" mapstructure:"stage_delay"`
	Seed          int64         `env:"FITSIM_SEED" envDefault:"0" mapstructure:"seed"`
	OutPrefix     string        `env:"FITSIM_OUT" mapstructure:"out"`
	LogLevel      string        `env:"FITSIM_LOG_LEVEL" envDefault:"warn" mapstructure:"log_level"`
	LogFormat     string        `env:"FITSIM_LOG_FORMAT" envDefault:"console" mapstructure:"log_format"`
	Trace         string        `env:"FITSIM_TRACE" envDefault:"none" mapstructure:"trace"`
	TraceEndpoint string        `env:"FITSIM_TRACE_ENDPOINT" envDefault:"localhost:4318" mapstructure:"trace_endpoint"`
}

// Sources names the optional files consulted by Load.
type Sources struct {
	// ConfigFile is an explicit YAML file. When empty $HOME/.fitsim.yaml is
	// used if it exists.
	ConfigFile string
	// EnvFile is a dotenv file loaded into the process environment without
	// overriding variables that are already set.
	EnvFile string
}

// Default returns the built-in defaults.
func Default() Config {
	var cfg Config
	// An empty environment map makes env apply envDefault values only.
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}}); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return cfg
}

// Load resolves the configuration from defaults, file and environment.
// Flags are applied separately with ApplyFlags.
func Load(src Sources) (Config, error) {
	cfg := Default()

	if err := readFile(&cfg, src.ConfigFile); err != nil {
		return cfg, err
	}

	if src.EnvFile != "" {
		if err := godotenv.Load(src.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("load env file: %w", err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{DefaultValueTagName: noDefaultTag}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func readFile(cfg *Config, path string) error {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		v.AddConfigPath(home)
		v.SetConfigType("yaml")
		v.SetConfigName(".fitsim")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("decode config file: %w", err)
	}
	return nil
}

// Validate rejects configurations the simulator cannot run with.
func (c Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("base url %q must be an absolute http(s) url", c.BaseURL))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if c.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("retry attempts must be at least 1, got %d", c.MaxAttempts))
	}
	if c.RetryDelay < 0 {
		errs = append(errs, fmt.Errorf("retry delay must not be negative, got %s", c.RetryDelay))
	}
	if c.PaceInterval < 0 {
		errs = append(errs, fmt.Errorf("pace interval must not be negative, got %s", c.PaceInterval))
	}
	if c.StageDelay < 0 {
		errs = append(errs, fmt.Errorf("stage delay must not be negative, got %s", c.StageDelay))
	}
	if !logging.ValidLevel(c.LogLevel) {
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	if !logging.ValidFormat(c.LogFormat) {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	switch strings.ToLower(c.Trace) {
	case TraceNone, TraceStdout, TraceOTLP:
	default:
		errs = append(errs, fmt.Errorf("unknown trace mode %q", c.Trace))
	}
	return errors.Join(errs...)
}
