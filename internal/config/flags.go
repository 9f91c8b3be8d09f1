package config

import (
	"github.com/spf13/pflag"
)

const (
	FlagBaseURL       = "base-url"
	FlagTimeout       = "timeout"
	FlagRetries       = "retries"
	FlagRetryDelay    = "retry-delay"
	FlagPace          = "pace"
	FlagStageDelay    = "stage-delay"
	FlagSeed          = "seed"
	FlagOut           = "out"
	FlagLogLevel      = "log-level"
	FlagLogFormat     = "log-format"
	FlagTrace         = "trace"
	FlagTraceEndpoint = "trace-endpoint"
)

// RegisterFlags adds one flag per setting, showing the built-in defaults.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String(FlagBaseURL, d.BaseURL, "Gateway base URL")
	fs.Duration(FlagTimeout, d.Timeout, "Timeout per request attempt")
	fs.Int(FlagRetries, d.MaxAttempts, "Maximum attempts per request")
	fs.Duration(FlagRetryDelay, d.RetryDelay, "Delay between attempts")
	fs.Duration(FlagPace, d.PaceInterval, "Interval between meal/exercise creations (0 disables)")
	fs.Duration(FlagStageDelay, d.StageDelay, "Pause between stages (0 disables)")
	fs.Int64(FlagSeed, d.Seed, "Random seed for sample data (0 = time based)")
	fs.StringP(FlagOut, "o", d.OutPrefix, "Output filename prefix for the run report")
	fs.String(FlagLogLevel, d.LogLevel, "Log level (debug, info, warn, error, nop)")
	fs.String(FlagLogFormat, d.LogFormat, "Log format (console, json)")
	fs.String(FlagTrace, d.Trace, "Trace exporter (none, stdout, otlp)")
	fs.String(FlagTraceEndpoint, d.TraceEndpoint, "OTLP/HTTP collector endpoint")
}

// ApplyFlags overrides c with every flag the user set explicitly.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	var err error
	set := func(name string, apply func() error) {
		if err != nil || !fs.Changed(name) {
			return
		}
		err = apply()
	}

	set(FlagBaseURL, func() (e error) { c.BaseURL, e = fs.GetString(FlagBaseURL); return })
	set(FlagTimeout, func() (e error) { c.Timeout, e = fs.GetDuration(FlagTimeout); return })
	set(FlagRetries, func() (e error) { c.MaxAttempts, e = fs.GetInt(FlagRetries); return })
	set(FlagRetryDelay, func() (e error) { c.RetryDelay, e = fs.GetDuration(FlagRetryDelay); return })
	set(FlagPace, func() (e error) { c.PaceInterval, e = fs.GetDuration(FlagPace); return })
	set(FlagStageDelay, func() (e error) { c.StageDelay, e = fs.GetDuration(FlagStageDelay); return })
	set(FlagSeed, func() (e error) { c.Seed, e = fs.GetInt64(FlagSeed); return })
	set(FlagOut, func() (e error) { c.OutPrefix, e = fs.GetString(FlagOut); return })
	set(FlagLogLevel, func() (e error) { c.LogLevel, e = fs.GetString(FlagLogLevel); return })
	set(FlagLogFormat, func() (e error) { c.LogFormat, e = fs.GetString(FlagLogFormat); return })
	set(FlagTrace, func() (e error) { c.Trace, e = fs.GetString(FlagTrace); return })
	set(FlagTraceEndpoint, func() (e error) { c.TraceEndpoint, e = fs.GetString(FlagTraceEndpoint); return })
	return err
}
