package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Serve.BasePort > 0 && c.Serve.BasePort <= 65535,
		"basePort %d is out of range (1-65535)", c.Serve.BasePort)
	check(c.Serve.MetricsPort >= 0 && c.Serve.MetricsPort <= 65535,
		"metricsPort %d is out of range (0-65535)", c.Serve.MetricsPort)
	check(c.Serve.ReadTimeout >= 0 && c.Serve.ReadTimeout <= 3600,
		"readTimeout %d is out of range (0-3600)", c.Serve.ReadTimeout)
	check(c.Serve.WriteTimeout >= 0 && c.Serve.WriteTimeout <= 3600,
		"writeTimeout %d is out of range (0-3600)", c.Serve.WriteTimeout)
	check(c.Serve.ShutdownTimeout >= 0 && c.Serve.ShutdownTimeout <= 300,
		"shutdownTimeout %d is out of range (0-300)", c.Serve.ShutdownTimeout)
	check(c.Analysis.Workers >= 0, "workers %d cannot be negative", c.Analysis.Workers)
	check(c.Analysis.Timeout >= 0, "analysis timeout %d cannot be negative", c.Analysis.Timeout)

	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log format %q must be text or json", c.Log.Format))
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log level %q is not recognised", c.Log.Level))
	}

	return errors.Join(errs...)
}
