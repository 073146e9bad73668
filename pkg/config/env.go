package config

import (
	"strconv"
	"strings"
)

// EnvPrefix prefixes every environment variable harmock reads.
const EnvPrefix = "HARMOCK_"

type envVar struct {
	name string
	key  string
	set  func(c *Config, v string) error
}

var envVars = []envVar{
	{"BASE_PORT", "serve.basePort", intSetter(func(c *Config) *int { return &c.Serve.BasePort })},
	{"LISTEN_HOST", "serve.listenHost", func(c *Config, v string) error { c.Serve.ListenHost = v; return nil }},
	{"PRESERVE_STATUS", "serve.preserveStatus", boolSetter(func(c *Config) *bool { return &c.Serve.PreserveStatus })},
	{"READ_TIMEOUT", "serve.readTimeout", intSetter(func(c *Config) *int { return &c.Serve.ReadTimeout })},
	{"WRITE_TIMEOUT", "serve.writeTimeout", intSetter(func(c *Config) *int { return &c.Serve.WriteTimeout })},
	{"SHUTDOWN_TIMEOUT", "serve.shutdownTimeout", intSetter(func(c *Config) *int { return &c.Serve.ShutdownTimeout })},
	{"METRICS_PORT", "serve.metricsPort", intSetter(func(c *Config) *int { return &c.Serve.MetricsPort })},
	{"INCLUDE_RESPONSE_BODY", "analysis.includeResponseBody", boolSetter(func(c *Config) *bool { return &c.Analysis.IncludeResponseBody })},
	{"MIME_TYPES", "analysis.mimeTypes", func(c *Config, v string) error { c.Analysis.MimeTypes = SplitList(v); return nil }},
	{"WORKERS", "analysis.workers", intSetter(func(c *Config) *int { return &c.Analysis.Workers })},
	{"DETERMINISTIC", "analysis.deterministic", boolSetter(func(c *Config) *bool { return &c.Analysis.Deterministic })},
	{"ANALYSIS_TIMEOUT", "analysis.timeout", intSetter(func(c *Config) *int { return &c.Analysis.Timeout })},
	{"LOG_LEVEL", "log.level", func(c *Config, v string) error { c.Log.Level = v; return nil }},
	{"LOG_FORMAT", "log.format", func(c *Config, v string) error { c.Log.Format = v; return nil }},
	{"LOG_FILE", "log.file", func(c *Config, v string) error { c.Log.File = v; return nil }},
}

// LoadEnvConfig reads HARMOCK_* variables into a partial Config.
// Empty variables are ignored.
func LoadEnvConfig(lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{SetFields: make(map[string]bool)}
	for _, ev := range envVars {
		v, ok := lookup(EnvPrefix + ev.name)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		if err := ev.set(cfg, strings.TrimSpace(v)); err != nil {
			return nil, &ConfigError{Path: EnvPrefix + ev.name, Message: err.Error(), Err: err}
		}
		cfg.SetFields[ev.key] = true
	}
	return cfg, nil
}

// SplitList splits a comma separated list, dropping empty items.
func SplitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func intSetter(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func boolSetter(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}
