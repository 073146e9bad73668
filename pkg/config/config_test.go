package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewDefault(t *testing.T) {
	cfg := NewDefault()

	assert.Equal(t, 5000, cfg.Serve.BasePort)
	assert.Equal(t, "127.0.0.1", cfg.Serve.ListenHost)
	assert.False(t, cfg.Serve.PreserveStatus)
	assert.True(t, cfg.Analysis.IncludeResponseBody)
	assert.True(t, cfg.Analysis.Deterministic)
	assert.Equal(t, DefaultMimeTypes, cfg.Analysis.MimeTypes)
	assert.Equal(t, SourceDefault, cfg.Sources["serve.basePort"])
	require.NoError(t, cfg.Validate())

	// Defaults are copied, not shared.
	cfg.Analysis.MimeTypes[0] = "changed"
	assert.Equal(t, "application/json", DefaultMimeTypes[0])
}

func TestParse(t *testing.T) {
	t.Run("records explicit keys", func(t *testing.T) {
		cfg, err := Parse([]byte(`
serve:
  basePort: 7000
  preserveStatus: true
analysis:
  deterministic: false
  mimeTypes: [application/json]
`))
		require.NoError(t, err)
		assert.Equal(t, 7000, cfg.Serve.BasePort)
		assert.True(t, cfg.SetFields["serve.basePort"])
		assert.True(t, cfg.SetFields["analysis.deterministic"])
		assert.False(t, cfg.SetFields["serve.listenHost"])
	})

	t.Run("empty document", func(t *testing.T) {
		cfg, err := Parse(nil)
		require.NoError(t, err)
		assert.Empty(t, cfg.SetFields)
	})

	t.Run("unknown keys are rejected", func(t *testing.T) {
		_, err := Parse([]byte("serve:\n  basePrt: 7000\n"))
		var cerr *ConfigError
		require.ErrorAs(t, err, &cerr)
		assert.Contains(t, cerr.Error(), "basePrt")
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := Parse([]byte("serve: [unterminated"))
		var cerr *ConfigError
		require.ErrorAs(t, err, &cerr)
	})
}

func TestMergeConfig(t *testing.T) {
	t.Run("explicit false overrides default true", func(t *testing.T) {
		cfg := NewDefault()
		src, err := Parse([]byte("analysis:\n  deterministic: false\n  includeResponseBody: false\n"))
		require.NoError(t, err)

		MergeConfig(cfg, src, SourceFile)

		assert.False(t, cfg.Analysis.Deterministic)
		assert.False(t, cfg.Analysis.IncludeResponseBody)
		assert.Equal(t, SourceFile, cfg.Sources["analysis.deterministic"])
		assert.Equal(t, SourceDefault, cfg.Sources["serve.basePort"])
	})

	t.Run("programmatic source merges non-zero values", func(t *testing.T) {
		cfg := NewDefault()
		MergeConfig(cfg, &Config{Serve: ServeConfig{MetricsPort: 9100}}, SourceFlag)

		assert.Equal(t, 9100, cfg.Serve.MetricsPort)
		assert.Equal(t, 5000, cfg.Serve.BasePort)
		assert.True(t, cfg.Analysis.Deterministic)
		assert.Equal(t, SourceFlag, cfg.Sources["serve.metricsPort"])
	})

	t.Run("nil source", func(t *testing.T) {
		cfg := NewDefault()
		MergeConfig(cfg, nil, SourceFlag)
		assert.Equal(t, 5000, cfg.Serve.BasePort)
	})
}

func TestLoadEnvConfig(t *testing.T) {
	cfg, err := LoadEnvConfig(envMap(map[string]string{
		"HARMOCK_BASE_PORT":       "6100",
		"HARMOCK_PRESERVE_STATUS": "true",
		"HARMOCK_MIME_TYPES":      "application/json, text/plain,,",
		"HARMOCK_LOG_LEVEL":       "debug",
		"HARMOCK_WORKERS":         "   ",
	}))
	require.NoError(t, err)

	assert.Equal(t, 6100, cfg.Serve.BasePort)
	assert.True(t, cfg.Serve.PreserveStatus)
	assert.Equal(t, []string{"application/json", "text/plain"}, cfg.Analysis.MimeTypes)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.SetFields["analysis.workers"])

	_, err = LoadEnvConfig(envMap(map[string]string{"HARMOCK_BASE_PORT": "abc"}))
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "HARMOCK_BASE_PORT", cerr.Path)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "custom.yaml", `
serve:
  basePort: 7000
  listenHost: 0.0.0.0
log:
  level: warn
`)

	cfg, err := Load(LoadOptions{
		Path:      path,
		LookupEnv: envMap(map[string]string{"HARMOCK_BASE_PORT": "8000"}),
	})
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Serve.BasePort)
	assert.Equal(t, SourceEnv, cfg.Sources["serve.basePort"])
	assert.Equal(t, "0.0.0.0", cfg.Serve.ListenHost)
	assert.Equal(t, SourceFile, cfg.Sources["serve.listenHost"])
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, SourceDefault, cfg.Sources["serve.readTimeout"])

	MergeConfig(cfg, &Config{Serve: ServeConfig{BasePort: 9000}, SetFields: map[string]bool{"serve.basePort": true}}, SourceFlag)
	assert.Equal(t, 9000, cfg.Serve.BasePort)
	assert.Equal(t, SourceFlag, cfg.Sources["serve.basePort"])
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(LoadOptions{Path: filepath.Join(t.TempDir(), "absent.yaml"), LookupEnv: envMap(nil)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFindConfigIn(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, findConfigIn(dir))

	writeFile(t, dir, ".harmock.yml", "serve: {}\n")
	assert.Equal(t, filepath.Join(dir, ".harmock.yml"), findConfigIn(dir))

	writeFile(t, dir, ".harmock.yaml", "serve: {}\n")
	assert.Equal(t, filepath.Join(dir, ".harmock.yaml"), findConfigIn(dir), ".yaml is preferred")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(*Config) {}, ""},
		{"base port too high", func(c *Config) { c.Serve.BasePort = 70000 }, "basePort 70000 is out of range"},
		{"base port zero", func(c *Config) { c.Serve.BasePort = 0 }, "basePort 0 is out of range"},
		{"metrics port negative", func(c *Config) { c.Serve.MetricsPort = -1 }, "metricsPort -1 is out of range"},
		{"read timeout too high", func(c *Config) { c.Serve.ReadTimeout = 9999 }, "readTimeout 9999 is out of range"},
		{"negative workers", func(c *Config) { c.Analysis.Workers = -2 }, "workers -2 cannot be negative"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, `log format "xml"`},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }, `log level "trace"`},
		{"mixed case level", func(c *Config) { c.Log.Level = "DEBUG" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefault()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestKeys(t *testing.T) {
	keys := Keys()
	assert.Contains(t, keys, "serve.basePort")
	assert.Contains(t, keys, "log.file")
	assert.Len(t, keys, len(fields))
}
