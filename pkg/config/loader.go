package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LocalConfigFileNames are the names searched in the working directory, in order.
var LocalConfigFileNames = []string{".harmock.yaml", ".harmock.yml"}

// ConfigError represents a configuration error with location info.
type ConfigError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	path := e.Path
	if path == "" {
		path = "config"
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d, column %d): %s", path, e.Line, e.Column, e.Message)
	}
	return path + ": " + e.Message
}

func (e *ConfigError) Unwrap() error { return e.Err }

// FindLocalConfig searches the working directory for a config file.
// It returns an empty path when none exists.
func FindLocalConfig() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return findConfigIn(cwd), nil
}

func findConfigIn(dir string) string {
	for _, name := range LocalConfigFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// LoadConfigFile loads a partial Config from a YAML file. Only keys present
// in the file are recorded in SetFields. Unknown keys are rejected.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		var cerr *ConfigError
		if errors.As(err, &cerr) {
			cerr.Path = path
		}
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML config data.
func Parse(data []byte) (*Config, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &ConfigError{Message: err.Error(), Err: err}
	}

	cfg := &Config{
		Sources:   make(map[string]string),
		SetFields: make(map[string]bool),
	}
	if len(root.Content) == 0 {
		return cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, &ConfigError{Message: strings.TrimPrefix(err.Error(), "yaml: "), Err: err}
	}

	collectKeys(root.Content[0], "", cfg.SetFields)
	return cfg, nil
}

// collectKeys records the dotted paths of the two-level mapping in node.
func collectKeys(node *yaml.Node, prefix string, out map[string]bool) {
	if node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if prefix != "" {
			key = prefix + "." + key
		}
		val := node.Content[i+1]
		if prefix == "" && val.Kind == yaml.MappingNode {
			collectKeys(val, key, out)
			continue
		}
		out[key] = true
	}
}

// LoadOptions controls Load.
type LoadOptions struct {
	// Path is an explicit config file. When empty the working directory is
	// searched and a missing file is not an error.
	Path string

	// LookupEnv reads environment variables. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load builds a Config from defaults, the config file and the environment.
// Flags are merged by the caller with MergeConfig and SourceFlag.
func Load(opts LoadOptions) (*Config, error) {
	cfg := NewDefault()

	path := opts.Path
	if path == "" {
		found, err := FindLocalConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to locate config file: %w", err)
		}
		path = found
	}
	if path != "" {
		fileCfg, err := LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
		MergeConfig(cfg, fileCfg, SourceFile)
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	envCfg, err := LoadEnvConfig(lookup)
	if err != nil {
		return nil, err
	}
	MergeConfig(cfg, envCfg, SourceEnv)

	return cfg, nil
}
