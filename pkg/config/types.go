package config

// Config is the complete harmock configuration.
type Config struct {
	Serve    ServeConfig    `yaml:"serve" json:"serve"`
	Analysis AnalysisConfig `yaml:"analysis" json:"analysis"`
	Log      LogConfig      `yaml:"log" json:"log"`

	// Sources tracks where each value came from, keyed by dotted YAML path.
	Sources map[string]string `yaml:"-" json:"-"`

	// SetFields lists the dotted keys explicitly present in a loaded file or
	// environment. Booleans need it to distinguish an explicit false.
	SetFields map[string]bool `yaml:"-" json:"-"`
}

// ServeConfig controls the mock listeners.
type ServeConfig struct {
	BasePort       int    `yaml:"basePort" json:"basePort"`
	ListenHost     string `yaml:"listenHost" json:"listenHost"`
	PreserveStatus bool   `yaml:"preserveStatus" json:"preserveStatus"`

	// Timeouts are in seconds.
	ReadTimeout     int `yaml:"readTimeout" json:"readTimeout"`
	WriteTimeout    int `yaml:"writeTimeout" json:"writeTimeout"`
	ShutdownTimeout int `yaml:"shutdownTimeout" json:"shutdownTimeout"`

	// MetricsPort serves Prometheus metrics when non-zero.
	MetricsPort int `yaml:"metricsPort" json:"metricsPort"`
}

// AnalysisConfig controls the correlation analysis.
type AnalysisConfig struct {
	IncludeResponseBody bool     `yaml:"includeResponseBody" json:"includeResponseBody"`
	MimeTypes           []string `yaml:"mimeTypes" json:"mimeTypes"`
	Workers             int      `yaml:"workers" json:"workers"`
	Deterministic       bool     `yaml:"deterministic" json:"deterministic"`

	// Timeout bounds the whole analysis phase in seconds. Zero disables it.
	Timeout int `yaml:"timeout" json:"timeout"`
}

// LogConfig controls operational logging.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	File   string `yaml:"file,omitempty" json:"file,omitempty"`
}

// Value sources.
const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)
