package config

// DefaultBasePort is the first port assigned to a mocked authority.
const DefaultBasePort = 5000

// DefaultListenHost keeps the mock listeners on the loopback interface.
const DefaultListenHost = "127.0.0.1"

// DefaultReadTimeout is the default read timeout in seconds.
const DefaultReadTimeout = 30

// DefaultWriteTimeout is the default write timeout in seconds.
const DefaultWriteTimeout = 30

// DefaultShutdownTimeout is how long listeners get to drain, in seconds.
const DefaultShutdownTimeout = 5

// DefaultMimeTypes is the response mime type allow-list for analysis.
// "other" is kept as a literal entry for compatibility with existing
// configurations.
var DefaultMimeTypes = []string{
	"application/json",
	"text/html",
	"text/plain",
	"application/x-www-form-urlencoded",
	"text/plain;charset=UTF-8",
	"other",
}

var defaultKeys = []string{
	"serve.basePort",
	"serve.listenHost",
	"serve.preserveStatus",
	"serve.readTimeout",
	"serve.writeTimeout",
	"serve.shutdownTimeout",
	"serve.metricsPort",
	"analysis.includeResponseBody",
	"analysis.mimeTypes",
	"analysis.workers",
	"analysis.deterministic",
	"analysis.timeout",
	"log.level",
	"log.format",
}

// NewDefault creates a Config with default values.
func NewDefault() *Config {
	cfg := &Config{
		Serve: ServeConfig{
			BasePort:        DefaultBasePort,
			ListenHost:      DefaultListenHost,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Analysis: AnalysisConfig{
			IncludeResponseBody: true,
			MimeTypes:           append([]string(nil), DefaultMimeTypes...),
			Deterministic:       true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Sources: make(map[string]string, len(defaultKeys)),
	}
	for _, k := range defaultKeys {
		cfg.Sources[k] = SourceDefault
	}
	return cfg
}
