package config

// field describes how one setting is copied between configs.
type field struct {
	key     string
	apply   func(dst, src *Config)
	nonZero func(src *Config) bool
}

var fields = []field{
	{"serve.basePort",
		func(d, s *Config) { d.Serve.BasePort = s.Serve.BasePort },
		func(s *Config) bool { return s.Serve.BasePort != 0 }},
	{"serve.listenHost",
		func(d, s *Config) { d.Serve.ListenHost = s.Serve.ListenHost },
		func(s *Config) bool { return s.Serve.ListenHost != "" }},
	{"serve.preserveStatus",
		func(d, s *Config) { d.Serve.PreserveStatus = s.Serve.PreserveStatus },
		func(s *Config) bool { return s.Serve.PreserveStatus }},
	{"serve.readTimeout",
		func(d, s *Config) { d.Serve.ReadTimeout = s.Serve.ReadTimeout },
		func(s *Config) bool { return s.Serve.ReadTimeout != 0 }},
	{"serve.writeTimeout",
		func(d, s *Config) { d.Serve.WriteTimeout = s.Serve.WriteTimeout },
		func(s *Config) bool { return s.Serve.WriteTimeout != 0 }},
	{"serve.shutdownTimeout",
		func(d, s *Config) { d.Serve.ShutdownTimeout = s.Serve.ShutdownTimeout },
		func(s *Config) bool { return s.Serve.ShutdownTimeout != 0 }},
	{"serve.metricsPort",
		func(d, s *Config) { d.Serve.MetricsPort = s.Serve.MetricsPort },
		func(s *Config) bool { return s.Serve.MetricsPort != 0 }},
	{"analysis.includeResponseBody",
		func(d, s *Config) { d.Analysis.IncludeResponseBody = s.Analysis.IncludeResponseBody },
		func(s *Config) bool { return s.Analysis.IncludeResponseBody }},
	{"analysis.mimeTypes",
		func(d, s *Config) { d.Analysis.MimeTypes = append([]string(nil), s.Analysis.MimeTypes...) },
		func(s *Config) bool { return len(s.Analysis.MimeTypes) > 0 }},
	{"analysis.workers",
		func(d, s *Config) { d.Analysis.Workers = s.Analysis.Workers },
		func(s *Config) bool { return s.Analysis.Workers != 0 }},
	{"analysis.deterministic",
		func(d, s *Config) { d.Analysis.Deterministic = s.Analysis.Deterministic },
		func(s *Config) bool { return s.Analysis.Deterministic }},
	{"analysis.timeout",
		func(d, s *Config) { d.Analysis.Timeout = s.Analysis.Timeout },
		func(s *Config) bool { return s.Analysis.Timeout != 0 }},
	{"log.level",
		func(d, s *Config) { d.Log.Level = s.Log.Level },
		func(s *Config) bool { return s.Log.Level != "" }},
	{"log.format",
		func(d, s *Config) { d.Log.Format = s.Log.Format },
		func(s *Config) bool { return s.Log.Format != "" }},
	{"log.file",
		func(d, s *Config) { d.Log.File = s.Log.File },
		func(s *Config) bool { return s.Log.File != "" }},
}

// MergeConfig merges source into target, updating source tracking.
//
// When source.SetFields is populated (file, env and flag configs) exactly the
// listed keys are applied, so an explicit false or zero wins. Otherwise only
// non-zero values are applied.
func MergeConfig(target, source *Config, sourceType string) {
	if source == nil {
		return
	}
	if target.Sources == nil {
		target.Sources = make(map[string]string)
	}
	for _, f := range fields {
		if !isSet(source, f) {
			continue
		}
		f.apply(target, source)
		target.Sources[f.key] = sourceType
	}
}

func isSet(cfg *Config, f field) bool {
	if cfg.SetFields != nil {
		return cfg.SetFields[f.key]
	}
	return f.nonZero(cfg)
}

// Keys returns every dotted configuration key in display order.
func Keys() []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.key
	}
	return keys
}
