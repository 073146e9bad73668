// Package logging provides structured logging configuration for harmock.
//
// It wraps log/slog so the analyzer, the mock listeners and the CLI share one
// configuration for level and output format.
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatText,
//	})
//
//	logger.Info("listener started", "authority", "api.example.com", "port", 5000)
//
// Components accept a *slog.Logger through an option or setter and fall back
// to Nop when none is given.
//
// When Config.File is set, Open additionally writes JSON records to that file
// through a fan-out handler, so a run can keep a machine-readable log next to
// the console output.
package logging
