package cli

import (
	"errors"
	"log/slog"

	"github.com/getmockd/harmock/pkg/capture"
)

var errCaptureRequired = errors.New("--capture is required")

// loadCaptures expands pattern and decodes every matching capture file.
// Recoverable decoding problems are logged and the remaining entries used; a
// capture that yields no entries at all is reported and treated as empty.
// Only a missing pattern, an invalid glob or an unreadable file is fatal.
func loadCaptures(pattern string, log *slog.Logger) ([]capture.Transaction, error) {
	if pattern == "" {
		return nil, errCaptureRequired
	}
	res, err := capture.LoadGlob(pattern)
	if err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		log.Warn("capture problem", "error", w)
	}
	if len(res.Transactions) == 0 {
		log.Warn("nothing to process", "error", ErrNoTransactions, "pattern", pattern)
		return nil, nil
	}
	log.Info("loaded capture",
		"pattern", pattern,
		"transactions", len(res.Transactions),
		"skipped_entries", res.Skipped)
	return res.Transactions, nil
}
