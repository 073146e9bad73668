package correlation

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/getmockd/harmock/pkg/capture"
	"github.com/getmockd/harmock/pkg/logging"
)

// Options controls an analysis run.
type Options struct {
	IncludeResponseBody bool

	// MimeTypes restricts scanning to transactions whose response mime type
	// is listed verbatim. Empty scans everything.
	MimeTypes []string

	// Workers bounds concurrent scans. Zero uses GOMAXPROCS.
	Workers int

	// Deterministic normalises the aggregate after all scans complete so
	// results do not depend on scheduling.
	Deterministic bool

	// Timeout bounds the whole scan phase. Zero disables it.
	Timeout time.Duration

	Logger *slog.Logger
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{IncludeResponseBody: true, Deterministic: true}
}

// Report is the outcome of one analysis run.
type Report struct {
	ID string `json:"id"`

	// Total counts every transaction, including those the mime filter skipped.
	Total   int `json:"total"`
	Scanned int `json:"scanned"`
	Skipped int `json:"skipped"`

	Aggregator *Aggregator   `json:"-"`
	Candidates []Candidate   `json:"candidates"`
	Rules      RuleSet       `json:"rules"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Analyze scans every eligible transaction on a bounded worker pool, merges
// the records and builds the correlation rules once every scan has finished.
// A cancelled context or an expired timeout aborts the run.
func Analyze(ctx context.Context, txs []capture.Transaction, opts Options) (*Report, error) {
	start := time.Now()
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	report := &Report{ID: uuid.NewString(), Total: len(txs)}
	log = log.With("analysis_id", report.ID)
	agg := NewAggregator(capture.Statuses(txs))
	scanOpts := ScanOptions{IncludeResponseBody: opts.IncludeResponseBody}
	allowed := allowList(opts.MimeTypes)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range txs {
		tx := &txs[i]
		if allowed != nil {
			if _, ok := allowed[tx.Response.MimeType]; !ok {
				report.Skipped++
				log.Debug("skipping transaction", "transaction", tx.Index, "mime_type", tx.Response.MimeType)
				continue
			}
		}
		if gctx.Err() != nil {
			break
		}
		report.Scanned++
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			agg.Merge(Scan(tx, scanOpts))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analysis aborted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis aborted: %w", err)
	}

	if opts.Deterministic {
		agg.Normalize()
	}
	aggs := agg.Aggregates()
	report.Aggregator = agg
	report.Candidates = Candidates(aggs, report.Total)
	report.Rules = BuildRules(aggs, report.Total)
	report.Elapsed = time.Since(start)

	log.Info("analysis complete",
		"transactions", report.Total,
		"scanned", report.Scanned,
		"skipped", report.Skipped,
		"values", agg.Len(),
		"candidates", len(report.Candidates),
		"rules", len(report.Rules),
		"elapsed", report.Elapsed)
	return report, nil
}

func allowList(mimeTypes []string) map[string]struct{} {
	if len(mimeTypes) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(mimeTypes))
	for _, m := range mimeTypes {
		out[m] = struct{}{}
	}
	return out
}
