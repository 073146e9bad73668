package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/getmockd/harmock/pkg/cli/internal/output"
	"github.com/getmockd/harmock/pkg/config"
	"github.com/getmockd/harmock/pkg/correlation"
)

// analyzeFlags holds the analyze command's flag values.
type analyzeFlags struct {
	capture          string
	noResponseBody   bool
	mimeTypes        []string
	workers          int
	nonDeterministic bool
	timeout          int
}

func newAnalyzeCmd(g *globalFlags) *cobra.Command {
	f := &analyzeFlags{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Find values that need correlation in a capture",
		Long: `Scan every transaction of a capture for key=value tokens, find the values
that a non-200 response introduced and later requests echo back, and print
the extraction rules a script generator needs to capture them.

Each directive has the form
  Transaction_<n>,<target>,<left>delimiter<right>
where <target> is response.headers, response.request.headers or response.url.`,
		Example: `  # Print candidates and directives
  harmock analyze --capture login.har

  # Only scan JSON responses, emit machine-readable output
  harmock analyze --capture login.har --mime-types application/json --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, g, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.capture, "capture", "", "Capture file or glob pattern (doublestar syntax)")
	fl.BoolVar(&f.noResponseBody, "no-response-body", false, "Do not scan response bodies")
	fl.StringSliceVar(&f.mimeTypes, "mime-types", nil, "Response mime types to scan, matched exactly (default: built-in list)")
	fl.IntVar(&f.workers, "workers", 0, "Concurrent scans (0 = GOMAXPROCS)")
	fl.BoolVar(&f.nonDeterministic, "non-deterministic", false, "Keep merge order instead of normalising the result")
	fl.IntVar(&f.timeout, "timeout", 0, "Abort the analysis after this many seconds (0 = no limit)")
	return cmd
}

func (f *analyzeFlags) setters() []flagSetter {
	return []flagSetter{
		{"no-response-body", "analysis.includeResponseBody", func(c *config.Config) { c.Analysis.IncludeResponseBody = !f.noResponseBody }},
		{"mime-types", "analysis.mimeTypes", func(c *config.Config) { c.Analysis.MimeTypes = f.mimeTypes }},
		{"workers", "analysis.workers", func(c *config.Config) { c.Analysis.Workers = f.workers }},
		{"non-deterministic", "analysis.deterministic", func(c *config.Config) { c.Analysis.Deterministic = !f.nonDeterministic }},
		{"timeout", "analysis.timeout", func(c *config.Config) { c.Analysis.Timeout = f.timeout }},
	}
}

func runAnalyze(cmd *cobra.Command, g *globalFlags, f *analyzeFlags) error {
	cfg, err := g.loadConfig(cmd, f.setters()...)
	if err != nil {
		return err
	}
	log, closer, err := openLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	txs, err := loadCaptures(f.capture, log)
	if err != nil {
		return err
	}

	report, err := correlation.Analyze(cmd.Context(), txs, correlation.Options{
		IncludeResponseBody: cfg.Analysis.IncludeResponseBody,
		MimeTypes:           cfg.Analysis.MimeTypes,
		Workers:             cfg.Analysis.Workers,
		Deterministic:       cfg.Analysis.Deterministic,
		Timeout:             time.Duration(cfg.Analysis.Timeout) * time.Second,
		Logger:              log,
	})
	if err != nil {
		return err
	}

	if g.jsonOutput {
		return output.JSON(cmd.OutOrStdout(), analyzeOutput{
			Report:     report,
			Directives: report.Rules.Directives(),
		})
	}
	printReport(cmd.OutOrStdout(), report)
	return nil
}

// analyzeOutput is the JSON form of an analysis.
type analyzeOutput struct {
	*correlation.Report
	Directives []string `json:"directives"`
}

func printReport(w io.Writer, r *correlation.Report) {
	fmt.Fprintf(w, "Analysed %d transactions (%d scanned, %d skipped by mime type)\n\n",
		r.Total, r.Scanned, r.Skipped)

	if len(r.Candidates) == 0 {
		fmt.Fprintln(w, "No correlation candidates found.")
		return
	}

	lower := cases.Lower(language.English)
	tw := output.Table(w)
	fmt.Fprintln(tw, "NO\tVALUE\tCOUNT\tFIRST SEEN\tSECTION\tSTATUS\tBOUNDARY")
	for _, c := range r.Candidates {
		fmt.Fprintf(tw, "%d\t%s\t%d\tTransaction_%d\t%s\t%d\t%s\n",
			c.No, c.KeyValue, c.Count, c.Source.Transaction,
			lower.String(c.Source.Section.String()), c.Source.Status, c.Source.Boundary)
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "\nDirectives (%d):\n", len(r.Rules))
	for _, d := range r.Rules.Directives() {
		fmt.Fprintln(w, d)
	}
}
