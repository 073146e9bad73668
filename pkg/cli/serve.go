package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/getmockd/harmock/pkg/cli/internal/output"
	"github.com/getmockd/harmock/pkg/config"
	"github.com/getmockd/harmock/pkg/engine"
	"github.com/getmockd/harmock/pkg/mock"
)

// serveFlags holds the serve command's flag values.
type serveFlags struct {
	capture        string
	basePort       int
	host           string
	preserveStatus bool
	metricsPort    int
	readTimeout    int
	writeTimeout   int
}

func newServeCmd(g *globalFlags) *cobra.Command {
	f := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a capture as mock endpoints (foreground)",
		Long: `Serve every recorded authority of a capture on its own port.

Authorities are assigned consecutive ports from --base-port in the order they
first appear in the capture. Each listener answers a request with the first
recorded exchange whose request fields and headers match it, substituting the
live request values into the recorded response.`,
		Example: `  # Serve a single capture
  harmock serve --capture login.har

  # Serve every capture below a directory, starting at port 7000
  harmock serve --capture 'captures/**/*.har' --base-port 7000

  # Expose Prometheus metrics
  harmock serve --capture login.har --metrics-port 9100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, g, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.capture, "capture", "", "Capture file or glob pattern (doublestar syntax)")
	fl.IntVarP(&f.basePort, "base-port", "p", config.DefaultBasePort, "First port assigned to a recorded authority")
	fl.StringVar(&f.host, "host", config.DefaultListenHost, "Interface the listeners bind to")
	fl.BoolVar(&f.preserveStatus, "preserve-status", false, "Answer with the recorded status instead of 200")
	fl.IntVar(&f.metricsPort, "metrics-port", 0, "Serve Prometheus metrics on this port (0 = disabled)")
	fl.IntVar(&f.readTimeout, "read-timeout", config.DefaultReadTimeout, "Read timeout in seconds")
	fl.IntVar(&f.writeTimeout, "write-timeout", config.DefaultWriteTimeout, "Write timeout in seconds")
	return cmd
}

func (f *serveFlags) setters() []flagSetter {
	return []flagSetter{
		{"base-port", "serve.basePort", func(c *config.Config) { c.Serve.BasePort = f.basePort }},
		{"host", "serve.listenHost", func(c *config.Config) { c.Serve.ListenHost = f.host }},
		{"preserve-status", "serve.preserveStatus", func(c *config.Config) { c.Serve.PreserveStatus = f.preserveStatus }},
		{"metrics-port", "serve.metricsPort", func(c *config.Config) { c.Serve.MetricsPort = f.metricsPort }},
		{"read-timeout", "serve.readTimeout", func(c *config.Config) { c.Serve.ReadTimeout = f.readTimeout }},
		{"write-timeout", "serve.writeTimeout", func(c *config.Config) { c.Serve.WriteTimeout = f.writeTimeout }},
	}
}

func runServe(cmd *cobra.Command, g *globalFlags, f *serveFlags) error {
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
	if len(txs) == 0 {
		log.Warn("no exemplars to serve")
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to serve: the capture contains no transactions.")
		return nil
	}
	idx := mock.BuildIndex(txs, cfg.Serve.BasePort)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sup := engine.NewSupervisor(idx, &cfg.Serve, engine.WithLogger(log))
	done := make(chan error, 1)
	go func() { done <- sup.Run(ctx) }()

	select {
	case err := <-done:
		return err
	case <-sup.Ready():
	}

	out := cmd.OutOrStdout()
	if g.jsonOutput {
		if err := output.JSON(out, sup.Listeners()); err != nil {
			log.Warn("failed to write listener table", "error", err)
		}
	} else {
		printListeners(out, sup.Listeners(), sup.MetricsAddr())
	}

	// Run returns nil once a signal or the parent context stops it.
	return <-done
}

func printListeners(w io.Writer, listeners []engine.Listener, metricsAddr string) {
	tw := output.Table(w)
	fmt.Fprintln(tw, "AUTHORITY\tPORT\tEXEMPLARS\tADDRESS")
	for _, l := range listeners {
		fmt.Fprintf(tw, "%s\t%d\t%d\thttp://%s\n", l.Authority, l.Port, l.Exemplars, l.Addr)
	}
	_ = tw.Flush()
	if metricsAddr != "" {
		fmt.Fprintf(w, "\nMetrics: http://%s/metrics\n", metricsAddr)
	}
	fmt.Fprintln(w, "\nPress Ctrl+C to stop")
}
