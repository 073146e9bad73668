package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/getmockd/harmock/pkg/config"
	"github.com/getmockd/harmock/pkg/logging"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configFile string
	logLevel   string
	logFormat  string
	logFile    string
	jsonOutput bool

	lookupEnv func(string) (string, bool)
}

// NewRootCommand builds the harmock command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(os.LookupEnv)
}

func newRootCommand(lookupEnv func(string) (string, bool)) *cobra.Command {
	g := &globalFlags{lookupEnv: lookupEnv}

	rootCmd := &cobra.Command{
		Use:   "harmock",
		Short: "harmock replays HTTP captures as mock endpoints and finds correlated values",
		Long: `harmock reads HTTP Archive (HAR) captures and either serves them back as
mock endpoints, one listener per recorded authority, or analyses them for
dynamic values that a load-testing script has to correlate.

Configuration can be provided via flags, HARMOCK_* environment variables, or
a .harmock.yaml file in the working directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&g.configFile, "config", "c", "", "Path to config file (default: ./.harmock.yaml)")
	pf.StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&g.logFormat, "log-format", "", "Log format (text, json)")
	pf.StringVar(&g.logFile, "log-file", "", "Also write JSON logs to this file")
	pf.BoolVar(&g.jsonOutput, "json", false, "Output command results in JSON format")

	rootCmd.AddCommand(newServeCmd(g), newAnalyzeCmd(g), newConfigCmd(g), newVersionCmd(g))
	return rootCmd
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// flagSetter copies one changed command-line flag into a flag-level Config.
type flagSetter struct {
	flag  string
	key   string
	apply func(cfg *config.Config)
}

// loadConfig resolves the effective configuration: defaults, then the config
// file, then the environment, then every flag the user actually passed.
func (g *globalFlags) loadConfig(cmd *cobra.Command, setters ...flagSetter) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{Path: g.configFile, LookupEnv: g.lookupEnv})
	if err != nil {
		return nil, err
	}

	flagCfg := &config.Config{SetFields: make(map[string]bool)}
	setters = append(setters,
		flagSetter{"log-level", "log.level", func(c *config.Config) { c.Log.Level = g.logLevel }},
		flagSetter{"log-format", "log.format", func(c *config.Config) { c.Log.Format = g.logFormat }},
		flagSetter{"log-file", "log.file", func(c *config.Config) { c.Log.File = g.logFile }},
	)
	for _, s := range setters {
		if !cmd.Flags().Changed(s.flag) {
			continue
		}
		s.apply(flagCfg)
		flagCfg.SetFields[s.key] = true
	}
	config.MergeConfig(cfg, flagCfg, config.SourceFlag)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openLogger builds the operational logger. Logs go to stderr so command
// output on stdout stays machine readable.
func openLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, io.Closer, error) {
	return logging.Open(logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: logging.ParseFormat(cfg.Log.Format),
		Output: cmd.ErrOrStderr(),
		File:   cfg.Log.File,
	})
}
