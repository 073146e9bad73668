package cli

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/harmock/pkg/cli/internal/output"
	"github.com/getmockd/harmock/pkg/config"
)

func newConfigCmd(g *globalFlags) *cobra.Command {
	var showSources bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show effective configuration",
		Long: `Display the configuration harmock would run with after merging defaults,
the config file, HARMOCK_* environment variables and global flags.`,
		Example: `  # Show resolved config as YAML
  harmock config

  # Show where every value came from
  harmock config --sources`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			switch {
			case g.jsonOutput:
				return output.JSON(w, cfg)
			case showSources:
				return printSources(w, cfg)
			default:
				return printConfigAsYAML(w, cfg)
			}
		},
	}
	cmd.Flags().BoolVar(&showSources, "sources", false, "Show the source of every value")
	return cmd
}

// printConfigAsYAML outputs the config as YAML.
func printConfigAsYAML(w io.Writer, cfg *config.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func printSources(w io.Writer, cfg *config.Config) error {
	tw := output.Table(w)
	fmt.Fprintln(tw, "KEY\tVALUE\tSOURCE")
	for _, key := range config.Keys() {
		source := cfg.Sources[key]
		if source == "" {
			source = config.SourceDefault
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", key, lookupKey(cfg, key), source)
	}
	return tw.Flush()
}

// lookupKey renders the value behind a dotted YAML key.
func lookupKey(cfg *config.Config, key string) string {
	v := reflect.ValueOf(*cfg)
	for _, part := range strings.Split(key, ".") {
		v = fieldByYAMLName(v, part)
		if !v.IsValid() {
			return ""
		}
	}
	if v.Kind() == reflect.Slice {
		parts := make([]string, v.Len())
		for i := range parts {
			parts[i] = fmt.Sprint(v.Index(i).Interface())
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v.Interface())
}

func fieldByYAMLName(v reflect.Value, name string) reflect.Value {
	if v.Kind() != reflect.Struct {
		return reflect.Value{}
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag, _, _ := strings.Cut(t.Field(i).Tag.Get("yaml"), ",")
		if tag == name {
			return v.Field(i)
		}
	}
	return reflect.Value{}
}
