package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dhamidi/markscan/config"
	"github.com/dhamidi/markscan/format"
	"github.com/dhamidi/markscan/markup"
	"github.com/spf13/cobra"
)

func newLinksCmd(opts *globalOptions) *cobra.Command {
	var (
		outputFormat string
		kinds        []string
	)

	cmd := &cobra.Command{
		Use:   "links <file>",
		Short: "List the links in a file (use - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if err := applyOverrides(cfg, outputFormat, kinds); err != nil {
				return err
			}
			return runLinks(cmd.OutOrStdout(), cmd.InOrStdin(), args[0], cfg)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format: text or json")
	cmd.Flags().StringSliceVarP(&kinds, "kind", "k", nil, "link kinds to report: inline, autolink, bare")

	return cmd
}

// applyOverrides lets command line flags take precedence over the
// config file.
func applyOverrides(cfg *config.Config, outputFormat string, kinds []string) error {
	if outputFormat != "" {
		cfg.Format = outputFormat
	}
	if len(kinds) > 0 {
		cfg.Kinds = cfg.Kinds[:0]
		for _, name := range kinds {
			k, err := markup.ParseKind(name)
			if err != nil {
				return err
			}
			cfg.Kinds = append(cfg.Kinds, k)
		}
	}
	return cfg.Validate()
}

func runLinks(out io.Writer, in io.Reader, path string, cfg *config.Config) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	detector, err := cfg.NewDetector(nil)
	if err != nil {
		return err
	}

	enc, err := format.NewEncoder(cfg.Format, out)
	if err != nil {
		return err
	}
	return enc.Encode(format.NewReport(path, string(data), detector))
}
