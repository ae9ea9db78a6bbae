package main

import (
	"fmt"
	"os"

	"github.com/dhamidi/markscan/config"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

const version = "0.1.0"

// globalOptions are the flags shared by every subcommand.
type globalOptions struct {
	configPath string
	verbose    int
	logFile    string
}

// loadConfig reads the file named by --config, or the nearest
// .markscan.toml above the working directory, and applies the logging
// flags on top of it.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.Load(o.configPath)
	} else {
		cfg, err = config.LoadOrDefault(".")
	}
	if err != nil {
		return nil, err
	}

	verbosity := cfg.Log.Verbosity + o.verbose
	logFile := cfg.Log.File
	if o.logFile != "" {
		logFile = o.logFile
	}
	if logFile != "" {
		commonlog.Configure(verbosity, &logFile)
	} else {
		commonlog.Configure(verbosity, nil)
	}

	return cfg, nil
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "markscan",
		Short:   "Find hyperlinks in markup text",
		Version: version,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: nearest "+config.FileName+")")
	rootCmd.PersistentFlags().CountVarP(&opts.verbose, "verbose", "v", "increase log verbosity")
	rootCmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(newLinksCmd(opts))
	rootCmd.AddCommand(newScanCmd(opts))
	rootCmd.AddCommand(newLSPCmd(opts))
	rootCmd.AddCommand(newGrammarCmd())

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
