package main

import (
	"errors"
	"net/http"

	"github.com/dhamidi/markscan/lsp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
)

func newLSPCmd(opts *globalOptions) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			detector, err := cfg.NewDetector(reg)
			if err != nil {
				return err
			}

			if metricsAddr != "" {
				go serveMetrics(metricsAddr, reg)
			}

			return lsp.NewServer(version, detector).RunStdio()
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve cache metrics on this address (e.g. localhost:9464)")

	return cmd
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	log := commonlog.GetLogger("markscan.cmd")

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))

	log.Infof("serving metrics on %s/metrics", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Errorf("metrics server: %s", err)
	}
}
