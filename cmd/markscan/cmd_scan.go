package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dhamidi/markscan/config"
	"github.com/dhamidi/markscan/format"
	"github.com/dhamidi/markscan/markup"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newScanCmd(opts *globalOptions) *cobra.Command {
	var (
		timeout      time.Duration
		outputFormat string
		kinds        []string
		metricsFile  string
	)

	cmd := &cobra.Command{
		Use:   "scan <dir>",
		Short: "Report the links in every matching file under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if err := applyOverrides(cfg, outputFormat, kinds); err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			detector, err := cfg.NewDetector(reg)
			if err != nil {
				return err
			}

			s := &scanner{
				cfg:      cfg,
				detector: detector,
				timeout:  timeout,
				out:      cmd.OutOrStdout(),
				status:   cmd.ErrOrStderr(),
			}
			if err := s.run(cmd.Context(), args[0]); err != nil {
				return err
			}

			if metricsFile != "" {
				if err := prometheus.WriteToTextfile(metricsFile, reg); err != nil {
					return fmt.Errorf("write metrics: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 10*time.Second, "timeout per file; a file that takes longer is abandoned and reported as an error")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format: text or json")
	cmd.Flags().StringSliceVarP(&kinds, "kind", "k", nil, "link kinds to report: inline, autolink, bare")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write cache metrics in Prometheus text format to this file")

	return cmd
}

type scanner struct {
	cfg      *config.Config
	detector *markup.Detector
	timeout  time.Duration
	out      io.Writer
	status   io.Writer

	files  int
	links  int
	errors []string
}

func (s *scanner) run(ctx context.Context, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}

	enc, err := format.NewEncoder(s.cfg.Format, s.out)
	if err != nil {
		return err
	}

	for _, file := range s.collect(root) {
		report, err := s.scanFile(ctx, file)
		if err != nil {
			s.errors = append(s.errors, err.Error())
			continue
		}
		s.files++
		s.links += len(report.Links)
		if len(report.Links) == 0 {
			continue
		}
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("write report for %s: %w", file, err)
		}
	}

	fmt.Fprintf(s.status, "\n=== SCAN COMPLETE ===\n")
	fmt.Fprintf(s.status, "Files scanned: %d\n", s.files)
	fmt.Fprintf(s.status, "Links found: %d\n", s.links)
	fmt.Fprintf(s.status, "Errors: %d\n", len(s.errors))
	for _, e := range s.errors {
		fmt.Fprintf(s.status, "  - %s\n", e)
	}
	return nil
}

func (s *scanner) collect(root string) []string {
	var files []string
	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			s.errors = append(s.errors, fmt.Sprintf("walk %s: %v", p, err))
			return nil
		}
		if !info.IsDir() && s.cfg.Matches(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		s.errors = append(s.errors, fmt.Sprintf("walk %s: %v", root, err))
	}
	return files
}

// scanFile reads and scans one file. The scan itself checks ctx, so
// nothing keeps running once the timeout expires.
func (s *scanner) scanFile(ctx context.Context, path string) (*format.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	report, err := format.NewReportContext(ctx, path, string(data), s.detector)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return nil, fmt.Errorf("timeout scanning %s: %w", path, err)
	case err != nil:
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return report, nil
}
