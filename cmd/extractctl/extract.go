package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/knowron/foss-api/internal/config"
	"github.com/knowron/foss-api/internal/extract"
	"github.com/knowron/foss-api/internal/observability"
	"github.com/knowron/foss-api/internal/pdf"
	"github.com/knowron/foss-api/internal/storage"
)

var extractCmd = &cobra.Command{
	Use:   "extract [paths...]",
	Short: "Extract one or more documents and print the results as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := buildService()
		if err != nil {
			return err
		}

		bar := newBar(len(args), "extracting")

		// Progress ticks per finished document, not per input, so partial
		// failures still advance the bar.
		results := make([]extract.Result, 0, len(args))
		for _, path := range args {
			results = append(results, svc.Extract(cmd.Context(), path))
			_ = bar.Add(1)
		}
		_ = bar.Finish()

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("encoding results: %w", err)
		}

		failures := 0
		for _, r := range results {
			if r.Failure != nil {
				failures++
			}
		}
		if failures > 0 {
			return fmt.Errorf("%d of %d documents failed", failures, len(args))
		}
		return nil
	},
}

// buildService wires a service from the CLI configuration. The CLI never
// uses a result cache: operators expect every run to hit the store.
func buildService() (*extract.Service, *extract.EnvelopeBuilder, error) {
	if cfgFile == "" {
		cfgFile = os.Getenv("CONFIG_PATH")
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	logger := observability.NewLogger(observability.LogConfig{
		Level:       level,
		Format:      "console",
		Output:      os.Stderr,
		ServiceName: "extractctl",
	})

	gateway := storage.NewHTTPGateway(storage.HTTPConfig{
		Endpoint:        cfg.Storage.Endpoint,
		DocsBucket:      cfg.Storage.DocsBucket,
		ExtractedBucket: cfg.Storage.ExtractedBucket,
		Timeout:         cfg.Storage.RequestTimeout,
	})

	svc := extract.NewService(gateway, pdf.NewFitzEngine(), nil, logger, extract.ServiceConfig{
		Version: cfg.Extraction.Version,
		Workers: cfg.Extraction.MaxConcurrentDocs,
	})
	envelopes := extract.NewEnvelopeBuilder(logger, cfg.Observability.ServiceName, cfg.Environment)
	return svc, envelopes, nil
}

func newBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(
		total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
	)
}
