package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/knowron/foss-api/internal/extract"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [path]",
	Short: "Run the full single-document flow: extract, classify, persist",
	Long: `classify runs the same flow the worker runs for one document: extract,
classify by dominant content, and upload the result when text-based. It
prints the resulting envelope, so the exit status reflects the envelope: a
success envelope exits 0, an error envelope exits 1.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, envelopes, err := buildService()
		if err != nil {
			return err
		}

		env := svc.ExtractDocument(cmd.Context(), args[0], envelopes)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(env); err != nil {
			return fmt.Errorf("encoding envelope: %w", err)
		}

		if e, ok := env.(extract.ErrorModel); ok {
			return fmt.Errorf("extraction failed for %s: %s", args[0], e.Message)
		}
		return nil
	},
}
