// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/insight-engine/internal/pipeline"
	"github.com/pdiddy/insight-engine/internal/store"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [pdf files...]",
	Short: "Analyze PDFs against a persona and job-to-be-done",
	Long: `Analyze runs the full pipeline over one or more PDF files: extraction
with backend fallback, heading-based segmentation, persona inference,
relevance ranking, cross-document aggregation, and content refinement.

The result is written as JSON to stdout or to --output. Documents that
fail extraction or exceed the per-document time ceiling are excluded
and reported; the run fails only when every document fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("persona", "", "persona hint (e.g. researcher, business_analyst); inferred from content when empty")
	analyzeCmd.Flags().String("job", "", "free-text job-to-be-done statement")
	analyzeCmd.Flags().Int("top-k", 0, "number of sections to emit (default from config)")
	analyzeCmd.Flags().Int("workers", 0, "maximum concurrent documents (default from config)")
	analyzeCmd.Flags().String("output", "", "write the result JSON to this file instead of stdout")
	analyzeCmd.Flags().Bool("save", false, "persist the run to the runs database")
	analyzeCmd.Flags().String("data-dir", "", "directory for the runs database (default from config)")
	analyzeCmd.Flags().String("profiles", "", "YAML file of persona profiles replacing the built-in set")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetInt("top-k"); v > 0 {
		cfg.Ranking.TopK = v
	}
	if v, _ := cmd.Flags().GetInt("workers"); v > 0 {
		cfg.MaxWorkers = v
	}
	if v, _ := cmd.Flags().GetString("data-dir"); v != "" {
		cfg.Store.DataDir = v
	}
	if v, _ := cmd.Flags().GetString("profiles"); v != "" {
		cfg.Persona.ProfilePath = v
	}

	req := pipeline.Request{}
	req.PersonaHint, _ = cmd.Flags().GetString("persona")
	req.JobToBeDone, _ = cmd.Flags().GetString("job")

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		req.Documents = append(req.Documents, pipeline.Document{
			Name: filepath.Base(path),
			Data: data,
		})
	}

	p, err := pipeline.New(cfg, logger)
	if err != nil {
		return err
	}

	report, err := p.Run(cmd.Context(), req)
	if err != nil {
		return err
	}

	for _, f := range report.Failures {
		fmt.Fprintf(os.Stderr, "excluded %s (%s stage): %v\n", f.Document, f.Stage, f.Err)
	}
	for _, d := range report.DegradedDocuments {
		fmt.Fprintf(os.Stderr, "note: %s segmented by page boundaries (no headings found)\n", d)
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		st, err := store.NewStore(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		runID, err := st.SaveRun(cmd.Context(), report)
		if err != nil {
			return err
		}
		path, err := st.SaveResultFile(cfg.Store.DataDir, runID, report.Result)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "saved run %d (%s)\n", runID, path)
	}

	out := os.Stdout
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report.Result)
}
