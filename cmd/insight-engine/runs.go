// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/insight-engine/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Browse stored analysis runs",
	Long: `Runs manages the local database of saved analysis results. Use
subcommands to list past runs, print a saved result, or search the
stored section text.`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs, newest first",
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the saved result of one run as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over stored section titles and refined text",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsSearch,
}

func init() {
	runsCmd.PersistentFlags().String("data-dir", "", "directory for the runs database (default from config)")
	runsSearchCmd.Flags().Int("limit", 20, "maximum number of search hits")

	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsSearchCmd)
	rootCmd.AddCommand(runsCmd)
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if v, _ := cmd.Flags().GetString("data-dir"); v != "" {
		cfg.Store.DataDir = v
	}
	return store.NewStore(cfg.Store)
}

func runRunsList(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(cmd.Context())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No stored runs.")
		return nil
	}

	fmt.Printf("%-5s  %-20s  %-18s  %-9s  %-9s  %s\n",
		"ID", "Created", "Persona", "Sections", "Failures", "Documents")
	fmt.Println(strings.Repeat("-", 100))
	for _, r := range runs {
		docs := strings.Join(r.Documents, ", ")
		if len(docs) > 36 {
			docs = docs[:33] + "..."
		}
		fmt.Printf("%-5d  %-20s  %-18s  %-9d  %-9d  %s\n",
			r.ID, r.CreatedAt, r.Persona, r.Sections, r.Failures, docs)
	}
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	runID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run id %q", args[0])
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	result, err := st.GetResult(cmd.Context(), runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func runRunsSearch(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	hits, err := st.SearchSections(cmd.Context(), args[0], limit)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("%-5s  %-24s  %-32s  %-5s  %s\n", "Run", "Document", "Title", "Page", "Refined")
	fmt.Println(strings.Repeat("-", 110))
	for _, h := range hits {
		title := h.Title
		if len(title) > 32 {
			title = title[:29] + "..."
		}
		refined := h.RefinedText
		if len(refined) > 38 {
			refined = refined[:35] + "..."
		}
		fmt.Printf("%-5d  %-24s  %-32s  %-5d  %s\n",
			h.RunID, h.Document, title, h.PageNumber, refined)
	}
	fmt.Printf("\n%d results\n", len(hits))
	return nil
}
