// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/insight-engine/internal/persona"
)

var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "List the available persona profiles",
	Long: `Personas prints the reader-role profiles the analyzer can score
against. Pass --profiles to inspect a custom profile file instead of
the built-in set.`,
	RunE: runPersonas,
}

func init() {
	personasCmd.Flags().String("profiles", "", "YAML file of persona profiles replacing the built-in set")
	personasCmd.Flags().Bool("json", false, "emit profiles as JSON")

	rootCmd.AddCommand(personasCmd)
}

func runPersonas(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("profiles")
	reg, err := persona.LoadRegistry(path)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(reg.Profiles())
	}

	fmt.Printf("%-22s  %-13s  %s\n", "Persona", "Expertise", "Keywords")
	fmt.Println(strings.Repeat("-", 80))
	for _, p := range reg.Profiles() {
		keywords := strings.Join(p.CustomKeywords, ", ")
		if len(keywords) > 42 {
			keywords = keywords[:39] + "..."
		}
		fmt.Printf("%-22s  %-13s  %s\n", p.PersonaType, p.ExpertiseLevel, keywords)
	}
	return nil
}
