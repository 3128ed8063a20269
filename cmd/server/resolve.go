package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Skufu/healthapi/internal/resolver"
)

func newResolveCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "resolve SYMPTOMS...",
		Short: "Resolve symptom text against the configured catalog",
		Long: `Resolve symptom text the same way POST /get-disease-info does and print the
matching diseases with their treatments. Arguments are joined with spaces.

Examples:
  # Diseases linked to any symptom containing "pain"
  healthapi resolve pain

  # Machine-readable output
  healthapi resolve joint pain -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}

			cat, pool, err := loadCatalog(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if pool != nil {
				defer pool.Close()
			}

			result, err := resolver.New(cat).Resolve(strings.Join(args, " "))
			if err != nil {
				return err
			}
			return displayResult(cmd.OutOrStdout(), result, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "human", "Output format (human, json, yaml)")
	return cmd
}

func displayResult(w io.Writer, result []resolver.DiseaseInfo, format string) error {
	switch format {
	case "json":
		output, err := json.MarshalIndent(map[string]any{"result": result}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(output))
	case "yaml":
		output, err := yaml.Marshal(map[string]any{"result": result})
		if err != nil {
			return err
		}
		fmt.Fprint(w, string(output))
	case "human":
		displayHuman(w, result)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	return nil
}

func displayHuman(w io.Writer, result []resolver.DiseaseInfo) {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	for i, d := range result {
		if i > 0 {
			fmt.Fprintln(w)
		}
		cyan.Fprintf(w, "%s (#%d)\n", d.DiseaseName, d.DiseaseID)
		if len(d.Treatments) == 0 {
			fmt.Fprintln(w, "   no treatments recorded")
			continue
		}
		for _, t := range d.Treatments {
			c := green
			if t.Type != "Allopathic" {
				c = yellow
			}
			c.Fprintf(w, "   [%s] ", t.Type)
			fmt.Fprintln(w, t.Description)
		}
	}
}
