package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/fraudlens/internal/dataset"
	"github.com/ppiankov/fraudlens/internal/generate"
	"github.com/spf13/cobra"
)

var (
	genRows int
	genSeed int64
	genOut  string
	genJSON string
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic policy/claims dataset",
	Long: `Generate writes a synthetic auto-insurance portfolio in the column
layout the score command reads. Output is deterministic for a given seed,
so test fixtures and demos are reproducible.

Example:
  fraudlens generate --rows 10000 --out auto_insurance_data.csv
  fraudlens generate --rows 500 --seed 42 --out sample.csv --json sample.json`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().IntVar(&genRows, "rows", 10000, "number of policy records to generate")
	generateCmd.Flags().Int64Var(&genSeed, "seed", 0, "random seed (same seed, same table)")
	generateCmd.Flags().StringVar(&genOut, "out", "auto_insurance_data.csv", "output CSV path")
	generateCmd.Flags().StringVar(&genJSON, "json", "", "also write compact JSON rows to this path (optional)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	gen := generate.New(generate.Options{Rows: genRows, Seed: genSeed})
	records := gen.Generate()

	writer := dataset.NewWriter()
	if err := writer.WritePolicyFile(genOut, records); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}

	claims := 0
	for _, r := range records {
		if r.IsClaim() {
			claims++
		}
	}

	fmt.Fprintf(os.Stderr, "✓ Generated %d records (%d with claims) → %s\n", len(records), claims, genOut)

	if genJSON != "" {
		data, err := generate.CompactJSON(records)
		if err != nil {
			return fmt.Errorf("encode JSON: %w", err)
		}
		if err := os.WriteFile(genJSON, data, 0644); err != nil {
			return fmt.Errorf("write JSON: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote compact JSON → %s\n", genJSON)
	}

	return nil
}
