package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/fraudlens/internal/model"
	"github.com/ppiankov/fraudlens/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	rulesFile   string
	outScored   string
	outFlagged  string
	outJSON     string
	outMD       string
	timeout     time.Duration
	noFooter    bool
	llmEnabled  bool
	llmProvider string
	llmModel    string
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score <dataset.csv>",
	Short: "Score a claims dataset and write flagged-record artifacts",
	Long: `Score runs the detection rules over a single policy/claims table:
- Compute population loss-ratio statistics over claim records
- Evaluate five weighted rules per record against those baselines
- Flag records whose combined score crosses the configured cutoff
- Write the scored table, the flagged subset, and a summary report

Example:
  fraudlens score auto_insurance_data.csv
  fraudlens score data.csv --rules strict.yaml --json report.json --md report.md
  fraudlens score data.csv --llm openai --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	// Rule tuning
	scoreCmd.Flags().StringVar(&rulesFile, "rules", "", "rule tuning YAML (default: built-in tuning)")

	// Output flags
	scoreCmd.Flags().StringVar(&outScored, "scored", "", "output CSV path for the full scored table (optional)")
	scoreCmd.Flags().StringVar(&outFlagged, "flagged", "flagged_claims.csv", "output CSV path for flagged records")
	scoreCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	scoreCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	scoreCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	scoreCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall run timeout")

	// LLM flags
	scoreCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM summary generation")
	scoreCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	scoreCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runScore(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Scoring: %s\n", path)
		fmt.Fprintln(os.Stderr)
	}

	// Build configuration from flags
	cfg := model.DefaultConfig()
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter

	if rulesFile != "" {
		scoring, err := model.LoadScoringConfig(rulesFile)
		if err != nil {
			return err
		}
		cfg.Scoring = scoring
	}

	if llmEnabled {
		if err := configureLLM(&cfg.LLM); err != nil {
			return err
		}
	}

	// Create pipeline
	p := pipeline.NewPipeline(cfg)

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Loading dataset...\n")
	}

	report, err := p.ScoreDataset(ctx, path)
	if err != nil {
		return fmt.Errorf("score failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Scored %d records (%d claims)\n", report.Summary.TotalRecords, report.Summary.ClaimRecords)
		fmt.Fprintf(os.Stderr, "✓ Flagged %d records for review\n", report.Summary.FlaggedCount)
		if report.LLM != nil && report.LLM.Enabled {
			fmt.Fprintf(os.Stderr, "✓ Generated LLM summary using %s/%s\n", report.LLM.Provider, report.LLM.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	out := pipeline.Outputs{
		ScoredCSV:  outScored,
		FlaggedCSV: outFlagged,
		JSON:       outJSON,
		Markdown:   outMD,
	}
	if err := p.RenderReport(report, out); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}

// configureLLM fills provider settings from flags and the environment
func configureLLM(cfg *model.LLMConfig) error {
	cfg.Provider = llmProvider
	cfg.Model = llmModel

	switch llmProvider {
	case "openai":
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.BaseURL = baseURL
		}
	}
	return nil
}
