package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/ppiankov/fraudlens/internal/cache"
	"github.com/ppiankov/fraudlens/internal/dataset"
	"github.com/ppiankov/fraudlens/internal/model"
	"github.com/ppiankov/fraudlens/internal/pipeline"
	"github.com/ppiankov/fraudlens/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	rulesFiles   []string
	noCache      bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Score multiple datasets (and rule tunings) in parallel",
	Long: `Batch scores many datasets concurrently:
- Read dataset paths from an input file (one per line)
- Score every dataset under every supplied rule tuning
- Skip dataset/tuning pairs whose cached report is still valid
- Write individual reports and flagged-record tables per pair

Example:
  fraudlens batch datasets.txt
  fraudlens batch datasets.txt --concurrency 8 --output-dir ./reports
  fraudlens batch datasets.txt --rules loose.yaml --rules strict.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./fraudlens-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringArrayVar(&rulesFiles, "rules", nil, "rule tuning YAML (repeatable; default: built-in tuning)")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the report cache (force fresh scoring)")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// LLM flags
	batchCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM summary generation")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Fraudlens Batch Scoring\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	// Build configuration
	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = !noCache
	cfg.Concurrency.Workers = concurrency
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter

	if llmEnabled {
		if err := configureLLM(&cfg.LLM); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", llmProvider, llmModel)
	}

	// Resolve rule tunings
	tunings, err := loadTunings(cfg)
	if err != nil {
		return err
	}

	// Create output directory
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	// Create pipeline and report cache
	p := pipeline.NewPipeline(cfg)

	var reportCache cache.Cache
	if cfg.Cache.Enabled {
		reportCache, err = buildCache(cfg.Cache)
		if err != nil {
			fmt.Fprintf(os.Stderr, "⚠ Cache disabled: %v\n", err)
		}
	}

	processor := worker.NewBatchProcessor(p, reportCache, concurrency)

	fmt.Fprintf(os.Stderr, "⚙️  Reading dataset paths...\n")
	paths, err := worker.ReadPathsFromFile(file)
	if err != nil {
		return fmt.Errorf("read dataset paths: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Loaded %d datasets × %d tunings\n", len(paths), len(tunings))
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "⚙️  Scoring with %d workers...\n", concurrency)
	fmt.Fprintf(os.Stderr, "\n")

	results := processor.Process(ctx, paths, tunings)

	// Render results
	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter, cfg.Output.TopFlagged)
	writer := dataset.NewWriter()

	successCount := 0
	failureCount := 0
	cachedCount := 0

	for _, result := range results {
		label := fmt.Sprintf("%s [%s]", result.DatasetPath, result.TuningName)
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", label, result.Error)
			continue
		}

		successCount++
		if result.FromCache {
			cachedCount++
		}

		slug := outputSlug(result.DatasetPath, result.TuningName, len(tunings) > 1)
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")
		csvPath := filepath.Join(outputDir, slug+"_flagged.csv")

		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", label, err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Report, mdPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", label, err)
			continue
		}
		if err := writer.WriteFile(csvPath, result.Report.Flagged); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write flagged CSV: %v\n", label, err)
			continue
		}

		mark := "✓"
		if result.FromCache {
			mark = "✓ (cached)"
		}
		fmt.Fprintf(os.Stderr, "%s %s: %d/%d flagged\n", mark, label,
			result.Report.Summary.FlaggedCount, result.Report.Summary.ClaimRecords)
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d runs\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d (%d from cache)\n", successCount, cachedCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// loadTunings resolves the --rules files into named tunings, defaulting to
// the pipeline's built-in tuning
func loadTunings(cfg *model.Config) ([]worker.Tuning, error) {
	if len(rulesFiles) == 0 {
		return []worker.Tuning{{Name: "default", Scoring: cfg.Scoring}}, nil
	}

	var tunings []worker.Tuning
	for _, path := range rulesFiles {
		scoring, err := model.LoadScoringConfig(path)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		tunings = append(tunings, worker.Tuning{Name: name, Scoring: scoring})
	}
	return tunings, nil
}

// buildCache assembles the layered report cache
func buildCache(cfg model.CacheConfig) (cache.Cache, error) {
	dir := cfg.Dir
	if dir == "" {
		var err error
		dir, err = cache.DefaultDir()
		if err != nil {
			return nil, err
		}
	}

	ttl := time.Duration(cfg.TTLDays) * 24 * time.Hour
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	memory := cache.NewMemoryCache(ttl, 10*time.Minute)
	disk := cache.NewDiskCache(dir, ttl)
	return cache.NewLayeredCache(memory, disk), nil
}

// outputSlug builds a filesystem-safe artifact name for a dataset/tuning pair
func outputSlug(datasetPath, tuningName string, multiTuning bool) string {
	base := filepath.Base(datasetPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	slug := base
	if multiTuning {
		slug = base + "__" + tuningName
	}

	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
		"\"", "_", "<", "_", ">", "_", "|", "_", " ", "-",
	)
	slug = replacer.Replace(slug)

	if len(slug) > 100 {
		slug = slug[:100]
	}
	return slug
}
