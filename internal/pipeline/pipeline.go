package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/fraudlens/internal/dataset"
	"github.com/ppiankov/fraudlens/internal/llm"
	"github.com/ppiankov/fraudlens/internal/model"
	"github.com/ppiankov/fraudlens/internal/score"
	"github.com/ppiankov/fraudlens/internal/validate"
)

// Pipeline orchestrates the complete scoring run
type Pipeline struct {
	loader     *dataset.Loader
	validator  *validate.Validator
	renderer   *Renderer
	summarizer *llm.Summarizer // Optional LLM summarizer (nil if disabled)
	config     *model.Config
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config) *Pipeline {
	var summarizer *llm.Summarizer
	if cfg.LLM.Provider != "" {
		llmConfig := llm.ConfigFromModel(cfg.LLM)
		s, err := llm.NewSummarizer(llmConfig)
		if err != nil {
			fmt.Printf("Warning: Failed to initialize LLM provider: %v\n", err)
		} else {
			summarizer = s
		}
	}

	return &Pipeline{
		loader:     dataset.NewLoader(),
		validator:  validate.NewValidator(cfg.Screening),
		renderer:   NewRenderer(cfg.Output.IncludeFooter, cfg.Output.TopFlagged),
		summarizer: summarizer,
		config:     cfg,
	}
}

// ScoreDataset loads and scores the dataset at path using the pipeline's
// configured rule tuning
func (p *Pipeline) ScoreDataset(ctx context.Context, path string) (*model.Report, error) {
	records, err := p.loader.Load(path)
	if err != nil {
		return nil, err
	}
	return p.ScoreRecords(ctx, path, records, p.config.Scoring)
}

// ScoreRecords screens and scores an already-loaded table under the given
// rule tuning. Configuration and validation failures abort before any
// artifact is produced; degenerate inputs surface as summary warnings only.
func (p *Pipeline) ScoreRecords(ctx context.Context, name string, records []model.PolicyRecord, scoring model.ScoringConfig) (*model.Report, error) {
	// 1. Fail fast on a broken tuning, before touching any row
	scorer, err := score.NewScorer(scoring)
	if err != nil {
		return nil, err
	}

	// 2. Plausibility screening
	screening, err := p.validator.Screen(records)
	if err != nil {
		if ve, ok := err.(*model.ValidationError); ok && ve.Dataset == "" {
			ve.Dataset = name
		}
		return nil, err
	}

	// 3. Population pre-pass + per-record rules
	result, err := scorer.Score(screening.Valid)
	if err != nil {
		return nil, err
	}

	// 4. Fold screening outcome into the summary
	result.Summary.TotalRecords = len(records)
	result.Summary.ExcludedRecords = screening.Excluded
	if screening.Excluded > 0 {
		result.Summary.ExclusionReasons = screening.Reasons
		result.Summary.Warnings = append(result.Summary.Warnings,
			fmt.Sprintf("%d records excluded by plausibility screening", screening.Excluded))
	}

	report := &model.Report{
		Dataset:  name,
		ScoredAt: time.Now().UTC(),
		Summary:  result.Summary,
		Scored:   result.Scored,
		Flagged:  result.Flagged,
		Config:   scoring,
	}

	// 5. Optional LLM narrative, generated AFTER scoring and never feeding
	// back into it
	if p.summarizer != nil && p.summarizer.IsEnabled() {
		llmSummary, err := p.summarizer.GenerateSummary(ctx, report)
		if err != nil {
			fmt.Printf("Warning: LLM summary generation failed: %v\n", err)
		} else if llmSummary != nil {
			report.LLM = llmSummary
		}
	}

	return report, nil
}

// Outputs names the artifact paths for a run; empty paths are skipped
type Outputs struct {
	ScoredCSV  string
	FlaggedCSV string
	JSON       string
	Markdown   string
}

// RenderReport writes the requested artifacts for a completed run. Progress
// lines are emitted when the configured output is verbose.
func (p *Pipeline) RenderReport(report *model.Report, out Outputs) error {
	verbose := p.config.Output.Verbose
	writer := dataset.NewWriter()

	if out.ScoredCSV != "" {
		if err := writer.WriteFile(out.ScoredCSV, report.Scored); err != nil {
			return fmt.Errorf("write scored table: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote scored table: %s\n", out.ScoredCSV)
		}
	}

	if out.FlaggedCSV != "" {
		if err := writer.WriteFile(out.FlaggedCSV, report.Flagged); err != nil {
			return fmt.Errorf("write flagged table: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote flagged table: %s\n", out.FlaggedCSV)
		}
	}

	if out.JSON != "" {
		if err := p.renderer.RenderJSON(report, out.JSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote JSON: %s\n", out.JSON)
		}
	}

	if out.Markdown != "" {
		if err := p.renderer.RenderMarkdown(report, out.Markdown); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote Markdown: %s\n", out.Markdown)
		}
	}

	// Render LLM summary to a separate file if present
	if report.LLM != nil && report.LLM.Enabled && out.Markdown != "" {
		llmMdPath := strings.TrimSuffix(out.Markdown, ".md") + ".llm.md"
		llmMarkdown := llm.RenderSeparateMarkdown(report.LLM)
		if err := p.renderer.RenderLLMMarkdown(llmMarkdown, llmMdPath); err != nil {
			fmt.Printf("Warning: Failed to write LLM summary: %v\n", err)
		} else if verbose {
			fmt.Printf("✓ Wrote LLM Summary: %s\n", llmMdPath)
		}
	}

	p.renderer.RenderSummary(report)

	return nil
}
