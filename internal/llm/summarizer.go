package llm

import (
	"context"
	"fmt"

	"github.com/ppiankov/fraudlens/internal/model"
)

// Summarizer generates optional narrative summaries of scoring reports.
// A summary is produced after scoring completes and never feeds back into
// scores or flags.
type Summarizer struct {
	provider Provider
	limiter  *Limiter
	config   Config
}

// NewSummarizer creates a summarizer from configuration. An empty provider
// name yields a disabled summarizer, not an error.
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, fmt.Errorf("create LLM provider: %w", err)
	}

	return &Summarizer{
		provider: provider,
		limiter:  NewLimiter(config.RequestsPerMinute),
		config:   config,
	}, nil
}

// IsEnabled reports whether a provider is configured
func (s *Summarizer) IsEnabled() bool {
	return s.provider != nil
}

// ProviderName returns the configured provider's name, or "" when disabled
func (s *Summarizer) ProviderName() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

// GenerateSummary produces an LLM summary of the report. Failures degrade to
// a summary object carrying warnings; the scoring run itself never fails
// because of the summarizer.
func (s *Summarizer) GenerateSummary(ctx context.Context, report *model.Report) (*model.LLMSummary, error) {
	if s.provider == nil {
		return nil, nil
	}

	if !s.provider.IsAvailable(ctx) {
		return &model.LLMSummary{
			Enabled:  false,
			Provider: s.provider.Name(),
			Warnings: []string{fmt.Sprintf("provider %s not available", s.provider.Name())},
		}, nil
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Report:    report,
		Model:     s.config.Model,
		MaxTokens: s.config.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generate summary: %w", err)
	}

	return &model.LLMSummary{
		Enabled:   true,
		Provider:  s.provider.Name(),
		Model:     resp.Model,
		SummaryMD: resp.Summary,
	}, nil
}

// RenderSeparateMarkdown renders the LLM summary as a standalone Markdown
// document, clearly marked as machine-generated narrative.
func RenderSeparateMarkdown(summary *model.LLMSummary) string {
	if summary == nil || !summary.Enabled {
		return ""
	}

	md := "# LLM Summary\n\n"
	md += fmt.Sprintf("> Generated by %s/%s. Narrative only: the numbers in the main report are authoritative.\n\n",
		summary.Provider, summary.Model)

	if summary.SummaryMD != "" {
		md += summary.SummaryMD + "\n"
	} else {
		md += "_No summary was generated._\n"
	}

	for _, w := range summary.Warnings {
		md += fmt.Sprintf("\n**Warning:** %s\n", w)
	}

	return md
}
