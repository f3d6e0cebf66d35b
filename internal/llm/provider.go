package llm

import (
	"context"
	"fmt"

	"github.com/ppiankov/fraudlens/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize generates a narrative summary of a scoring report
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for LLM summarization
type SummarizeRequest struct {
	// Report is the completed scoring report to summarize. Only aggregate
	// numbers reach the prompt; row-level data never does.
	Report *model.Report

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// SummarizeResponse contains the LLM's summary output
type SummarizeResponse struct {
	// Summary is the generated summary text
	Summary string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI-compatible endpoints
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, OpenAI-compatible proxies)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// RequestsPerMinute throttles API calls across a batch sweep
	RequestsPerMinute float64

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:          "", // Disabled by default
		Model:             "",
		Timeout:           30,
		MaxTokens:         1000,
		RequestsPerMinute: 20,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(modelConfig model.LLMConfig) Config {
	return Config{
		Provider:          modelConfig.Provider,
		Model:             modelConfig.Model,
		APIKey:            modelConfig.APIKey,
		BaseURL:           modelConfig.BaseURL,
		Timeout:           modelConfig.Timeout,
		MaxTokens:         modelConfig.MaxTokens,
		RequestsPerMinute: modelConfig.RequestsPerMinute,
		HTTPProxy:         modelConfig.HTTPProxy,
		HTTPSProxy:        modelConfig.HTTPSProxy,
		NoProxy:           modelConfig.NoProxy,
	}
}

// BuildPrompt constructs the default summarization prompt. The prompt is
// built only from the report's computed aggregates so the narrative cannot
// drift from what the scorer actually found.
func BuildPrompt(report *model.Report) string {
	s := report.Summary

	prompt := fmt.Sprintf(`You are summarizing a rule-based fraud/anomaly screening report for an auto insurance claims portfolio.

CRITICAL RULES:
1. Flags mark records for manual review; they are NOT determinations of fraud. Never call a policyholder fraudulent.
2. Use ONLY the numbers below. Do not invent statistics, causes, or record details.
3. If a rule did not run (degenerate input), state that plainly.

Report:
- Dataset: %s
- Total records: %d
- Claim records analysed: %d
- Records flagged for review: %d (%.1f%% of claims)
`, report.Dataset, s.TotalRecords, s.ClaimRecords, s.FlaggedCount, s.FlagRate*100)

	prompt += "\nFlags by rule:\n"
	for _, rc := range s.RuleCounts {
		prompt += fmt.Sprintf("- %s: %d\n", rc.Label, rc.Count)
	}

	if s.Population.Defined {
		prompt += fmt.Sprintf("\nPopulation baseline: mean loss ratio %.4f, std dev %.4f over %d claim records.\n",
			s.Population.MeanLossRatio, s.Population.StdLossRatio, s.Population.Samples)
	}

	for _, w := range s.Warnings {
		prompt += fmt.Sprintf("\nWarning: %s", w)
	}

	prompt += "\n\nProvide a 3-4 sentence summary of the screening outcome for a claims review team."

	return prompt
}
