package model

import "time"

// Report represents the complete scoring run output
type Report struct {
	Dataset  string    `json:"dataset"`   // Path or name of the scored dataset
	ScoredAt time.Time `json:"scored_at"` // When the run occurred

	Summary Summary        `json:"summary"`
	Scored  []ScoredRecord `json:"scored"`            // Full scored table
	Flagged []ScoredRecord `json:"flagged,omitempty"` // Subset with Flagged=true, highest score first

	Config ScoringConfig `json:"config"` // Exact tuning used for the run

	LLM *LLMSummary `json:"llm,omitempty"` // Optional LLM summary (separate, never affects scores)
}

// Summary contains the run-level statistics
type Summary struct {
	TotalRecords    int `json:"total_records"`    // Rows read from the dataset
	ExcludedRecords int `json:"excluded_records"` // Rows dropped by plausibility screening
	ClaimRecords    int `json:"claim_records"`    // Records with TotalLoss > 0

	FlaggedCount int     `json:"flagged_count"`
	FlagRate     float64 `json:"flag_rate"` // FlaggedCount / ClaimRecords, 0 when no claims

	RuleCounts   []RuleCount   `json:"rule_counts"`        // Trigger counts in rule order
	ScoreBuckets []ScoreBucket `json:"score_distribution"` // Flagged-record histogram, ascending score

	Population PopulationStats `json:"population"`

	// LossRatioSkipped counts claim records excluded from loss-ratio rules
	// because a zero premium leaves the ratio undefined.
	LossRatioSkipped int `json:"loss_ratio_skipped"`

	ExclusionReasons map[string]int `json:"exclusion_reasons,omitempty"`

	Warnings []string `json:"warnings,omitempty"` // Degenerate-input conditions, non-fatal
}

// RuleCount pairs a rule with its trigger count
type RuleCount struct {
	Rule  RuleID `json:"rule"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ScoreBucket is one bar of the risk-score histogram
type ScoreBucket struct {
	Score float64 `json:"score"`
	Count int     `json:"count"`
}

// PopulationStats holds the aggregates computed over claim records before
// any per-record rule runs. Defined is false when no claim record had a
// computable loss ratio.
type PopulationStats struct {
	Defined       bool    `json:"defined"`
	Samples       int     `json:"samples"`
	MeanLossRatio float64 `json:"mean_loss_ratio"`
	StdLossRatio  float64 `json:"std_loss_ratio"`
}

// LLMSummary contains an optional LLM-generated narrative of the report.
// It never affects scoring and is clearly separated from the numbers.
type LLMSummary struct {
	Enabled   bool     `json:"enabled"`
	Provider  string   `json:"provider,omitempty"`
	Model     string   `json:"model,omitempty"`
	SummaryMD string   `json:"summary_md,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}
