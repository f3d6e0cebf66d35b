package model

import "fmt"

// Config is the full runtime configuration tree
type Config struct {
	Scoring     ScoringConfig     `yaml:"scoring" json:"scoring"`
	Screening   ScreeningConfig   `yaml:"screening" json:"screening"`
	Cache       CacheConfig       `yaml:"cache" json:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
	Output      OutputConfig      `yaml:"output" json:"output"`
	LLM         LLMConfig         `yaml:"llm" json:"llm"`
}

// ScoringConfig holds the rule weights and thresholds. Weights are
// configuration, not constants: every rule must have an explicit entry and
// the same scorer can run under different tunings in one process.
type ScoringConfig struct {
	Weights map[RuleID]float64 `yaml:"weights" json:"weights"`

	Thresholds Thresholds `yaml:"thresholds" json:"thresholds"`

	// FlagThreshold marks a record for review when risk_score >= threshold
	FlagThreshold float64 `yaml:"flag_threshold" json:"flag_threshold"`
}

// Thresholds holds the per-rule trigger parameters
type Thresholds struct {
	// Rule 1: loss ratio above this multiple of the claim-population mean
	LossRatioMeanMultiple float64 `yaml:"loss_ratio_mean_multiple" json:"loss_ratio_mean_multiple"`

	// Rule 2: loss ratio deviating from the population mean by more than
	// this many population standard deviations
	OutlierStdDevs float64 `yaml:"outlier_std_devs" json:"outlier_std_devs"`

	// Rule 3: model year at or after NewCarMinYear with loss above the floor
	NewCarMinYear   int     `yaml:"new_car_min_year" json:"new_car_min_year"`
	NewCarLossFloor float64 `yaml:"new_car_loss_floor" json:"new_car_loss_floor"`

	// Rule 4: driver younger than the cutoff with loss above the floor
	YoungDriverMaxAge    int     `yaml:"young_driver_max_age" json:"young_driver_max_age"`
	YoungDriverLossFloor float64 `yaml:"young_driver_loss_floor" json:"young_driver_loss_floor"`

	// Rule 5: loss exceeding this multiple of the annual premium
	PremiumLossMultiple float64 `yaml:"premium_loss_multiple" json:"premium_loss_multiple"`
}

// ScreeningConfig bounds the plausibility screen applied before scoring.
// Rows outside the bounds are excluded and counted, not fatal.
type ScreeningConfig struct {
	MinAge       int `yaml:"min_age" json:"min_age"`
	MaxAge       int `yaml:"max_age" json:"max_age"`
	MinModelYear int `yaml:"min_model_year" json:"min_model_year"`
	MaxModelYear int `yaml:"max_model_year" json:"max_model_year"`
}

// CacheConfig controls the scored-report cache
type CacheConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Dir     string `yaml:"dir" json:"dir"`         // Disk cache directory ("" = ~/.fraudlens/cache)
	TTLDays int    `yaml:"ttl_days" json:"ttl_days"`
}

// ConcurrencyConfig controls batch processing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" json:"workers"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" json:"verbose"`
	IncludeFooter bool `yaml:"include_footer" json:"include_footer"`
	TopFlagged    int  `yaml:"top_flagged" json:"top_flagged"` // Rows shown in the Markdown table
}

// LLMConfig holds the optional summarizer settings
type LLMConfig struct {
	Provider          string  `yaml:"provider" json:"provider"` // "openai", "ollama", "" = disabled
	Model             string  `yaml:"model" json:"model"`
	APIKey            string  `yaml:"-" json:"-"` // Never serialized; comes from the environment
	BaseURL           string  `yaml:"base_url" json:"base_url"`
	Timeout           int     `yaml:"timeout" json:"timeout"` // Seconds
	MaxTokens         int     `yaml:"max_tokens" json:"max_tokens"`
	RequestsPerMinute float64 `yaml:"requests_per_minute" json:"requests_per_minute"`
	HTTPProxy         string  `yaml:"http_proxy" json:"http_proxy"`
	HTTPSProxy        string  `yaml:"https_proxy" json:"https_proxy"`
	NoProxy           string  `yaml:"no_proxy" json:"no_proxy"`
}

// DefaultConfig returns the built-in defaults. Rule tunings are demo-derived
// starting points, expected to be recalibrated against real portfolios.
func DefaultConfig() *Config {
	return &Config{
		Scoring:   DefaultScoringConfig(),
		Screening: ScreeningConfig{MinAge: 16, MaxAge: 100, MinModelYear: 1950, MaxModelYear: 2100},
		Cache: CacheConfig{
			Enabled: true,
			TTLDays: 7,
		},
		Concurrency: ConcurrencyConfig{Workers: 4},
		Output: OutputConfig{
			IncludeFooter: true,
			TopFlagged:    30,
		},
		LLM: LLMConfig{
			Timeout:           30,
			MaxTokens:         1000,
			RequestsPerMinute: 20,
		},
	}
}

// DefaultScoringConfig returns the default rule tuning
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Weights: map[RuleID]float64{
			RuleExtremeLossRatio:    3,
			RuleStatisticalOutlier:  2,
			RuleNewCarHighLoss:      2,
			RuleYoungDriverExtreme:  2,
			RulePremiumLossMismatch: 1,
		},
		Thresholds: Thresholds{
			LossRatioMeanMultiple: 3,
			OutlierStdDevs:        3,
			NewCarMinYear:         2022,
			NewCarLossFloor:       10_000,
			YoungDriverMaxAge:     25,
			YoungDriverLossFloor:  15_000,
			PremiumLossMultiple:   10,
		},
		FlagThreshold: 1,
	}
}

// Validate checks the scoring configuration before any row is scored.
// A missing or negative weight entry is a configuration error.
func (c ScoringConfig) Validate() error {
	if c.Weights == nil {
		return &ConfigurationError{Reason: "no rule weights configured"}
	}
	for _, id := range AllRules {
		w, ok := c.Weights[id]
		if !ok {
			return &ConfigurationError{Reason: fmt.Sprintf("missing weight for rule %q", id)}
		}
		if w < 0 {
			return &ConfigurationError{Reason: fmt.Sprintf("negative weight %v for rule %q", w, id)}
		}
	}
	for id := range c.Weights {
		if !knownRule(id) {
			return &ConfigurationError{Reason: fmt.Sprintf("unknown rule %q in weights", id)}
		}
	}
	t := c.Thresholds
	if t.LossRatioMeanMultiple <= 0 {
		return &ConfigurationError{Reason: "loss_ratio_mean_multiple must be positive"}
	}
	if t.OutlierStdDevs <= 0 {
		return &ConfigurationError{Reason: "outlier_std_devs must be positive"}
	}
	if t.PremiumLossMultiple <= 0 {
		return &ConfigurationError{Reason: "premium_loss_multiple must be positive"}
	}
	return nil
}

func knownRule(id RuleID) bool {
	for _, r := range AllRules {
		if r == id {
			return true
		}
	}
	return false
}
