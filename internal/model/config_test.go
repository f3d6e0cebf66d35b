package model

import (
	"errors"
	"strings"
	"testing"
)

func TestScoringConfig_Validate_Defaults(t *testing.T) {
	cfg := DefaultScoringConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate, got: %v", err)
	}
}

func TestScoringConfig_Validate_MissingWeight(t *testing.T) {
	cfg := DefaultScoringConfig()
	delete(cfg.Weights, RuleNewCarHighLoss)

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected error for missing weight")
	}

	var cerr *ConfigurationError
	if !errors.As(err, &cerr) {
		t.Fatalf("Expected ConfigurationError, got %T", err)
	}
	if !strings.Contains(cerr.Reason, string(RuleNewCarHighLoss)) {
		t.Errorf("Error should name the missing rule, got: %s", cerr.Reason)
	}
}

func TestScoringConfig_Validate_NegativeWeight(t *testing.T) {
	cfg := DefaultScoringConfig()
	cfg.Weights[RulePremiumLossMismatch] = -1

	var cerr *ConfigurationError
	if err := cfg.Validate(); !errors.As(err, &cerr) {
		t.Errorf("Expected ConfigurationError for negative weight, got %v", err)
	}
}

func TestScoringConfig_Validate_ZeroWeightAllowed(t *testing.T) {
	// Zero disables a rule's contribution but is a legal tuning
	cfg := DefaultScoringConfig()
	cfg.Weights[RuleStatisticalOutlier] = 0

	if err := cfg.Validate(); err != nil {
		t.Errorf("Zero weight should validate, got: %v", err)
	}
}

func TestScoringConfig_Validate_UnknownRule(t *testing.T) {
	cfg := DefaultScoringConfig()
	cfg.Weights["made_up_rule"] = 1

	var cerr *ConfigurationError
	if err := cfg.Validate(); !errors.As(err, &cerr) {
		t.Errorf("Expected ConfigurationError for unknown rule, got %v", err)
	}
}

func TestScoringConfig_Validate_NonPositiveThresholds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ScoringConfig)
	}{
		{"zero mean multiple", func(c *ScoringConfig) { c.Thresholds.LossRatioMeanMultiple = 0 }},
		{"negative std devs", func(c *ScoringConfig) { c.Thresholds.OutlierStdDevs = -1 }},
		{"zero premium multiple", func(c *ScoringConfig) { c.Thresholds.PremiumLossMultiple = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultScoringConfig()
			tt.mutate(&cfg)

			var cerr *ConfigurationError
			if err := cfg.Validate(); !errors.As(err, &cerr) {
				t.Errorf("Expected ConfigurationError, got %v", err)
			}
		})
	}
}

func TestScoringConfig_Validate_NilWeights(t *testing.T) {
	cfg := ScoringConfig{}
	var cerr *ConfigurationError
	if err := cfg.Validate(); !errors.As(err, &cerr) {
		t.Errorf("Expected ConfigurationError for nil weights, got %v", err)
	}
}

func TestDefaultConfig_Sanity(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Screening.MinAge >= cfg.Screening.MaxAge {
		t.Error("Screening age bounds inverted")
	}
	if cfg.Screening.MinModelYear >= cfg.Screening.MaxModelYear {
		t.Error("Screening model-year bounds inverted")
	}
	if cfg.Concurrency.Workers <= 0 {
		t.Error("Default workers must be positive")
	}
	if cfg.Cache.TTLDays <= 0 {
		t.Error("Default cache TTL must be positive")
	}
	if cfg.Scoring.FlagThreshold <= 0 {
		t.Error("Default flag threshold must be positive")
	}
}
