package model

import "testing"

func TestPolicyRecord_IsClaim(t *testing.T) {
	tests := []struct {
		name string
		loss float64
		want bool
	}{
		{"zero loss", 0, false},
		{"positive loss", 1500.50, true},
		{"tiny loss", 0.01, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := PolicyRecord{TotalLoss: tt.loss}
			if got := r.IsClaim(); got != tt.want {
				t.Errorf("IsClaim() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoredRecord_TriggeredBy(t *testing.T) {
	sr := ScoredRecord{Triggered: []RuleID{RuleExtremeLossRatio, RuleNewCarHighLoss}}

	if !sr.TriggeredBy(RuleExtremeLossRatio) {
		t.Error("Expected extreme_loss_ratio to be reported as triggered")
	}
	if sr.TriggeredBy(RuleYoungDriverExtreme) {
		t.Error("young_driver_extreme should not be reported as triggered")
	}
}

func TestRuleLabel_AllRulesCovered(t *testing.T) {
	for _, id := range AllRules {
		label := RuleLabel(id)
		if label == "" || label == string(id) {
			t.Errorf("Rule %s has no human-readable label", id)
		}
	}
	// Unknown rules fall back to the raw id
	if got := RuleLabel("mystery"); got != "mystery" {
		t.Errorf("Unknown rule label = %q, want raw id", got)
	}
}
