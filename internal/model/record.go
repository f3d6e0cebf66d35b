package model

// PolicyRecord represents one policyholder row from the input dataset
type PolicyRecord struct {
	CustomerID    int64   `json:"customer_id"`
	Gender        string  `json:"gender"`
	Age           int     `json:"age"`
	CarModelYear  int     `json:"car_model_year"`
	AnnualPremium float64 `json:"annual_premium"`
	TotalLoss     float64 `json:"total_loss"`
}

// IsClaim reports whether the record carries a claim (non-zero loss).
// Records without claims are never scored by claim-dependent rules.
func (r PolicyRecord) IsClaim() bool {
	return r.TotalLoss > 0
}

// ScoredRecord is a PolicyRecord after rule evaluation
type ScoredRecord struct {
	PolicyRecord

	// LossRatio is TotalLoss / AnnualPremium. Only meaningful when
	// HasLossRatio is true; a zero premium leaves the ratio undefined.
	LossRatio    float64 `json:"loss_ratio"`
	HasLossRatio bool    `json:"has_loss_ratio"`

	Triggered []RuleID `json:"triggered,omitempty"` // Rules that fired, in evaluation order
	RiskScore float64  `json:"risk_score"`
	Flagged   bool     `json:"flagged"`
}

// TriggeredBy reports whether the given rule fired for this record
func (r ScoredRecord) TriggeredBy(id RuleID) bool {
	for _, t := range r.Triggered {
		if t == id {
			return true
		}
	}
	return false
}

// RuleID identifies one of the detection rules
type RuleID string

const (
	RuleExtremeLossRatio    RuleID = "extreme_loss_ratio"    // Loss ratio far above the claim-population mean
	RuleStatisticalOutlier  RuleID = "statistical_outlier"   // Loss ratio beyond N sigma from the population mean
	RuleNewCarHighLoss      RuleID = "new_car_high_loss"     // Near-new vehicle with a high loss
	RuleYoungDriverExtreme  RuleID = "young_driver_extreme"  // Young driver with an extreme claim
	RulePremiumLossMismatch RuleID = "premium_loss_mismatch" // Loss grossly exceeds priced premium
)

// AllRules lists every rule in evaluation order. The order is fixed so that
// reports and CSV flag columns are stable across runs.
var AllRules = []RuleID{
	RuleExtremeLossRatio,
	RuleStatisticalOutlier,
	RuleNewCarHighLoss,
	RuleYoungDriverExtreme,
	RulePremiumLossMismatch,
}

// RuleLabel returns the human-readable label for a rule
func RuleLabel(id RuleID) string {
	switch id {
	case RuleExtremeLossRatio:
		return "Extreme Loss Ratio"
	case RuleStatisticalOutlier:
		return "Statistical Outlier"
	case RuleNewCarHighLoss:
		return "New Car, High Loss"
	case RuleYoungDriverExtreme:
		return "Young Driver, Extreme Claim"
	case RulePremiumLossMismatch:
		return "Premium-Loss Mismatch"
	default:
		return string(id)
	}
}
