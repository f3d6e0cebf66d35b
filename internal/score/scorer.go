package score

import (
	"fmt"
	"sort"

	"github.com/ppiankov/fraudlens/internal/model"
)

// Scorer evaluates the detection rules over a policy table. A run is a pure
// function of the input records and the scoring configuration: no clock, no
// randomness, no state carried between runs.
type Scorer struct {
	cfg model.ScoringConfig
}

// NewScorer creates a scorer, failing fast on a broken rule configuration
func NewScorer(cfg model.ScoringConfig) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg}, nil
}

// Result contains the complete scoring output
type Result struct {
	Scored  []model.ScoredRecord // One per input record, input order preserved
	Flagged []model.ScoredRecord // Subset with Flagged=true, highest score first
	Summary model.Summary
}

// Score runs the two-phase evaluation: a population pre-pass over claim
// records, then the per-record rules against the precomputed aggregates.
func (s *Scorer) Score(records []model.PolicyRecord) (*Result, error) {
	if len(records) == 0 {
		return nil, &model.ValidationError{Reason: "empty input table"}
	}

	pop, claimCount, skipped := s.populationPass(records)

	ruleCounts := make(map[model.RuleID]int, len(model.AllRules))
	scored := make([]model.ScoredRecord, 0, len(records))
	var flagged []model.ScoredRecord

	for _, rec := range records {
		sr := s.scoreRecord(rec, pop)
		for _, id := range sr.Triggered {
			ruleCounts[id]++
		}
		scored = append(scored, sr)
		if sr.Flagged {
			flagged = append(flagged, sr)
		}
	}

	// Highest risk first; customer id breaks ties so output is stable
	sort.SliceStable(flagged, func(i, j int) bool {
		if flagged[i].RiskScore != flagged[j].RiskScore {
			return flagged[i].RiskScore > flagged[j].RiskScore
		}
		return flagged[i].CustomerID < flagged[j].CustomerID
	})

	summary := s.buildSummary(len(records), claimCount, skipped, pop, flagged, ruleCounts)

	return &Result{
		Scored:  scored,
		Flagged: flagged,
		Summary: summary,
	}, nil
}

// populationPass computes the claim-population loss-ratio aggregates that
// rules 1 and 2 compare against. It must complete before any record is
// scored. Claim records with a zero premium have no defined ratio and are
// excluded from the aggregates (and later skipped by the ratio rules).
func (s *Scorer) populationPass(records []model.PolicyRecord) (model.PopulationStats, int, int) {
	var ratios []float64
	claimCount := 0
	skipped := 0

	for _, rec := range records {
		if !rec.IsClaim() {
			continue
		}
		claimCount++
		if rec.AnnualPremium > 0 {
			ratios = append(ratios, rec.TotalLoss/rec.AnnualPremium)
		} else {
			skipped++
		}
	}

	pop := model.PopulationStats{Samples: len(ratios)}
	if len(ratios) > 0 {
		pop.Defined = true
		pop.MeanLossRatio = mean(ratios)
		pop.StdLossRatio = stdDev(ratios, pop.MeanLossRatio)
	}

	return pop, claimCount, skipped
}

// scoreRecord evaluates the five rules for a single record. Non-claim
// records never trigger; undefined loss ratios disable the ratio rules for
// that record only (contribution 0, never an error).
func (s *Scorer) scoreRecord(rec model.PolicyRecord, pop model.PopulationStats) model.ScoredRecord {
	sr := model.ScoredRecord{PolicyRecord: rec}
	if rec.AnnualPremium > 0 {
		sr.HasLossRatio = true
		sr.LossRatio = rec.TotalLoss / rec.AnnualPremium
	}

	if rec.IsClaim() {
		t := s.cfg.Thresholds

		if sr.HasLossRatio && pop.Defined {
			if sr.LossRatio > t.LossRatioMeanMultiple*pop.MeanLossRatio {
				s.trigger(&sr, model.RuleExtremeLossRatio)
			}
			// Zero spread means no record can be an outlier
			if pop.StdLossRatio > 0 {
				dev := sr.LossRatio - pop.MeanLossRatio
				if dev < 0 {
					dev = -dev
				}
				if dev > t.OutlierStdDevs*pop.StdLossRatio {
					s.trigger(&sr, model.RuleStatisticalOutlier)
				}
			}
		}

		if rec.CarModelYear >= t.NewCarMinYear && rec.TotalLoss > t.NewCarLossFloor {
			s.trigger(&sr, model.RuleNewCarHighLoss)
		}

		if rec.Age < t.YoungDriverMaxAge && rec.TotalLoss > t.YoungDriverLossFloor {
			s.trigger(&sr, model.RuleYoungDriverExtreme)
		}

		// Mismatch is relative to the priced premium; with a zero premium
		// there is no priced risk to compare against, so the rule is skipped
		if rec.AnnualPremium > 0 && rec.TotalLoss > t.PremiumLossMultiple*rec.AnnualPremium {
			s.trigger(&sr, model.RulePremiumLossMismatch)
		}
	}

	sr.Flagged = sr.RiskScore >= s.cfg.FlagThreshold
	return sr
}

func (s *Scorer) trigger(sr *model.ScoredRecord, id model.RuleID) {
	sr.Triggered = append(sr.Triggered, id)
	sr.RiskScore += s.cfg.Weights[id]
}

func (s *Scorer) buildSummary(total, claims, skipped int, pop model.PopulationStats, flagged []model.ScoredRecord, ruleCounts map[model.RuleID]int) model.Summary {
	summary := model.Summary{
		TotalRecords:     total,
		ClaimRecords:     claims,
		FlaggedCount:     len(flagged),
		Population:       pop,
		LossRatioSkipped: skipped,
	}
	if claims > 0 {
		summary.FlagRate = float64(len(flagged)) / float64(claims)
	}

	for _, id := range model.AllRules {
		summary.RuleCounts = append(summary.RuleCounts, model.RuleCount{
			Rule:  id,
			Label: model.RuleLabel(id),
			Count: ruleCounts[id],
		})
	}

	summary.ScoreBuckets = scoreBuckets(flagged)

	if claims == 0 {
		summary.Warnings = append(summary.Warnings, "no claim records in dataset: claim-dependent rules did not run")
	} else if !pop.Defined {
		summary.Warnings = append(summary.Warnings, "loss ratio undefined for every claim record (zero premiums): population rules skipped")
	} else if pop.StdLossRatio == 0 {
		summary.Warnings = append(summary.Warnings, "zero variance in claim loss ratios: the outlier rule cannot trigger")
	}
	if skipped > 0 {
		summary.Warnings = append(summary.Warnings,
			fmt.Sprintf("%d claim records excluded from loss-ratio rules due to undefined loss ratio", skipped))
	}

	return summary
}

// scoreBuckets builds the risk-score histogram over flagged records
func scoreBuckets(flagged []model.ScoredRecord) []model.ScoreBucket {
	if len(flagged) == 0 {
		return nil
	}

	counts := make(map[float64]int)
	for _, sr := range flagged {
		counts[sr.RiskScore]++
	}

	scores := make([]float64, 0, len(counts))
	for s := range counts {
		scores = append(scores, s)
	}
	sort.Float64s(scores)

	buckets := make([]model.ScoreBucket, 0, len(scores))
	for _, s := range scores {
		buckets = append(buckets, model.ScoreBucket{Score: s, Count: counts[s]})
	}
	return buckets
}
