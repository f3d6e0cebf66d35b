package validate

import (
	"fmt"
	"sort"

	"github.com/ppiankov/fraudlens/internal/model"
)

// Issue names the reason a record was excluded from scoring
type Issue string

const (
	IssueAgeOutOfRange       Issue = "age_out_of_range"
	IssueModelYearOutOfRange Issue = "model_year_out_of_range"
	IssueNegativePremium     Issue = "negative_premium"
	IssueNegativeLoss        Issue = "negative_loss"
)

// Validator screens parsed records for plausibility before scoring.
// Implausible rows are excluded and counted rather than failing the run;
// structural problems with the file itself are the loader's concern.
type Validator struct {
	cfg model.ScreeningConfig
}

// NewValidator creates a validator with the given screening bounds
func NewValidator(cfg model.ScreeningConfig) *Validator {
	return &Validator{cfg: cfg}
}

// Screening is the outcome of a validation pass
type Screening struct {
	Valid    []model.PolicyRecord
	Excluded int
	Reasons  map[string]int // Issue -> count
}

// Screen partitions records into scorable and excluded. An input where no
// record survives is unusable and reported as a validation error.
func (v *Validator) Screen(records []model.PolicyRecord) (*Screening, error) {
	if len(records) == 0 {
		return nil, &model.ValidationError{Reason: "empty input table"}
	}

	s := &Screening{Reasons: make(map[string]int)}
	for _, rec := range records {
		if issues := v.check(rec); len(issues) > 0 {
			s.Excluded++
			for _, is := range issues {
				s.Reasons[string(is)]++
			}
			continue
		}
		s.Valid = append(s.Valid, rec)
	}

	if len(s.Valid) == 0 {
		return nil, &model.ValidationError{
			Reason: fmt.Sprintf("all %d records failed plausibility screening (%s)", len(records), summarizeReasons(s.Reasons)),
		}
	}
	return s, nil
}

func (v *Validator) check(rec model.PolicyRecord) []Issue {
	var issues []Issue
	if rec.Age < v.cfg.MinAge || rec.Age > v.cfg.MaxAge {
		issues = append(issues, IssueAgeOutOfRange)
	}
	if rec.CarModelYear < v.cfg.MinModelYear || rec.CarModelYear > v.cfg.MaxModelYear {
		issues = append(issues, IssueModelYearOutOfRange)
	}
	if rec.AnnualPremium < 0 {
		issues = append(issues, IssueNegativePremium)
	}
	if rec.TotalLoss < 0 {
		issues = append(issues, IssueNegativeLoss)
	}
	return issues
}

func summarizeReasons(reasons map[string]int) string {
	keys := make([]string, 0, len(reasons))
	for k := range reasons {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := ""
	for i, k := range keys {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s: %d", k, reasons[k])
	}
	return out
}
