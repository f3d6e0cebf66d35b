package validate

import (
	"errors"
	"testing"

	"github.com/ppiankov/fraudlens/internal/model"
)

func testBounds() model.ScreeningConfig {
	return model.ScreeningConfig{MinAge: 16, MaxAge: 100, MinModelYear: 1950, MaxModelYear: 2100}
}

func plausible(id int64) model.PolicyRecord {
	return model.PolicyRecord{
		CustomerID:    id,
		Gender:        "Female",
		Age:           40,
		CarModelYear:  2015,
		AnnualPremium: 1200,
		TotalLoss:     0,
	}
}

func TestValidator_Screen_AllValid(t *testing.T) {
	v := NewValidator(testBounds())

	records := []model.PolicyRecord{plausible(1), plausible(2), plausible(3)}
	s, err := v.Screen(records)
	if err != nil {
		t.Fatalf("Screen failed: %v", err)
	}

	if len(s.Valid) != 3 {
		t.Errorf("Expected 3 valid records, got %d", len(s.Valid))
	}
	if s.Excluded != 0 {
		t.Errorf("Expected 0 excluded, got %d", s.Excluded)
	}
}

func TestValidator_Screen_ExcludesImplausible(t *testing.T) {
	v := NewValidator(testBounds())

	tooYoung := plausible(2)
	tooYoung.Age = 12

	futureCar := plausible(3)
	futureCar.CarModelYear = 2150

	negPremium := plausible(4)
	negPremium.AnnualPremium = -100

	negLoss := plausible(5)
	negLoss.TotalLoss = -500

	s, err := v.Screen([]model.PolicyRecord{plausible(1), tooYoung, futureCar, negPremium, negLoss})
	if err != nil {
		t.Fatalf("Screen failed: %v", err)
	}

	if len(s.Valid) != 1 {
		t.Errorf("Expected 1 valid record, got %d", len(s.Valid))
	}
	if s.Excluded != 4 {
		t.Errorf("Expected 4 excluded, got %d", s.Excluded)
	}

	for issue, want := range map[string]int{
		string(IssueAgeOutOfRange):       1,
		string(IssueModelYearOutOfRange): 1,
		string(IssueNegativePremium):     1,
		string(IssueNegativeLoss):        1,
	} {
		if got := s.Reasons[issue]; got != want {
			t.Errorf("Reason %s = %d, want %d", issue, got, want)
		}
	}
}

func TestValidator_Screen_MultipleIssuesOneRecord(t *testing.T) {
	v := NewValidator(testBounds())

	bad := plausible(2)
	bad.Age = 150
	bad.TotalLoss = -1

	s, err := v.Screen([]model.PolicyRecord{plausible(1), bad})
	if err != nil {
		t.Fatalf("Screen failed: %v", err)
	}

	// One excluded record, two counted reasons
	if s.Excluded != 1 {
		t.Errorf("Expected 1 excluded, got %d", s.Excluded)
	}
	if s.Reasons[string(IssueAgeOutOfRange)] != 1 || s.Reasons[string(IssueNegativeLoss)] != 1 {
		t.Errorf("Expected both issues counted, got %v", s.Reasons)
	}
}

func TestValidator_Screen_BoundaryValues(t *testing.T) {
	v := NewValidator(testBounds())

	atMin := plausible(1)
	atMin.Age = 16
	atMax := plausible(2)
	atMax.Age = 100

	s, err := v.Screen([]model.PolicyRecord{atMin, atMax})
	if err != nil {
		t.Fatalf("Screen failed: %v", err)
	}
	// Bounds are inclusive
	if len(s.Valid) != 2 {
		t.Errorf("Boundary ages should pass, got %d valid", len(s.Valid))
	}
}

func TestValidator_Screen_Empty(t *testing.T) {
	v := NewValidator(testBounds())

	_, err := v.Screen(nil)
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("Expected ValidationError for empty input, got %v", err)
	}
}

func TestValidator_Screen_AllExcluded(t *testing.T) {
	v := NewValidator(testBounds())

	bad := plausible(1)
	bad.Age = 5

	_, err := v.Screen([]model.PolicyRecord{bad})
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError when nothing survives, got %v", err)
	}
}
