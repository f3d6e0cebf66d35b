package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/fraudlens/internal/model"
)

func sampleReport() *model.Report {
	return &model.Report{
		Dataset:  "sample.csv",
		ScoredAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Summary: model.Summary{
			TotalRecords:    100,
			ExcludedRecords: 2,
			ClaimRecords:    30,
			FlaggedCount:    3,
			FlagRate:        0.1,
			RuleCounts: []model.RuleCount{
				{Rule: model.RuleExtremeLossRatio, Label: "Extreme Loss Ratio", Count: 2},
				{Rule: model.RuleNewCarHighLoss, Label: "New Car, High Loss", Count: 1},
			},
			ScoreBuckets: []model.ScoreBucket{{Score: 3, Count: 2}, {Score: 5, Count: 1}},
			Population:   model.PopulationStats{Defined: true, Samples: 28, MeanLossRatio: 1.5, StdLossRatio: 0.8},
			Warnings:     []string{"2 records excluded by plausibility screening"},
		},
		Flagged: []model.ScoredRecord{
			{
				PolicyRecord: model.PolicyRecord{
					CustomerID: 42, Gender: "Male", Age: 21, CarModelYear: 2024,
					AnnualPremium: 900, TotalLoss: 20000,
				},
				LossRatio: 22.22, HasLossRatio: true,
				Triggered: []model.RuleID{model.RuleExtremeLossRatio},
				RiskScore: 5, Flagged: true,
			},
		},
		Config: model.DefaultScoringConfig(),
	}
}

func TestRenderer_RenderJSON(t *testing.T) {
	r := NewRenderer(true, 30)
	path := filepath.Join(t.TempDir(), "report.json")

	if err := r.RenderJSON(sampleReport(), path); err != nil {
		t.Fatalf("RenderJSON failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}

	var decoded model.Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if decoded.Dataset != "sample.csv" || decoded.Summary.FlaggedCount != 3 {
		t.Errorf("Decoded report differs: %+v", decoded.Summary)
	}
	// Tuning travels with the report so a flag can be traced to its thresholds
	if decoded.Config.Thresholds.NewCarMinYear != 2022 {
		t.Error("Report JSON missing the scoring configuration")
	}
}

func TestRenderer_RenderMarkdown(t *testing.T) {
	r := NewRenderer(true, 30)
	path := filepath.Join(t.TempDir(), "report.md")

	if err := r.RenderMarkdown(sampleReport(), path); err != nil {
		t.Fatalf("RenderMarkdown failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	md := string(data)

	for _, want := range []string{
		"# Fraud / Anomaly Detection Report",
		"`sample.csv`",
		"| Total records | 100 |",
		"| Excluded by screening | 2 |",
		"| Extreme Loss Ratio | 2 |",
		"## Warnings",
		"## Top 1 Flagged Records",
		"| 42 |",
		"not determinations of fraud",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown missing %q", want)
		}
	}
}

func TestRenderer_RenderMarkdown_NoFooter(t *testing.T) {
	r := NewRenderer(false, 30)
	path := filepath.Join(t.TempDir(), "report.md")

	if err := r.RenderMarkdown(sampleReport(), path); err != nil {
		t.Fatalf("RenderMarkdown failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "Generated by fraudlens") {
		t.Error("Footer present despite being disabled")
	}
}

func TestRenderer_RenderMarkdown_TopFlaggedCapped(t *testing.T) {
	r := NewRenderer(false, 2)

	report := sampleReport()
	// Three flagged records, cap at two
	extra := report.Flagged[0]
	extra.CustomerID = 43
	extra2 := report.Flagged[0]
	extra2.CustomerID = 44
	report.Flagged = append(report.Flagged, extra, extra2)

	path := filepath.Join(t.TempDir(), "report.md")
	if err := r.RenderMarkdown(report, path); err != nil {
		t.Fatalf("RenderMarkdown failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	md := string(data)
	if !strings.Contains(md, "## Top 2 Flagged Records") {
		t.Error("Top-N heading not capped")
	}
	if strings.Contains(md, "| 44 |") {
		t.Error("Records beyond the cap rendered")
	}
}

func TestRenderer_RenderMarkdown_UndefinedPopulation(t *testing.T) {
	r := NewRenderer(false, 30)

	report := sampleReport()
	report.Summary.Population = model.PopulationStats{}

	path := filepath.Join(t.TempDir(), "report.md")
	if err := r.RenderMarkdown(report, path); err != nil {
		t.Fatalf("RenderMarkdown failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "population rules did not run") {
		t.Error("Undefined population not explained")
	}
}

func TestFormatScore(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{3, "3"},
		{10, "10"},
		{2.5, "2.50"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := formatScore(tt.score); got != tt.want {
			t.Errorf("formatScore(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
