package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/fraudlens/internal/model"
)

// Renderer writes reports as JSON, Markdown and console summaries
type Renderer struct {
	includeFooter bool
	topFlagged    int
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool, topFlagged int) *Renderer {
	if topFlagged <= 0 {
		topFlagged = 30
	}
	return &Renderer{
		includeFooter: includeFooter,
		topFlagged:    topFlagged,
	}
}

// RenderJSON writes the complete report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderMarkdown writes a human-readable report
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	var b strings.Builder
	s := report.Summary

	b.WriteString("# Fraud / Anomaly Detection Report\n\n")
	fmt.Fprintf(&b, "**Dataset:** `%s`  \n", report.Dataset)
	fmt.Fprintf(&b, "**Scored at:** %s\n\n", report.ScoredAt.Format("2006-01-02 15:04:05 UTC"))

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Total records | %d |\n", s.TotalRecords)
	if s.ExcludedRecords > 0 {
		fmt.Fprintf(&b, "| Excluded by screening | %d |\n", s.ExcludedRecords)
	}
	fmt.Fprintf(&b, "| Claims analysed | %d |\n", s.ClaimRecords)
	fmt.Fprintf(&b, "| Records flagged | %d |\n", s.FlaggedCount)
	fmt.Fprintf(&b, "| Flag rate | %.1f%% |\n\n", s.FlagRate*100)

	b.WriteString("## Flags by Rule\n\n")
	b.WriteString("| Rule | Triggers |\n|---|---|\n")
	for _, rc := range s.RuleCounts {
		fmt.Fprintf(&b, "| %s | %d |\n", rc.Label, rc.Count)
	}
	b.WriteString("\n")

	if len(s.ScoreBuckets) > 0 {
		b.WriteString("## Risk Score Distribution (flagged records)\n\n")
		b.WriteString("| Score | Records |\n|---|---|\n")
		for _, bkt := range s.ScoreBuckets {
			fmt.Fprintf(&b, "| %s | %d |\n", formatScore(bkt.Score), bkt.Count)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Population Baseline\n\n")
	if s.Population.Defined {
		fmt.Fprintf(&b, "Mean loss ratio %.4f, population std dev %.4f over %d claim records.\n\n",
			s.Population.MeanLossRatio, s.Population.StdLossRatio, s.Population.Samples)
	} else {
		b.WriteString("No claim records with a defined loss ratio; population rules did not run.\n\n")
	}

	if len(s.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range s.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	if len(report.Flagged) > 0 {
		n := r.topFlagged
		if n > len(report.Flagged) {
			n = len(report.Flagged)
		}
		fmt.Fprintf(&b, "## Top %d Flagged Records\n\n", n)
		b.WriteString("| Customer | Age | Car Year | Premium | Loss | Loss Ratio | Score | Rules |\n")
		b.WriteString("|---|---|---|---|---|---|---|---|\n")
		for _, rec := range report.Flagged[:n] {
			ratio := "n/a"
			if rec.HasLossRatio {
				ratio = fmt.Sprintf("%.2f", rec.LossRatio)
			}
			labels := make([]string, 0, len(rec.Triggered))
			for _, id := range rec.Triggered {
				labels = append(labels, model.RuleLabel(id))
			}
			fmt.Fprintf(&b, "| %d | %d | %d | $%.2f | $%.2f | %s | %s | %s |\n",
				rec.CustomerID, rec.Age, rec.CarModelYear, rec.AnnualPremium, rec.TotalLoss,
				ratio, formatScore(rec.RiskScore), strings.Join(labels, ", "))
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n\nGenerated by fraudlens, a score-based anomaly detection tool. ")
		b.WriteString("Flags mark records for manual review; they are not determinations of fraud.\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderLLMMarkdown writes the already-rendered LLM summary to its own file
func (r *Renderer) RenderLLMMarkdown(markdown string, path string) error {
	if err := os.WriteFile(path, []byte(markdown), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderSummary prints the run summary to stdout
func (r *Renderer) RenderSummary(report *model.Report) {
	s := report.Summary
	line := strings.Repeat("=", 62)
	thin := strings.Repeat("-", 62)

	fmt.Println(line)
	fmt.Println("  FRAUD / ANOMALY DETECTION — SUMMARY")
	fmt.Println(line)
	fmt.Printf("  Total records in dataset       : %d\n", s.TotalRecords)
	if s.ExcludedRecords > 0 {
		fmt.Printf("  Excluded by screening          : %d\n", s.ExcludedRecords)
	}
	fmt.Printf("  Total claims analysed          : %d\n", s.ClaimRecords)
	fmt.Printf("  Records flagged                : %d\n", s.FlaggedCount)
	fmt.Printf("  Flag rate                      : %.1f%%\n", s.FlagRate*100)
	fmt.Println(thin)
	fmt.Println("  FLAGS BY RULE")
	fmt.Println(thin)
	for _, rc := range s.RuleCounts {
		fmt.Printf("    %-44s %8d\n", rc.Label, rc.Count)
	}
	if len(s.ScoreBuckets) > 0 {
		fmt.Println(thin)
		fmt.Println("  RISK SCORE DISTRIBUTION (flagged records only)")
		fmt.Println(thin)
		for _, bkt := range s.ScoreBuckets {
			bar := bkt.Count
			if bar > 60 {
				bar = 60
			}
			fmt.Printf("    Score %5s: %5d  %s\n", formatScore(bkt.Score), bkt.Count, strings.Repeat("#", bar))
		}
	}
	if s.Population.Defined {
		t := report.Config.Thresholds
		fmt.Println(thin)
		fmt.Printf("  Population mean loss ratio     : %.4f\n", s.Population.MeanLossRatio)
		fmt.Printf("  Population std dev             : %.4f\n", s.Population.StdLossRatio)
		fmt.Printf("  Extreme-ratio cutoff           : %.4f (%.0fx mean)\n",
			t.LossRatioMeanMultiple*s.Population.MeanLossRatio, t.LossRatioMeanMultiple)
		fmt.Printf("  Outlier deviation cutoff       : %.4f (%.0f sigma)\n",
			t.OutlierStdDevs*s.Population.StdLossRatio, t.OutlierStdDevs)
	}
	for _, w := range s.Warnings {
		fmt.Printf("  ⚠ %s\n", w)
	}
	fmt.Println(line)
}

func formatScore(score float64) string {
	if score == float64(int64(score)) {
		return fmt.Sprintf("%d", int64(score))
	}
	return fmt.Sprintf("%.2f", score)
}
