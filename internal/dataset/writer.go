package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ppiankov/fraudlens/internal/model"
)

var scoredHeader = []string{
	colCustomerID,
	colGender,
	colAge,
	colCarModelYear,
	colAnnualPremium,
	colTotalLoss,
	"loss_ratio",
	"risk_score",
	"flags",
}

var policyHeader = []string{
	colCustomerID,
	colGender,
	colAge,
	colCarModelYear,
	colAnnualPremium,
	colTotalLoss,
	"loss_ratio",
}

// Writer writes policy and scored tables as CSV artifacts
type Writer struct{}

// NewWriter creates a new writer
func NewWriter() *Writer {
	return &Writer{}
}

// WriteFile writes records to the CSV file at path
func (w *Writer) WriteFile(path string, records []model.ScoredRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := w.Write(f, records); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// WritePolicyFile writes unscored policy records to the CSV file at path,
// in the column layout the loader expects back
func (w *Writer) WritePolicyFile(path string, records []model.PolicyRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := w.WritePolicy(f, records); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// WritePolicy writes unscored policy records as CSV to out
func (w *Writer) WritePolicy(out io.Writer, records []model.PolicyRecord) error {
	cw := csv.NewWriter(out)

	if err := cw.Write(policyHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, rec := range records {
		ratio := 0.0
		if rec.AnnualPremium > 0 {
			ratio = rec.TotalLoss / rec.AnnualPremium
		}
		row := []string{
			strconv.FormatInt(rec.CustomerID, 10),
			rec.Gender,
			strconv.Itoa(rec.Age),
			strconv.Itoa(rec.CarModelYear),
			strconv.FormatFloat(rec.AnnualPremium, 'f', 2, 64),
			strconv.FormatFloat(rec.TotalLoss, 'f', 2, 64),
			strconv.FormatFloat(ratio, 'f', 4, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// Write writes records as CSV to out
func (w *Writer) Write(out io.Writer, records []model.ScoredRecord) error {
	cw := csv.NewWriter(out)

	if err := cw.Write(scoredHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, rec := range records {
		ratio := ""
		if rec.HasLossRatio {
			ratio = strconv.FormatFloat(rec.LossRatio, 'f', 4, 64)
		}

		flags := make([]string, 0, len(rec.Triggered))
		for _, id := range rec.Triggered {
			flags = append(flags, string(id))
		}

		row := []string{
			strconv.FormatInt(rec.CustomerID, 10),
			rec.Gender,
			strconv.Itoa(rec.Age),
			strconv.Itoa(rec.CarModelYear),
			strconv.FormatFloat(rec.AnnualPremium, 'f', 2, 64),
			strconv.FormatFloat(rec.TotalLoss, 'f', 2, 64),
			ratio,
			strconv.FormatFloat(rec.RiskScore, 'f', -1, 64),
			strings.Join(flags, ","),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
