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

// Column names expected in input datasets. Header matching is
// case-insensitive; extra columns (including a precomputed loss_ratio,
// which is always recomputed) are ignored.
const (
	colCustomerID    = "customer_id"
	colGender        = "gender"
	colAge           = "age"
	colCarModelYear  = "car_model_year"
	colAnnualPremium = "annual_premium"
	colTotalLoss     = "total_loss"
)

var requiredColumns = []string{
	colCustomerID,
	colGender,
	colAge,
	colCarModelYear,
	colAnnualPremium,
	colTotalLoss,
}

// Loader reads policy tables from CSV files
type Loader struct{}

// NewLoader creates a new loader
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads the dataset at path into policy records. Structural problems
// (missing columns, unparseable numeric cells, empty table) abort the run
// with a validation error: nothing downstream must see a half-read table.
func (l *Loader) Load(path string) ([]model.PolicyRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	records, err := l.Read(f)
	if err != nil {
		if ve, ok := err.(*model.ValidationError); ok {
			ve.Dataset = path
		}
		return nil, err
	}
	return records, nil
}

// Read parses CSV policy records from r
func (l *Loader) Read(r io.Reader) ([]model.PolicyRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &model.ValidationError{Reason: "empty input table"}
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var records []model.PolicyRecord
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line++

		rec, err := parseRecord(row, cols, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, &model.ValidationError{Reason: "empty input table (header only)"}
	}
	return records, nil
}

// mapColumns resolves required column names to their positions
func mapColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &model.ValidationError{
			Reason: fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")),
		}
	}
	return cols, nil
}

func parseRecord(row []string, cols map[string]int, line int) (model.PolicyRecord, error) {
	var rec model.PolicyRecord

	field := func(name string) (string, error) {
		idx := cols[name]
		if idx >= len(row) {
			return "", &model.ValidationError{Reason: fmt.Sprintf("line %d: missing value for %s", line, name)}
		}
		return strings.TrimSpace(row[idx]), nil
	}

	id, err := field(colCustomerID)
	if err != nil {
		return rec, err
	}
	rec.CustomerID, err = strconv.ParseInt(id, 10, 64)
	if err != nil {
		return rec, &model.ValidationError{Reason: fmt.Sprintf("line %d: non-numeric %s: %q", line, colCustomerID, id)}
	}

	rec.Gender, err = field(colGender)
	if err != nil {
		return rec, err
	}

	for _, p := range []struct {
		name string
		dst  *int
	}{
		{colAge, &rec.Age},
		{colCarModelYear, &rec.CarModelYear},
	} {
		raw, err := field(p.name)
		if err != nil {
			return rec, err
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return rec, &model.ValidationError{Reason: fmt.Sprintf("line %d: non-numeric %s: %q", line, p.name, raw)}
		}
		*p.dst = v
	}

	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{colAnnualPremium, &rec.AnnualPremium},
		{colTotalLoss, &rec.TotalLoss},
	} {
		raw, err := field(p.name)
		if err != nil {
			return rec, err
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return rec, &model.ValidationError{Reason: fmt.Sprintf("line %d: non-numeric %s: %q", line, p.name, raw)}
		}
		*p.dst = v
	}

	return rec, nil
}
