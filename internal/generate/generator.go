package generate

import (
	"encoding/json"
	"math"
	"math/rand"

	"github.com/ppiankov/fraudlens/internal/model"
)

// Options controls synthetic portfolio generation
type Options struct {
	Rows int
	Seed int64
}

// Generator produces synthetic auto-insurance portfolios. Output is a pure
// function of the options: the same seed always yields the same table.
type Generator struct {
	opts Options
	rng  *rand.Rand
}

// Portfolio shape constants. Tuned to resemble a small personal-auto book:
// premiums clustered near $1,200, ~30% claim frequency, lognormal severities
// with a long tail.
const (
	minModelYear = 2000
	maxModelYear = 2025

	basePremium = 1200.0
	minPremium  = 500.0
	maxPremium  = 5000.0

	claimBaseProb = 0.28
	minClaimProb  = 0.05
	maxClaimProb  = 0.70

	lossLogMean  = 7.5 // exp(7.5) ≈ $1,800 median claim
	lossLogSigma = 1.0
	maxLoss      = 80_000.0
)

// New creates a generator
func New(opts Options) *Generator {
	if opts.Rows <= 0 {
		opts.Rows = 10_000
	}
	return &Generator{
		opts: opts,
		rng:  rand.New(rand.NewSource(opts.Seed)),
	}
}

// Generate produces the synthetic portfolio
func (g *Generator) Generate() []model.PolicyRecord {
	records := make([]model.PolicyRecord, 0, g.opts.Rows)
	for i := 0; i < g.opts.Rows; i++ {
		records = append(records, g.record(int64(i+1)))
	}
	return records
}

func (g *Generator) record(id int64) model.PolicyRecord {
	gender := "Female"
	if g.rng.Float64() < 0.52 {
		gender = "Male"
	}

	age := int(clamp(g.rng.NormFloat64()*12+40, 18, 75))
	year := g.modelYear()
	carAge := float64(maxModelYear - year)

	// Premium: base adjusted by age band, gender and car age, with noise.
	// Young and very old drivers pay more (U-shaped).
	ageFactor := 1.0
	switch {
	case age < 25:
		ageFactor = 1.45
	case age < 30:
		ageFactor = 1.15
	case age < 60:
		ageFactor = 1.0
	case age < 70:
		ageFactor = 1.10
	default:
		ageFactor = 1.25
	}
	genderFactor := 1.0
	if gender == "Male" {
		genderFactor = 1.08
	}
	carAgeFactor := 1.0 + carAge*0.012
	noise := g.rng.NormFloat64()*0.10 + 1.0

	premium := round2(clamp(basePremium*ageFactor*genderFactor*carAgeFactor*noise, minPremium, maxPremium))

	// Claim frequency rises for young drivers and older cars
	ageAdj := 0.0
	switch {
	case age < 25:
		ageAdj = 0.15
	case age < 30:
		ageAdj = 0.05
	case age < 60:
		ageAdj = 0.0
	case age < 70:
		ageAdj = 0.05
	default:
		ageAdj = 0.10
	}
	claimProb := clamp(claimBaseProb+ageAdj+carAge*0.005, minClaimProb, maxClaimProb)

	loss := 0.0
	if g.rng.Float64() < claimProb {
		loss = round2(clamp(math.Exp(g.rng.NormFloat64()*lossLogSigma+lossLogMean), 0, maxLoss))
	}

	return model.PolicyRecord{
		CustomerID:    id,
		Gender:        gender,
		Age:           age,
		CarModelYear:  year,
		AnnualPremium: premium,
		TotalLoss:     loss,
	}
}

// modelYear draws a model year from 2000-2025, linearly weighted so newer
// cars are more likely
func (g *Generator) modelYear() int {
	n := maxModelYear - minModelYear + 1
	total := 0.0
	for i := 0; i < n; i++ {
		total += weightAt(i, n)
	}

	r := g.rng.Float64() * total
	for i := 0; i < n; i++ {
		r -= weightAt(i, n)
		if r < 0 {
			return minModelYear + i
		}
	}
	return maxModelYear
}

// weightAt ramps linearly from 1 for the oldest year to 5 for the newest
func weightAt(i, n int) float64 {
	if n == 1 {
		return 1
	}
	return 1 + 4*float64(i)/float64(n-1)
}

// CompactJSON renders records in the compact array form used for dashboard
// embedding: [id, 1=Male/0=Female, age, model year, premium, loss].
func CompactJSON(records []model.PolicyRecord) ([]byte, error) {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		genderBit := 0
		if r.Gender == "Male" {
			genderBit = 1
		}
		rows = append(rows, []any{r.CustomerID, genderBit, r.Age, r.CarModelYear, r.AnnualPremium, r.TotalLoss})
	}
	return json.Marshal(rows)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
