package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/nikita-tita/cian-analyzer-sub002/internal/models"
)

// Field selects which numeric attribute preprocessing operates on.
type Field string

const (
	FieldPricePerSqm Field = "price_per_sqm"
	FieldPrice       Field = "price"
	FieldTotalArea   Field = "total_area"
)

const (
	// DefaultIQRMultiplier is the whisker width of the outlier fence.
	DefaultIQRMultiplier = 1.5

	// minPoolForFiltering is the smallest pool where quartiles are
	// meaningful. Smaller pools pass through unfiltered.
	minPoolForFiltering = 4
)

// Excluded is one comparable rejected by the outlier fence, kept for
// the analysis report.
type Excluded struct {
	Index      int                        `json:"index"`
	Value      float64                    `json:"value"`
	Reason     string                     `json:"reason"`
	Comparable models.ComparableProperty `json:"comparable"`
}

// OutlierResult is the outcome of IQR filtering over one field.
type OutlierResult struct {
	Kept       []models.ComparableProperty `json:"kept"`
	Excluded   []Excluded                  `json:"excluded"`
	Q1         float64                     `json:"q1"`
	Q3         float64                     `json:"q3"`
	LowerBound float64                     `json:"lower_bound"`
	UpperBound float64                     `json:"upper_bound"`
	Filtered   bool                        `json:"filtered"`
}

// DetectOutliers fences the pool on the given field using Tukey's rule:
// values outside [Q1 - m*IQR, Q3 + m*IQR] are excluded. Quartiles are
// taken at positions n/4 and 3n/4 of the sorted values. Pools smaller
// than four records are returned unfiltered. The input slice is never
// mutated.
func DetectOutliers(pool []models.ComparableProperty, field Field, multiplier float64) OutlierResult {
	if multiplier <= 0 {
		multiplier = DefaultIQRMultiplier
	}

	res := OutlierResult{Kept: make([]models.ComparableProperty, 0, len(pool))}
	if len(pool) < minPoolForFiltering {
		res.Kept = append(res.Kept, pool...)
		return res
	}

	values := make([]float64, len(pool))
	for i := range pool {
		values[i] = fieldValue(&pool[i], field)
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	n := len(sorted)
	res.Q1 = sorted[n/4]
	res.Q3 = sorted[3*n/4]
	iqr := res.Q3 - res.Q1
	res.LowerBound = res.Q1 - multiplier*iqr
	res.UpperBound = res.Q3 + multiplier*iqr
	res.Filtered = true

	for i, v := range values {
		if v < res.LowerBound || v > res.UpperBound {
			res.Excluded = append(res.Excluded, Excluded{
				Index:      i,
				Value:      v,
				Reason:     fmt.Sprintf("%s %.2f outside [%.2f, %.2f]", field, v, res.LowerBound, res.UpperBound),
				Comparable: pool[i],
			})
			continue
		}
		res.Kept = append(res.Kept, pool[i])
	}
	return res
}

func fieldValue(c *models.ComparableProperty, field Field) float64 {
	switch field {
	case FieldPrice:
		return c.Price
	case FieldTotalArea:
		return c.TotalArea
	default:
		if c.PricePerSqm > 0 {
			return c.PricePerSqm
		}
		return c.DerivedPricePerSqm()
	}
}

// DataQuality grades how trustworthy the pool's price signal is. A high
// coefficient of variation means the comparables describe a mixed or
// noisy market and the search should be widened before trusting the
// estimate.
type DataQuality struct {
	SampleSize             int     `json:"sample_size"`
	Mean                   float64 `json:"mean"`
	StdDev                 float64 `json:"std_dev"`
	CoefficientOfVariation float64 `json:"coefficient_of_variation"`
	Reliable               bool    `json:"reliable"`
	Verdict                string  `json:"verdict"`
}

// AssessDataQuality computes the coefficient of variation of price per
// square meter over the pool and grades it against maxCV and minSamples.
func AssessDataQuality(pool []models.ComparableProperty, maxCV float64, minSamples int) DataQuality {
	q := DataQuality{SampleSize: len(pool)}
	if len(pool) == 0 {
		q.Verdict = "no comparables"
		return q
	}

	values := make([]float64, len(pool))
	for i := range pool {
		values[i] = fieldValue(&pool[i], FieldPricePerSqm)
	}
	q.Mean = mean(values)
	q.StdDev = stdDev(values, q.Mean)
	if q.Mean > 0 {
		q.CoefficientOfVariation = q.StdDev / q.Mean
	}

	switch {
	case len(pool) < minSamples:
		q.Verdict = fmt.Sprintf("only %d comparables, %d required", len(pool), minSamples)
	case q.CoefficientOfVariation > maxCV:
		q.Verdict = fmt.Sprintf("price spread too wide (CV %.2f > %.2f), widen the search", q.CoefficientOfVariation, maxCV)
	default:
		q.Reliable = true
		q.Verdict = "sufficient"
	}
	return q
}

// CheckDataSufficiency reports whether the pool is large enough for a
// valuation and, when it is not, why.
func CheckDataSufficiency(pool []models.ComparableProperty, minCount int) (bool, string) {
	if len(pool) >= minCount {
		return true, ""
	}
	return false, fmt.Sprintf("%d comparables found, at least %d required", len(pool), minCount)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdDev(values []float64, m float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)))
}
