package stats

import (
	"sort"

	"github.com/nikita-tita/cian-analyzer-sub002/internal/models"
)

// ComputeValues summarizes a raw value slice. The input is not mutated.
func ComputeValues(values []float64) models.MarketStatistics {
	st := models.MarketStatistics{Count: len(values)}
	if len(values) == 0 {
		return st
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	st.Min = sorted[0]
	st.Max = sorted[len(sorted)-1]
	st.Mean = mean(sorted)
	st.Median = median(sorted)
	st.StdDev = stdDev(sorted, st.Mean)
	return st
}

// Compute summarizes the pool's price per square meter.
func Compute(pool []models.ComparableProperty) models.MarketStatistics {
	values := make([]float64, len(pool))
	for i := range pool {
		values[i] = fieldValue(&pool[i], FieldPricePerSqm)
	}
	return ComputeValues(values)
}

// ComputeSegmented splits the pool by a binary attribute predicate and
// summarizes both halves.
func ComputeSegmented(pool []models.ComparableProperty, pred func(*models.ComparableProperty) bool) (in, out models.MarketStatistics) {
	var inVals, outVals []float64
	for i := range pool {
		v := fieldValue(&pool[i], FieldPricePerSqm)
		if pred(&pool[i]) {
			inVals = append(inVals, v)
		} else {
			outVals = append(outVals, v)
		}
	}
	return ComputeValues(inVals), ComputeValues(outVals)
}

// HasPremiumFinish reports whether a comparable carries an upper-segment
// renovation. Records without finish data fall into the standard segment.
func HasPremiumFinish(c *models.ComparableProperty) bool {
	return c.FinishLevel != nil && c.FinishLevel.Premium()
}

// MarketReport bundles overall and per-segment statistics together with
// the data quality grade for one filtered pool.
type MarketReport struct {
	Overall  models.MarketStatistics `json:"overall"`
	Premium  models.MarketStatistics `json:"premium"`
	Standard models.MarketStatistics `json:"standard"`
	Quality  DataQuality             `json:"quality"`
}

// BuildMarketReport computes overall statistics, premium and standard
// finish segments, and the quality grade in one pass over the pool.
func BuildMarketReport(pool []models.ComparableProperty, maxCV float64, minSamples int) MarketReport {
	premium, standard := ComputeSegmented(pool, HasPremiumFinish)
	return MarketReport{
		Overall:  Compute(pool),
		Premium:  premium,
		Standard: standard,
		Quality:  AssessDataQuality(pool, maxCV, minSamples),
	}
}

// median expects sorted input.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
