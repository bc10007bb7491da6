package pricing

import (
	"fmt"
	"sort"

	"github.com/nikita-tita/cian-analyzer-sub002/internal/models"
)

const (
	areaBand       = 0.10
	minAreaSamples = 6
	// minAreaSpreadSqm is the smallest area range where a size slope is
	// distinguishable from noise.
	minAreaSpreadSqm = 15.0

	floorBand          = 0.10
	minFloorBinSamples = 2
)

// areaSizeEffect fits a least-squares line of price per sqm against
// area over the pool and positions the target on it. Larger apartments
// usually trade at a lower unit price; the slope direction is learned,
// not assumed. Returns a skip note when the pool is too thin to fit.
func areaSizeEffect(t *models.TargetProperty, pool []models.ComparableProperty, basePricePerSqm float64) (*models.Adjustment, *models.SkipNote) {
	var xs, ys []float64
	for i := range pool {
		ppsqm := pool[i].PricePerSqm
		if ppsqm <= 0 {
			ppsqm = pool[i].DerivedPricePerSqm()
		}
		if pool[i].TotalArea <= 0 || ppsqm <= 0 {
			continue
		}
		xs = append(xs, pool[i].TotalArea)
		ys = append(ys, ppsqm)
	}

	if len(xs) < minAreaSamples {
		return nil, &models.SkipNote{
			Field:       "area_size_effect",
			Cause:       fmt.Sprintf("need %d comparables with area, have %d", minAreaSamples, len(xs)),
			SampleCount: len(xs),
		}
	}
	minArea, maxArea := xs[0], xs[0]
	for _, x := range xs {
		if x < minArea {
			minArea = x
		}
		if x > maxArea {
			maxArea = x
		}
	}
	if maxArea-minArea < minAreaSpreadSqm {
		return nil, &models.SkipNote{
			Field:       "area_size_effect",
			Cause:       fmt.Sprintf("area spread %.1f sqm too narrow, need %.1f", maxArea-minArea, minAreaSpreadSqm),
			SampleCount: len(xs),
		}
	}

	slope := leastSquaresSlope(xs, ys)
	refArea := medianOf(xs)
	delta := slope * (t.TotalArea - refArea)
	if basePricePerSqm <= 0 {
		return nil, nil
	}
	mult := clampMultiplier(1+delta/basePricePerSqm, areaBand)
	if mult > 0.999 && mult < 1.001 {
		return nil, nil
	}

	return &models.Adjustment{
		Field:          "area_size_effect",
		TargetValue:    fmt.Sprintf("%.1f", t.TotalArea),
		ReferenceValue: fmt.Sprintf("%.1f", refArea),
		Multiplier:     mult,
		Description:    fmt.Sprintf("unit price slope %.0f per sqm of area", slope),
		Basis: &models.AdaptiveBasis{
			Method:      "least_squares_slope",
			SampleCount: len(xs),
		},
	}, nil
}

type floorBin string

const (
	binFirst  floorBin = "first"
	binMiddle floorBin = "middle"
	binTop    floorBin = "top"
)

func binOf(floor, floorTotal int) floorBin {
	switch {
	case floor == 1:
		return binFirst
	case floor >= floorTotal:
		return binTop
	default:
		return binMiddle
	}
}

// floorPositionEffect compares the pool's average unit price on the
// target's floor bin (first, middle, top) against the middle bin. The
// first-floor discount and top-floor premium differ across buildings,
// so both are learned from the pool. Fires only when the target sits
// outside the middle.
func floorPositionEffect(t *models.TargetProperty, pool []models.ComparableProperty) (*models.Adjustment, *models.SkipNote) {
	if t.Floor == nil || t.FloorTotal == nil {
		return nil, nil
	}
	targetBin := binOf(*t.Floor, *t.FloorTotal)
	if targetBin == binMiddle {
		return nil, nil
	}

	sums := map[floorBin]float64{}
	counts := map[floorBin]int{}
	for i := range pool {
		c := &pool[i]
		if c.Floor == nil || c.FloorTotal == nil {
			continue
		}
		ppsqm := c.PricePerSqm
		if ppsqm <= 0 {
			ppsqm = c.DerivedPricePerSqm()
		}
		if ppsqm <= 0 {
			continue
		}
		bin := binOf(*c.Floor, *c.FloorTotal)
		sums[bin] += ppsqm
		counts[bin]++
	}

	if counts[targetBin] < minFloorBinSamples || counts[binMiddle] < minFloorBinSamples {
		return nil, &models.SkipNote{
			Field: "floor_position",
			Cause: fmt.Sprintf("need %d comparables on %s and middle floors, have %d and %d",
				minFloorBinSamples, targetBin, counts[targetBin], counts[binMiddle]),
			SampleCount: counts[targetBin] + counts[binMiddle],
		}
	}

	targetAvg := sums[targetBin] / float64(counts[targetBin])
	middleAvg := sums[binMiddle] / float64(counts[binMiddle])
	if middleAvg <= 0 {
		return nil, nil
	}
	mult := clampMultiplier(targetAvg/middleAvg, floorBand)
	if mult > 0.999 && mult < 1.001 {
		return nil, nil
	}

	return &models.Adjustment{
		Field:          "floor_position",
		TargetValue:    string(targetBin),
		ReferenceValue: string(binMiddle),
		Multiplier:     mult,
		Description:    fmt.Sprintf("%s floor trades at %.1f%% of middle floors", targetBin, mult*100),
		Basis: &models.AdaptiveBasis{
			Method:      "floor_bin_average",
			SampleCount: counts[targetBin] + counts[binMiddle],
		},
	}, nil
}

func leastSquaresSlope(xs, ys []float64) float64 {
	n := float64(len(xs))
	var sx, sy, sxx, sxy float64
	for i := range xs {
		sx += xs[i]
		sy += ys[i]
		sxx += xs[i] * xs[i]
		sxy += xs[i] * ys[i]
	}
	denom := n*sxx - sx*sx
	if denom == 0 {
		return 0
	}
	return (n*sxy - sx*sy) / denom
}

func medianOf(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
