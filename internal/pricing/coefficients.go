package pricing

import (
	"fmt"
	"sort"

	"github.com/nikita-tita/cian-analyzer-sub002/internal/models"
)

// Per-attribute premiums and clamp bands. Every coefficient is capped
// inside its band so one attribute can never dominate the estimate.
const (
	finishStepPct = 0.05
	finishBand    = 0.10

	ceilingPerMeterPct = 0.10
	ceilingBand        = 0.05
	defaultCeiling     = 2.70

	bathroomStepPct  = 0.05
	bathroomBand     = 0.10
	defaultBathrooms = 1

	windowStepPct = 0.02
	windowBand    = 0.04

	elevatorStepPct  = 0.015
	elevatorBand     = 0.03
	defaultElevators = 1

	livingRatioSlope   = 0.25
	livingRatioBand    = 0.05
	defaultLivingRatio = 0.55

	viewBand = 0.05

	qualityStepPct = 0.02
	qualityBand    = 0.06
	qualityNeutral = 3

	ownershipBand = 0.10

	// minReferenceSamples is how many observations an attribute needs
	// before the pool (and not a market default) defines the reference.
	minReferenceSamples = 3
)

var viewPremiums = map[models.ViewType]float64{
	models.ViewIndustrial: -0.04,
	models.ViewStreet:     0,
	models.ViewCourtyard:  0.015,
	models.ViewPark:       0.03,
	models.ViewWater:      0.05,
}

var ownershipDiscounts = map[models.OwnershipStatus]float64{
	models.OwnershipClean:      0,
	models.OwnershipMortgage:   -0.03,
	models.OwnershipEncumbered: -0.07,
}

// clampMultiplier caps a multiplier inside [1-band, 1+band].
func clampMultiplier(mult, band float64) float64 {
	if mult < 1-band {
		return 1 - band
	}
	if mult > 1+band {
		return 1 + band
	}
	return mult
}

func finishCoefficient(t *models.TargetProperty, pool []models.ComparableProperty) (models.Adjustment, bool) {
	if t.FinishLevel == nil {
		return models.Adjustment{}, false
	}
	targetRank, ok := t.FinishLevel.Rank()
	if !ok {
		return models.Adjustment{}, false
	}
	refLevel, refRank := referenceFinish(pool)
	if targetRank == refRank {
		return models.Adjustment{}, false
	}

	mult := clampMultiplier(1+float64(targetRank-refRank)*finishStepPct, finishBand)
	return models.Adjustment{
		Field:          "finish_level",
		TargetValue:    string(*t.FinishLevel),
		ReferenceValue: string(refLevel),
		Multiplier:     mult,
		Description:    fmt.Sprintf("renovation %s vs typical %s", *t.FinishLevel, refLevel),
	}, true
}

func ceilingCoefficient(t *models.TargetProperty, pool []models.ComparableProperty) (models.Adjustment, bool) {
	if t.CeilingHeight == nil {
		return models.Adjustment{}, false
	}
	ref := referenceCeiling(pool)
	diff := *t.CeilingHeight - ref
	if diff > -0.01 && diff < 0.01 {
		return models.Adjustment{}, false
	}

	mult := clampMultiplier(1+diff*ceilingPerMeterPct, ceilingBand)
	return models.Adjustment{
		Field:          "ceiling_height",
		TargetValue:    fmt.Sprintf("%.2f", *t.CeilingHeight),
		ReferenceValue: fmt.Sprintf("%.2f", ref),
		Multiplier:     mult,
		Description:    fmt.Sprintf("ceilings %.2fm vs typical %.2fm", *t.CeilingHeight, ref),
	}, true
}

func bathroomCoefficient(t *models.TargetProperty, pool []models.ComparableProperty) (models.Adjustment, bool) {
	if t.BathroomCount == nil {
		return models.Adjustment{}, false
	}
	ref := referenceIntAttr(pool, func(c *models.ComparableProperty) *int { return c.BathroomCount }, defaultBathrooms)
	diff := *t.BathroomCount - ref
	if diff == 0 {
		return models.Adjustment{}, false
	}

	mult := clampMultiplier(1+float64(diff)*bathroomStepPct, bathroomBand)
	return models.Adjustment{
		Field:          "bathroom_count",
		TargetValue:    fmt.Sprintf("%d", *t.BathroomCount),
		ReferenceValue: fmt.Sprintf("%d", ref),
		Multiplier:     mult,
		Description:    fmt.Sprintf("%d bathrooms vs typical %d", *t.BathroomCount, ref),
	}, true
}

func windowCoefficient(t *models.TargetProperty, pool []models.ComparableProperty) (models.Adjustment, bool) {
	if t.WindowType == nil {
		return models.Adjustment{}, false
	}
	targetRank, ok := t.WindowType.Rank()
	if !ok {
		return models.Adjustment{}, false
	}
	refType := referenceWindow(pool)
	refRank, _ := refType.Rank()
	if targetRank == refRank {
		return models.Adjustment{}, false
	}

	mult := clampMultiplier(1+float64(targetRank-refRank)*windowStepPct, windowBand)
	return models.Adjustment{
		Field:          "window_type",
		TargetValue:    string(*t.WindowType),
		ReferenceValue: string(refType),
		Multiplier:     mult,
		Description:    fmt.Sprintf("windows %s vs typical %s", *t.WindowType, refType),
	}, true
}

func elevatorCoefficient(t *models.TargetProperty, pool []models.ComparableProperty) (models.Adjustment, bool) {
	if t.ElevatorCount == nil {
		return models.Adjustment{}, false
	}
	ref := referenceIntAttr(pool, func(c *models.ComparableProperty) *int { return c.ElevatorCount }, defaultElevators)
	diff := *t.ElevatorCount - ref
	if diff == 0 {
		return models.Adjustment{}, false
	}

	mult := clampMultiplier(1+float64(diff)*elevatorStepPct, elevatorBand)
	return models.Adjustment{
		Field:          "elevator_count",
		TargetValue:    fmt.Sprintf("%d", *t.ElevatorCount),
		ReferenceValue: fmt.Sprintf("%d", ref),
		Multiplier:     mult,
		Description:    fmt.Sprintf("%d elevators vs typical %d", *t.ElevatorCount, ref),
	}, true
}

func livingRatioCoefficient(t *models.TargetProperty, pool []models.ComparableProperty) (models.Adjustment, bool) {
	if t.LivingArea == nil || t.TotalArea <= 0 {
		return models.Adjustment{}, false
	}
	ratio := *t.LivingArea / t.TotalArea
	ref := referenceLivingRatio(pool)
	diff := ratio - ref
	if diff > -0.01 && diff < 0.01 {
		return models.Adjustment{}, false
	}

	mult := clampMultiplier(1+diff*livingRatioSlope, livingRatioBand)
	return models.Adjustment{
		Field:          "living_ratio",
		TargetValue:    fmt.Sprintf("%.2f", ratio),
		ReferenceValue: fmt.Sprintf("%.2f", ref),
		Multiplier:     mult,
		Description:    fmt.Sprintf("living share %.0f%% vs typical %.0f%%", ratio*100, ref*100),
	}, true
}

func viewCoefficient(t *models.TargetProperty) (models.Adjustment, bool) {
	if t.View == nil {
		return models.Adjustment{}, false
	}
	premium, ok := viewPremiums[*t.View]
	if !ok || premium == 0 {
		return models.Adjustment{}, false
	}

	mult := clampMultiplier(1+premium, viewBand)
	return models.Adjustment{
		Field:          "view",
		TargetValue:    string(*t.View),
		ReferenceValue: string(models.ViewStreet),
		Multiplier:     mult,
		Description:    fmt.Sprintf("windows face %s", *t.View),
	}, true
}

// Material quality is scored by the operator from listing photos, so it
// exists for the target only and compares against the neutral midpoint.
func qualityCoefficient(t *models.TargetProperty) (models.Adjustment, bool) {
	if t.MaterialQuality == nil || *t.MaterialQuality == qualityNeutral {
		return models.Adjustment{}, false
	}

	mult := clampMultiplier(1+float64(*t.MaterialQuality-qualityNeutral)*qualityStepPct, qualityBand)
	return models.Adjustment{
		Field:          "material_quality",
		TargetValue:    fmt.Sprintf("%d", *t.MaterialQuality),
		ReferenceValue: fmt.Sprintf("%d", qualityNeutral),
		Multiplier:     mult,
		Description:    fmt.Sprintf("materials scored %d of 5", *t.MaterialQuality),
	}, true
}

func ownershipCoefficient(t *models.TargetProperty) (models.Adjustment, bool) {
	if t.Ownership == nil {
		return models.Adjustment{}, false
	}
	discount, ok := ownershipDiscounts[*t.Ownership]
	if !ok || discount == 0 {
		return models.Adjustment{}, false
	}

	mult := clampMultiplier(1+discount, ownershipBand)
	return models.Adjustment{
		Field:          "ownership",
		TargetValue:    string(*t.Ownership),
		ReferenceValue: string(models.OwnershipClean),
		Multiplier:     mult,
		Description:    fmt.Sprintf("title %s", *t.Ownership),
	}, true
}

// referenceFinish is the most common finish level in the pool, falling
// back to a cosmetic renovation when the pool does not say.
func referenceFinish(pool []models.ComparableProperty) (models.FinishLevel, int) {
	counts := map[models.FinishLevel]int{}
	for i := range pool {
		if pool[i].FinishLevel != nil {
			if _, ok := pool[i].FinishLevel.Rank(); ok {
				counts[*pool[i].FinishLevel]++
			}
		}
	}
	best, bestCount, total := models.FinishCosmetic, 0, 0
	for level, n := range counts {
		total += n
		r, _ := level.Rank()
		br, _ := best.Rank()
		if n > bestCount || (n == bestCount && r < br) {
			best, bestCount = level, n
		}
	}
	if total < minReferenceSamples {
		best = models.FinishCosmetic
	}
	rank, _ := best.Rank()
	return best, rank
}

func referenceCeiling(pool []models.ComparableProperty) float64 {
	var values []float64
	for i := range pool {
		if pool[i].CeilingHeight != nil {
			values = append(values, *pool[i].CeilingHeight)
		}
	}
	if len(values) < minReferenceSamples {
		return defaultCeiling
	}
	sort.Float64s(values)
	n := len(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}

func referenceIntAttr(pool []models.ComparableProperty, get func(*models.ComparableProperty) *int, fallback int) int {
	counts := map[int]int{}
	total := 0
	for i := range pool {
		if v := get(&pool[i]); v != nil {
			counts[*v]++
			total++
		}
	}
	if total < minReferenceSamples {
		return fallback
	}
	best, bestCount := fallback, 0
	for v, n := range counts {
		if n > bestCount || (n == bestCount && v < best) {
			best, bestCount = v, n
		}
	}
	return best
}

func referenceWindow(pool []models.ComparableProperty) models.WindowType {
	counts := map[models.WindowType]int{}
	total := 0
	for i := range pool {
		if pool[i].WindowType != nil {
			if _, ok := pool[i].WindowType.Rank(); ok {
				counts[*pool[i].WindowType]++
				total++
			}
		}
	}
	if total < minReferenceSamples {
		return models.WindowPVC
	}
	best, bestCount := models.WindowPVC, 0
	for w, n := range counts {
		r, _ := w.Rank()
		br, _ := best.Rank()
		if n > bestCount || (n == bestCount && r < br) {
			best, bestCount = w, n
		}
	}
	return best
}

func referenceLivingRatio(pool []models.ComparableProperty) float64 {
	var sum float64
	var n int
	for i := range pool {
		if ratio, ok := pool[i].LivingRatio(); ok {
			sum += ratio
			n++
		}
	}
	if n < minReferenceSamples {
		return defaultLivingRatio
	}
	return sum / float64(n)
}
