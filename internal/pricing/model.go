package pricing

import (
	"github.com/sirupsen/logrus"

	"github.com/nikita-tita/cian-analyzer-sub002/internal/models"
	"github.com/nikita-tita/cian-analyzer-sub002/internal/stats"
)

// minSegmentSize is how many comparables a finish segment needs before
// its median replaces the overall median as the anchor.
const minSegmentSize = 3

// Model estimates a fair price by anchoring on the segment median and
// multiplying per-attribute coefficients. Every factor it applies is
// returned in the result, so a report can show the full chain from
// market median to final number.
type Model struct {
	logger *logrus.Logger
}

func NewModel(logger *logrus.Logger) *Model {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return &Model{logger: logger}
}

// Evaluate computes the fair price of the target against a filtered
// pool and its market report. The pool must already be deduplicated and
// outlier-filtered. Inputs are not mutated.
func (m *Model) Evaluate(target *models.TargetProperty, market stats.MarketReport, pool []models.ComparableProperty) models.FairPriceResult {
	if market.Overall.Count == 0 || market.Overall.Median <= 0 {
		m.logger.Warn("Fair price not computed: empty market report")
		return models.FairPriceResult{
			Insufficient: true,
			Reason:       "no comparables after filtering",
		}
	}

	base, segment := anchorSegment(target, market)
	res := models.FairPriceResult{
		BasePricePerSqm: base,
		Segment:         segment,
	}

	coefficients := []func() (models.Adjustment, bool){
		func() (models.Adjustment, bool) { return finishCoefficient(target, pool) },
		func() (models.Adjustment, bool) { return ceilingCoefficient(target, pool) },
		func() (models.Adjustment, bool) { return bathroomCoefficient(target, pool) },
		func() (models.Adjustment, bool) { return windowCoefficient(target, pool) },
		func() (models.Adjustment, bool) { return elevatorCoefficient(target, pool) },
		func() (models.Adjustment, bool) { return livingRatioCoefficient(target, pool) },
		func() (models.Adjustment, bool) { return viewCoefficient(target) },
		func() (models.Adjustment, bool) { return qualityCoefficient(target) },
		func() (models.Adjustment, bool) { return ownershipCoefficient(target) },
	}

	total := 1.0
	for _, coefficient := range coefficients {
		if adj, ok := coefficient(); ok {
			res.Adjustments = append(res.Adjustments, adj)
			total *= adj.Multiplier
		}
	}

	if adj, note := areaSizeEffect(target, pool, base); adj != nil {
		res.Adjustments = append(res.Adjustments, *adj)
		total *= adj.Multiplier
	} else if note != nil {
		res.Skipped = append(res.Skipped, *note)
	}
	if adj, note := floorPositionEffect(target, pool); adj != nil {
		res.Adjustments = append(res.Adjustments, *adj)
		total *= adj.Multiplier
	} else if note != nil {
		res.Skipped = append(res.Skipped, *note)
	}

	res.TotalMultiplier = total
	res.FairPricePerSqm = base * total
	res.FairPriceTotal = res.FairPricePerSqm * target.TotalArea
	if res.FairPriceTotal > 0 {
		res.OverpricingPercent = (target.Price - res.FairPriceTotal) / res.FairPriceTotal * 100
	}

	m.logger.WithFields(logrus.Fields{
		"segment":          segment,
		"base_per_sqm":     base,
		"total_multiplier": total,
		"fair_total":       res.FairPriceTotal,
		"overpricing_pct":  res.OverpricingPercent,
		"adjustments":      len(res.Adjustments),
	}).Debug("Fair price computed")
	return res
}

// anchorSegment picks the median to anchor on. Premium-finish targets
// compare against the premium segment when it has enough observations,
// everything else against the standard one.
func anchorSegment(target *models.TargetProperty, market stats.MarketReport) (float64, string) {
	if target.FinishLevel != nil {
		if target.FinishLevel.Premium() {
			if market.Premium.Count >= minSegmentSize && market.Premium.Median > 0 {
				return market.Premium.Median, "premium_finish"
			}
		} else if market.Standard.Count >= minSegmentSize && market.Standard.Median > 0 {
			return market.Standard.Median, "standard_finish"
		}
	}
	return market.Overall.Median, "overall"
}
