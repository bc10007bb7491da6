package recommend

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/nikita-tita/cian-analyzer-sub002/internal/models"
	"github.com/nikita-tita/cian-analyzer-sub002/internal/stats"
)

// Overpricing bands, in percent over the fair price.
const (
	overpricingCritical = 15.0
	overpricingHigh     = 10.0
	overpricingModerate = 5.0
	underpricedBelow    = -5.0
)

// Presentation thresholds: listings below them lose contacts before
// price even matters.
const (
	minPhotoCount        = 8
	minDescriptionLength = 300
)

// renovationCostPerSqmStep approximates what one finish-level upgrade
// costs per square meter on the secondary market.
const renovationCostPerSqmStep = 15000.0

// Builder turns analysis results into a prioritized action list for
// the seller. Priority 1 is "do this now", priority 4 is advisory.
type Builder struct {
	logger *logrus.Logger
}

func NewBuilder(logger *logrus.Logger) *Builder {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return &Builder{logger: logger}
}

// Build assembles pricing, strategy, improvement, presentation and
// market advice, sorted by priority and then by return on investment.
func (b *Builder) Build(
	target *models.TargetProperty,
	fair models.FairPriceResult,
	scenarios []models.PriceScenario,
	quality stats.DataQuality,
) []models.Recommendation {
	var recs []models.Recommendation

	if !fair.Insufficient {
		if rec, ok := pricingAdvice(target, fair); ok {
			recs = append(recs, rec)
		}
		if rec, ok := renovationAdvice(target, fair); ok {
			recs = append(recs, rec)
		}
	}
	if rec, ok := strategyAdvice(scenarios); ok {
		recs = append(recs, rec)
	}
	recs = append(recs, presentationAdvice(target)...)
	if rec, ok := marketAdvice(quality); ok {
		recs = append(recs, rec)
	}

	sortRecommendations(recs)

	b.logger.WithField("count", len(recs)).Debug("Recommendations built")
	return recs
}

// sortRecommendations orders by priority, then by ROI descending inside
// a priority. Advice without an ROI sorts after advice that has one.
func sortRecommendations(recs []models.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Priority != recs[j].Priority {
			return recs[i].Priority < recs[j].Priority
		}
		ri, rj := recs[i].ROIPercent, recs[j].ROIPercent
		switch {
		case ri != nil && rj != nil:
			return *ri > *rj
		case ri != nil:
			return true
		default:
			return false
		}
	})
}

func pricingAdvice(target *models.TargetProperty, fair models.FairPriceResult) (models.Recommendation, bool) {
	over := fair.OverpricingPercent
	impact := map[string]float64{
		"current_price": target.Price,
		"fair_price":    fair.FairPriceTotal,
		"difference":    target.Price - fair.FairPriceTotal,
	}

	switch {
	case over > overpricingCritical:
		return models.Recommendation{
			Priority: 1,
			Category: models.CategoryPricing,
			Message:  fmt.Sprintf("Asking price is %.1f%% above the market fair value", over),
			Action:   fmt.Sprintf("Reduce the price to %.0f", fair.FairPriceTotal),
			ExpectedResult: "At this level the listing competes with every correctly priced " +
				"alternative and may stay unsold for a year or more",
			FinancialImpact: impact,
		}, true
	case over > overpricingHigh:
		return models.Recommendation{
			Priority:        2,
			Category:        models.CategoryPricing,
			Message:         fmt.Sprintf("Asking price is %.1f%% above the market fair value", over),
			Action:          fmt.Sprintf("Reduce the price toward %.0f or plan staged cuts", fair.FairPriceTotal),
			ExpectedResult:  "Expect months of idle exposure unless the price moves",
			FinancialImpact: impact,
		}, true
	case over > overpricingModerate:
		return models.Recommendation{
			Priority:        3,
			Category:        models.CategoryPricing,
			Message:         fmt.Sprintf("Asking price is %.1f%% above the market fair value", over),
			Action:          "Hold if time permits, otherwise trim the premium",
			ExpectedResult:  "A small premium is defensible for a strong listing",
			FinancialImpact: impact,
		}, true
	case over < underpricedBelow:
		return models.Recommendation{
			Priority:        4,
			Category:        models.CategoryPricing,
			Message:         fmt.Sprintf("Asking price is %.1f%% below the market fair value", -over),
			Action:          fmt.Sprintf("Consider raising the price toward %.0f", fair.FairPriceTotal),
			ExpectedResult:  "The listing leaves money on the table but should sell quickly",
			FinancialImpact: impact,
		}, true
	default:
		return models.Recommendation{
			Priority:        4,
			Category:        models.CategoryPricing,
			Message:         "Asking price is in line with the market",
			Action:          "Keep the current price",
			ExpectedResult:  "Normal exposure for the segment",
			FinancialImpact: impact,
		}, true
	}
}

// renovationAdvice evaluates upgrading the finish to the segment norm.
// The investment is reported even when it does not pay back: a negative
// ROI is a "don't do this" and must reach the seller.
func renovationAdvice(target *models.TargetProperty, fair models.FairPriceResult) (models.Recommendation, bool) {
	var finishAdj *models.Adjustment
	for i := range fair.Adjustments {
		if fair.Adjustments[i].Field == "finish_level" {
			finishAdj = &fair.Adjustments[i]
			break
		}
	}
	if finishAdj == nil || finishAdj.Multiplier >= 1 {
		return models.Recommendation{}, false
	}

	targetRank, okT := models.FinishLevel(finishAdj.TargetValue).Rank()
	refRank, okR := models.FinishLevel(finishAdj.ReferenceValue).Rank()
	if !okT || !okR || refRank <= targetRank {
		return models.Recommendation{}, false
	}

	steps := refRank - targetRank
	cost := target.TotalArea * renovationCostPerSqmStep * float64(steps)
	if cost <= 0 {
		return models.Recommendation{}, false
	}
	// removing the finish penalty restores the reference-level value
	gain := fair.FairPriceTotal * (1/finishAdj.Multiplier - 1)
	roi := (gain - cost) / cost * 100

	rec := models.Recommendation{
		Category:   models.CategoryImprovement,
		ROIPercent: &roi,
		FinancialImpact: map[string]float64{
			"renovation_cost": cost,
			"value_gain":      gain,
			"net_effect":      gain - cost,
		},
	}
	if roi > 0 {
		rec.Priority = 3
		rec.Message = fmt.Sprintf("Finish level %s is below the segment norm %s", finishAdj.TargetValue, finishAdj.ReferenceValue)
		rec.Action = fmt.Sprintf("Renovate to the %s level for about %.0f", finishAdj.ReferenceValue, cost)
		rec.ExpectedResult = fmt.Sprintf("Value gain %.0f, ROI %.0f%%", gain, roi)
	} else {
		rec.Priority = 4
		rec.Message = fmt.Sprintf("Renovating to the %s level does not pay back", finishAdj.ReferenceValue)
		rec.Action = "Sell as is; price the finish gap in instead"
		rec.ExpectedResult = fmt.Sprintf("Investment %.0f returns only %.0f, ROI %.0f%%", cost, gain, roi)
	}
	return rec, true
}

// strategyAdvice points at the scenario with the best expected value.
func strategyAdvice(scenarios []models.PriceScenario) (models.Recommendation, bool) {
	if len(scenarios) == 0 {
		return models.Recommendation{}, false
	}
	best := scenarios[0]
	for _, sc := range scenarios[1:] {
		if sc.ExpectedValue > best.ExpectedValue {
			best = sc
		}
	}

	return models.Recommendation{
		Priority: 2,
		Category: models.CategoryStrategy,
		Message:  fmt.Sprintf("Best expected value: %s", best.Name),
		Action:   fmt.Sprintf("List at %.0f", best.StartPrice),
		ExpectedResult: fmt.Sprintf("Expected sale around month %d, net %.0f after costs",
			best.ExpectedSaleMonth, best.Financial.NetAfterOpportunity),
		FinancialImpact: map[string]float64{
			"start_price":    best.StartPrice,
			"expected_net":   best.Financial.NetAfterOpportunity,
			"expected_value": best.ExpectedValue,
		},
	}, true
}

func presentationAdvice(target *models.TargetProperty) []models.Recommendation {
	var recs []models.Recommendation
	if target.PhotoCount != nil && *target.PhotoCount < minPhotoCount {
		recs = append(recs, models.Recommendation{
			Priority:       3,
			Category:       models.CategoryPresentation,
			Message:        fmt.Sprintf("Only %d photos, buyers expect at least %d", *target.PhotoCount, minPhotoCount),
			Action:         "Add daylight photos of every room, the entrance and the view",
			ExpectedResult: "More contacts from the same exposure",
		})
	}
	if target.DescriptionLength != nil && *target.DescriptionLength < minDescriptionLength {
		recs = append(recs, models.Recommendation{
			Priority:       4,
			Category:       models.CategoryPresentation,
			Message:        fmt.Sprintf("Description is %d characters, under the %d that converts", *target.DescriptionLength, minDescriptionLength),
			Action:         "Describe the layout, the building, the yard and the neighborhood",
			ExpectedResult: "Fewer dead-end calls, better qualified buyers",
		})
	}
	return recs
}

func marketAdvice(quality stats.DataQuality) (models.Recommendation, bool) {
	if quality.Reliable {
		return models.Recommendation{}, false
	}
	return models.Recommendation{
		Priority:       4,
		Category:       models.CategoryMarket,
		Message:        fmt.Sprintf("Comparable data is weak: %s", quality.Verdict),
		Action:         "Widen the search radius or relax the filters before trusting the estimate",
		ExpectedResult: "A stabler fair price on the next run",
	}, true
}
