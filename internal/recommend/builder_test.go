package recommend

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikita-tita/cian-analyzer-sub002/internal/models"
	"github.com/nikita-tita/cian-analyzer-sub002/internal/stats"
)

func testBuilder() *Builder {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewBuilder(logger)
}

func intPtr(v int) *int { return &v }

func fairResult(price, fairTotal float64) models.FairPriceResult {
	return models.FairPriceResult{
		FairPriceTotal:     fairTotal,
		FairPricePerSqm:    fairTotal / 50,
		OverpricingPercent: (price - fairTotal) / fairTotal * 100,
	}
}

func TestPricingAdviceBands(t *testing.T) {
	tests := []struct {
		name         string
		price        float64
		wantPriority int
		wantBelow    bool
	}{
		{"critical overpricing", 12000000, 1, false}, // +20%
		{"high overpricing", 11200000, 2, false},     // +12%
		{"moderate overpricing", 10700000, 3, false}, // +7%
		{"fair price", 10200000, 4, false},           // +2%
		{"underpriced", 9000000, 4, true},            // -10%
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := models.TargetProperty{Price: tt.price, TotalArea: 50, Rooms: 2}
			rec, ok := pricingAdvice(&target, fairResult(tt.price, 10000000))

			require.True(t, ok)
			assert.Equal(t, tt.wantPriority, rec.Priority)
			assert.Equal(t, models.CategoryPricing, rec.Category)
			if tt.wantBelow {
				assert.Contains(t, rec.Message, "below")
			}
			assert.InDelta(t, tt.price-10000000, rec.FinancialImpact["difference"], 1e-6)
		})
	}
}

func TestRenovationAdvice(t *testing.T) {
	target := models.TargetProperty{Price: 10000000, TotalArea: 50, Rooms: 2}
	finishAdj := models.Adjustment{
		Field:          "finish_level",
		TargetValue:    "needs_repair",
		ReferenceValue: "euro",
		Multiplier:     0.90,
	}

	t.Run("positive ROI becomes an improvement action", func(t *testing.T) {
		fair := models.FairPriceResult{FairPriceTotal: 20000000, Adjustments: []models.Adjustment{finishAdj}}
		rec, ok := renovationAdvice(&target, fair)

		require.True(t, ok)
		assert.Equal(t, 3, rec.Priority)
		assert.Equal(t, models.CategoryImprovement, rec.Category)
		require.NotNil(t, rec.ROIPercent)
		// gain 20M*(1/0.9-1)=2.22M, cost 50*15000*2=1.5M
		assert.InDelta(t, 48.15, *rec.ROIPercent, 0.01)
		assert.InDelta(t, 1500000, rec.FinancialImpact["renovation_cost"], 1e-6)
	})

	t.Run("negative ROI is reported, not suppressed", func(t *testing.T) {
		fair := models.FairPriceResult{FairPriceTotal: 10000000, Adjustments: []models.Adjustment{finishAdj}}
		rec, ok := renovationAdvice(&target, fair)

		require.True(t, ok)
		assert.Equal(t, 4, rec.Priority)
		require.NotNil(t, rec.ROIPercent)
		assert.Negative(t, *rec.ROIPercent)
		assert.Contains(t, rec.Message, "does not pay back")
	})

	t.Run("no finish gap, no advice", func(t *testing.T) {
		fair := models.FairPriceResult{FairPriceTotal: 10000000}
		_, ok := renovationAdvice(&target, fair)
		assert.False(t, ok)
	})

	t.Run("finish above the norm is not a renovation case", func(t *testing.T) {
		fair := models.FairPriceResult{FairPriceTotal: 10000000, Adjustments: []models.Adjustment{{
			Field: "finish_level", TargetValue: "designer", ReferenceValue: "cosmetic", Multiplier: 1.10,
		}}}
		_, ok := renovationAdvice(&target, fair)
		assert.False(t, ok)
	})
}

func TestStrategyAdvicePicksBestExpectedValue(t *testing.T) {
	scenarios := []models.PriceScenario{
		{Type: models.ScenarioFast, Name: "Fast sale below market", StartPrice: 9300000, ExpectedValue: 7500000},
		{Type: models.ScenarioOptimal, Name: "Optimal at fair value", StartPrice: 10000000, ExpectedValue: 8100000,
			ExpectedSaleMonth: 2, Financial: models.FinancialOutcome{NetAfterOpportunity: 8300000}},
		{Type: models.ScenarioMaximumPrice, Name: "Maximum price for a patient seller", StartPrice: 11200000, ExpectedValue: 7900000},
	}

	rec, ok := strategyAdvice(scenarios)

	require.True(t, ok)
	assert.Equal(t, 2, rec.Priority)
	assert.Equal(t, models.CategoryStrategy, rec.Category)
	assert.Contains(t, rec.Message, "Optimal at fair value")
	assert.InDelta(t, 10000000, rec.FinancialImpact["start_price"], 1e-6)

	_, ok = strategyAdvice(nil)
	assert.False(t, ok)
}

func TestPresentationAdvice(t *testing.T) {
	target := models.TargetProperty{
		Price: 10000000, TotalArea: 50, Rooms: 2,
		PhotoCount:        intPtr(3),
		DescriptionLength: intPtr(120),
	}

	recs := presentationAdvice(&target)

	require.Len(t, recs, 2)
	assert.Equal(t, 3, recs[0].Priority)
	assert.Equal(t, models.CategoryPresentation, recs[0].Category)
	assert.Equal(t, 4, recs[1].Priority)

	bare := models.TargetProperty{Price: 10000000, TotalArea: 50, Rooms: 2}
	assert.Empty(t, presentationAdvice(&bare))
}

func TestMarketAdvice(t *testing.T) {
	weak := stats.DataQuality{Reliable: false, Verdict: "only 3 comparables, 8 required"}
	rec, ok := marketAdvice(weak)
	require.True(t, ok)
	assert.Equal(t, 4, rec.Priority)
	assert.Equal(t, models.CategoryMarket, rec.Category)
	assert.Contains(t, rec.Message, "only 3 comparables")

	_, ok = marketAdvice(stats.DataQuality{Reliable: true})
	assert.False(t, ok)
}

func TestSortRecommendations(t *testing.T) {
	roiHigh, roiLow := 50.0, 10.0
	recs := []models.Recommendation{
		{Priority: 3, Category: models.CategoryPresentation},
		{Priority: 3, Category: models.CategoryImprovement, ROIPercent: &roiLow},
		{Priority: 1, Category: models.CategoryPricing},
		{Priority: 3, Category: models.CategoryImprovement, ROIPercent: &roiHigh},
	}

	sortRecommendations(recs)

	assert.Equal(t, 1, recs[0].Priority)
	require.NotNil(t, recs[1].ROIPercent)
	assert.InDelta(t, 50.0, *recs[1].ROIPercent, 1e-9)
	require.NotNil(t, recs[2].ROIPercent)
	assert.InDelta(t, 10.0, *recs[2].ROIPercent, 1e-9)
	assert.Nil(t, recs[3].ROIPercent)
}

func TestBuildOrdersByPriority(t *testing.T) {
	b := testBuilder()
	target := models.TargetProperty{
		Price: 12000000, TotalArea: 50, Rooms: 2,
		PhotoCount: intPtr(3),
	}
	fair := fairResult(12000000, 10000000) // +20%, critical
	scenarios := []models.PriceScenario{
		{Type: models.ScenarioOptimal, Name: "Optimal at fair value", StartPrice: 10000000, ExpectedValue: 8100000},
	}
	quality := stats.DataQuality{Reliable: false, Verdict: "price spread too wide"}

	recs := b.Build(&target, fair, scenarios, quality)

	require.NotEmpty(t, recs)
	assert.Equal(t, 1, recs[0].Priority)
	assert.Equal(t, models.CategoryPricing, recs[0].Category)
	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i].Priority, recs[i-1].Priority)
	}

	categories := map[models.RecommendationCategory]bool{}
	for _, r := range recs {
		categories[r.Category] = true
	}
	assert.True(t, categories[models.CategoryStrategy])
	assert.True(t, categories[models.CategoryPresentation])
	assert.True(t, categories[models.CategoryMarket])
}

func TestBuildSkipsValueAdviceWhenInsufficient(t *testing.T) {
	b := testBuilder()
	target := models.TargetProperty{Price: 12000000, TotalArea: 50, Rooms: 2}
	fair := models.FairPriceResult{Insufficient: true, Reason: "no comparables after filtering"}
	quality := stats.DataQuality{Reliable: false, Verdict: "no comparables"}

	recs := b.Build(&target, fair, nil, quality)

	for _, r := range recs {
		assert.NotEqual(t, models.CategoryPricing, r.Category)
		assert.NotEqual(t, models.CategoryImprovement, r.Category)
		assert.NotEqual(t, models.CategoryStrategy, r.Category)
	}
	require.Len(t, recs, 1)
	assert.Equal(t, models.CategoryMarket, recs[0].Category)
}
