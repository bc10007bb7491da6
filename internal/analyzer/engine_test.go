package analyzer

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikita-tita/cian-analyzer-sub002/config"
	"github.com/nikita-tita/cian-analyzer-sub002/internal/models"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func marketComp(street string, pricePerSqm float64) models.ComparableProperty {
	return models.ComparableProperty{
		Price:     pricePerSqm * 54,
		TotalArea: 54,
		Rooms:     2,
		Address:   "г. Москва, ул. " + street + ", д. 10",
		Source:    "cian",
	}
}

// marketPool is the cleaned pool from the two-room worked example:
// eight listings around 166 thousand rubles per square meter.
func marketPool() []models.ComparableProperty {
	streets := []string{"Арбат", "Пресненский Вал", "Остоженка", "Пятницкая", "Мясницкая", "Покровка", "Сретенка", "Волхонка"}
	values := []float64{163492, 167797, 164516, 166667, 165574, 168966, 166393, 167500}
	pool := make([]models.ComparableProperty, len(values))
	for i, v := range values {
		pool[i] = marketComp(streets[i], v)
	}
	return pool
}

func TestEngine_Analyze_FullPipeline(t *testing.T) {
	engine := NewEngine(nil, nil, quietLogger())

	comps := marketPool()
	// Same Arbat flat reposted on another platform at a higher price
	comps = append(comps, models.ComparableProperty{
		Price:     8900000,
		TotalArea: 54.2,
		Rooms:     2,
		Address:   "Арбат улица 10, Москва",
		Source:    "avito",
	})
	// A luxury mispost at half a million per square meter
	comps = append(comps, models.ComparableProperty{
		Price:     27000000,
		TotalArea: 54,
		Rooms:     2,
		Address:   "г. Москва, ул. Якиманка, д. 99",
		Source:    "cian",
	})
	// A broken record with no price
	comps = append(comps, models.ComparableProperty{TotalArea: 54, Rooms: 2})

	target := models.TargetProperty{Price: 11000000, TotalArea: 54, Rooms: 2}

	report, err := engine.Analyze(target, comps)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.NotEqual(t, uuid.Nil, report.ID)
	assert.False(t, report.GeneratedAt.IsZero())

	// 11 in, 8 survive validation, dedup and the outlier fence
	assert.Equal(t, 11, report.PoolSize)
	assert.Equal(t, 8, report.UsedPoolSize)

	require.Len(t, report.Duplicates.Discarded, 1)
	assert.Equal(t, "avito", report.Duplicates.Discarded[0].Comparable.Source)
	assert.Empty(t, report.Duplicates.Flagged)

	require.Len(t, report.Outliers, 1)
	assert.Equal(t, 500000.0, report.Outliers[0].Value)

	assert.Len(t, report.Warnings, 3)

	assert.Equal(t, 8, report.Market.Overall.Count)
	assert.Equal(t, 166530.0, report.Market.Overall.Median)
	assert.True(t, report.Market.Quality.Reliable)

	require.False(t, report.FairPrice.Insufficient)
	assert.Equal(t, "overall", report.FairPrice.Segment)
	assert.Empty(t, report.FairPrice.Adjustments)
	assert.InDelta(t, 8992620.0, report.FairPrice.FairPriceTotal, 0.01)
	assert.InDelta(t, 22.32, report.FairPrice.OverpricingPercent, 0.01)

	// All comparables share one area, so the size effect reports why it
	// stayed out instead of silently vanishing
	require.Len(t, report.FairPrice.Skipped, 1)
	assert.Equal(t, "area_size_effect", report.FairPrice.Skipped[0].Field)

	require.Len(t, report.Scenarios, 4)
	assert.Equal(t, models.ScenarioFast, report.Scenarios[0].Type)
	assert.Equal(t, models.ScenarioMaximumPrice, report.Scenarios[3].Type)

	// Overpriced by 22%: the critical pricing call leads, then strategy
	require.NotEmpty(t, report.Recommendations)
	first := report.Recommendations[0]
	assert.Equal(t, 1, first.Priority)
	assert.Equal(t, models.CategoryPricing, first.Category)
	require.Len(t, report.Recommendations, 2)
	assert.Equal(t, models.CategoryStrategy, report.Recommendations[1].Category)
}

func TestEngine_Analyze_InvalidTarget(t *testing.T) {
	engine := NewEngine(nil, nil, quietLogger())

	report, err := engine.Analyze(models.TargetProperty{TotalArea: 54, Rooms: 2}, marketPool())
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, errors.Is(err, models.ErrInvalidAttribute))
}

func TestEngine_Analyze_ThinPoolStillReports(t *testing.T) {
	engine := NewEngine(nil, nil, quietLogger())

	target := models.TargetProperty{Price: 9000000, TotalArea: 54, Rooms: 2}
	report, err := engine.Analyze(target, marketPool()[:3])
	require.NoError(t, err)

	assert.Equal(t, 3, report.UsedPoolSize)
	assert.Contains(t, report.Warnings, "3 comparables found, at least 8 required")

	// Thin data degrades confidence but still yields an estimate
	assert.False(t, report.FairPrice.Insufficient)
	assert.Len(t, report.Scenarios, 4)
}

func TestEngine_Analyze_EmptyPool(t *testing.T) {
	engine := NewEngine(nil, nil, quietLogger())

	target := models.TargetProperty{Price: 9000000, TotalArea: 54, Rooms: 2}
	report, err := engine.Analyze(target, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, report.UsedPoolSize)
	assert.True(t, report.FairPrice.Insufficient)
	assert.Equal(t, "no comparables after filtering", report.FairPrice.Reason)
	assert.Empty(t, report.Scenarios)

	// The only advice left is about the market data itself
	require.Len(t, report.Recommendations, 1)
	assert.Equal(t, models.CategoryMarket, report.Recommendations[0].Category)
}

func TestEngine_Analyze_RadiusFilter(t *testing.T) {
	cfg := config.Default()
	cfg.Analysis.SearchRadiusKm = 2
	cfg.Analysis.MinComparables = 3
	engine := NewEngine(cfg, nil, quietLogger())

	lat, lon := 55.7558, 37.6173
	farLat := 55.8458
	pool := marketPool()[:4]
	for i := range pool {
		pool[i].Latitude = &lat
		pool[i].Longitude = &lon
	}
	pool[3].Latitude = &farLat

	target := models.TargetProperty{
		Price: 9000000, TotalArea: 54, Rooms: 2,
		Latitude: &lat, Longitude: &lon,
	}

	report, err := engine.Analyze(target, pool)
	require.NoError(t, err)

	assert.Equal(t, 3, report.UsedPoolSize)
	assert.Contains(t, report.Warnings, "1 comparables outside the 2.0 km radius")
}
