package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Analysis.MinComparables)
	assert.Equal(t, 1.5, cfg.Analysis.IQRMultiplier)
	assert.Equal(t, 0.33, cfg.Analysis.MaxCV)
	assert.Equal(t, 0.0, cfg.Analysis.SearchRadiusKm)
	assert.Equal(t, 0.02, cfg.Finance.CommissionRate)
	assert.Equal(t, 0.13, cfg.Finance.TaxRate)
	assert.Equal(t, 0.01, cfg.Finance.OtherCostsRate)
	assert.Equal(t, 0.08, cfg.Finance.FallbackAnnualRate)
	assert.Equal(t, "https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx", cfg.Rates.Endpoint)
	assert.Equal(t, 10, cfg.Rates.TimeoutSeconds)
	assert.Equal(t, 12, cfg.Rates.CacheTTLHours)
	assert.Equal(t, 2, cfg.Bulk.Workers)
	assert.Equal(t, 64, cfg.Bulk.QueueSize)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ANALYSIS_MIN_COMPARABLES", "5")
	t.Setenv("ANALYSIS_SEARCH_RADIUS_KM", "2.5")
	t.Setenv("FINANCE_COMMISSION_RATE", "0.03")
	t.Setenv("BULK_WORKERS", "8")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Analysis.MinComparables)
	assert.Equal(t, 2.5, cfg.Analysis.SearchRadiusKm)
	assert.Equal(t, 0.03, cfg.Finance.CommissionRate)
	assert.Equal(t, 8, cfg.Bulk.Workers)
}

func TestLoadConfig_BadValue(t *testing.T) {
	t.Setenv("ANALYSIS_IQR_MULTIPLIER", "wide")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestDefault_MatchesEnvDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, cfg, Default())
}
