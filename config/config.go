package config

import "github.com/caarlos0/env/v6"

type Config struct {
	// Analysis configuration
	Analysis struct {
		// Minimum comparables required for a reliable estimate
		MinComparables int `env:"ANALYSIS_MIN_COMPARABLES" envDefault:"8"`

		// IQR fence multiplier for price outlier filtering
		IQRMultiplier float64 `env:"ANALYSIS_IQR_MULTIPLIER" envDefault:"1.5"`

		// Coefficient of variation above which the pool is flagged as noisy
		MaxCV float64 `env:"ANALYSIS_MAX_CV" envDefault:"0.33"`

		// Comparables farther than this from the target are dropped (0 disables)
		SearchRadiusKm float64 `env:"ANALYSIS_SEARCH_RADIUS_KM" envDefault:"0"`
	}

	// Finance configuration for scenario outcomes
	Finance struct {
		// Agent commission as a fraction of the sale price
		CommissionRate float64 `env:"FINANCE_COMMISSION_RATE" envDefault:"0.02"`

		// Personal income tax rate applied to the sale
		TaxRate float64 `env:"FINANCE_TAX_RATE" envDefault:"0.13"`

		// Staging, paperwork and other selling costs as a fraction
		OtherCostsRate float64 `env:"FINANCE_OTHER_COSTS_RATE" envDefault:"0.01"`

		// Annual rate used when the key rate service is unavailable
		FallbackAnnualRate float64 `env:"FINANCE_FALLBACK_ANNUAL_RATE" envDefault:"0.08"`
	}

	// Rates configuration for the Bank of Russia key rate client
	Rates struct {
		// SOAP endpoint of the daily info service
		Endpoint string `env:"CBR_ENDPOINT" envDefault:"https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx"`

		// Percentage points added on top of the key rate
		SpreadPercent float64 `env:"CBR_SPREAD_PERCENT" envDefault:"0"`

		// HTTP timeout in seconds
		TimeoutSeconds int `env:"CBR_TIMEOUT_SECONDS" envDefault:"10"`

		// How long a fetched rate is served before refreshing
		CacheTTLHours int `env:"CBR_CACHE_TTL_HOURS" envDefault:"12"`
	}

	// Bulk configuration for queued analysis runs
	Bulk struct {
		// Number of concurrent analysis workers
		Workers int `env:"BULK_WORKERS" envDefault:"2"`

		// Buffered queue capacity
		QueueSize int `env:"BULK_QUEUE_SIZE" envDefault:"64"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration with every field at its envDefault
// value, without touching the environment.
func Default() *Config {
	cfg := &Config{}
	cfg.Analysis.MinComparables = 8
	cfg.Analysis.IQRMultiplier = 1.5
	cfg.Analysis.MaxCV = 0.33
	cfg.Analysis.SearchRadiusKm = 0
	cfg.Finance.CommissionRate = 0.02
	cfg.Finance.TaxRate = 0.13
	cfg.Finance.OtherCostsRate = 0.01
	cfg.Finance.FallbackAnnualRate = 0.08
	cfg.Rates.Endpoint = "https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx"
	cfg.Rates.SpreadPercent = 0
	cfg.Rates.TimeoutSeconds = 10
	cfg.Rates.CacheTTLHours = 12
	cfg.Bulk.Workers = 2
	cfg.Bulk.QueueSize = 64
	return cfg
}
