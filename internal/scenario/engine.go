package scenario

import (
	"github.com/sirupsen/logrus"

	"github.com/nikita-tita/cian-analyzer-sub002/internal/models"
	"github.com/nikita-tita/cian-analyzer-sub002/internal/rates"
)

// Config carries the cost structure of a sale. Rates are decimal
// fractions of the gross price.
type Config struct {
	CommissionRate     float64
	TaxRate            float64
	OtherCostsRate     float64
	FallbackAnnualRate float64
}

// DefaultConfig matches the typical Russian secondary-market deal: 2%
// agent commission, 13% personal income tax, 1% paperwork and staging,
// and an 8% deposit benchmark when the live rate is unavailable.
func DefaultConfig() Config {
	return Config{
		CommissionRate:     0.02,
		TaxRate:            0.13,
		OtherCostsRate:     0.01,
		FallbackAnnualRate: 0.08,
	}
}

// maxMonthlyProbability caps any single month so the simulation never
// claims a certain sale.
const maxMonthlyProbability = 0.98

// Engine simulates selling scenarios for a given fair price. A nil
// rate provider is allowed; the fallback rate is used instead.
type Engine struct {
	provider rates.Provider
	cfg      Config
	logger   *logrus.Logger
}

func NewEngine(provider rates.Provider, cfg Config, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	def := DefaultConfig()
	if cfg.CommissionRate <= 0 {
		cfg.CommissionRate = def.CommissionRate
	}
	if cfg.TaxRate <= 0 {
		cfg.TaxRate = def.TaxRate
	}
	if cfg.OtherCostsRate <= 0 {
		cfg.OtherCostsRate = def.OtherCostsRate
	}
	if cfg.FallbackAnnualRate <= 0 {
		cfg.FallbackAnnualRate = def.FallbackAnnualRate
	}
	return &Engine{provider: provider, cfg: cfg, logger: logger}
}

// BuildAll simulates the four standard strategies around the fair
// price, positioning each start price by the strategy multiplier.
func (e *Engine) BuildAll(fairPrice float64) []models.PriceScenario {
	rate, source := e.annualRate()
	out := make([]models.PriceScenario, 0, 4)
	for _, st := range Strategies() {
		out = append(out, e.build(st, fairPrice*st.PriceMultiplier, fairPrice, rate, source))
	}
	return out
}

// Build simulates one strategy with an explicit start price, for
// sellers who want to test their own number against a strategy curve.
func (e *Engine) Build(st Strategy, startPrice, fairPrice float64) models.PriceScenario {
	rate, source := e.annualRate()
	return e.build(st, startPrice, fairPrice, rate, source)
}

func (e *Engine) build(st Strategy, start, fair, annualRate float64, rateSource string) models.PriceScenario {
	sc := models.PriceScenario{
		Type:         st.Type,
		Name:         st.Name,
		StartPrice:   start,
		MonthlyDecay: st.MonthlyDecay,
	}

	sc.PriceTrajectory = Trajectory(start, st.MonthlyDecay)

	scale := 1.0
	if fair > 0 {
		scale = probabilityScale(start / fair)
	}
	sc.MonthlyProbability = make([]float64, models.ScenarioMonths)
	for i, base := range st.BaseCurve {
		p := base * scale
		if p > maxMonthlyProbability {
			p = maxMonthlyProbability
		}
		sc.MonthlyProbability[i] = p
	}

	// survival carry-forward: the chance of selling in month t requires
	// being unsold through months 0..t-1
	sc.CumulativeProbability = make([]float64, models.ScenarioMonths)
	survival := 1.0
	for i, p := range sc.MonthlyProbability {
		survival *= 1 - p
		sc.CumulativeProbability[i] = 1 - survival
	}

	sc.ExpectedSaleMonth = models.ScenarioMonths - 1
	for i, c := range sc.CumulativeProbability {
		if c >= 0.5 {
			sc.ExpectedSaleMonth = i
			break
		}
	}

	gross := sc.PriceTrajectory[sc.ExpectedSaleMonth]
	sc.Financial = e.financialOutcome(gross, sc.ExpectedSaleMonth, annualRate, rateSource)
	sc.ExpectedValue = sc.Financial.NetAfterOpportunity * sc.CumulativeProbability[models.ScenarioMonths-1]

	e.logger.WithFields(logrus.Fields{
		"scenario":       sc.Type,
		"start_price":    start,
		"expected_month": sc.ExpectedSaleMonth,
		"expected_value": sc.ExpectedValue,
	}).Debug("Scenario simulated")
	return sc
}

// Trajectory lists the asking price for each month: the start price
// with the decay compounded monthly. Month 0 is exactly the start.
func Trajectory(start, monthlyDecay float64) []float64 {
	prices := make([]float64, models.ScenarioMonths)
	p := start
	for i := range prices {
		prices[i] = p
		p *= 1 - monthlyDecay
	}
	return prices
}

// probabilityScale shifts the whole probability curve by how the start
// price relates to the fair price. Overpricing starves demand much
// faster than underpricing feeds it.
func probabilityScale(ratio float64) float64 {
	switch {
	case ratio > 1.10:
		return 0.70
	case ratio > 1.05:
		return 0.85
	case ratio < 0.95:
		return 1.15
	default:
		return 1.0
	}
}

func (e *Engine) annualRate() (float64, string) {
	if e.provider != nil {
		rate, err := e.provider.AnnualRate()
		if err == nil && rate.AnnualRate > 0 {
			return rate.AnnualRate, rate.Source
		}
		if err != nil {
			e.logger.WithError(err).Warnf("Market rate unavailable, falling back to %.1f%%", e.cfg.FallbackAnnualRate*100)
		}
	}
	return e.cfg.FallbackAnnualRate, "fallback"
}

// financialOutcome nets out the deal at the expected sale month. The
// opportunity cost prices the months the capital stayed locked in the
// apartment instead of earning the benchmark rate.
func (e *Engine) financialOutcome(gross float64, months int, annualRate float64, rateSource string) models.FinancialOutcome {
	fin := models.FinancialOutcome{
		GrossPrice:    gross,
		AnnualRate:    annualRate,
		RateSource:    rateSource,
		HoldingMonths: months,
	}
	fin.Commission = gross * e.cfg.CommissionRate
	fin.Tax = gross * e.cfg.TaxRate
	fin.OtherCosts = gross * e.cfg.OtherCostsRate
	fin.NetBeforeOpportunity = gross - fin.Commission - fin.Tax - fin.OtherCosts
	fin.OpportunityCost = gross * annualRate * float64(months) / 12
	fin.NetAfterOpportunity = fin.NetBeforeOpportunity - fin.OpportunityCost
	if gross > 0 {
		fin.EffectiveYieldPercent = fin.NetAfterOpportunity / gross * 100
	}
	return fin
}
