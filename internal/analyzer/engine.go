package analyzer

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nikita-tita/cian-analyzer-sub002/config"
	"github.com/nikita-tita/cian-analyzer-sub002/internal/dedup"
	"github.com/nikita-tita/cian-analyzer-sub002/internal/models"
	"github.com/nikita-tita/cian-analyzer-sub002/internal/pricing"
	"github.com/nikita-tita/cian-analyzer-sub002/internal/rates"
	"github.com/nikita-tita/cian-analyzer-sub002/internal/recommend"
	"github.com/nikita-tita/cian-analyzer-sub002/internal/scenario"
	"github.com/nikita-tita/cian-analyzer-sub002/internal/stats"
)

// Report is the complete analysis of one target listing: every number
// in it can be traced back to the cleaned comparable pool.
type Report struct {
	ID          uuid.UUID `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`

	Target       models.TargetProperty `json:"target"`
	PoolSize     int                   `json:"pool_size"`
	UsedPoolSize int                   `json:"used_pool_size"`

	Duplicates dedup.MergeResult  `json:"duplicates"`
	Outliers   []stats.Excluded   `json:"outliers,omitempty"`
	Market     stats.MarketReport `json:"market"`

	FairPrice       models.FairPriceResult  `json:"fair_price"`
	Scenarios       []models.PriceScenario  `json:"scenarios,omitempty"`
	Recommendations []models.Recommendation `json:"recommendations"`

	Warnings []string `json:"warnings,omitempty"`
}

// Engine runs the full valuation pipeline: boundary validation, radius
// curation, cross-platform deduplication, outlier filtering, market
// statistics, fair price, selling scenarios and recommendations.
type Engine struct {
	cfg       *config.Config
	detector  *dedup.Detector
	model     *pricing.Model
	scenarios *scenario.Engine
	recs      *recommend.Builder
	logger    *logrus.Logger
}

// NewEngine wires the pipeline. A nil cfg uses defaults, a nil provider
// makes every scenario use the fallback rate, a nil logger gets a
// default logrus instance.
func NewEngine(cfg *config.Config, provider rates.Provider, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return &Engine{
		cfg:      cfg,
		detector: dedup.NewDetector(),
		model:    pricing.NewModel(logger),
		scenarios: scenario.NewEngine(provider, scenario.Config{
			CommissionRate:     cfg.Finance.CommissionRate,
			TaxRate:            cfg.Finance.TaxRate,
			OtherCostsRate:     cfg.Finance.OtherCostsRate,
			FallbackAnnualRate: cfg.Finance.FallbackAnnualRate,
		}, logger),
		recs:   recommend.NewBuilder(logger),
		logger: logger,
	}
}

// Analyze produces a report for the target against a raw comparable
// pool. The only fatal condition is an invalid target; bad comparables,
// duplicates and thin data degrade the report and surface as warnings.
// Inputs are never mutated.
func (e *Engine) Analyze(target models.TargetProperty, comps []models.ComparableProperty) (*Report, error) {
	if err := target.Validate(); err != nil {
		return nil, fmt.Errorf("target rejected: %w", err)
	}

	report := &Report{
		ID:          uuid.New(),
		GeneratedAt: time.Now(),
		Target:      target,
		PoolSize:    len(comps),
	}

	pool := e.prepare(comps, report)

	if e.cfg.Analysis.SearchRadiusKm > 0 {
		before := len(pool)
		pool = FilterByRadius(&target, pool, e.cfg.Analysis.SearchRadiusKm)
		if dropped := before - len(pool); dropped > 0 {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("%d comparables outside the %.1f km radius", dropped, e.cfg.Analysis.SearchRadiusKm))
		}
	}

	report.Duplicates = e.detector.MergePool(pool)
	if n := len(report.Duplicates.Discarded); n > 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("%d duplicate records merged, cheaper copies kept", n))
	}
	if n := len(report.Duplicates.Flagged); n > 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("%d possible duplicate pairs flagged for review", n))
	}

	outliers := stats.DetectOutliers(report.Duplicates.Kept, stats.FieldPricePerSqm, e.cfg.Analysis.IQRMultiplier)
	report.Outliers = outliers.Excluded
	if n := len(outliers.Excluded); n > 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("%d price outliers excluded from the pool", n))
	}

	used := outliers.Kept
	report.UsedPoolSize = len(used)
	if ok, reason := stats.CheckDataSufficiency(used, e.cfg.Analysis.MinComparables); !ok {
		report.Warnings = append(report.Warnings, reason)
	}

	report.Market = stats.BuildMarketReport(used, e.cfg.Analysis.MaxCV, e.cfg.Analysis.MinComparables)
	report.FairPrice = e.model.Evaluate(&target, report.Market, used)

	if !report.FairPrice.Insufficient && report.FairPrice.FairPriceTotal > 0 {
		report.Scenarios = e.scenarios.BuildAll(report.FairPrice.FairPriceTotal)
	}

	report.Recommendations = e.recs.Build(&target, report.FairPrice, report.Scenarios, report.Market.Quality)

	e.logger.WithFields(logrus.Fields{
		"report_id":   report.ID,
		"pool":        report.PoolSize,
		"used":        report.UsedPoolSize,
		"fair_total":  report.FairPrice.FairPriceTotal,
		"overpricing": report.FairPrice.OverpricingPercent,
		"warnings":    len(report.Warnings),
	}).Info("Analysis finished")
	return report, nil
}

// prepare validates comparables at the boundary and derives the price
// per square meter on copies. Invalid records are dropped with a
// warning instead of failing the run.
func (e *Engine) prepare(comps []models.ComparableProperty, report *Report) []models.ComparableProperty {
	pool := make([]models.ComparableProperty, 0, len(comps))
	invalid := 0
	for i := range comps {
		c := comps[i]
		if err := c.Validate(); err != nil {
			invalid++
			e.logger.WithError(err).WithField("index", i).Warn("Comparable rejected")
			continue
		}
		if c.PricePerSqm == 0 {
			c.PricePerSqm = c.DerivedPricePerSqm()
		}
		pool = append(pool, c)
	}
	if invalid > 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("%d comparables failed validation and were dropped", invalid))
	}
	return pool
}
