package models

import "time"

// MarketStatistics summarizes one pool of price-per-sqm observations.
// StdDev is the population standard deviation.
type MarketStatistics struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"`
	Count  int     `json:"count"`
}

// AdaptiveBasis records how a data-driven coefficient was derived, so
// a report reader can audit it.
type AdaptiveBasis struct {
	Method      string `json:"method"`
	SampleCount int    `json:"sample_count"`
	Segment     string `json:"segment,omitempty"`
}

// Adjustment is one applied valuation coefficient: which attribute fired,
// the target and reference values it compared, and the multiplier.
type Adjustment struct {
	Field          string         `json:"field"`
	TargetValue    string         `json:"target_value"`
	ReferenceValue string         `json:"reference_value"`
	Multiplier     float64        `json:"multiplier"`
	Description    string         `json:"description"`
	Basis          *AdaptiveBasis `json:"basis,omitempty"`
}

// SkipNote explains why one coefficient did not participate in the
// estimate, so thin data never silently degrades a valuation.
type SkipNote struct {
	Field       string `json:"field"`
	Cause       string `json:"cause"`
	SampleCount int    `json:"sample_count,omitempty"`
}

// FairPriceResult is the explainable output of the valuation model.
// When Insufficient is set the numeric fields are zero and Reason says
// what was missing.
type FairPriceResult struct {
	BasePricePerSqm    float64      `json:"base_price_per_sqm"`
	Segment            string       `json:"segment"`
	Adjustments        []Adjustment `json:"adjustments"`
	Skipped            []SkipNote   `json:"skipped,omitempty"`
	TotalMultiplier    float64      `json:"total_multiplier"`
	FairPricePerSqm    float64      `json:"fair_price_per_sqm"`
	FairPriceTotal     float64      `json:"fair_price_total"`
	OverpricingPercent float64      `json:"overpricing_percent"`
	Insufficient       bool         `json:"insufficient"`
	Reason             string       `json:"reason,omitempty"`
}

// ScenarioType identifies one selling strategy.
type ScenarioType string

const (
	ScenarioFast         ScenarioType = "fast"
	ScenarioOptimal      ScenarioType = "optimal"
	ScenarioStandard     ScenarioType = "standard"
	ScenarioMaximumPrice ScenarioType = "maximum_price"
)

// ScenarioMonths is the simulated horizon: months 0 through 13.
const ScenarioMonths = 14

// FinancialOutcome is the seller's bottom line for one scenario,
// evaluated at the expected sale month. All amounts are in rubles.
type FinancialOutcome struct {
	GrossPrice            float64 `json:"gross_price"`
	Commission            float64 `json:"commission"`
	Tax                   float64 `json:"tax"`
	OtherCosts            float64 `json:"other_costs"`
	NetBeforeOpportunity  float64 `json:"net_before_opportunity"`
	OpportunityCost       float64 `json:"opportunity_cost"`
	NetAfterOpportunity   float64 `json:"net_after_opportunity"`
	EffectiveYieldPercent float64 `json:"effective_yield_percent"`
	AnnualRate            float64 `json:"annual_rate"`
	RateSource            string  `json:"rate_source"`
	HoldingMonths         int     `json:"holding_months"`
}

// PriceScenario is one simulated selling strategy over ScenarioMonths
// months. Trajectory, monthly and cumulative probabilities are indexed
// by month offset from listing start.
type PriceScenario struct {
	Type       ScenarioType `json:"type"`
	Name       string       `json:"name"`
	StartPrice float64      `json:"start_price"`
	// MonthlyDecay is the relative price reduction applied each month.
	MonthlyDecay float64 `json:"monthly_decay"`

	PriceTrajectory       []float64 `json:"price_trajectory"`
	MonthlyProbability    []float64 `json:"monthly_probability"`
	CumulativeProbability []float64 `json:"cumulative_probability"`

	// ExpectedSaleMonth is the first month the cumulative probability
	// reaches 50%, or the last month when it never does.
	ExpectedSaleMonth int              `json:"expected_sale_month"`
	Financial         FinancialOutcome `json:"financial"`
	// ExpectedValue is the net result weighted by the probability of
	// selling at all within the horizon.
	ExpectedValue float64 `json:"expected_value"`
}

// DuplicateTier classifies how confident a duplicate match is.
type DuplicateTier string

const (
	TierNone     DuplicateTier = ""
	TierStrict   DuplicateTier = "strict"
	TierProbable DuplicateTier = "probable"
	TierPossible DuplicateTier = "possible"
)

// DuplicateAction is what the pipeline should do with a matched record.
type DuplicateAction string

const (
	ActionKeep DuplicateAction = "keep"
	ActionSkip DuplicateAction = "skip"
	ActionWarn DuplicateAction = "warn"
	ActionFlag DuplicateAction = "flag"
)

// FieldDifference is one per-field discrepancy between two records that
// were otherwise matched.
type FieldDifference struct {
	Field string `json:"field"`
	A     string `json:"a"`
	B     string `json:"b"`
}

// DuplicateMatch is the outcome of comparing two listing records.
type DuplicateMatch struct {
	Confidence  float64           `json:"confidence"`
	Tier        DuplicateTier     `json:"tier"`
	Action      DuplicateAction   `json:"action"`
	Differences []FieldDifference `json:"differences,omitempty"`
}

// RecommendationCategory groups advice by what it asks the seller to do.
type RecommendationCategory string

const (
	CategoryPricing      RecommendationCategory = "pricing"
	CategoryStrategy     RecommendationCategory = "strategy"
	CategoryImprovement  RecommendationCategory = "improvement"
	CategoryPresentation RecommendationCategory = "presentation"
	CategoryMarket       RecommendationCategory = "market"
)

// Recommendation is one actionable advice item. Priority 1 is the most
// urgent. ROIPercent is present only for advice with an investment cost
// and is reported even when negative.
type Recommendation struct {
	Priority        int                    `json:"priority"`
	Category        RecommendationCategory `json:"category"`
	Message         string                 `json:"message"`
	Action          string                 `json:"action"`
	ExpectedResult  string                 `json:"expected_result"`
	ROIPercent      *float64               `json:"roi_percent,omitempty"`
	FinancialImpact map[string]float64     `json:"financial_impact,omitempty"`
}

// MarketRate is an annual yield benchmark for opportunity-cost math.
// AnnualRate is a decimal fraction (0.08 means 8% per year).
type MarketRate struct {
	AnnualRate float64   `json:"annual_rate"`
	AsOf       time.Time `json:"as_of"`
	Source     string    `json:"source"`
}
