package scenario

import "github.com/nikita-tita/cian-analyzer-sub002/internal/models"

// Strategy defines one selling approach: where the listing starts
// relative to the fair price, how fast the seller concedes, and the
// base per-month sale chances for a correctly priced listing.
type Strategy struct {
	Type models.ScenarioType
	Name string

	// PriceMultiplier positions the start price against the fair price.
	PriceMultiplier float64

	// MonthlyDecay is the relative price cut applied every month the
	// listing stays unsold.
	MonthlyDecay float64

	// BaseCurve is the unscaled probability of selling in each month.
	// Curves peak early for aggressive pricing and flatten for patient
	// strategies.
	BaseCurve [models.ScenarioMonths]float64
}

// Strategies returns the four standard selling strategies, from the
// quickest exit to the most patient one.
func Strategies() []Strategy {
	return []Strategy{
		{
			Type:            models.ScenarioFast,
			Name:            "Fast sale below market",
			PriceMultiplier: 0.93,
			MonthlyDecay:    0.005,
			BaseCurve: [models.ScenarioMonths]float64{
				0.35, 0.32, 0.28, 0.24, 0.20, 0.17, 0.15,
				0.13, 0.12, 0.11, 0.10, 0.09, 0.08, 0.08,
			},
		},
		{
			Type:            models.ScenarioOptimal,
			Name:            "Optimal at fair value",
			PriceMultiplier: 1.00,
			MonthlyDecay:    0.010,
			BaseCurve: [models.ScenarioMonths]float64{
				0.22, 0.25, 0.24, 0.21, 0.18, 0.16, 0.14,
				0.12, 0.11, 0.10, 0.09, 0.08, 0.08, 0.07,
			},
		},
		{
			Type:            models.ScenarioStandard,
			Name:            "Standard slightly above market",
			PriceMultiplier: 1.05,
			MonthlyDecay:    0.015,
			BaseCurve: [models.ScenarioMonths]float64{
				0.15, 0.18, 0.19, 0.18, 0.16, 0.14, 0.12,
				0.11, 0.10, 0.09, 0.08, 0.07, 0.07, 0.06,
			},
		},
		{
			Type:            models.ScenarioMaximumPrice,
			Name:            "Maximum price for a patient seller",
			PriceMultiplier: 1.12,
			MonthlyDecay:    0.025,
			BaseCurve: [models.ScenarioMonths]float64{
				0.08, 0.10, 0.12, 0.12, 0.11, 0.10, 0.09,
				0.08, 0.07, 0.07, 0.06, 0.06, 0.05, 0.05,
			},
		},
	}
}
