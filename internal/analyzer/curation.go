package analyzer

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/nikita-tita/cian-analyzer-sub002/internal/models"
)

// FilterByRadius keeps comparables within radiusKm of the target.
// Coordinates are best-effort data: records without them pass through,
// and a target without them disables the filter entirely. The input
// slice is not modified.
func FilterByRadius(target *models.TargetProperty, comps []models.ComparableProperty, radiusKm float64) []models.ComparableProperty {
	if radiusKm <= 0 || target.Latitude == nil || target.Longitude == nil {
		return comps
	}

	center := orb.Point{*target.Longitude, *target.Latitude}
	radiusM := radiusKm * 1000

	kept := make([]models.ComparableProperty, 0, len(comps))
	for i := range comps {
		c := comps[i]
		if c.Latitude == nil || c.Longitude == nil {
			kept = append(kept, c)
			continue
		}
		point := orb.Point{*c.Longitude, *c.Latitude}
		if geo.Distance(center, point) <= radiusM {
			kept = append(kept, c)
		}
	}
	return kept
}
