package dedup

import (
	"fmt"
	"math"

	"github.com/nikita-tita/cian-analyzer-sub002/internal/models"
)

// Detector compares listing records across source platforms. Tolerances
// have sensible defaults from NewDetector; they are exported so callers
// can tighten them for curated feeds.
type Detector struct {
	// StrictAreaTolerance and LooseAreaTolerance are absolute bounds in
	// square meters. Platforms round areas differently, so small drift
	// is expected even for the same apartment.
	StrictAreaTolerance float64
	LooseAreaTolerance  float64

	// Price tier bounds, in percent of the pair mean.
	PriceStrictPct   float64
	PriceProbablePct float64
	PricePossiblePct float64
}

// NewDetector returns a Detector with production tolerances.
func NewDetector() *Detector {
	return &Detector{
		StrictAreaTolerance: 0.5,
		LooseAreaTolerance:  1.0,
		PriceStrictPct:      2,
		PriceProbablePct:    10,
		PricePossiblePct:    15,
	}
}

// Tier confidence gates on the address score.
const (
	strictAddressScore   = 95
	probableAddressScore = 90
	possibleAddressScore = 80
)

// PriceDiffPercent is the symmetric relative price difference: the
// absolute gap over the pair mean, in percent. Symmetric so the result
// does not depend on argument order.
func PriceDiffPercent(a, b float64) float64 {
	m := (a + b) / 2
	if m <= 0 {
		return 0
	}
	return math.Abs(a-b) / m * 100
}

// Compare decides whether two records describe the same apartment.
// Hard identity fields (house, section, rooms, floor) disqualify on any
// conflict; soft fields (floor count, small area drift, price gap) only
// lower confidence and are reported as differences.
func (d *Detector) Compare(a, b *models.ComparableProperty) models.DuplicateMatch {
	none := models.DuplicateMatch{Tier: models.TierNone, Action: models.ActionKeep}

	addrA := NormalizeAddress(a.Address)
	addrB := NormalizeAddress(b.Address)
	addrScore, ok := matchAddresses(addrA, addrB)
	if !ok {
		return none
	}

	if a.Rooms != b.Rooms {
		return none
	}

	areaDiff := math.Abs(a.TotalArea - b.TotalArea)
	if areaDiff > d.LooseAreaTolerance {
		return none
	}

	if a.Floor != nil && b.Floor != nil && *a.Floor != *b.Floor {
		return none
	}

	priceDiff := PriceDiffPercent(a.Price, b.Price)
	if priceDiff > d.PricePossiblePct {
		return none
	}

	var diffs []models.FieldDifference
	confidence := addrScore

	if priceDiff > 0.01 {
		diffs = append(diffs, models.FieldDifference{
			Field: "price",
			A:     fmt.Sprintf("%.0f", a.Price),
			B:     fmt.Sprintf("%.0f", b.Price),
		})
	}
	switch {
	case priceDiff > d.PriceProbablePct:
		confidence -= 5
	case priceDiff > d.PriceStrictPct:
		confidence -= 2
	}

	if areaDiff > 0.01 {
		diffs = append(diffs, models.FieldDifference{
			Field: "total_area",
			A:     fmt.Sprintf("%.1f", a.TotalArea),
			B:     fmt.Sprintf("%.1f", b.TotalArea),
		})
	}
	if areaDiff > d.StrictAreaTolerance {
		confidence -= 4
	}

	if a.FloorTotal != nil && b.FloorTotal != nil && *a.FloorTotal != *b.FloorTotal {
		diffs = append(diffs, models.FieldDifference{
			Field: "floor_total",
			A:     fmt.Sprintf("%d", *a.FloorTotal),
			B:     fmt.Sprintf("%d", *b.FloorTotal),
		})
		confidence -= 3
	}

	if (addrA.Section == "") != (addrB.Section == "") {
		diffs = append(diffs, models.FieldDifference{
			Field: "section",
			A:     addrA.Section,
			B:     addrB.Section,
		})
	}

	confidence = math.Max(0, math.Min(100, confidence))

	match := models.DuplicateMatch{Confidence: confidence, Differences: diffs}
	switch {
	case addrScore >= strictAddressScore && areaDiff <= d.StrictAreaTolerance && priceDiff <= d.PriceStrictPct:
		match.Tier = models.TierStrict
		match.Action = models.ActionSkip
	case addrScore >= probableAddressScore && areaDiff <= d.StrictAreaTolerance && priceDiff <= d.PriceProbablePct:
		match.Tier = models.TierProbable
		match.Action = models.ActionWarn
	case addrScore >= possibleAddressScore:
		match.Tier = models.TierPossible
		match.Action = models.ActionFlag
	default:
		return none
	}
	return match
}

// PairMatch is one detected duplicate pair inside a pool, by index.
type PairMatch struct {
	IndexA int                   `json:"index_a"`
	IndexB int                   `json:"index_b"`
	Match  models.DuplicateMatch `json:"match"`
}

// FindDuplicates compares every pair in the pool and returns the
// matches. Pools are district-sized, so the quadratic scan is fine.
func (d *Detector) FindDuplicates(pool []models.ComparableProperty) []PairMatch {
	var out []PairMatch
	for i := 0; i < len(pool); i++ {
		for j := i + 1; j < len(pool); j++ {
			m := d.Compare(&pool[i], &pool[j])
			if m.Tier == models.TierNone {
				continue
			}
			out = append(out, PairMatch{IndexA: i, IndexB: j, Match: m})
		}
	}
	return out
}

// Discarded is one record dropped during merge, with the match that
// justified dropping it.
type Discarded struct {
	Index       int                        `json:"index"`
	DuplicateOf int                        `json:"duplicate_of"`
	Comparable  models.ComparableProperty `json:"comparable"`
	Match       models.DuplicateMatch      `json:"match"`
}

// MergeResult is a deduplicated pool plus the audit trail: which
// records were dropped, and which pairs still need a human look.
type MergeResult struct {
	Kept        []models.ComparableProperty `json:"kept"`
	KeptIndices []int                       `json:"kept_indices"`
	Discarded   []Discarded                 `json:"discarded"`
	Flagged     []PairMatch                 `json:"flagged"`
}

// MergePool drops the pricier record of every strict pair and keeps
// probable and possible pairs intact but flagged. Lower-tier matches
// are never dropped silently. The input slice is not modified.
func (d *Detector) MergePool(pool []models.ComparableProperty) MergeResult {
	matches := d.FindDuplicates(pool)

	dropped := make(map[int]bool, len(pool))
	var res MergeResult
	for _, pm := range matches {
		if pm.Match.Tier != models.TierStrict {
			continue
		}
		if dropped[pm.IndexA] || dropped[pm.IndexB] {
			continue
		}
		keep, drop := pm.IndexA, pm.IndexB
		if pool[drop].Price < pool[keep].Price {
			keep, drop = drop, keep
		}
		dropped[drop] = true
		res.Discarded = append(res.Discarded, Discarded{
			Index:       drop,
			DuplicateOf: keep,
			Comparable:  pool[drop],
			Match:       pm.Match,
		})
	}

	for _, pm := range matches {
		if pm.Match.Tier == models.TierStrict {
			continue
		}
		if dropped[pm.IndexA] || dropped[pm.IndexB] {
			continue
		}
		res.Flagged = append(res.Flagged, pm)
	}

	res.Kept = make([]models.ComparableProperty, 0, len(pool)-len(res.Discarded))
	res.KeptIndices = make([]int, 0, cap(res.Kept))
	for i := range pool {
		if dropped[i] {
			continue
		}
		res.Kept = append(res.Kept, pool[i])
		res.KeptIndices = append(res.KeptIndices, i)
	}
	return res
}
