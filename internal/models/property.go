package models

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidAttribute marks a field value that fails boundary validation.
// Callers can test for it with errors.Is on any Validate error.
var ErrInvalidAttribute = errors.New("invalid attribute value")

var validate = validator.New()

// FinishLevel describes the renovation state of an apartment.
type FinishLevel string

const (
	FinishNone      FinishLevel = "none"
	FinishNeedsWork FinishLevel = "needs_repair"
	FinishCosmetic  FinishLevel = "cosmetic"
	FinishEuro      FinishLevel = "euro"
	FinishDesigner  FinishLevel = "designer"
)

var finishRanks = map[FinishLevel]int{
	FinishNone:      0,
	FinishNeedsWork: 1,
	FinishCosmetic:  2,
	FinishEuro:      3,
	FinishDesigner:  4,
}

// Rank orders finish levels from bare shell (0) to designer renovation (4).
func (f FinishLevel) Rank() (int, bool) {
	r, ok := finishRanks[f]
	return r, ok
}

// Premium reports whether the finish level sits in the upper market segment.
func (f FinishLevel) Premium() bool {
	r, ok := finishRanks[f]
	return ok && r >= 3
}

// WindowType describes the glazing installed in the apartment.
type WindowType string

const (
	WindowWooden  WindowType = "wooden"
	WindowPVC     WindowType = "standard_pvc"
	WindowPremium WindowType = "premium"
)

var windowRanks = map[WindowType]int{
	WindowWooden:  0,
	WindowPVC:     1,
	WindowPremium: 2,
}

// Rank orders window types from old wooden frames (0) to premium glazing (2).
func (w WindowType) Rank() (int, bool) {
	r, ok := windowRanks[w]
	return r, ok
}

// ViewType describes what the main windows face.
type ViewType string

const (
	ViewIndustrial ViewType = "industrial"
	ViewStreet     ViewType = "street"
	ViewCourtyard  ViewType = "courtyard"
	ViewPark       ViewType = "park"
	ViewWater      ViewType = "water"
)

// OwnershipStatus describes legal encumbrances on the title.
type OwnershipStatus string

const (
	OwnershipClean      OwnershipStatus = "clean"
	OwnershipMortgage   OwnershipStatus = "mortgage"
	OwnershipEncumbered OwnershipStatus = "encumbered"
)

// TargetProperty is the listing under analysis. Prices are in rubles,
// areas in square meters. Optional attributes are pointers so that an
// absent value stays distinguishable from a zero value.
type TargetProperty struct {
	Price     float64 `json:"price" validate:"required,gt=0"`
	TotalArea float64 `json:"total_area" validate:"required,gt=0"`
	Rooms     int     `json:"rooms" validate:"gte=0,lte=30"`

	Floor         *int     `json:"floor,omitempty" validate:"omitempty,gte=1,lte=200"`
	FloorTotal    *int     `json:"floor_total,omitempty" validate:"omitempty,gte=1,lte=200"`
	LivingArea    *float64 `json:"living_area,omitempty" validate:"omitempty,gt=0"`
	CeilingHeight *float64 `json:"ceiling_height,omitempty" validate:"omitempty,gte=2,lte=10"`
	BathroomCount *int     `json:"bathroom_count,omitempty" validate:"omitempty,gte=0,lte=10"`
	ElevatorCount *int     `json:"elevator_count,omitempty" validate:"omitempty,gte=0,lte=10"`

	FinishLevel *FinishLevel     `json:"finish_level,omitempty" validate:"omitempty,oneof=none needs_repair cosmetic euro designer"`
	WindowType  *WindowType      `json:"window_type,omitempty" validate:"omitempty,oneof=wooden standard_pvc premium"`
	View        *ViewType        `json:"view,omitempty" validate:"omitempty,oneof=industrial street courtyard park water"`
	Ownership   *OwnershipStatus `json:"ownership,omitempty" validate:"omitempty,oneof=clean mortgage encumbered"`

	// MaterialQuality is a 1..5 score assigned by the operator from the
	// listing photos; it never participates in comparable matching.
	MaterialQuality *int `json:"material_quality,omitempty" validate:"omitempty,gte=1,lte=5"`

	PhotoCount        *int `json:"photo_count,omitempty" validate:"omitempty,gte=0"`
	DescriptionLength *int `json:"description_length,omitempty" validate:"omitempty,gte=0"`

	Latitude  *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
}

// Validate checks field ranges and cross-field consistency.
func (t *TargetProperty) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAttribute, err)
	}
	if t.Floor != nil && t.FloorTotal != nil && *t.Floor > *t.FloorTotal {
		return fmt.Errorf("%w: floor %d above building height %d", ErrInvalidAttribute, *t.Floor, *t.FloorTotal)
	}
	if t.LivingArea != nil && *t.LivingArea > t.TotalArea {
		return fmt.Errorf("%w: living area %.1f exceeds total area %.1f", ErrInvalidAttribute, *t.LivingArea, t.TotalArea)
	}
	return nil
}

// PricePerSqm returns the asking price normalized by total area.
func (t *TargetProperty) PricePerSqm() float64 {
	if t.TotalArea <= 0 {
		return 0
	}
	return t.Price / t.TotalArea
}

// ComparableProperty is one competing listing used as market evidence.
// Records arrive from several source platforms, so the address is kept
// raw and normalized only during duplicate detection.
type ComparableProperty struct {
	Price     float64 `json:"price" validate:"required,gt=0"`
	TotalArea float64 `json:"total_area" validate:"required,gt=0"`
	Rooms     int     `json:"rooms" validate:"gte=0,lte=30"`

	// PricePerSqm is derived as Price/TotalArea. Zero means "not yet
	// derived"; a non-zero value must agree with the ratio within 1%.
	PricePerSqm float64 `json:"price_per_sqm" validate:"gte=0"`

	Floor         *int     `json:"floor,omitempty" validate:"omitempty,gte=1,lte=200"`
	FloorTotal    *int     `json:"floor_total,omitempty" validate:"omitempty,gte=1,lte=200"`
	LivingArea    *float64 `json:"living_area,omitempty" validate:"omitempty,gt=0"`
	CeilingHeight *float64 `json:"ceiling_height,omitempty" validate:"omitempty,gte=2,lte=10"`
	BathroomCount *int     `json:"bathroom_count,omitempty" validate:"omitempty,gte=0,lte=10"`
	ElevatorCount *int     `json:"elevator_count,omitempty" validate:"omitempty,gte=0,lte=10"`

	FinishLevel *FinishLevel `json:"finish_level,omitempty" validate:"omitempty,oneof=none needs_repair cosmetic euro designer"`
	WindowType  *WindowType  `json:"window_type,omitempty" validate:"omitempty,oneof=wooden standard_pvc premium"`
	View        *ViewType    `json:"view,omitempty" validate:"omitempty,oneof=industrial street courtyard park water"`

	Address string `json:"address,omitempty"`
	Source  string `json:"source,omitempty"`
	URL     string `json:"url,omitempty"`

	Latitude  *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
}

// Validate checks field ranges and that a pre-filled price per square
// meter agrees with price/area.
func (c *ComparableProperty) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAttribute, err)
	}
	if c.Floor != nil && c.FloorTotal != nil && *c.Floor > *c.FloorTotal {
		return fmt.Errorf("%w: floor %d above building height %d", ErrInvalidAttribute, *c.Floor, *c.FloorTotal)
	}
	if c.LivingArea != nil && *c.LivingArea > c.TotalArea {
		return fmt.Errorf("%w: living area %.1f exceeds total area %.1f", ErrInvalidAttribute, *c.LivingArea, c.TotalArea)
	}
	if c.PricePerSqm > 0 {
		derived := c.Price / c.TotalArea
		if math.Abs(c.PricePerSqm-derived)/derived > 0.01 {
			return fmt.Errorf("%w: price_per_sqm %.2f disagrees with price/area %.2f", ErrInvalidAttribute, c.PricePerSqm, derived)
		}
	}
	return nil
}

// DerivedPricePerSqm returns Price/TotalArea without mutating the record.
func (c *ComparableProperty) DerivedPricePerSqm() float64 {
	if c.TotalArea <= 0 {
		return 0
	}
	return c.Price / c.TotalArea
}

// LivingRatio returns living area over total area, when known.
func (c *ComparableProperty) LivingRatio() (float64, bool) {
	if c.LivingArea == nil || c.TotalArea <= 0 {
		return 0, false
	}
	return *c.LivingArea / c.TotalArea, true
}
