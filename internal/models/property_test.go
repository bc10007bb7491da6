package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func finishPtr(v FinishLevel) *FinishLevel { return &v }

func TestTargetPropertyValidate(t *testing.T) {
	valid := TargetProperty{
		Price:      12000000,
		TotalArea:  54.5,
		Rooms:      2,
		Floor:      intPtr(7),
		FloorTotal: intPtr(16),
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*TargetProperty)
	}{
		{"zero price", func(p *TargetProperty) { p.Price = 0 }},
		{"negative area", func(p *TargetProperty) { p.TotalArea = -10 }},
		{"floor above building", func(p *TargetProperty) { p.Floor = intPtr(20) }},
		{"living area above total", func(p *TargetProperty) { p.LivingArea = floatPtr(60) }},
		{"ceiling out of range", func(p *TargetProperty) { p.CeilingHeight = floatPtr(25.0) }},
		{"unknown finish level", func(p *TargetProperty) { f := FinishLevel("lux"); p.FinishLevel = &f }},
		{"material quality out of scale", func(p *TargetProperty) { p.MaterialQuality = intPtr(9) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidAttribute))
		})
	}
}

func TestComparableValidatePricePerSqm(t *testing.T) {
	c := ComparableProperty{Price: 9000000, TotalArea: 50, Rooms: 2}
	require.NoError(t, c.Validate())
	assert.InDelta(t, 180000, c.DerivedPricePerSqm(), 1e-9)

	c.PricePerSqm = 180000
	assert.NoError(t, c.Validate())

	c.PricePerSqm = 200000
	err := c.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidAttribute))
}

func TestFinishLevelRanks(t *testing.T) {
	low, ok := FinishNeedsWork.Rank()
	require.True(t, ok)
	high, ok := FinishDesigner.Rank()
	require.True(t, ok)
	assert.Greater(t, high, low)

	_, ok = FinishLevel("palace").Rank()
	assert.False(t, ok)

	assert.True(t, FinishEuro.Premium())
	assert.True(t, FinishDesigner.Premium())
	assert.False(t, FinishCosmetic.Premium())
}

func TestLivingRatio(t *testing.T) {
	c := ComparableProperty{Price: 10000000, TotalArea: 50, LivingArea: floatPtr(30)}
	ratio, ok := c.LivingRatio()
	require.True(t, ok)
	assert.InDelta(t, 0.6, ratio, 1e-9)

	c.LivingArea = nil
	_, ok = c.LivingRatio()
	assert.False(t, ok)
}
