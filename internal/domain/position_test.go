package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcomePosition_BuyUpdatesWeightedAverage(t *testing.T) {
	var p OutcomePosition
	p = p.Apply(SideBuy, 10, 0.40)
	p = p.Apply(SideBuy, 30, 0.60)

	assert.InDelta(t, 40, p.Position, 1e-9)
	assert.InDelta(t, 22.0, p.CostBasis, 1e-9)
	// (4 + 18) / 40
	assert.InDelta(t, 0.55, p.AvgPrice, 1e-9)
	assert.InDelta(t, 22.0, p.TotalCost, 1e-9)
}

func TestOutcomePosition_PartialSellKeepsAverage(t *testing.T) {
	var p OutcomePosition
	p = p.Apply(SideBuy, 10, 0.40)
	p = p.Apply(SideSell, 4, 0.70)

	assert.InDelta(t, 6, p.Position, 1e-9)
	assert.InDelta(t, 0.40, p.AvgPrice, 1e-9)
	assert.InDelta(t, 2.4, p.TotalCost, 1e-9)
	assert.InDelta(t, 2.8, p.Proceeds, 1e-9)
	// 4 × (0.70 - 0.40)
	assert.InDelta(t, 1.2, p.RealizedAtSale, 1e-9)
}

func TestOutcomePosition_FullCloseResetsBasis(t *testing.T) {
	var p OutcomePosition
	p = p.Apply(SideBuy, 10, 0.40)
	p = p.Apply(SideSell, 10, 0.50)

	assert.Equal(t, 0.0, p.Position)
	assert.Equal(t, 0.0, p.AvgPrice)
	assert.Equal(t, 0.0, p.TotalCost)
	assert.False(t, p.IsOpen())
}

func TestOutcomePosition_OversellFlipsWithoutError(t *testing.T) {
	var p OutcomePosition
	p = p.Apply(SideBuy, 5, 0.40)
	p = p.Apply(SideSell, 8, 0.50)

	assert.InDelta(t, -3, p.Position, 1e-9)
	assert.Equal(t, 0.0, p.AvgPrice)
	assert.Equal(t, 0.0, p.TotalCost)
	// solo las 5 shares en largo realizan PnL
	assert.InDelta(t, 0.5, p.RealizedAtSale, 1e-9)
}

func TestOutcomePosition_SellFromFlat(t *testing.T) {
	var p OutcomePosition
	p = p.Apply(SideSell, 10, 0.30)

	assert.InDelta(t, -10, p.Position, 1e-9)
	assert.Equal(t, 0.0, p.AvgPrice)
	assert.Equal(t, 0.0, p.RealizedAtSale)
	assert.InDelta(t, 3.0, p.Proceeds, 1e-9)
}

func TestOutcomePosition_BuyStillShortKeepsZeroBasis(t *testing.T) {
	var p OutcomePosition
	p = p.Apply(SideSell, 10, 0.30)
	p = p.Apply(SideBuy, 4, 0.20)

	assert.InDelta(t, -6, p.Position, 1e-9)
	assert.Equal(t, 0.0, p.AvgPrice)
	assert.Equal(t, 0.0, p.TotalCost)
}

func TestOutcomePosition_ApplyDoesNotMutateReceiver(t *testing.T) {
	var p OutcomePosition
	next := p.Apply(SideBuy, 10, 0.40)

	assert.Equal(t, OutcomePosition{}, p)
	assert.InDelta(t, 10, next.Position, 1e-9)
}

func TestOutcomePosition_Invariants(t *testing.T) {
	steps := []struct {
		side  Side
		size  float64
		price float64
	}{
		{SideBuy, 12.5, 0.31},
		{SideBuy, 7.25, 0.47},
		{SideSell, 3.1, 0.52},
		{SideSell, 20, 0.60},
		{SideBuy, 0.3, 0.10},
		{SideBuy, 40, 0.44},
		{SideSell, 0.1, 0.99},
		{SideBuy, 0, 0.50},
		{SideSell, 39.9, 0.01},
	}

	var p OutcomePosition
	for i, s := range steps {
		p = p.Apply(s.side, s.size, s.price)
		assert.Equal(t, p.SharesBought-p.SharesSold, p.Position, "step %d", i)
		if p.Position <= 0 {
			assert.Equal(t, 0.0, p.AvgPrice, "step %d", i)
			assert.Equal(t, 0.0, p.TotalCost, "step %d", i)
		}
	}
}
