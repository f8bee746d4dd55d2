package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStressTest_NegativeShock(t *testing.T) {
	res, err := StressTest(StressParams{
		Generation:  250000,
		BasePrice:   70,
		Strike:      100,
		ShockPct:    -20,
		PPADiscount: 2,
	})
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)

	assert.InDelta(t, 56.0, res.ShockedPrice, 1e-9)

	cfd := res.Rows[0]
	assert.Equal(t, StrategyCfD, cfd.Strategy)
	assert.InDelta(t, 0.0, cfd.Delta, 1e-9)

	merchant := res.Rows[2]
	assert.InDelta(t, 70*250000.0, merchant.BaseRevenue, 1e-6)
	assert.InDelta(t, 56*250000.0, merchant.ShockedRevenue, 1e-6)
	assert.InDelta(t, -20.0, merchant.DeltaPct, 1e-9)

	assert.Equal(t, StrategyCfD, res.Best)
	assert.Equal(t, StrategyPPA, res.Worst)
}

func TestStressTest_PositiveShockFavoursMerchant(t *testing.T) {
	res, err := StressTest(StressParams{Generation: 1000, BasePrice: 90, Strike: 100, ShockPct: 50, PPADiscount: 2})
	require.NoError(t, err)
	assert.Equal(t, StrategyMerchant, res.Best)
	assert.Equal(t, StrategyCfD, res.Worst)
}

func TestStressTest_ZeroBaseRevenue(t *testing.T) {
	res, err := StressTest(StressParams{Generation: 0, BasePrice: 70, Strike: 100, ShockPct: 10})
	require.NoError(t, err)
	for _, row := range res.Rows {
		assert.Equal(t, 0.0, row.DeltaPct)
	}
}

func TestStressTest_Invalid(t *testing.T) {
	_, err := StressTest(StressParams{Generation: -1})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = StressTest(StressParams{ShockPct: -150})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
