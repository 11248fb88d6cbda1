package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 2.0, Mean([]float64{1, 2, 3}), 1e-12)
}

func TestStdDev_BesselCorrected(t *testing.T) {
	// Sample variance of {2,4,4,4,5,5,7,9} is 32/7
	got := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, math.Sqrt(32.0/7.0), got, 1e-12)

	assert.Equal(t, 0.0, StdDev([]float64{5}))
	assert.Equal(t, 0.0, StdDev(nil))
}

func TestLogReturns(t *testing.T) {
	returns := LogReturns([]float64{100, 110, 121})
	require.Len(t, returns, 2)
	assert.InDelta(t, math.Log(1.1), returns[0], 1e-12)
	assert.InDelta(t, math.Log(1.1), returns[1], 1e-12)
}

func TestLogReturns_SkipsZeroDenominator(t *testing.T) {
	returns := LogReturns([]float64{100, 0, 110})
	// 0->110 step is dropped because the denominator is zero
	require.Len(t, returns, 1)
	assert.True(t, math.IsInf(returns[0], -1))
}

func TestAnnualizedVolatility_ConstantReturnsIsZero(t *testing.T) {
	// Constant log returns have zero sample deviation
	prices := []float64{100, 110, 121, 133.1}
	vol := AnnualizedVolatility(LogReturns(prices), 252)
	assert.InDelta(t, 0.0, vol, 1e-12)
}

func TestAnnualizedVolatility_TooFewReturns(t *testing.T) {
	assert.Equal(t, 0.0, AnnualizedVolatility([]float64{0.01}, 252))
	assert.Equal(t, 0.0, AnnualizedVolatility(nil, 252))
}

func TestAnnualizedVolatility_Scaling(t *testing.T) {
	returns := []float64{0.01, -0.01, 0.02, -0.02}
	daily := AnnualizedVolatility(returns, 252)
	monthly := AnnualizedVolatility(returns, 12)
	assert.InDelta(t, math.Sqrt(252.0/12.0), daily/monthly, 1e-12)
}
