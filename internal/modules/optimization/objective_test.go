package optimization

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/frontier/internal/domain"
)

func TestNegativeSharpe(t *testing.T) {
	value, err := NegativeSharpe([]float64{1}, []float64{0.001}, diagSym(0.0004), 0.02, 252)
	require.NoError(t, err)

	wantVol := math.Sqrt(252 * 0.0004)
	wantSharpe := (252*0.001 - 0.02) / wantVol
	assert.InDelta(t, -wantSharpe, value, 1e-12)
	assert.Negative(t, value, "positive excess return must give a negative objective")
}

func TestNegativeSharpe_DegenerateVolatility(t *testing.T) {
	_, err := NegativeSharpe([]float64{1}, []float64{0.001}, diagSym(0), 0.02, 252)
	assert.ErrorIs(t, err, domain.ErrDegenerateVolatility)

	// Perfectly offsetting long/short positions also have zero volatility.
	_, err = NegativeSharpe([]float64{1, -1}, []float64{0.001, 0.001}, mat2(0.0004, 0.0004, 0.0004), 0.02, 252)
	assert.ErrorIs(t, err, domain.ErrDegenerateVolatility)
}

func TestNegativeSharpe_PropagatesEvaluateErrors(t *testing.T) {
	_, err := NegativeSharpe([]float64{1, 0}, []float64{0.001}, diagSym(0.0004), 0.02, 252)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}
