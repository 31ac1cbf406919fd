package optimization

import (
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/aristath/frontier/internal/domain"
)

func mat2(varA, varB, cov float64) *mat.SymDense {
	return mat.NewSymDense(2, []float64{
		varA, cov,
		cov, varB,
	})
}

func TestMaxSharpe_DiagonalCovariance(t *testing.T) {
	mu := []float64{0.001, 0.0012, 0.0008}
	variances := []float64{0.0004, 0.0009, 0.0001}
	cov := diagSym(variances...)

	result, err := NewOptimizer(zerolog.Nop()).MaxSharpe(mu, cov, 0.02, LongOnly, 252)
	require.NoError(t, err)
	require.Len(t, result.Weights, 3)

	sum := 0.0
	for _, w := range result.Weights {
		sum += w
		assert.GreaterOrEqual(t, w, -1e-9, "long-only weights must be non-negative")
		assert.LessOrEqual(t, w, 1.0+1e-9)
	}
	assert.InDelta(t, 1.0, sum, 1e-3, "rounded weights should sum to ~1")

	// Cross-check volatility independently from the reported weights:
	// with a diagonal covariance, annual variance is 252 * sum w_i^2 var_i.
	var wantVariance float64
	for i, w := range result.Weights {
		wantVariance += w * w * variances[i]
	}
	wantVariance *= 252
	assert.InDelta(t, math.Sqrt(wantVariance), result.AnnualVolatility, 1e-3)

	// Reported numbers must be self-consistent with Evaluate.
	assert.InDelta(t, (result.AnnualReturn-0.02)/result.AnnualVolatility, result.SharpeRatio, 1e-9)
	assert.Positive(t, result.SharpeRatio)
}

func TestMaxSharpe_Deterministic(t *testing.T) {
	mu := []float64{0.001, 0.0012, 0.0008}
	cov := mat.NewSymDense(3, []float64{
		0.0004, 0.0001, 0.00005,
		0.0001, 0.0009, 0.0002,
		0.00005, 0.0002, 0.0001,
	})

	optimizer := NewOptimizer(zerolog.Nop())
	first, err := optimizer.MaxSharpe(mu, cov, 0.02, LongOnly, 252)
	require.NoError(t, err)
	second, err := optimizer.MaxSharpe(mu, cov, 0.02, LongOnly, 252)
	require.NoError(t, err)

	assert.Equal(t, first.Weights, second.Weights)
	assert.Equal(t, first.SharpeRatio, second.SharpeRatio)
}

func TestMaxSharpe_SingleAsset(t *testing.T) {
	result, err := NewOptimizer(zerolog.Nop()).MaxSharpe([]float64{0.001}, diagSym(0.0004), 0.02, LongOnly, 252)
	require.NoError(t, err)

	assert.Equal(t, []float64{1.0}, result.Weights)
	wantSharpe := (0.001*252 - 0.02) / (math.Sqrt(0.0004) * math.Sqrt(252))
	assert.InDelta(t, wantSharpe, result.SharpeRatio, 1e-12)
}

func TestMaxSharpe_LongShortBounds(t *testing.T) {
	// Asset B has a negative expected return; shorting it should be used.
	mu := []float64{0.002, -0.001}
	cov := mat2(0.0004, 0.0004, 0)

	result, err := NewOptimizer(zerolog.Nop()).MaxSharpe(mu, cov, 0.02, LongShort, 252)
	require.NoError(t, err)

	sum := 0.0
	for _, w := range result.Weights {
		sum += w
		assert.GreaterOrEqual(t, w, -1.0-1e-9)
		assert.LessOrEqual(t, w, 1.0+1e-9)
	}
	assert.InDelta(t, 1.0, sum, 1e-3)
	assert.Less(t, result.Weights[1], 0.0, "negative-return asset should be shorted")
}

func TestMaxSharpe_DegenerateCovariance(t *testing.T) {
	// Zero variance everywhere: every portfolio has undefined Sharpe.
	mu := []float64{0.001, 0.001}
	cov := mat2(0, 0, 0)

	_, err := NewOptimizer(zerolog.Nop()).MaxSharpe(mu, cov, 0.02, LongOnly, 252)
	require.Error(t, err)
	assert.True(t,
		errors.Is(err, domain.ErrDegenerateVolatility) || errors.Is(err, domain.ErrConvergence),
		"got %v", err)
}

func TestMaxSharpe_UnknownConstraintMode(t *testing.T) {
	_, err := NewOptimizer(zerolog.Nop()).MaxSharpe([]float64{0.001, 0.001}, mat2(0.0004, 0.0004, 0), 0.02, "market_neutral", 252)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestMaxSharpe_DimensionMismatch(t *testing.T) {
	_, err := NewOptimizer(zerolog.Nop()).MaxSharpe([]float64{0.001, 0.001, 0.001}, mat2(0.0004, 0.0004, 0), 0.02, LongOnly, 252)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	_, err = NewOptimizer(zerolog.Nop()).MaxSharpe(nil, diagSym(0.0004), 0.02, LongOnly, 252)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestConstraintModeBounds(t *testing.T) {
	lo, hi, err := LongOnly.bounds()
	require.NoError(t, err)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 1.0, hi)

	lo, hi, err = LongShort.bounds()
	require.NoError(t, err)
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 1.0, hi)

	// Empty mode defaults to long-only.
	lo, hi, err = ConstraintMode("").bounds()
	require.NoError(t, err)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 1.0, hi)
}

func TestRoundWeights(t *testing.T) {
	rounded := roundWeights([]float64{0.123456, 0.876544}, 4)
	assert.Equal(t, []float64{0.1235, 0.8765}, rounded)
}
