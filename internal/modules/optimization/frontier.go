package optimization

import (
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/aristath/frontier/internal/domain"
)

// FrontierPoint is one random feasible portfolio: its weights and the
// performance they produce. SharpeRatio is nil for degenerate-volatility
// draws, whose Sharpe is undefined; return and volatility are always kept.
type FrontierPoint struct {
	Weights          []float64 `json:"weights"`
	AnnualReturn     float64   `json:"annual_return"`
	AnnualVolatility float64   `json:"annual_volatility"`
	SharpeRatio      *float64  `json:"sharpe_ratio,omitempty"`
}

// FrontierSampler characterizes the feasible risk/return space by Monte
// Carlo coverage. It has no notion of optimality; repeated or near-identical
// draws are expected.
type FrontierSampler struct {
	log zerolog.Logger
}

// NewFrontierSampler creates a new frontier sampler.
func NewFrontierSampler(log zerolog.Logger) *FrontierSampler {
	return &FrontierSampler{
		log: log.With().Str("component", "frontier").Logger(),
	}
}

// Sample draws numSamples independent long-only weight vectors - each asset
// gets a non-negative draw from rng, normalized so the vector sums to 1
// exactly - and evaluates each through the performance model, in draw
// order. The random source is injected so runs are reproducible and
// concurrent callers do not interfere.
func (s *FrontierSampler) Sample(
	expectedReturns []float64,
	covariance *mat.SymDense,
	numSamples int,
	riskFreeRate, periodsPerYear float64,
	rng *rand.Rand,
) ([]FrontierPoint, error) {
	n := len(expectedReturns)
	if n == 0 {
		return nil, fmt.Errorf("%w: no assets", domain.ErrDimensionMismatch)
	}
	if covariance.SymmetricDim() != n {
		return nil, fmt.Errorf("%w: %d expected returns, %dx%d covariance",
			domain.ErrDimensionMismatch, n, covariance.SymmetricDim(), covariance.SymmetricDim())
	}
	if numSamples < 1 {
		return nil, fmt.Errorf("%w: num samples %d, need at least 1", domain.ErrDimensionMismatch, numSamples)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", domain.ErrDimensionMismatch)
	}

	points := make([]FrontierPoint, 0, numSamples)
	for i := 0; i < numSamples; i++ {
		weights := randomWeights(n, rng)

		perf, err := Evaluate(weights, expectedReturns, covariance, periodsPerYear)
		if err != nil {
			return nil, err
		}

		point := FrontierPoint{
			Weights:          weights,
			AnnualReturn:     perf.AnnualReturn,
			AnnualVolatility: perf.AnnualVolatility,
		}
		if perf.AnnualVolatility > volatilityEpsilon {
			sharpe := (perf.AnnualReturn - riskFreeRate) / perf.AnnualVolatility
			point.SharpeRatio = &sharpe
		}
		points = append(points, point)
	}

	s.log.Debug().
		Int("samples", len(points)).
		Msg("Sampled frontier")

	return points, nil
}

// randomWeights draws n non-negative values and normalizes them to sum to
// 1. An all-zero draw is redrawn; with uniform draws this is essentially
// unreachable but would otherwise divide by zero.
func randomWeights(n int, rng *rand.Rand) []float64 {
	for {
		weights := make([]float64, n)
		sum := 0.0
		for i := range weights {
			weights[i] = rng.Float64()
			sum += weights[i]
		}
		if sum == 0 {
			continue
		}
		for i := range weights {
			weights[i] /= sum
		}
		return weights
	}
}
