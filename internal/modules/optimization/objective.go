package optimization

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/aristath/frontier/internal/domain"
)

// volatilityEpsilon is the threshold below which annualized volatility is
// treated as zero and the Sharpe ratio as undefined.
const volatilityEpsilon = 1e-12

// NegativeSharpe is the scalar objective driven by the solver: the Sharpe
// ratio of the weight vector, negated so that minimizing it maximizes the
// ratio.
//
// A portfolio with (numerically) zero volatility has no defined Sharpe
// ratio and fails with a degenerate-volatility error; the solver converts
// that into a large finite penalty so a single bad candidate point does not
// abort the search.
func NegativeSharpe(weights, expectedReturns []float64, covariance *mat.SymDense, riskFreeRate, periodsPerYear float64) (float64, error) {
	perf, err := Evaluate(weights, expectedReturns, covariance, periodsPerYear)
	if err != nil {
		return 0, err
	}
	if perf.AnnualVolatility <= volatilityEpsilon {
		return 0, fmt.Errorf("%w: volatility %v", domain.ErrDegenerateVolatility, perf.AnnualVolatility)
	}
	return -(perf.AnnualReturn - riskFreeRate) / perf.AnnualVolatility, nil
}
