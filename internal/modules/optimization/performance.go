// Package optimization finds the Sharpe-maximizing portfolio for a set of
// return statistics and characterizes the feasible risk/return space by
// Monte Carlo sampling.
package optimization

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/aristath/frontier/internal/domain"
)

// varianceTolerance bounds how negative the annualized portfolio variance
// may go before it is treated as a covariance defect rather than roundoff.
const varianceTolerance = 1e-12

// Performance is a portfolio's annualized expected return and volatility.
type Performance struct {
	AnnualReturn     float64 `json:"annual_return"`
	AnnualVolatility float64 `json:"annual_volatility"`
}

// Evaluate computes annualized performance for a weight vector:
//
//	return     = periodsPerYear * mu'w
//	volatility = sqrt(periodsPerYear * w'Sigma w)
//
// Mean and variance both scale linearly with the number of periods per
// year, volatility by the square root. A variance more negative than the
// tolerance indicates a non-PSD covariance matrix and fails; roundoff
// within tolerance is clamped to zero.
func Evaluate(weights, expectedReturns []float64, covariance *mat.SymDense, periodsPerYear float64) (Performance, error) {
	n := len(weights)
	if n == 0 || len(expectedReturns) != n || covariance.SymmetricDim() != n {
		return Performance{}, fmt.Errorf("%w: %d weights, %d expected returns, %dx%d covariance",
			domain.ErrDimensionMismatch, n, len(expectedReturns), covariance.SymmetricDim(), covariance.SymmetricDim())
	}

	annualReturn := periodsPerYear * floats.Dot(expectedReturns, weights)

	w := mat.NewVecDense(n, weights)
	variance := periodsPerYear * mat.Inner(w, covariance, w)
	if variance < -varianceTolerance {
		return Performance{}, fmt.Errorf("%w: negative portfolio variance %v", domain.ErrNumerical, variance)
	}
	if variance < 0 {
		variance = 0
	}

	return Performance{
		AnnualReturn:     annualReturn,
		AnnualVolatility: math.Sqrt(variance),
	}, nil
}
