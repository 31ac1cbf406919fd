// Package statistics turns a price history into the expected-return vector
// and sample covariance matrix consumed by the optimizer.
package statistics

import (
	"fmt"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/aristath/frontier/internal/domain"
)

// Estimates holds the statistical model derived from a price history.
// ExpectedReturns and Covariance are per-period (not annualized) and indexed
// in Symbols order.
type Estimates struct {
	Symbols         []string
	ExpectedReturns []float64
	Covariance      *mat.SymDense
	Observations    int
}

// Estimator converts price histories into return statistics.
type Estimator struct {
	log zerolog.Logger
}

// NewEstimator creates a new statistics estimator.
func NewEstimator(log zerolog.Logger) *Estimator {
	return &Estimator{
		log: log.With().Str("component", "statistics").Logger(),
	}
}

// Estimate computes the period-over-period return series from the price
// history, then the per-asset mean return and the unbiased sample
// covariance matrix.
//
// The first price row has no prior close, so the return series is one row
// shorter than the history. At least two return observations are required
// for the covariance to be defined, and at least as many observations as
// assets for it to be non-singular.
func (e *Estimator) Estimate(history domain.PriceHistory) (*Estimates, error) {
	if err := history.Validate(); err != nil {
		return nil, err
	}

	n := history.Assets()
	periods := history.Periods()
	if periods < 2 {
		return nil, fmt.Errorf("%w: %d price periods, need at least 2", domain.ErrInsufficientData, periods)
	}

	observations := periods - 1
	if observations < 2 {
		return nil, fmt.Errorf("%w: %d return observations, covariance undefined", domain.ErrInsufficientData, observations)
	}
	if observations < n {
		return nil, fmt.Errorf("%w: %d return observations for %d assets, covariance singular",
			domain.ErrInsufficientData, observations, n)
	}

	// returns[a] is the fractional price-change series for asset a.
	returns := make([][]float64, n)
	for a := range returns {
		returns[a] = make([]float64, observations)
	}
	for t := 1; t < periods; t++ {
		for a := 0; a < n; a++ {
			returns[a][t-1] = history.Closes[t][a]/history.Closes[t-1][a] - 1
		}
	}

	expectedReturns := make([]float64, n)
	for a := 0; a < n; a++ {
		expectedReturns[a] = stat.Mean(returns[a], nil)
	}

	covariance := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			covariance.SetSym(i, j, stat.Covariance(returns[i], returns[j], nil))
		}
	}

	e.log.Debug().
		Int("assets", n).
		Int("observations", observations).
		Msg("Estimated return statistics")

	return &Estimates{
		Symbols:         append([]string(nil), history.Symbols...),
		ExpectedReturns: expectedReturns,
		Covariance:      covariance,
		Observations:    observations,
	}, nil
}
