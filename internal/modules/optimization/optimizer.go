package optimization

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/aristath/frontier/internal/domain"
)

// ConstraintMode selects the per-weight bounds for the optimizer.
type ConstraintMode string

const (
	// LongOnly bounds every weight to [0, 1].
	LongOnly ConstraintMode = "long_only"
	// LongShort bounds every weight to [-1, 1], permitting short positions.
	LongShort ConstraintMode = "long_short"
)

const (
	// sumConstraintTolerance is the accepted violation of the sum(w)=1
	// equality in the final solution.
	sumConstraintTolerance = 1e-6

	// degeneratePenalty replaces the objective at candidate points whose
	// volatility is degenerate, keeping the search alive without NaN/Inf.
	degeneratePenalty = 1e6

	// Penalty weights for the sum(w)=1 equality. The solver runs once with
	// the base weight, then again warm-started with the polish weight so
	// the equality residual lands within tolerance without post-hoc
	// renormalization.
	basePenaltyWeight   = 1e4
	polishPenaltyWeight = 1e8

	// weightDecimals is the rounding applied to reported weights.
	weightDecimals = 4
)

// Result is the outcome of one optimization call. Weights are rounded for
// presentation; the performance figures are recomputed from the solver's
// full-precision weights.
type Result struct {
	RunID            string    `json:"run_id,omitempty"`
	Symbols          []string  `json:"symbols,omitempty"`
	Weights          []float64 `json:"weights"`
	AnnualReturn     float64   `json:"annual_return"`
	AnnualVolatility float64   `json:"annual_volatility"`
	SharpeRatio      float64   `json:"sharpe_ratio"`
}

// Optimizer finds the Sharpe-maximizing weight vector under box bounds and
// the fully-invested (sum of weights = 1) equality constraint.
type Optimizer struct {
	log zerolog.Logger
}

// NewOptimizer creates a new max-Sharpe optimizer.
func NewOptimizer(log zerolog.Logger) *Optimizer {
	return &Optimizer{
		log: log.With().Str("component", "optimizer").Logger(),
	}
}

// bounds maps a constraint mode to per-weight box bounds. An empty mode
// defaults to long-only; anything else unrecognized is a configuration
// error, not a silent fallback.
func (mode ConstraintMode) bounds() (lo, hi float64, err error) {
	switch mode {
	case "", LongOnly:
		return 0, 1, nil
	case LongShort:
		return -1, 1, nil
	default:
		return 0, 0, fmt.Errorf("%w: unknown constraint mode %q", domain.ErrDimensionMismatch, mode)
	}
}

// MaxSharpe solves
//
//	minimize   -(R(w) - riskFreeRate) / vol(w)
//	subject to sum(w) = 1,  lo <= w_i <= hi
//
// with an equal-weight initial guess. Bounds are enforced by projection
// inside the objective, the equality by a quadratic penalty with one
// warm-started continuation step at a higher penalty weight. The search is
// deterministic: fixed initial point, no randomness.
func (o *Optimizer) MaxSharpe(
	expectedReturns []float64,
	covariance *mat.SymDense,
	riskFreeRate float64,
	mode ConstraintMode,
	periodsPerYear float64,
) (*Result, error) {
	n := len(expectedReturns)
	if n == 0 {
		return nil, fmt.Errorf("%w: no assets", domain.ErrDimensionMismatch)
	}
	if covariance.SymmetricDim() != n {
		return nil, fmt.Errorf("%w: %d expected returns, %dx%d covariance",
			domain.ErrDimensionMismatch, n, covariance.SymmetricDim(), covariance.SymmetricDim())
	}
	lo, hi, err := mode.bounds()
	if err != nil {
		return nil, err
	}

	// Single asset: the only fully-invested portfolio is weight 1, no
	// search needed.
	if n == 1 {
		return o.finish([]float64{1}, expectedReturns, covariance, riskFreeRate, periodsPerYear)
	}

	initial := make([]float64, n)
	for i := range initial {
		initial[i] = 1.0 / float64(n)
	}

	x, err := o.solve(o.problem(expectedReturns, covariance, riskFreeRate, periodsPerYear, lo, hi, basePenaltyWeight), initial)
	if err != nil {
		return nil, err
	}
	x, err = o.solve(o.problem(expectedReturns, covariance, riskFreeRate, periodsPerYear, lo, hi, polishPenaltyWeight), x)
	if err != nil {
		return nil, err
	}

	weights := projectToBounds(x, lo, hi)
	if sum := floats.Sum(weights); math.Abs(sum-1) > sumConstraintTolerance {
		return nil, fmt.Errorf("%w: weight sum %v violates equality constraint", domain.ErrConvergence, sum)
	}

	return o.finish(weights, expectedReturns, covariance, riskFreeRate, periodsPerYear)
}

// problem builds the penalized objective and its gradient for one penalty
// weight.
func (o *Optimizer) problem(
	expectedReturns []float64,
	covariance *mat.SymDense,
	riskFreeRate, periodsPerYear, lo, hi, penaltyWeight float64,
) optimize.Problem {
	n := len(expectedReturns)

	return optimize.Problem{
		Func: func(x []float64) float64 {
			w := projectToBounds(x, lo, hi)

			obj, err := NegativeSharpe(w, expectedReturns, covariance, riskFreeRate, periodsPerYear)
			if err != nil {
				obj = degeneratePenalty
			}

			sum := floats.Sum(w)
			return obj + penaltyWeight*(sum-1)*(sum-1)
		},
		Grad: func(grad, x []float64) {
			w := projectToBounds(x, lo, hi)

			var annualReturn, variance float64
			for i := 0; i < n; i++ {
				annualReturn += expectedReturns[i] * w[i]
				for j := 0; j < n; j++ {
					variance += w[i] * w[j] * covariance.At(i, j)
				}
			}
			annualReturn *= periodsPerYear
			variance *= periodsPerYear
			stdDev := math.Sqrt(math.Max(variance, 1e-10))
			excess := annualReturn - riskFreeRate

			sum := floats.Sum(w)
			for i := 0; i < n; i++ {
				var dVariance float64
				for j := 0; j < n; j++ {
					dVariance += 2 * covariance.At(i, j) * w[j]
				}
				dVariance *= periodsPerYear

				grad[i] = -periodsPerYear*expectedReturns[i]/stdDev + excess*dVariance/(2*stdDev*stdDev*stdDev)
				grad[i] += 2 * penaltyWeight * (sum - 1)
			}
		},
	}
}

// solve runs the gradient-based method first and falls back to the
// derivative-free simplex when it fails or stalls on a projection kink.
func (o *Optimizer) solve(problem optimize.Problem, initial []float64) ([]float64, error) {
	result, err := optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.BFGS{})
	if err == nil && converged(result.Status) {
		return result.X, nil
	}

	result, err = optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConvergence, err)
	}
	if !converged(result.Status) {
		return nil, fmt.Errorf("%w: status=%v", domain.ErrConvergence, result.Status)
	}
	return result.X, nil
}

func converged(status optimize.Status) bool {
	switch status {
	case optimize.Success, optimize.GradientThreshold, optimize.FunctionConvergence:
		return true
	}
	return false
}

// finish recomputes performance and Sharpe ratio from the final weights so
// the reported numbers are self-consistent with Evaluate, then rounds the
// weights for presentation.
func (o *Optimizer) finish(
	weights, expectedReturns []float64,
	covariance *mat.SymDense,
	riskFreeRate, periodsPerYear float64,
) (*Result, error) {
	perf, err := Evaluate(weights, expectedReturns, covariance, periodsPerYear)
	if err != nil {
		return nil, err
	}
	if perf.AnnualVolatility <= volatilityEpsilon {
		return nil, fmt.Errorf("%w: optimal portfolio volatility %v",
			domain.ErrDegenerateVolatility, perf.AnnualVolatility)
	}

	result := &Result{
		Weights:          roundWeights(weights, weightDecimals),
		AnnualReturn:     perf.AnnualReturn,
		AnnualVolatility: perf.AnnualVolatility,
		SharpeRatio:      (perf.AnnualReturn - riskFreeRate) / perf.AnnualVolatility,
	}

	o.log.Debug().
		Int("assets", len(weights)).
		Float64("annual_return", result.AnnualReturn).
		Float64("annual_volatility", result.AnnualVolatility).
		Float64("sharpe_ratio", result.SharpeRatio).
		Msg("Optimization finished")

	return result, nil
}

// projectToBounds clamps every weight to [lo, hi].
func projectToBounds(x []float64, lo, hi float64) []float64 {
	proj := make([]float64, len(x))
	for i := range x {
		proj[i] = math.Max(lo, math.Min(hi, x[i]))
	}
	return proj
}

func roundWeights(weights []float64, decimals int) []float64 {
	scale := math.Pow(10, float64(decimals))
	rounded := make([]float64, len(weights))
	for i, w := range weights {
		rounded[i] = math.Round(w*scale) / scale
	}
	return rounded
}
