// Package domain holds the shared value types and error taxonomy used
// across the optimization pipeline.
package domain

import "errors"

// Sentinel errors for the optimization pipeline. Callers match on these
// with errors.Is; producing code wraps them with fmt.Errorf and %w to add
// context.
var (
	// ErrInsufficientData indicates too little (or no) price history to
	// compute statistics from.
	ErrInsufficientData = errors.New("insufficient price history")

	// ErrDataIntegrity indicates a malformed price table, e.g. a
	// non-positive price or a ragged row.
	ErrDataIntegrity = errors.New("malformed price data")

	// ErrDimensionMismatch indicates a shape mismatch between weights,
	// expected returns and the covariance matrix, or an invalid
	// configuration value of the same class (e.g. an unknown constraint
	// mode).
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrDegenerateVolatility indicates a portfolio with zero (or
	// numerically zero) volatility, for which the Sharpe ratio is
	// undefined.
	ErrDegenerateVolatility = errors.New("degenerate portfolio volatility")

	// ErrNumerical indicates a numerical artifact such as a negative
	// variance beyond tolerance, i.e. a non-PSD covariance matrix.
	ErrNumerical = errors.New("numerical instability")

	// ErrConvergence indicates the solver failed to reach a feasible
	// optimum within its iteration limit.
	ErrConvergence = errors.New("optimizer failed to converge")
)
