package statistics

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/frontier/internal/domain"
)

func historyOf(symbols []string, closes [][]float64) domain.PriceHistory {
	dates := make([]time.Time, len(closes))
	for i := range dates {
		dates[i] = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
	}
	return domain.PriceHistory{Symbols: symbols, Dates: dates, Closes: closes}
}

func TestEstimate_KnownStatistics(t *testing.T) {
	// Returns: A = [0.1, 0.0], B = [0.1, -0.1]
	history := historyOf([]string{"A", "B"}, [][]float64{
		{10, 20},
		{11, 22},
		{11, 19.8},
	})

	estimates, err := NewEstimator(zerolog.Nop()).Estimate(history)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, estimates.Symbols)
	assert.Equal(t, 2, estimates.Observations)

	require.Len(t, estimates.ExpectedReturns, 2)
	assert.InDelta(t, 0.05, estimates.ExpectedReturns[0], 1e-12)
	assert.InDelta(t, 0.0, estimates.ExpectedReturns[1], 1e-12)

	// Unbiased sample covariance with 2 observations.
	require.Equal(t, 2, estimates.Covariance.SymmetricDim())
	assert.InDelta(t, 0.005, estimates.Covariance.At(0, 0), 1e-12)
	assert.InDelta(t, 0.02, estimates.Covariance.At(1, 1), 1e-12)
	assert.InDelta(t, 0.01, estimates.Covariance.At(0, 1), 1e-12)
	assert.InDelta(t, estimates.Covariance.At(0, 1), estimates.Covariance.At(1, 0), 1e-15)
}

func TestEstimate_SingleAsset(t *testing.T) {
	history := historyOf([]string{"A"}, [][]float64{{100}, {110}, {99}})

	estimates, err := NewEstimator(zerolog.Nop()).Estimate(history)
	require.NoError(t, err)

	// Returns 0.1 and -0.1, mean 0, variance 0.02.
	assert.InDelta(t, 0.0, estimates.ExpectedReturns[0], 1e-12)
	assert.InDelta(t, 0.02, estimates.Covariance.At(0, 0), 1e-12)
}

func TestEstimate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		history domain.PriceHistory
		wantErr error
	}{
		{
			name:    "one price period",
			history: historyOf([]string{"A"}, [][]float64{{100}}),
			wantErr: domain.ErrInsufficientData,
		},
		{
			name:    "single return observation",
			history: historyOf([]string{"A"}, [][]float64{{100}, {101}}),
			wantErr: domain.ErrInsufficientData,
		},
		{
			name:    "fewer observations than assets",
			history: historyOf([]string{"A", "B", "C"}, [][]float64{{1, 2, 3}, {1, 2, 3}, {1, 2, 3}}),
			wantErr: domain.ErrInsufficientData,
		},
		{
			name:    "non-positive price",
			history: historyOf([]string{"A"}, [][]float64{{100}, {-1}, {101}}),
			wantErr: domain.ErrDataIntegrity,
		},
		{
			name:    "no assets",
			history: historyOf(nil, nil),
			wantErr: domain.ErrInsufficientData,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewEstimator(zerolog.Nop()).Estimate(tc.history)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}
