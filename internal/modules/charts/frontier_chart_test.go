package charts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/frontier/internal/modules/optimization"
)

func samplePoints() []optimization.FrontierPoint {
	sharpe := func(v float64) *float64 { return &v }
	return []optimization.FrontierPoint{
		{Weights: []float64{0.5, 0.5}, AnnualReturn: 0.12, AnnualVolatility: 0.20, SharpeRatio: sharpe(0.50)},
		{Weights: []float64{0.8, 0.2}, AnnualReturn: 0.15, AnnualVolatility: 0.28, SharpeRatio: sharpe(0.46)},
		{Weights: []float64{0.2, 0.8}, AnnualReturn: 0.09, AnnualVolatility: 0.15, SharpeRatio: sharpe(0.47)},
	}
}

func TestRenderFrontier(t *testing.T) {
	optimal := &optimization.Result{
		Symbols:          []string{"AAA", "BBB"},
		Weights:          []float64{0.6, 0.4},
		AnnualReturn:     0.13,
		AnnualVolatility: 0.18,
		SharpeRatio:      0.61,
	}

	img, err := RenderFrontier(samplePoints(), optimal)
	require.NoError(t, err)
	require.Greater(t, len(img), 8)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), img[:8])
}

func TestRenderFrontier_WithoutOptimal(t *testing.T) {
	img, err := RenderFrontier(samplePoints(), nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), img[:8])
}

func TestRenderFrontier_NoPoints(t *testing.T) {
	_, err := RenderFrontier(nil, nil)
	assert.Error(t, err)
}
