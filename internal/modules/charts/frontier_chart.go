// Package charts renders optimization output as PNG images.
package charts

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vicanso/go-charts/v2"

	"github.com/aristath/frontier/internal/modules/optimization"
)

// RenderFrontier draws the sampled risk/return cloud ordered by volatility,
// with the optimal portfolio overlaid as a second series. optimal may be
// nil to render the cloud alone.
func RenderFrontier(points []optimization.FrontierPoint, optimal *optimization.Result) ([]byte, error) {
	if len(points) == 0 {
		return nil, errors.New("no frontier points to render")
	}

	sorted := append([]optimization.FrontierPoint(nil), points...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].AnnualVolatility < sorted[j].AnnualVolatility
	})

	labels := make([]string, len(sorted))
	cloud := make([]float64, len(sorted))
	for i, p := range sorted {
		labels[i] = fmt.Sprintf("%.3f", p.AnnualVolatility)
		cloud[i] = p.AnnualReturn
	}

	values := [][]float64{cloud}
	legend := []string{"sampled portfolios"}

	if optimal != nil {
		// Overlay the optimum's annual return as a reference line across
		// the cloud.
		marker := make([]float64, len(sorted))
		for i := range marker {
			marker[i] = optimal.AnnualReturn
		}
		values = append(values, marker)
		legend = append(legend, "max sharpe")
	}

	painter, err := charts.LineRender(
		values,
		charts.TitleTextOptionFunc("Efficient Frontier"),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: labels, BoundaryGap: charts.FalseFlag()}),
		charts.LegendOptionFunc(charts.LegendOption{Data: legend}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render frontier chart: %w", err)
	}

	return painter.Bytes()
}
