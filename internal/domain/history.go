package domain

import (
	"fmt"
	"sort"
	"time"
)

// PriceHistory is a time-ordered table of daily closing prices: one row per
// trading day, one column per symbol. Symbol order is significant - it
// defines the indexing used by every weight vector and matrix derived from
// the table.
type PriceHistory struct {
	Symbols []string
	Dates   []time.Time
	Closes  [][]float64
}

// Periods returns the number of price rows.
func (h PriceHistory) Periods() int { return len(h.Closes) }

// Assets returns the number of symbols.
func (h PriceHistory) Assets() int { return len(h.Symbols) }

// Validate checks the table shape: every row must have one close per
// symbol, and every close must be strictly positive.
func (h PriceHistory) Validate() error {
	n := h.Assets()
	if n == 0 {
		return fmt.Errorf("%w: no symbols", ErrInsufficientData)
	}
	if len(h.Dates) != len(h.Closes) {
		return fmt.Errorf("%w: %d dates for %d rows", ErrDataIntegrity, len(h.Dates), len(h.Closes))
	}
	for i, row := range h.Closes {
		if len(row) != n {
			return fmt.Errorf("%w: row %d has %d closes, expected %d", ErrDataIntegrity, i, len(row), n)
		}
		for j, close := range row {
			if !(close > 0) {
				return fmt.Errorf("%w: non-positive close %v for %s on %s",
					ErrDataIntegrity, close, h.Symbols[j], h.Dates[i].Format("2006-01-02"))
			}
		}
	}
	return nil
}

// AlignSeries builds a PriceHistory from per-symbol close series keyed by
// unix day timestamp. Only timestamps present for every symbol are kept, so
// rows with a gap in any column are dropped. Rows come out in ascending
// date order.
func AlignSeries(symbols []string, closes map[string]map[int64]float64) PriceHistory {
	if len(symbols) == 0 {
		return PriceHistory{Symbols: symbols}
	}
	common := make(map[int64]bool)
	for ts := range closes[symbols[0]] {
		common[ts] = true
	}
	for _, symbol := range symbols[1:] {
		series := closes[symbol]
		for ts := range common {
			if _, ok := series[ts]; !ok {
				delete(common, ts)
			}
		}
	}

	timestamps := make([]int64, 0, len(common))
	for ts := range common {
		timestamps = append(timestamps, ts)
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })

	history := PriceHistory{
		Symbols: symbols,
		Dates:   make([]time.Time, len(timestamps)),
		Closes:  make([][]float64, len(timestamps)),
	}
	for i, ts := range timestamps {
		history.Dates[i] = time.Unix(ts, 0).UTC()
		row := make([]float64, len(symbols))
		for j, symbol := range symbols {
			row[j] = closes[symbol][ts]
		}
		history.Closes[i] = row
	}
	return history
}
