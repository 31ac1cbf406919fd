// Package yahoo provides a Yahoo Finance daily price history client.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/frontier/internal/domain"
)

// Client for the Yahoo Finance v8 chart API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a new Yahoo Finance client.
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		baseURL:    "https://query1.finance.yahoo.com",
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log.With().Str("client", "yahoo").Logger(),
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"chart"`
}

// DailyHistory fetches daily closes for every symbol over [from, to] and
// aligns them into a single table. Trading days where any symbol has a
// missing or non-positive close are dropped, so the statistics step only
// ever sees complete rows. An empty intersection is an error, never a
// partial silent result.
func (c *Client) DailyHistory(ctx context.Context, symbols []string, from, to time.Time) (domain.PriceHistory, error) {
	if len(symbols) == 0 {
		return domain.PriceHistory{}, fmt.Errorf("%w: no symbols requested", domain.ErrInsufficientData)
	}

	closes := make(map[string]map[int64]float64, len(symbols))
	for _, symbol := range symbols {
		series, err := c.dailyCloses(ctx, symbol, from, to)
		if err != nil {
			return domain.PriceHistory{}, err
		}
		closes[symbol] = series
	}

	history := domain.AlignSeries(symbols, closes)
	if history.Periods() == 0 {
		return domain.PriceHistory{}, fmt.Errorf("%w: no common trading days for %v", domain.ErrInsufficientData, symbols)
	}

	c.log.Debug().
		Int("symbols", len(symbols)).
		Int("periods", history.Periods()).
		Msg("Fetched daily history")

	return history, nil
}

// dailyCloses fetches one symbol's series, keyed by the day's unix
// timestamp truncated to midnight UTC. Gap entries (Yahoo reports them as
// null, decoded to zero) are skipped.
func (c *Client) dailyCloses(ctx context.Context, symbol string, from, to time.Time) (map[int64]float64, error) {
	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d",
		c.baseURL, url.PathEscape(symbol), from.Unix(), to.Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("yahoo request for %s: %w", symbol, err)
	}
	req.Header.Set("User-Agent", "curl/8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo request for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo returned status %d for %s", resp.StatusCode, symbol)
	}

	var parsed chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decoding yahoo response for %s: %v", domain.ErrDataIntegrity, symbol, err)
	}

	if len(parsed.Chart.Result) == 0 || len(parsed.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: no data for %s", domain.ErrInsufficientData, symbol)
	}

	timestamps := parsed.Chart.Result[0].Timestamp
	quotes := parsed.Chart.Result[0].Indicators.Quote[0].Close

	series := make(map[int64]float64, len(timestamps))
	for i, ts := range timestamps {
		if i >= len(quotes) || !(quotes[i] > 0) {
			continue
		}
		day := time.Unix(ts, 0).UTC().Truncate(24 * time.Hour)
		series[day.Unix()] = quotes[i]
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: no valid closes for %s", domain.ErrInsufficientData, symbol)
	}
	return series, nil
}
