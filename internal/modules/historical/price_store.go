// Package historical persists daily close prices so the optimizer can keep
// working when the market-data provider is unavailable.
package historical

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/frontier/internal/domain"
)

// PriceStore is a sqlite-backed daily close cache.
type PriceStore struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewPriceStore creates a new price store on the given connection.
func NewPriceStore(db *sql.DB, log zerolog.Logger) *PriceStore {
	return &PriceStore{
		db:  db,
		log: log.With().Str("component", "price_store").Logger(),
	}
}

// Init creates the daily_prices table if it does not exist.
func (s *PriceStore) Init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS daily_prices (
			symbol TEXT NOT NULL,
			date   INTEGER NOT NULL,
			close  REAL NOT NULL,
			PRIMARY KEY (symbol, date)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create daily_prices table: %w", err)
	}
	return nil
}

// SaveHistory upserts every close in the history table.
func (s *PriceStore) SaveHistory(history domain.PriceHistory) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO daily_prices (symbol, date, close) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, date := range history.Dates {
		for j, symbol := range history.Symbols {
			if _, err := stmt.Exec(symbol, date.Unix(), history.Closes[i][j]); err != nil {
				return fmt.Errorf("failed to insert close for %s: %w", symbol, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit price history: %w", err)
	}

	s.log.Debug().
		Int("periods", history.Periods()).
		Int("symbols", history.Assets()).
		Msg("Saved price history")

	return nil
}

// LoadHistory reads the cached closes for the symbols over [from, to] and
// aligns them on common dates, dropping days any symbol is missing.
func (s *PriceStore) LoadHistory(symbols []string, from, to time.Time) (domain.PriceHistory, error) {
	closes := make(map[string]map[int64]float64, len(symbols))
	for _, symbol := range symbols {
		series, err := s.loadSeries(symbol, from, to)
		if err != nil {
			return domain.PriceHistory{}, err
		}
		closes[symbol] = series
	}
	return domain.AlignSeries(symbols, closes), nil
}

func (s *PriceStore) loadSeries(symbol string, from, to time.Time) (map[int64]float64, error) {
	rows, err := s.db.Query(
		`SELECT date, close FROM daily_prices WHERE symbol = ? AND date >= ? AND date <= ? ORDER BY date`,
		symbol, from.Unix(), to.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily prices for %s: %w", symbol, err)
	}
	defer rows.Close()

	series := make(map[int64]float64)
	for rows.Next() {
		var date int64
		var close float64
		if err := rows.Scan(&date, &close); err != nil {
			return nil, fmt.Errorf("failed to scan daily price for %s: %w", symbol, err)
		}
		series[date] = close
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily prices for %s: %w", symbol, err)
	}
	return series, nil
}
