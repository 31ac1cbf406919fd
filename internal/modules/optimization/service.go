package optimization

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/frontier/internal/domain"
	"github.com/aristath/frontier/internal/modules/statistics"
)

// QuoteProvider supplies daily close history for a set of symbols over a
// date range. An empty result must be reported as an error, never as a
// silently partial table.
type QuoteProvider interface {
	DailyHistory(ctx context.Context, symbols []string, from, to time.Time) (domain.PriceHistory, error)
}

// PriceCache persists fetched price history and serves it back when the
// upstream provider is unavailable.
type PriceCache interface {
	SaveHistory(history domain.PriceHistory) error
	LoadHistory(symbols []string, from, to time.Time) (domain.PriceHistory, error)
}

// ServiceConfig carries the recognized optimization options.
type ServiceConfig struct {
	Tickers        []string
	LookbackYears  int
	RiskFreeRate   float64
	ConstraintMode ConstraintMode
	PeriodsPerYear float64
	NumSamples     int
	Seed           int64 // 0 seeds the sampler from the wall clock
}

// Service orchestrates one optimization pipeline: fetch history, persist
// it, estimate statistics, then optimize or sample. Every call recomputes
// from fresh inputs; nothing is shared between calls.
type Service struct {
	quotes    QuoteProvider
	cache     PriceCache // optional
	estimator *statistics.Estimator
	optimizer *Optimizer
	sampler   *FrontierSampler
	cfg       ServiceConfig
	log       zerolog.Logger
}

// NewService creates a new optimizer service. cache may be nil to disable
// persistence and fallback.
func NewService(quotes QuoteProvider, cache PriceCache, cfg ServiceConfig, log zerolog.Logger) *Service {
	return &Service{
		quotes:    quotes,
		cache:     cache,
		estimator: statistics.NewEstimator(log),
		optimizer: NewOptimizer(log),
		sampler:   NewFrontierSampler(log),
		cfg:       cfg,
		log:       log.With().Str("component", "optimizer_service").Logger(),
	}
}

// Optimize runs the full pipeline and returns the Sharpe-maximizing
// portfolio for the configured universe.
func (s *Service) Optimize(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	log := s.log.With().Str("run_id", runID).Logger()

	estimates, err := s.loadEstimates(ctx, log)
	if err != nil {
		return nil, err
	}

	result, err := s.optimizer.MaxSharpe(
		estimates.ExpectedReturns,
		estimates.Covariance,
		s.cfg.RiskFreeRate,
		s.cfg.ConstraintMode,
		s.cfg.PeriodsPerYear,
	)
	if err != nil {
		log.Error().Err(err).Msg("Optimization unavailable")
		return nil, fmt.Errorf("optimization unavailable: %w", err)
	}

	result.RunID = runID
	result.Symbols = estimates.Symbols

	log.Info().
		Float64("annual_return", result.AnnualReturn).
		Float64("annual_volatility", result.AnnualVolatility).
		Float64("sharpe_ratio", result.SharpeRatio).
		Msg("Optimized portfolio")

	return result, nil
}

// Frontier samples the feasible risk/return space. numSamples and seed
// override the configured values when positive / non-zero.
func (s *Service) Frontier(ctx context.Context, numSamples int, seed int64) ([]FrontierPoint, error) {
	if numSamples <= 0 {
		numSamples = s.cfg.NumSamples
	}
	if seed == 0 {
		seed = s.cfg.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	estimates, err := s.loadEstimates(ctx, s.log)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(seed))
	return s.sampler.Sample(
		estimates.ExpectedReturns,
		estimates.Covariance,
		numSamples,
		s.cfg.RiskFreeRate,
		s.cfg.PeriodsPerYear,
		rng,
	)
}

// RefreshPrices fetches the configured universe's history and persists it
// to the cache. Used by the scheduler.
func (s *Service) RefreshPrices(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	from, to := s.dateRange()
	history, err := s.quotes.DailyHistory(ctx, s.cfg.Tickers, from, to)
	if err != nil {
		return fmt.Errorf("price refresh failed: %w", err)
	}
	if err := s.cache.SaveHistory(history); err != nil {
		return fmt.Errorf("price refresh failed: %w", err)
	}
	s.log.Info().Int("periods", history.Periods()).Msg("Refreshed price cache")
	return nil
}

// loadEstimates fetches the price history (falling back to cached data when
// the provider fails) and derives return statistics from it.
func (s *Service) loadEstimates(ctx context.Context, log zerolog.Logger) (*statistics.Estimates, error) {
	from, to := s.dateRange()

	history, err := s.quotes.DailyHistory(ctx, s.cfg.Tickers, from, to)
	if err != nil {
		if s.cache == nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInsufficientData, err)
		}
		// Stale cached prices beat no prices.
		cached, cacheErr := s.cache.LoadHistory(s.cfg.Tickers, from, to)
		if cacheErr != nil || cached.Periods() == 0 {
			return nil, fmt.Errorf("%w: %v", domain.ErrInsufficientData, err)
		}
		log.Warn().Err(err).Int("periods", cached.Periods()).Msg("Quote fetch failed, using cached prices")
		history = cached
	} else if s.cache != nil {
		if err := s.cache.SaveHistory(history); err != nil {
			log.Warn().Err(err).Msg("Failed to cache price history")
		}
	}

	return s.estimator.Estimate(history)
}

func (s *Service) dateRange() (from, to time.Time) {
	to = time.Now().UTC()
	from = to.AddDate(-s.cfg.LookbackYears, 0, 0)
	return from, to
}
