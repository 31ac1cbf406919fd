// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Default optimization parameters, used when the corresponding environment
// variable is not set.
const (
	DefaultTickers        = "AAPL,MSFT,AMZN,GOOGL,BRK-B"
	DefaultLookbackYears  = 3
	DefaultRiskFreeRate   = 0.02
	DefaultConstraintMode = "long_only"
	DefaultPeriodsPerYear = 252
	DefaultNumSamples     = 1000
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for the price cache database
	LogLevel string
	Port     int
	DevMode  bool

	// Optimization surface
	Tickers         []string
	LookbackYears   int
	RiskFreeRate    float64
	ConstraintMode  string
	PeriodsPerYear  float64
	NumSamples      int
	FrontierSeed    int64  // 0 means seed from wall clock per request
	RefreshSchedule string // cron spec for the daily price refresh
}

// Load reads configuration from the environment, with a best-effort .env
// file load first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DataDir:         getEnv("DATA_DIR", "./data"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DevMode:         getEnv("DEV_MODE", "false") == "true",
		Tickers:         parseCSV(getEnv("TICKERS", DefaultTickers)),
		ConstraintMode:  getEnv("CONSTRAINT_MODE", DefaultConstraintMode),
		RefreshSchedule: getEnv("PRICE_REFRESH_SCHEDULE", "30 22 * * 1-5"),
	}

	var err error
	if cfg.Port, err = getEnvInt("PORT", 8090); err != nil {
		return nil, err
	}
	if cfg.LookbackYears, err = getEnvInt("LOOKBACK_YEARS", DefaultLookbackYears); err != nil {
		return nil, err
	}
	if cfg.NumSamples, err = getEnvInt("NUM_SAMPLES", DefaultNumSamples); err != nil {
		return nil, err
	}
	if cfg.RiskFreeRate, err = getEnvFloat("RISK_FREE_RATE", DefaultRiskFreeRate); err != nil {
		return nil, err
	}
	if cfg.PeriodsPerYear, err = getEnvFloat("PERIODS_PER_YEAR", DefaultPeriodsPerYear); err != nil {
		return nil, err
	}
	seed, err := getEnvInt("FRONTIER_SEED", 0)
	if err != nil {
		return nil, err
	}
	cfg.FrontierSeed = int64(seed)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.Tickers) == 0 {
		return fmt.Errorf("config: TICKERS must name at least one symbol")
	}
	seen := make(map[string]bool, len(c.Tickers))
	for _, t := range c.Tickers {
		if seen[t] {
			return fmt.Errorf("config: duplicate ticker %q", t)
		}
		seen[t] = true
	}
	if c.LookbackYears < 1 {
		return fmt.Errorf("config: LOOKBACK_YEARS must be >= 1, got %d", c.LookbackYears)
	}
	if c.PeriodsPerYear <= 0 {
		return fmt.Errorf("config: PERIODS_PER_YEAR must be positive, got %v", c.PeriodsPerYear)
	}
	if c.NumSamples < 1 {
		return fmt.Errorf("config: NUM_SAMPLES must be >= 1, got %d", c.NumSamples)
	}
	return nil
}

// parseCSV splits a comma-separated string into trimmed non-empty values.
func parseCSV(s string) []string {
	var result []string
	for _, v := range strings.Split(s, ",") {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", key, value, err)
	}
	return f, nil
}
