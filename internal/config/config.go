package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
)

// Config is the full application configuration, loaded from the environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Detector DetectorConfig
}

type ServerConfig struct {
	Addr string `env:"FINCHECK_ADDR" envDefault:":8080"`
	// Cron spec for periodic re-scans in serve mode. Empty disables them.
	ScanSchedule string `env:"FINCHECK_SCAN_SCHEDULE"`
}

type DatabaseConfig struct {
	// URL takes precedence over the individual fields when set.
	URL      string `env:"DATABASE_URL"`
	Host     string `env:"FINCHECK_DB_HOST" envDefault:"localhost:5432"`
	User     string `env:"FINCHECK_DB_USER" envDefault:"fincheck"`
	Password string `env:"FINCHECK_DB_PASSWORD"`
	Name     string `env:"FINCHECK_DB_NAME" envDefault:"fincheck"`
	Insecure bool   `env:"FINCHECK_DB_INSECURE" envDefault:"true"`
}

// DetectorConfig carries every tunable threshold of the extraction and
// detection engines. The defaults are the supported configuration; they exist
// as knobs so tests and unusual statement sets can adjust them.
type DetectorConfig struct {
	// Minimum transactions the table strategy must yield before the
	// text-line fallback is consulted.
	MinTableTransactions int `env:"FINCHECK_MIN_TABLE_TXNS" envDefault:"5"`

	// A gap between consecutive charges counts as monthly when it falls in
	// [MonthlyMinGapDays, MonthlyMaxGapDays].
	MonthlyMinGapDays int `env:"FINCHECK_MONTHLY_MIN_GAP" envDefault:"25"`
	MonthlyMaxGapDays int `env:"FINCHECK_MONTHLY_MAX_GAP" envDefault:"35"`
	// Fraction of gaps that must be monthly for a merchant to be recurring.
	MonthlyMatchRatio float64 `env:"FINCHECK_MONTHLY_MATCH_RATIO" envDefault:"0.7"`

	// The duplicate scan looks back at most DuplicateLookback transactions
	// (in date order) and DuplicateWindowDays days. The transaction-count
	// bound can miss duplicates in dense histories; it is kept for
	// compatibility with the established detection behavior.
	DuplicateLookback   int     `env:"FINCHECK_DUP_LOOKBACK" envDefault:"20"`
	DuplicateWindowDays int     `env:"FINCHECK_DUP_WINDOW_DAYS" envDefault:"7"`
	DuplicateTolerance  float64 `env:"FINCHECK_DUP_TOLERANCE" envDefault:"0.01"`

	// A consecutive-charge delta is a price increase when it exceeds
	// PriceIncreaseAbs dollars or PriceIncreasePct percent.
	PriceIncreaseAbs float64 `env:"FINCHECK_PRICE_INCREASE_ABS" envDefault:"5"`
	PriceIncreasePct float64 `env:"FINCHECK_PRICE_INCREASE_PCT" envDefault:"20"`

	// Average-charge band for the small recurring "drip" pattern.
	SuspiciousMinAvg float64 `env:"FINCHECK_SUSPICIOUS_MIN_AVG" envDefault:"5"`
	SuspiciousMaxAvg float64 `env:"FINCHECK_SUSPICIOUS_MAX_AVG" envDefault:"25"`

	// Minimum name-similarity ratio for merchant clustering.
	SimilarityThreshold float64 `env:"FINCHECK_SIMILARITY_THRESHOLD" envDefault:"0.8"`

	// Spending velocity is "increasing" when the second-half monthly mean
	// exceeds the first-half mean times VelocityIncreaseRatio, "decreasing"
	// below VelocityDecreaseRatio, "stable" otherwise.
	VelocityIncreaseRatio float64 `env:"FINCHECK_VELOCITY_INCREASE" envDefault:"1.1"`
	VelocityDecreaseRatio float64 `env:"FINCHECK_VELOCITY_DECREASE" envDefault:"0.9"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}
	return cfg, nil
}

// DefaultDetector returns the detector knobs at their documented defaults,
// without touching the environment.
func DefaultDetector() DetectorConfig {
	return DetectorConfig{
		MinTableTransactions:  5,
		MonthlyMinGapDays:     25,
		MonthlyMaxGapDays:     35,
		MonthlyMatchRatio:     0.7,
		DuplicateLookback:     20,
		DuplicateWindowDays:   7,
		DuplicateTolerance:    0.01,
		PriceIncreaseAbs:      5,
		PriceIncreasePct:      20,
		SuspiciousMinAvg:      5,
		SuspiciousMaxAvg:      25,
		SimilarityThreshold:   0.8,
		VelocityIncreaseRatio: 1.1,
		VelocityDecreaseRatio: 0.9,
	}
}
