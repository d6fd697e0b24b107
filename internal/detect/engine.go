// Package detect finds wasteful or suspicious spending patterns in a set of
// transactions: recurring subscriptions, duplicate charges, price creep, and
// generically named merchants. Detectors are pure functions over an input
// snapshot; they never touch storage.
package detect

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/fincheckhq/fincheck/internal/config"
	"github.com/fincheckhq/fincheck/internal/models"
)

// TransactionSource is the slice of storage the engine needs: a full
// transaction snapshot. *store.Store satisfies it.
type TransactionSource interface {
	GetAllTransactions(ctx context.Context) ([]models.TransactionRecord, error)
}

// Engine runs all detectors with one shared configuration.
type Engine struct {
	cfg config.DetectorConfig
	log zerolog.Logger
}

// New returns an Engine using the given thresholds.
func New(cfg config.DetectorConfig, log zerolog.Logger) *Engine {
	return &Engine{cfg: cfg, log: log.With().Str("component", "detect").Logger()}
}

// Run loads the full transaction snapshot from src and scans it.
func (e *Engine) Run(ctx context.Context, src TransactionSource) ([]models.GriftFinding, error) {
	txns, err := src.GetAllTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return e.DetectAll(txns), nil
}

// DetectAll runs every detector over the snapshot and concatenates their
// findings. Input order does not matter; each detector sorts what it needs.
func (e *Engine) DetectAll(txns []models.TransactionRecord) []models.GriftFinding {
	findings := e.DetectRecurring(txns)
	findings = append(findings, e.DetectDuplicates(txns)...)
	findings = append(findings, e.DetectPriceIncreases(txns)...)
	findings = append(findings, e.DetectSuspiciousMerchants(txns)...)

	e.log.Info().
		Int("transactions", len(txns)).
		Int("findings", len(findings)).
		Msg("grift scan complete")
	return findings
}

// groupByMerchant buckets transactions under their exact merchant string.
func groupByMerchant(txns []models.TransactionRecord) map[string][]models.TransactionRecord {
	groups := make(map[string][]models.TransactionRecord)
	for _, t := range txns {
		groups[t.Merchant] = append(groups[t.Merchant], t)
	}
	return groups
}

// sortedMerchants returns group keys in lexicographic order so detector
// output is deterministic regardless of map iteration.
func sortedMerchants(groups map[string][]models.TransactionRecord) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// sortedByDate returns a copy sorted by date, with ID as the tiebreaker.
// Dates are YYYY-MM-DD strings, so lexicographic order is chronological.
func sortedByDate(txns []models.TransactionRecord) []models.TransactionRecord {
	out := make([]models.TransactionRecord, len(txns))
	copy(out, txns)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func averageAmount(txns []models.TransactionRecord) float64 {
	if len(txns) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range txns {
		sum += t.Amount
	}
	return sum / float64(len(txns))
}
