// Package parser turns extracted statement documents into normalized
// transaction records. It is layout-agnostic: detected tables are parsed
// first, and a text-line pass over the whole document acts as a fallback
// whenever the tables yield too little.
package parser

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fincheckhq/fincheck/internal/extractor"
	"github.com/fincheckhq/fincheck/internal/models"
)

// Engine parses statement documents. Safe for concurrent use.
type Engine struct {
	// MinTableTransactions is the yield below which the table strategy is
	// distrusted and the text-line fallback is consulted.
	MinTableTransactions int

	log zerolog.Logger
}

// New returns an Engine with the given fallback threshold.
func New(minTableTransactions int, log zerolog.Logger) *Engine {
	return &Engine{
		MinTableTransactions: minTableTransactions,
		log:                  log.With().Str("component", "parser").Logger(),
	}
}

// Result is a parsed statement: its metadata, the accepted transactions, and
// the rows that were seen but skipped.
type Result struct {
	Metadata     *models.StatementMetadata
	Transactions []models.TransactionRecord
	Skipped      []string
}

// ParseStatement extracts a statement PDF and parses it.
func (e *Engine) ParseStatement(filePath string) (*Result, error) {
	doc, err := extractor.ExtractDocument(filePath)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", filePath, err)
	}
	res, err := e.ParseDocument(doc)
	if err != nil {
		return nil, err
	}
	res.Metadata.SourcePath = filePath
	return res, nil
}

// ParseDocument parses an already-extracted document. Metadata comes from the
// first page; an undetected statement period defaults to the current month so
// bare MM/DD dates still complete to something sensible.
func (e *Engine) ParseDocument(doc *extractor.Document) (*Result, error) {
	meta := ExtractMetadata(doc.FirstPageText())
	if meta.Period == "" {
		meta.Period = time.Now().Format("2006-01")
	}

	var tableResults []RowResult
	for _, page := range doc.Pages {
		for _, table := range page.Tables {
			tableResults = append(tableResults, parseTable(table, meta)...)
		}
	}
	records, skipped := splitResults(tableResults)
	strategy := "table"

	// A thin table yield usually means the layout analysis mis-detected the
	// transaction region. Let the line pass compete on the full text; it
	// replaces the table result only when it strictly beats it.
	if len(records) < e.MinTableTransactions {
		textRecords, textSkipped := splitResults(parseTextLines(doc.AllText(), meta))
		if len(textRecords) > len(records) {
			records, skipped = textRecords, textSkipped
			strategy = "text"
		}
	}

	// A readable statement with no recognizable rows is not an error: some
	// periods genuinely have no activity. Callers surface the transaction
	// count as the quality signal.
	e.log.Info().
		Str("institution", meta.Institution).
		Str("accountClass", string(meta.AccountClass)).
		Str("period", meta.Period).
		Str("strategy", strategy).
		Int("transactions", len(records)).
		Int("skipped", len(skipped)).
		Msg("statement parsed")

	return &Result{Metadata: meta, Transactions: records, Skipped: skipped}, nil
}

func splitResults(results []RowResult) ([]models.TransactionRecord, []string) {
	var records []models.TransactionRecord
	var skipped []string
	for _, r := range results {
		if r.Skipped() {
			skipped = append(skipped, r.Skip)
			continue
		}
		records = append(records, r.Record)
	}
	return records, skipped
}
