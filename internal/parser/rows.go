package parser

import (
	"math"
	"regexp"
	"strings"

	"github.com/fincheckhq/fincheck/internal/extractor"
	"github.com/fincheckhq/fincheck/internal/models"
)

// RowResult is the outcome for a single candidate row or line: either a
// parsed record or a skip with a reason. One bad row never aborts a
// statement.
type RowResult struct {
	Record models.TransactionRecord
	Skip   string
}

// Skipped reports whether the row was dropped rather than parsed.
func (r RowResult) Skipped() bool {
	return r.Skip != ""
}

func skipRow(reason string) RowResult {
	return RowResult{Skip: reason}
}

// Header keywords that assign a column role.
var (
	dateHeaderWords     = []string{"date", "trans", "post"}
	merchantHeaderWords = []string{"description", "merchant", "payee"}
	amountHeaderWords   = []string{"amount", "charge", "payment"}
)

// columnLayout maps table columns to transaction fields. amount == -1 means
// "last cell of each row", which survives ragged rows.
type columnLayout struct {
	date     int
	merchant int
	amount   int
}

// resolveColumns decides which table column holds which field: header
// keywords first, then content sampling for whatever the header left
// unresolved, then fixed positional defaults.
func resolveColumns(table extractor.Table) columnLayout {
	layout := columnLayout{date: -1, merchant: -1, amount: -1}

	for i, cell := range table[0] {
		lower := strings.ToLower(cell)
		switch {
		case layout.date < 0 && containsAny(lower, dateHeaderWords):
			layout.date = i
		case layout.merchant < 0 && containsAny(lower, merchantHeaderWords):
			layout.merchant = i
		case layout.amount < 0 && containsAny(lower, amountHeaderWords):
			layout.amount = i
		}
	}

	if layout.date < 0 || layout.amount < 0 {
		guessColumns(table, &layout)
	}

	if layout.date < 0 {
		layout.date = 0
	}
	if layout.amount < 0 {
		layout.amount = -1
	}
	if layout.merchant < 0 {
		if layout.date == 0 {
			layout.merchant = 1
		} else {
			layout.merchant = 0
		}
	}
	return layout
}

// guessColumns samples up to five data rows and counts, per column, how many
// cells parse as a date and how many as an amount. A column wins a role when
// it has the highest count and that count covers at least half the sample;
// ties go to the earliest column.
func guessColumns(table extractor.Table, layout *columnLayout) {
	sample := table[1:]
	if len(sample) > 5 {
		sample = sample[:5]
	}
	if len(sample) == 0 {
		return
	}

	width := 0
	for _, row := range sample {
		if len(row) > width {
			width = len(row)
		}
	}

	threshold := len(sample) / 2
	bestDate, bestDateCol := 0, -1
	bestAmount, bestAmountCol := 0, -1

	for col := 0; col < width; col++ {
		dates, amounts := 0, 0
		for _, row := range sample {
			if col >= len(row) {
				continue
			}
			if findDate(row[col]) != "" {
				dates++
			}
			if _, ok := extractAmount(row[col]); ok {
				amounts++
			}
		}
		if dates > bestDate {
			bestDate, bestDateCol = dates, col
		}
		if amounts > bestAmount {
			bestAmount, bestAmountCol = amounts, col
		}
	}

	if layout.date < 0 && bestDateCol >= 0 && bestDate >= threshold {
		layout.date = bestDateCol
	}
	if layout.amount < 0 && bestAmountCol >= 0 && bestAmount >= threshold {
		layout.amount = bestAmountCol
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// parseTable runs the table strategy over one detected table region. The
// first row is treated as the header; each remaining row yields a RowResult.
func parseTable(table extractor.Table, meta *models.StatementMetadata) []RowResult {
	if len(table) < 2 {
		return nil
	}

	layout := resolveColumns(table)

	var results []RowResult
	for _, row := range table[1:] {
		results = append(results, parseTableRow(row, layout, meta))
	}
	return results
}

func parseTableRow(row []string, layout columnLayout, meta *models.StatementMetadata) RowResult {
	if len(row) < 2 {
		return skipRow("too few cells")
	}

	amountIdx := layout.amount
	if amountIdx < 0 {
		amountIdx = len(row) - 1
	}
	if layout.date >= len(row) || amountIdx >= len(row) || layout.merchant >= len(row) {
		return skipRow("row narrower than detected layout")
	}

	date := extractDate(row[layout.date], meta.Period)
	if date == "" {
		return skipRow("no date")
	}

	rawMerchant := strings.TrimSpace(row[layout.merchant])
	if rawMerchant == "" {
		return skipRow("no merchant")
	}

	amount, ok := extractAmount(row[amountIdx])
	if !ok {
		return skipRow("no amount")
	}

	merchant := cleanMerchant(rawMerchant)
	if merchant == "" {
		return skipRow("merchant cleaned to nothing")
	}

	// Direction keywords can live in any cell, so classify on the whole row.
	var parts []string
	for _, cell := range row {
		if cell != "" {
			parts = append(parts, cell)
		}
	}
	rowText := strings.Join(parts, " ")

	return RowResult{Record: models.TransactionRecord{
		Date:        date,
		Merchant:    merchant,
		Amount:      math.Abs(amount),
		Direction:   classifyDirection(rowText, amount, meta.AccountClass),
		Description: merchant,
	}}
}

var leadingMonthDay = regexp.MustCompile(`^\d{2}/\d{2}\s*`)

// Trailing-amount strippers for merchant recovery: each amount pattern
// anchored to the end of the line.
var trailingAmountPatterns = func() []*regexp.Regexp {
	var out []*regexp.Regexp
	for _, p := range amountPatterns {
		out = append(out, regexp.MustCompile(p.String()+`\s*$`))
	}
	return out
}()

// parseTextLines runs the line strategy over free-form text. A line becomes a
// candidate when it contains both a date and an amount; candidates whose
// merchant text vanishes after stripping are reported as skips, everything
// else is ignored silently.
func parseTextLines(text string, meta *models.StatementMetadata) []RowResult {
	var results []RowResult
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		rawDate := findDate(line)
		if rawDate == "" {
			continue
		}
		amount, ok := extractAmount(line)
		if !ok {
			continue
		}

		merchant := cleanMerchant(merchantFromLine(line, rawDate))
		if merchant == "" {
			results = append(results, skipRow("no merchant text on line"))
			continue
		}

		results = append(results, RowResult{Record: models.TransactionRecord{
			Date:        normalizeDate(rawDate, meta.Period),
			Merchant:    merchant,
			Amount:      math.Abs(amount),
			Direction:   classifyDirection(line, amount, meta.AccountClass),
			Description: merchant,
		}})
	}
	return results
}

// merchantFromLine removes the matched date and any trailing amount text;
// whatever remains is the merchant.
func merchantFromLine(line, rawDate string) string {
	merchant := strings.Replace(line, rawDate, "", 1)
	merchant = leadingMonthDay.ReplaceAllString(merchant, "")
	for _, p := range trailingAmountPatterns {
		merchant = p.ReplaceAllString(merchant, "")
	}
	return strings.TrimSpace(merchant)
}
