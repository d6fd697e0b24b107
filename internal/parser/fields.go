package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fincheckhq/fincheck/internal/models"
)

// Date pattern families found in US bank and card statements, in fixed
// priority order. First match wins.
var datePatterns = []*regexp.Regexp{
	// MM/DD/YYYY or MM-DD-YYYY
	regexp.MustCompile(`\b(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})\b`),
	// YYYY-MM-DD or YYYY/MM/DD
	regexp.MustCompile(`\b(\d{4}[/-]\d{1,2}[/-]\d{1,2})\b`),
	// Jan 15, 2024
	regexp.MustCompile(`\b([A-Z][a-z]{2}\s+\d{1,2},?\s+\d{4})\b`),
	// 15 Jan 2024
	regexp.MustCompile(`\b(\d{1,2}\s+[A-Z][a-z]{2}\s+\d{4})\b`),
	// Bare MM/DD anchored at line start; some statements omit the year
	// per row and carry it only in the statement period.
	regexp.MustCompile(`^(\d{2}/\d{2})\b`),
}

// Amount patterns, in priority order.
var amountPatterns = []*regexp.Regexp{
	// -$1,234.56 or $1,234.56 or 1,234.56
	regexp.MustCompile(`-?\$?\s*(\d{1,3}(?:,\d{3})*(?:\.\d{2}))`),
	// -123.45 or 123.45
	regexp.MustCompile(`(-?\d+\.\d{2})`),
}

var bareMonthDay = regexp.MustCompile(`^\d{2}/\d{2}$`)

// Concrete formats tried by normalizeDate, in order.
var dateLayouts = []string{
	"01/02/2006", "01-02-2006", "01/02/06", "01-02-06",
	"2006-01-02", "2006/01/02",
	"Jan 2, 2006", "Jan 2 2006", "2 Jan 2006",
	"January 2, 2006", "January 2 2006", "2 January 2006",
}

// findDate returns the raw date substring matched by the highest-priority
// pattern, or "" when no family matches.
func findDate(text string) string {
	if text == "" {
		return ""
	}
	for _, p := range datePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

// extractDate finds a date in text and normalizes it against the statement
// period. Returns "" when no date pattern matches.
func extractDate(text, period string) string {
	raw := findDate(text)
	if raw == "" {
		return ""
	}
	return normalizeDate(raw, period)
}

// normalizeDate converts a recognized date string to YYYY-MM-DD. A bare
// MM/DD value is completed with the statement period's year when available,
// else the current year. A string no layout can parse is returned unchanged;
// downstream consumers must tolerate non-canonical dates.
func normalizeDate(dateStr, period string) string {
	dateStr = strings.TrimSpace(dateStr)

	if bareMonthDay.MatchString(dateStr) {
		year := time.Now().Year()
		if period != "" {
			if y, err := strconv.Atoi(strings.SplitN(period, "-", 2)[0]); err == nil {
				year = y
			}
		}
		dateStr = dateStr + "/" + strconv.Itoa(year)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t.Format("2006-01-02")
		}
	}

	return dateStr
}

// extractAmount finds a monetary amount in text and returns its signed
// value. Currency symbols are stripped and parenthesized amounts fold to a
// leading minus before matching; the sign check then looks for a minus
// anywhere before the matched numeral, which catches leading negatives the
// numeral patterns themselves don't capture.
func extractAmount(text string) (float64, bool) {
	if strings.TrimSpace(text) == "" {
		return 0, false
	}

	normalized := strings.ReplaceAll(text, "$", "")
	normalized = strings.ReplaceAll(normalized, "(", "-")
	normalized = strings.ReplaceAll(normalized, ")", "")
	normalized = strings.TrimSpace(normalized)

	for _, p := range amountPatterns {
		loc := p.FindStringSubmatchIndex(normalized)
		if loc == nil {
			continue
		}
		numeral := normalized[loc[2]:loc[3]]
		amount, err := strconv.ParseFloat(strings.ReplaceAll(numeral, ",", ""), 64)
		if err != nil {
			continue
		}
		if strings.Contains(normalized[:loc[2]], "-") && amount > 0 {
			amount = -amount
		}
		return amount, true
	}

	return 0, false
}

// Trailing junk commonly appended to merchant names.
var merchantSuffixes = []*regexp.Regexp{
	regexp.MustCompile(`\s+#\d+$`),   // store numbers: "#1234"
	regexp.MustCompile(`\s+\d{10,}$`), // long reference numbers
	regexp.MustCompile(`\s+\*+\d+$`),  // masked numbers: "***1234"
}

// cleanMerchant collapses whitespace and strips trailing store-number,
// reference-number, and masked-number suffixes. Applied to a fixpoint so the
// cleanup is idempotent.
func cleanMerchant(merchant string) string {
	merchant = strings.Join(strings.Fields(merchant), " ")
	for {
		before := merchant
		for _, suffix := range merchantSuffixes {
			merchant = suffix.ReplaceAllString(merchant, "")
		}
		if merchant == before {
			break
		}
	}
	return strings.TrimSpace(merchant)
}

var incomeKeywords = []string{
	"deposit", "credit", "payroll", "salary", "direct dep",
	"transfer from", "interest", "dividend", "refund",
	"reimbursement", "payment received", "incoming",
}

var expenseKeywords = []string{
	"debit", "withdrawal", "purchase", "payment to",
	"transfer to", "fee", "charge", "atm",
}

// classifyDirection decides income vs expense for a row. Credit-card
// statements never carry inbound money, so they are always expense. For bank
// accounts the row text is checked against income indicators first, then
// expense indicators, then the amount's sign.
func classifyDirection(rowText string, amount float64, class models.AccountClass) models.Direction {
	if class == models.AccountCreditCard {
		return models.DirectionExpense
	}

	lower := strings.ToLower(rowText)

	for _, kw := range incomeKeywords {
		if strings.Contains(lower, kw) {
			return models.DirectionIncome
		}
	}
	for _, kw := range expenseKeywords {
		if strings.Contains(lower, kw) {
			return models.DirectionExpense
		}
	}

	if amount < 0 {
		return models.DirectionExpense
	}
	if class == models.AccountChecking || class == models.AccountSavings {
		if amount > 0 {
			return models.DirectionIncome
		}
	}
	return models.DirectionExpense
}
