package parser

import (
	"regexp"

	"github.com/fincheckhq/fincheck/internal/models"
)

// Known institutions, checked in order. First match wins, so more specific
// names must come before substrings they contain.
var institutionPatterns = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"Chase", regexp.MustCompile(`(?i)Chase`)},
	{"American Express", regexp.MustCompile(`(?i)American\s+Express|AMEX`)},
	{"Citi", regexp.MustCompile(`(?i)Citibank|Citi`)},
	{"Bank of America", regexp.MustCompile(`(?i)Bank\s+of\s+America|BofA`)},
	{"Wells Fargo", regexp.MustCompile(`(?i)Wells\s+Fargo`)},
	{"Capital One", regexp.MustCompile(`(?i)Capital\s+One`)},
	{"Discover", regexp.MustCompile(`(?i)Discover`)},
}

// Account number presentations, in priority order. Only the last four digits
// are ever captured.
var accountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:Account|Card)\s*(?:Number|#)?[:\s]*\*+(\d{4})`),
	regexp.MustCompile(`(?i)ending\s+in\s+(\d{4})`),
	regexp.MustCompile(`XXXX\s+XXXX\s+XXXX\s+(\d{4})`),
}

// Account class keywords. Checking and savings outrank the credit-card
// indicators because card statements freely mention "credit".
var (
	checkingPattern = regexp.MustCompile(`(?i)checking|total\s+checking`)
	savingsPattern  = regexp.MustCompile(`(?i)savings|total\s+savings`)
	creditPattern   = regexp.MustCompile(`(?i)credit\s+card|card\s+account|new\s+balance|credit\s+limit`)
)

// Statement period presentations, in priority order.
var periodPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Statement\s+(?:Date|Period)[:\s]*([A-Z][a-z]{2}\s+\d{1,2},?\s+\d{4})`),
	regexp.MustCompile(`(?i)Statement\s+(?:Date|Period)[:\s]*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
	regexp.MustCompile(`(?i)(?:Closing|Statement)\s+Date[:\s]*([A-Z][a-z]{2}\s+\d{1,2},?\s+\d{4})`),
	regexp.MustCompile(`(?i)(?:Opening|Closing)\s+Date\s+(\d{2}/\d{2}/\d{2})`),
	regexp.MustCompile(`(?i)Statement Date:\s*(\d{2}/\d{2}/\d{2})`),
}

// ExtractMetadata scans first-page text for the issuing institution, the
// masked account number, the account class, and the statement period. Every
// field degrades independently: an unrecognized institution reads "Unknown",
// a missing account number reads "", and the account class defaults to
// credit_card, the most conservative choice for direction classification.
func ExtractMetadata(firstPage string) *models.StatementMetadata {
	meta := &models.StatementMetadata{
		Institution:  "Unknown",
		AccountClass: models.AccountCreditCard,
	}

	for _, inst := range institutionPatterns {
		if inst.pattern.MatchString(firstPage) {
			meta.Institution = inst.name
			break
		}
	}

	for _, p := range accountPatterns {
		if m := p.FindStringSubmatch(firstPage); m != nil {
			meta.AccountLast4 = m[1]
			break
		}
	}

	switch {
	case checkingPattern.MatchString(firstPage):
		meta.AccountClass = models.AccountChecking
	case savingsPattern.MatchString(firstPage):
		meta.AccountClass = models.AccountSavings
	case creditPattern.MatchString(firstPage):
		meta.AccountClass = models.AccountCreditCard
	}

	for _, p := range periodPatterns {
		if m := p.FindStringSubmatch(firstPage); m != nil {
			meta.Period = normalizeDate(m[1], "")
			break
		}
	}

	return meta
}
