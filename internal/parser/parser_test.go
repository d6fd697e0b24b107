package parser

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/fincheckhq/fincheck/internal/extractor"
)

func testEngine() *Engine {
	return New(5, zerolog.Nop())
}

func TestParseDocumentTableStrategy(t *testing.T) {
	doc := &extractor.Document{Pages: []extractor.Page{{
		Text: "Chase Credit Card\nStatement Period: 01/01/2024",
		Tables: []extractor.Table{{
			{"Date", "Description", "Amount"},
			{"01/05/2024", "NETFLIX.COM", "$15.49"},
			{"01/10/2024", "STARBUCKS #1234", "$5.50"},
			{"01/12/2024", "AMAZON MKTP", "$32.99"},
			{"01/15/2024", "SPOTIFY", "$9.99"},
			{"01/20/2024", "WHOLE FOODS", "$87.12"},
		}},
	}}}

	res, err := testEngine().ParseDocument(doc)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if len(res.Transactions) != 5 {
		t.Fatalf("got %d transactions, want 5", len(res.Transactions))
	}
	if res.Metadata.Institution != "Chase" {
		t.Errorf("Institution = %q, want Chase", res.Metadata.Institution)
	}
	if res.Metadata.Period != "2024-01-01" {
		t.Errorf("Period = %q, want 2024-01-01", res.Metadata.Period)
	}
}

func TestParseDocumentFallsBackToText(t *testing.T) {
	// A misdetected 3-row table loses to a text pass that recognizes 12
	// transaction lines.
	var lines []string
	lines = append(lines, "Chase Credit Card", "Statement Period: 01/01/2024")
	for _, day := range []string{"02", "03", "04", "05", "06", "07", "08", "09", "10", "11", "12", "13"} {
		lines = append(lines, "01/"+day+" MERCHANT NUMBER "+day+" 10.00")
	}
	text := strings.Join(lines, "\n")

	doc := &extractor.Document{Pages: []extractor.Page{{
		Text: text,
		Tables: []extractor.Table{{
			{"Date", "Description", "Amount"},
			{"01/05/2024", "NETFLIX.COM", "$15.49"},
			{"01/10/2024", "STARBUCKS", "$5.50"},
			{"01/12/2024", "AMAZON", "$32.99"},
		}},
	}}}

	res, err := testEngine().ParseDocument(doc)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if len(res.Transactions) != 12 {
		t.Fatalf("got %d transactions, want 12 from text fallback", len(res.Transactions))
	}
}

func TestParseDocumentKeepsTableWhenTextIsWorse(t *testing.T) {
	// The text pass only replaces the table result when it strictly beats it.
	doc := &extractor.Document{Pages: []extractor.Page{{
		Text: "Chase Credit Card\n01/05 NETFLIX.COM 15.49",
		Tables: []extractor.Table{{
			{"Date", "Description", "Amount"},
			{"01/05/2024", "NETFLIX.COM", "$15.49"},
			{"01/10/2024", "STARBUCKS", "$5.50"},
			{"01/12/2024", "AMAZON", "$32.99"},
		}},
	}}}

	res, err := testEngine().ParseDocument(doc)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if len(res.Transactions) != 3 {
		t.Fatalf("got %d transactions, want 3 from table", len(res.Transactions))
	}
	if res.Transactions[0].Merchant != "NETFLIX.COM" {
		t.Errorf("Merchant = %q, want NETFLIX.COM", res.Transactions[0].Merchant)
	}
}

func TestParseDocumentNoActivity(t *testing.T) {
	// A readable statement with no transaction rows parses to an empty
	// result with its metadata intact, not an error.
	doc := &extractor.Document{Pages: []extractor.Page{{
		Text: "Chase Credit Card\nStatement Period: 01/01/2024\nNo activity this period",
	}}}

	res, err := testEngine().ParseDocument(doc)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if len(res.Transactions) != 0 {
		t.Errorf("got %d transactions, want 0", len(res.Transactions))
	}
	if res.Metadata.Institution != "Chase" {
		t.Errorf("Institution = %q, want Chase", res.Metadata.Institution)
	}
	if res.Metadata.Period != "2024-01-01" {
		t.Errorf("Period = %q, want 2024-01-01", res.Metadata.Period)
	}
}
