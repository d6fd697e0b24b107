package writer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fincheckhq/fincheck/internal/models"
)

func TestWriteTransactions(t *testing.T) {
	meta := &models.StatementMetadata{
		Institution:  "Chase",
		AccountLast4: "1234",
		AccountClass: models.AccountCreditCard,
		Period:       "2024-01-31",
	}
	txns := []models.TransactionRecord{
		{Date: "2024-01-15", Merchant: "STARBUCKS", Amount: 5.50,
			Direction: models.DirectionExpense, Category: "Food & Dining", Description: "STARBUCKS"},
		{Date: "2024-01-16", Merchant: "AMAZON MKTP", Amount: 32.99,
			Direction: models.DirectionExpense, Category: "Shopping", Description: "AMAZON MKTP"},
	}

	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: true}
	if err := w.WriteTransactions(&buf, meta, txns); err != nil {
		t.Fatalf("WriteTransactions: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Institution,Chase",
		"# Account Ending,1234",
		"# Statement Period,2024-01-31",
		"Date,Merchant,Amount,Direction,Category,Description",
		"2024-01-15,STARBUCKS,5.50,expense,Food & Dining,STARBUCKS",
		"2024-01-16,AMAZON MKTP,32.99,expense,Shopping,AMAZON MKTP",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteTransactionsNoHeader(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{}
	err := w.WriteTransactions(&buf, nil, []models.TransactionRecord{
		{Date: "2024-01-15", Merchant: "STARBUCKS", Amount: 5.50, Direction: models.DirectionExpense},
	})
	if err != nil {
		t.Fatalf("WriteTransactions: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want column header plus one row:\n%s", len(lines), buf.String())
	}
	if strings.HasPrefix(lines[0], "#") {
		t.Errorf("unexpected metadata header: %q", lines[0])
	}
}

func TestWriteFindings(t *testing.T) {
	findings := []models.GriftFinding{
		{TransactionID: "abc", Kind: models.FindingDuplicate,
			Severity: models.SeverityHigh, Description: "Potential duplicate"},
	}

	var buf bytes.Buffer
	w := &CSVWriter{}
	if err := w.WriteFindings(&buf, findings); err != nil {
		t.Fatalf("WriteFindings: %v", err)
	}
	if !strings.Contains(buf.String(), "abc,duplicate,high,Potential duplicate,false") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}
