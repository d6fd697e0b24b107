package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fincheckhq/fincheck/internal/models"
)

// CSVWriter writes transactions and findings to CSV format.
type CSVWriter struct {
	IncludeHeader bool
}

// WriteTransactionsToFile writes transactions to a CSV file at the given path.
func (w *CSVWriter) WriteTransactionsToFile(path string, meta *models.StatementMetadata, txns []models.TransactionRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.WriteTransactions(f, meta, txns)
}

// WriteTransactions writes transactions in CSV format to the given writer.
// Statement metadata goes first as comment rows when IncludeHeader is set;
// meta may be nil when exporting a multi-statement corpus.
func (w *CSVWriter) WriteTransactions(out io.Writer, meta *models.StatementMetadata, txns []models.TransactionRecord) error {
	writer := csv.NewWriter(out)
	defer writer.Flush()

	if w.IncludeHeader && meta != nil {
		if meta.Institution != "" {
			writer.Write([]string{"# Institution", meta.Institution})
		}
		if meta.AccountLast4 != "" {
			writer.Write([]string{"# Account Ending", meta.AccountLast4})
		}
		writer.Write([]string{"# Account Class", string(meta.AccountClass)})
		if meta.Period != "" {
			writer.Write([]string{"# Statement Period", meta.Period})
		}
	}

	header := []string{"Date", "Merchant", "Amount", "Direction", "Category", "Description"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, txn := range txns {
		row := []string{
			txn.Date,
			txn.Merchant,
			formatAmount(txn.Amount),
			string(txn.Direction),
			txn.Category,
			txn.Description,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return nil
}

// WriteFindings writes grift findings in CSV format to the given writer.
func (w *CSVWriter) WriteFindings(out io.Writer, findings []models.GriftFinding) error {
	writer := csv.NewWriter(out)
	defer writer.Flush()

	header := []string{"TransactionID", "Kind", "Severity", "Description", "Dismissed"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, f := range findings {
		row := []string{
			f.TransactionID,
			string(f.Kind),
			string(f.Severity),
			f.Description,
			strconv.FormatBool(f.Dismissed),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return nil
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
