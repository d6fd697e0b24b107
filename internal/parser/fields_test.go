package parser

import (
	"testing"

	"github.com/fincheckhq/fincheck/internal/models"
)

func TestExtractDate(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		period string
		want   string
	}{
		{"slash full year", "01/15/2024 STARBUCKS 5.50", "", "2024-01-15"},
		{"dash full year", "01-15-2024 STARBUCKS", "", "2024-01-15"},
		{"two digit year", "01/15/24 STARBUCKS", "", "2024-01-15"},
		{"iso", "2024-01-15 STARBUCKS", "", "2024-01-15"},
		{"iso slashes", "2024/01/15 STARBUCKS", "", "2024-01-15"},
		{"month name", "Jan 15, 2024 STARBUCKS", "", "2024-01-15"},
		{"month name no comma", "Jan 15 2024 STARBUCKS", "", "2024-01-15"},
		{"day first", "15 Jan 2024 STARBUCKS", "", "2024-01-15"},
		{"bare month day uses period year", "03/15 STARBUCKS 5.50", "2024-01", "2024-03-15"},
		{"bare month day mid line ignored", "STARBUCKS 03/15 5.50", "2024-01", ""},
		{"no date", "STARBUCKS 5.50", "", ""},
		{"empty", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractDate(tt.text, tt.period)
			if got != tt.want {
				t.Errorf("extractDate(%q, %q) = %q, want %q", tt.text, tt.period, got, tt.want)
			}
		})
	}
}

func TestNormalizeDateUnparseable(t *testing.T) {
	// An unrecognized string passes through unchanged.
	if got := normalizeDate("13/45/2024", ""); got != "13/45/2024" {
		t.Errorf("normalizeDate returned %q, want original string back", got)
	}
}

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"plain", "5.50", 5.50},
		{"dollar sign", "$5.50", 5.50},
		{"thousands separators", "$1,234.56", 1234.56},
		{"negative", "-15.00", -15.00},
		{"negative with dollar", "-$15.00", -15.00},
		{"parenthesized is negative", "($42.50)", -42.50},
		{"embedded in line", "01/15 STARBUCKS STORE 5.50", 5.50},
		{"large", "12,345,678.90", 12345678.90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractAmount(tt.text)
			if !ok {
				t.Fatalf("extractAmount(%q) found nothing", tt.text)
			}
			if got != tt.want {
				t.Errorf("extractAmount(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractAmountNone(t *testing.T) {
	for _, text := range []string{"", "   ", "STARBUCKS", "no money here"} {
		if got, ok := extractAmount(text); ok {
			t.Errorf("extractAmount(%q) = %v, want no match", text, got)
		}
	}
}

func TestCleanMerchant(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"whitespace collapsed", "STARBUCKS   STORE", "STARBUCKS STORE"},
		{"store number stripped", "STARBUCKS #1234", "STARBUCKS"},
		{"reference number stripped", "AMAZON MKTP 1234567890123", "AMAZON MKTP"},
		{"masked number stripped", "NETFLIX ***123", "NETFLIX"},
		{"short digits kept", "7-ELEVEN 123", "7-ELEVEN 123"},
		{"stacked suffixes", "STORE #1 1234567890123", "STORE"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cleanMerchant(tt.in)
			if got != tt.want {
				t.Errorf("cleanMerchant(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if again := cleanMerchant(got); again != got {
				t.Errorf("cleanMerchant not idempotent: %q -> %q -> %q", tt.in, got, again)
			}
		})
	}
}

func TestClassifyDirection(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		amount float64
		class  models.AccountClass
		want   models.Direction
	}{
		{"credit card always expense", "DIRECT DEPOSIT PAYROLL", 2500, models.AccountCreditCard, models.DirectionExpense},
		{"payroll deposit", "DIRECT DEPOSIT PAYROLL ACME", 2500, models.AccountChecking, models.DirectionIncome},
		{"refund", "AMAZON REFUND", 32.50, models.AccountChecking, models.DirectionIncome},
		{"income outranks expense keyword", "REFUND FEE REVERSAL", 10, models.AccountChecking, models.DirectionIncome},
		{"atm withdrawal", "ATM WITHDRAWAL", 100, models.AccountChecking, models.DirectionExpense},
		{"negative amount", "STARBUCKS", -5.50, models.AccountChecking, models.DirectionExpense},
		{"positive checking defaults income", "ACME CORP", 1000, models.AccountChecking, models.DirectionIncome},
		{"positive savings defaults income", "ACME CORP", 1000, models.AccountSavings, models.DirectionIncome},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyDirection(tt.text, tt.amount, tt.class)
			if got != tt.want {
				t.Errorf("classifyDirection(%q, %v, %s) = %s, want %s", tt.text, tt.amount, tt.class, got, tt.want)
			}
		})
	}
}
