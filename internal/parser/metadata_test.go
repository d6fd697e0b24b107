package parser

import (
	"testing"

	"github.com/fincheckhq/fincheck/internal/models"
)

func TestExtractMetadata(t *testing.T) {
	tests := []struct {
		name      string
		firstPage string
		want      models.StatementMetadata
	}{
		{
			name: "chase checking",
			firstPage: "JPMorgan Chase Bank, N.A.\n" +
				"Total Checking\n" +
				"Account Number: ****1234\n" +
				"Statement Period: 01/01/2024 - 01/31/2024",
			want: models.StatementMetadata{
				Institution:  "Chase",
				AccountLast4: "1234",
				AccountClass: models.AccountChecking,
				Period:       "2024-01-01",
			},
		},
		{
			name: "amex card",
			firstPage: "American Express\n" +
				"Card ending in 5678\n" +
				"New Balance: $1,234.56\n" +
				"Closing Date: Jan 31, 2024",
			want: models.StatementMetadata{
				Institution:  "American Express",
				AccountLast4: "5678",
				AccountClass: models.AccountCreditCard,
				Period:       "2024-01-31",
			},
		},
		{
			name: "capital one grouped mask",
			firstPage: "Capital One\n" +
				"XXXX XXXX XXXX 9876\n" +
				"Credit Limit: $5,000\n" +
				"Statement Date: 01/31/24",
			want: models.StatementMetadata{
				Institution:  "Capital One",
				AccountLast4: "9876",
				AccountClass: models.AccountCreditCard,
				Period:       "2024-01-31",
			},
		},
		{
			name:      "savings outranks credit keywords",
			firstPage: "Wells Fargo Savings Account\nNew Balance",
			want: models.StatementMetadata{
				Institution:  "Wells Fargo",
				AccountClass: models.AccountSavings,
			},
		},
		{
			name:      "nothing recognized",
			firstPage: "Some Local Credit Union Statement",
			want: models.StatementMetadata{
				Institution:  "Unknown",
				AccountClass: models.AccountCreditCard,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractMetadata(tt.firstPage)
			if got.Institution != tt.want.Institution {
				t.Errorf("Institution = %q, want %q", got.Institution, tt.want.Institution)
			}
			if got.AccountLast4 != tt.want.AccountLast4 {
				t.Errorf("AccountLast4 = %q, want %q", got.AccountLast4, tt.want.AccountLast4)
			}
			if got.AccountClass != tt.want.AccountClass {
				t.Errorf("AccountClass = %q, want %q", got.AccountClass, tt.want.AccountClass)
			}
			if got.Period != tt.want.Period {
				t.Errorf("Period = %q, want %q", got.Period, tt.want.Period)
			}
		})
	}
}

func TestInstitutionPriorityOrder(t *testing.T) {
	// Chase is checked before Citi; a page mentioning both resolves to the
	// earlier entry.
	meta := ExtractMetadata("Transfer from Citibank to Chase account")
	if meta.Institution != "Chase" {
		t.Errorf("Institution = %q, want Chase (priority order)", meta.Institution)
	}
}
