package models

import (
	"time"

	"github.com/uptrace/bun"
)

// AccountClass identifies what kind of account a statement covers.
type AccountClass string

const (
	AccountChecking   AccountClass = "checking"
	AccountSavings    AccountClass = "savings"
	AccountCreditCard AccountClass = "credit_card"
)

// Direction says whether money left or entered the account.
type Direction string

const (
	DirectionIncome  Direction = "income"
	DirectionExpense Direction = "expense"
)

// StatementMetadata holds what could be recovered from a statement's first
// page. Missing fields keep their defaults: Institution "Unknown",
// AccountClass credit_card, AccountLast4 empty.
type StatementMetadata struct {
	bun.BaseModel `bun:"table:statements"`

	ID           int64        `bun:"id,pk,autoincrement" json:"id"`
	Institution  string       `bun:"bank_name,notnull" json:"institution"`
	AccountLast4 string       `bun:"account_last4" json:"accountLast4,omitempty"`
	AccountClass AccountClass `bun:"account_type,notnull,default:'credit_card'" json:"accountClass"`
	Period       string       `bun:"statement_date,notnull" json:"period"`
	SourcePath   string       `bun:"pdf_path" json:"sourcePath,omitempty"`
	UploadedAt   time.Time    `bun:"uploaded_at,nullzero,default:current_timestamp" json:"uploadedAt"`
}

// TransactionRecord is one dated, amount-bearing entry attributed to a
// merchant. Amount is always a non-negative magnitude; Direction carries the
// sign semantics.
type TransactionRecord struct {
	bun.BaseModel `bun:"table:transactions"`

	ID          string    `bun:"id,pk" json:"id"`
	StatementID int64     `bun:"statement_id" json:"statementId"`
	Date        string    `bun:"date,notnull" json:"date"` // YYYY-MM-DD when normalization succeeded
	Merchant    string    `bun:"merchant,notnull" json:"merchant"`
	Amount      float64   `bun:"amount,notnull" json:"amount"`
	Direction   Direction `bun:"transaction_type,notnull,default:'expense'" json:"direction"`
	Category    string    `bun:"category" json:"category,omitempty"`
	Description string    `bun:"description" json:"description,omitempty"`
}

// ParsedDate returns the record's date as a time.Time. ok is false when the
// date never normalized to YYYY-MM-DD; callers doing date arithmetic must
// tolerate that.
func (t *TransactionRecord) ParsedDate() (time.Time, bool) {
	d, err := time.Parse("2006-01-02", t.Date)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// FindingKind is the detector that produced a finding.
type FindingKind string

const (
	FindingRecurring     FindingKind = "recurring"
	FindingDuplicate     FindingKind = "duplicate"
	FindingPriceIncrease FindingKind = "price_increase"
	FindingSuspicious    FindingKind = "suspicious"
)

// Severity is an ordinal urgency ranking, assigned independently per finding.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// GriftFinding is a detector's assertion that a transaction is noteworthy.
// A single transaction may accumulate findings of several kinds.
type GriftFinding struct {
	bun.BaseModel `bun:"table:grift_flags"`

	ID            string      `bun:"id,pk" json:"id"`
	TransactionID string      `bun:"transaction_id,notnull" json:"transactionId"`
	Kind          FindingKind `bun:"flag_type,notnull" json:"kind"`
	Description   string      `bun:"description,notnull" json:"description"`
	Severity      Severity    `bun:"severity,notnull,default:'medium'" json:"severity"`
	CreatedAt     time.Time   `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt"`
	Dismissed     bool        `bun:"dismissed,notnull,default:false" json:"dismissed"`
}
