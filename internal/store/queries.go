package store

import (
	"context"
	"fmt"

	"github.com/fincheckhq/fincheck/internal/models"
)

// Stats is a corpus-level summary of everything ingested.
type Stats struct {
	Statements   int     `json:"statements"`
	Transactions int     `json:"transactions"`
	Findings     int     `json:"findings"`
	TotalExpense float64 `json:"totalExpense"`
	DateStart    string  `json:"dateStart,omitempty"`
	DateEnd      string  `json:"dateEnd,omitempty"`
}

// GetStats returns corpus-level counts and the covered date range.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	var err error

	if stats.Statements, err = s.db.NewSelect().
		Model((*models.StatementMetadata)(nil)).Count(ctx); err != nil {
		return nil, fmt.Errorf("counting statements: %w", err)
	}
	if stats.Transactions, err = s.db.NewSelect().
		Model((*models.TransactionRecord)(nil)).Count(ctx); err != nil {
		return nil, fmt.Errorf("counting transactions: %w", err)
	}
	if stats.Findings, err = s.db.NewSelect().
		Model((*models.GriftFinding)(nil)).
		Where("dismissed = FALSE").Count(ctx); err != nil {
		return nil, fmt.Errorf("counting findings: %w", err)
	}

	if stats.Transactions > 0 {
		row := s.db.NewSelect().
			Model((*models.TransactionRecord)(nil)).
			ColumnExpr("COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'expense'), 0)").
			ColumnExpr("MIN(date)").
			ColumnExpr("MAX(date)")
		if err := row.Scan(ctx, &stats.TotalExpense, &stats.DateStart, &stats.DateEnd); err != nil {
			return nil, fmt.Errorf("summarizing transactions: %w", err)
		}
	}
	return stats, nil
}

// IncomeExpense is the corpus-level money-in vs money-out rollup.
type IncomeExpense struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Net     float64 `json:"net"`
}

// IncomeVsExpenses totals income and expense over an optional inclusive date
// range.
func (s *Store) IncomeVsExpenses(ctx context.Context, dateFrom, dateTo string) (*IncomeExpense, error) {
	q := s.db.NewSelect().
		Model((*models.TransactionRecord)(nil)).
		ColumnExpr("COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'income'), 0)").
		ColumnExpr("COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'expense'), 0)")
	if dateFrom != "" {
		q = q.Where("date >= ?", dateFrom)
	}
	if dateTo != "" {
		q = q.Where("date <= ?", dateTo)
	}

	res := &IncomeExpense{}
	if err := q.Scan(ctx, &res.Income, &res.Expense); err != nil {
		return nil, fmt.Errorf("income vs expenses: %w", err)
	}
	res.Net = res.Income - res.Expense
	return res, nil
}

// FindingDetail is a finding joined with the transaction it points at.
type FindingDetail struct {
	ID            string             `bun:"id" json:"id"`
	TransactionID string             `bun:"transaction_id" json:"transactionId"`
	Kind          models.FindingKind `bun:"flag_type" json:"kind"`
	Severity      models.Severity    `bun:"severity" json:"severity"`
	Description   string             `bun:"description" json:"description"`
	Dismissed     bool               `bun:"dismissed" json:"dismissed"`
	Merchant      string             `bun:"merchant" json:"merchant"`
	Date          string             `bun:"date" json:"date"`
	Amount        float64            `bun:"amount" json:"amount"`
}

// GetFindingDetails returns findings with their transaction context, most
// urgent first.
func (s *Store) GetFindingDetails(ctx context.Context, includeDismissed bool) ([]FindingDetail, error) {
	var rows []FindingDetail
	q := s.db.NewSelect().
		TableExpr("grift_flags AS f").
		Join("JOIN transactions AS t ON t.id = f.transaction_id").
		ColumnExpr("f.id, f.transaction_id, f.flag_type, f.severity, f.description, f.dismissed").
		ColumnExpr("t.merchant, t.date, t.amount").
		OrderExpr("CASE f.severity WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END").
		OrderExpr("t.date DESC")
	if !includeDismissed {
		q = q.Where("f.dismissed = FALSE")
	}
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("loading finding details: %w", err)
	}
	return rows, nil
}

// CategoryTotal is one row of the category breakdown.
type CategoryTotal struct {
	Category string  `bun:"category" json:"category"`
	Count    int     `bun:"transaction_count" json:"count"`
	Total    float64 `bun:"total_amount" json:"total"`
}

// CategoryBreakdown sums expenses per category, biggest first. The date
// bounds are inclusive and optional.
func (s *Store) CategoryBreakdown(ctx context.Context, dateFrom, dateTo string) ([]CategoryTotal, error) {
	var rows []CategoryTotal
	q := s.db.NewSelect().
		Model((*models.TransactionRecord)(nil)).
		ColumnExpr("COALESCE(NULLIF(category, ''), 'Other') AS category").
		ColumnExpr("COUNT(*) AS transaction_count").
		ColumnExpr("SUM(amount) AS total_amount").
		Where("transaction_type = 'expense'").
		GroupExpr("COALESCE(NULLIF(category, ''), 'Other')").
		OrderExpr("total_amount DESC")
	if dateFrom != "" {
		q = q.Where("date >= ?", dateFrom)
	}
	if dateTo != "" {
		q = q.Where("date <= ?", dateTo)
	}
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("category breakdown: %w", err)
	}
	return rows, nil
}

// MerchantTotal is one row of the top-merchant ranking.
type MerchantTotal struct {
	Merchant string  `bun:"merchant" json:"merchant"`
	Count    int     `bun:"transaction_count" json:"count"`
	Total    float64 `bun:"total_amount" json:"total"`
}

// TopMerchants ranks merchants by total expense, biggest first.
func (s *Store) TopMerchants(ctx context.Context, limit int) ([]MerchantTotal, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []MerchantTotal
	err := s.db.NewSelect().
		Model((*models.TransactionRecord)(nil)).
		ColumnExpr("merchant").
		ColumnExpr("COUNT(*) AS transaction_count").
		ColumnExpr("SUM(amount) AS total_amount").
		Where("transaction_type = 'expense'").
		GroupExpr("merchant").
		OrderExpr("total_amount DESC").
		Limit(limit).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("top merchants: %w", err)
	}
	return rows, nil
}

// MonthCashFlow is income vs expense for one calendar month.
type MonthCashFlow struct {
	Month   string  `bun:"month" json:"month"`
	Income  float64 `bun:"income" json:"income"`
	Expense float64 `bun:"expense" json:"expense"`
	Net     float64 `bun:"net" json:"net"`
}

// CashFlowByMonth aggregates income and expense per calendar month,
// chronological. Months come from the YYYY-MM prefix of the date column, so
// records with non-canonical dates group under whatever their prefix is.
func (s *Store) CashFlowByMonth(ctx context.Context) ([]MonthCashFlow, error) {
	var rows []MonthCashFlow
	err := s.db.NewSelect().
		Model((*models.TransactionRecord)(nil)).
		ColumnExpr("LEFT(date, 7) AS month").
		ColumnExpr("COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'income'), 0) AS income").
		ColumnExpr("COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'expense'), 0) AS expense").
		ColumnExpr("COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'income'), 0) - COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'expense'), 0) AS net").
		GroupExpr("LEFT(date, 7)").
		OrderExpr("month").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("cash flow by month: %w", err)
	}
	return rows, nil
}
