// Package store persists statements, transactions, and findings in
// PostgreSQL via bun.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/fincheckhq/fincheck/internal/config"
	"github.com/fincheckhq/fincheck/internal/models"
)

// Store wraps the database handle. Safe for concurrent use.
type Store struct {
	db *bun.DB
}

// Connect opens a PostgreSQL connection from config and verifies it with a
// ping. DATABASE_URL wins over the individual fields when set.
func Connect(cfg config.DatabaseConfig) (*Store, error) {
	var conn *pgdriver.Connector
	if cfg.URL != "" {
		conn = pgdriver.NewConnector(pgdriver.WithDSN(cfg.URL))
	} else {
		host := cfg.Host
		if !strings.Contains(host, ":") {
			host += ":5432"
		}
		opts := []pgdriver.Option{
			pgdriver.WithAddr(host),
			pgdriver.WithUser(cfg.User),
			pgdriver.WithPassword(cfg.Password),
			pgdriver.WithDatabase(cfg.Name),
		}
		if cfg.Insecure {
			opts = append(opts, pgdriver.WithInsecure(true))
		}
		conn = pgdriver.NewConnector(opts...)
	}

	sqldb := sql.OpenDB(conn)
	if err := sqldb.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	return &Store{db: bun.NewDB(sqldb, pgdialect.New())}, nil
}

// NewWithDB wraps an existing bun handle; used by tests.
func NewWithDB(db *bun.DB) *Store {
	return &Store{db: db}
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the tables and indexes if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	tables := []interface{}{
		(*models.StatementMetadata)(nil),
		(*models.TransactionRecord)(nil),
		(*models.GriftFinding)(nil),
	}
	for _, model := range tables {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("creating table for %T: %w", model, err)
		}
	}

	indexes := []struct {
		name, table, column string
	}{
		{"idx_transactions_date", "transactions", "date"},
		{"idx_transactions_merchant", "transactions", "merchant"},
		{"idx_transactions_statement", "transactions", "statement_id"},
		{"idx_grift_flags_transaction", "grift_flags", "transaction_id"},
	}
	for _, idx := range indexes {
		_, err := s.db.NewCreateIndex().
			IfNotExists().
			Index(idx.name).
			Table(idx.table).
			Column(idx.column).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("creating index %s: %w", idx.name, err)
		}
	}
	return nil
}

// InsertStatement stores statement metadata, or reuses the existing row when
// a statement with the same institution, period, and account has already
// been ingested. Either way meta.ID is populated on return. The bool reports
// whether the statement was already present.
func (s *Store) InsertStatement(ctx context.Context, meta *models.StatementMetadata) (bool, error) {
	existing := new(models.StatementMetadata)
	err := s.db.NewSelect().
		Model(existing).
		Where("bank_name = ?", meta.Institution).
		Where("statement_date = ?", meta.Period).
		Where("account_last4 = ?", meta.AccountLast4).
		Limit(1).
		Scan(ctx)
	if err == nil {
		meta.ID = existing.ID
		return true, nil
	}
	if err != sql.ErrNoRows {
		return false, fmt.Errorf("checking for existing statement: %w", err)
	}

	if _, err := s.db.NewInsert().Model(meta).Returning("id").Exec(ctx); err != nil {
		return false, fmt.Errorf("inserting statement: %w", err)
	}
	return false, nil
}

// InsertTransactions stores a batch of transactions under one statement.
// Records without IDs are assigned fresh UUIDs.
func (s *Store) InsertTransactions(ctx context.Context, statementID int64, txns []models.TransactionRecord) error {
	if len(txns) == 0 {
		return nil
	}
	for i := range txns {
		txns[i].StatementID = statementID
		if txns[i].ID == "" {
			txns[i].ID = uuid.NewString()
		}
	}
	if _, err := s.db.NewInsert().Model(&txns).Exec(ctx); err != nil {
		return fmt.Errorf("inserting %d transactions: %w", len(txns), err)
	}
	return nil
}

// GetAllTransactions returns the full transaction history, newest first.
func (s *Store) GetAllTransactions(ctx context.Context) ([]models.TransactionRecord, error) {
	var txns []models.TransactionRecord
	err := s.db.NewSelect().
		Model(&txns).
		Order("date DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}
	return txns, nil
}

// Filter narrows a transaction query. Zero-valued fields are ignored.
type Filter struct {
	Merchant  string // substring match, case-insensitive
	Category  string
	DateFrom  string // inclusive, YYYY-MM-DD
	DateTo    string // inclusive
	MinAmount *float64
	MaxAmount *float64
	Limit     int
}

// GetTransactions returns transactions matching the filter, newest first.
func (s *Store) GetTransactions(ctx context.Context, f Filter) ([]models.TransactionRecord, error) {
	var txns []models.TransactionRecord
	q := s.db.NewSelect().Model(&txns).Order("date DESC")

	if f.Merchant != "" {
		q = q.Where("merchant ILIKE ?", "%"+f.Merchant+"%")
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.DateFrom != "" {
		q = q.Where("date >= ?", f.DateFrom)
	}
	if f.DateTo != "" {
		q = q.Where("date <= ?", f.DateTo)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	return txns, nil
}

// SaveFindings stores a batch of findings, assigning IDs as needed.
func (s *Store) SaveFindings(ctx context.Context, findings []models.GriftFinding) error {
	if len(findings) == 0 {
		return nil
	}
	for i := range findings {
		if findings[i].ID == "" {
			findings[i].ID = uuid.NewString()
		}
	}
	if _, err := s.db.NewInsert().Model(&findings).Exec(ctx); err != nil {
		return fmt.Errorf("inserting %d findings: %w", len(findings), err)
	}
	return nil
}

// ClearFindings removes all stored findings. A scan rewrites the full set,
// so stale findings from the previous snapshot must go first.
func (s *Store) ClearFindings(ctx context.Context) error {
	_, err := s.db.NewDelete().Model((*models.GriftFinding)(nil)).Where("1 = 1").Exec(ctx)
	if err != nil {
		return fmt.Errorf("clearing findings: %w", err)
	}
	return nil
}

// GetFindings returns findings ordered by severity, most urgent first.
// Dismissed findings are excluded unless includeDismissed is set.
func (s *Store) GetFindings(ctx context.Context, includeDismissed bool) ([]models.GriftFinding, error) {
	var findings []models.GriftFinding
	q := s.db.NewSelect().
		Model(&findings).
		OrderExpr("CASE severity WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END").
		Order("created_at DESC")
	if !includeDismissed {
		q = q.Where("dismissed = FALSE")
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("loading findings: %w", err)
	}
	return findings, nil
}

// DismissFinding marks one finding as reviewed. Returns sql.ErrNoRows when
// the ID does not exist.
func (s *Store) DismissFinding(ctx context.Context, id string) error {
	res, err := s.db.NewUpdate().
		Model((*models.GriftFinding)(nil)).
		Set("dismissed = TRUE").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("dismissing finding %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
