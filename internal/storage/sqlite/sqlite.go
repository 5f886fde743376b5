// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Pragmas go in the DSN so every pooled connection gets them
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows a single writer; one connection avoids SQLITE_BUSY between our own writes
	db.SetMaxOpenConns(1)

	if err := runMigrations(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateBill persists a new bill with its shares in one transaction.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	// Generate IDs if not set
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}
	if bill.Title == "" {
		bill.Title = generateTitle(bill.Participants())
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bills (id, group_id, title, payer_id, total, split_mode, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.GroupID, bill.Title, bill.PayerID, int64(bill.Total), bill.SplitMode, bill.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	for i, share := range bill.Shares {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO bill_shares (bill_id, position, member, value, edited, amount)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			bill.ID, i, share.Member, share.Value, share.Edited, int64(share.Amount),
		)
		if err != nil {
			return fmt.Errorf("failed to insert share: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetBill retrieves a bill by ID, including its shares.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	bill := &models.Bill{}
	var total int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, title, payer_id, total, split_mode, created_at FROM bills WHERE id = ?`,
		billID,
	).Scan(&bill.ID, &bill.GroupID, &bill.Title, &bill.PayerID, &total, &bill.SplitMode, &bill.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	bill.Total = money.Amount(total)

	shares, err := loadShares(ctx, s.db, "WHERE bill_id = ?", billID)
	if err != nil {
		return nil, err
	}
	bill.Shares = shares[bill.ID]

	return bill, nil
}

// DeleteBill removes a bill and its shares.
func (s *SQLiteStore) DeleteBill(ctx context.Context, billID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", billID)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	return expectOneRow(res, "bill", billID)
}

// listBills loads every bill of a group with its shares, oldest first.
func listBills(ctx context.Context, q querier, groupID string) ([]*models.Bill, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, group_id, title, payer_id, total, split_mode, created_at
		 FROM bills WHERE group_id = ? ORDER BY created_at, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills by group: %w", err)
	}
	defer rows.Close()

	var bills []*models.Bill
	for rows.Next() {
		bill := &models.Bill{}
		var total int64
		if err := rows.Scan(&bill.ID, &bill.GroupID, &bill.Title, &bill.PayerID, &total, &bill.SplitMode, &bill.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bill.Total = money.Amount(total)
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	rows.Close()

	shares, err := loadShares(ctx, q,
		"WHERE bill_id IN (SELECT id FROM bills WHERE group_id = ?)", groupID)
	if err != nil {
		return nil, err
	}
	for _, bill := range bills {
		bill.Shares = shares[bill.ID]
	}
	return bills, nil
}

// loadShares returns shares keyed by bill ID, each list in position order.
func loadShares(ctx context.Context, q querier, where string, args ...any) (map[string][]models.Share, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT bill_id, member, value, edited, amount FROM bill_shares `+where+` ORDER BY bill_id, position`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get shares: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.Share)
	for rows.Next() {
		var billID string
		var share models.Share
		var amount int64
		if err := rows.Scan(&billID, &share.Member, &share.Value, &share.Edited, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		share.Amount = money.Amount(amount)
		out[billID] = append(out[billID], share)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shares: %w", err)
	}
	return out, nil
}

// Ledger reads a group's bills and payments inside one transaction so the
// caller never sees a half-written bill.
func (s *SQLiteStore) Ledger(ctx context.Context, groupID string) (*storage.Ledger, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM groups WHERE id = ?", groupID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check group existence: %w", err)
	}

	bills, err := listBills(ctx, tx, groupID)
	if err != nil {
		return nil, err
	}
	payments, err := listPayments(ctx, tx, groupID)
	if err != nil {
		return nil, err
	}
	return &storage.Ledger{Bills: bills, Payments: payments}, nil
}

func expectOneRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}

// generateTitle creates an auto-generated title from participants.
func generateTitle(participants []string) string {
	if len(participants) == 0 {
		return fmt.Sprintf("Bill - %s", time.Now().Format("Jan 2, 2006"))
	}
	if len(participants) <= 3 {
		return fmt.Sprintf("Split with %s", strings.Join(participants, ", "))
	}
	return fmt.Sprintf("Split with %s and %d others",
		strings.Join(participants[:2], ", "),
		len(participants)-2,
	)
}
