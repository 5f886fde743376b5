// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
)

// ErrNotFound is returned (wrapped) when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// GroupStore persists groups and their membership. It is the membership
// provider consulted whenever a split session is reset.
type GroupStore interface {
	// CreateGroup persists a new group. ID and CreatedAt are filled in when empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its members in insertion order.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups retrieves all groups, newest first.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// AddGroupMembers appends members to a group, skipping names already present.
	AddGroupMembers(ctx context.Context, groupID string, names []string) error

	// DeleteGroup removes a group together with its ledger.
	DeleteGroup(ctx context.Context, groupID string) error
}

// LedgerStore persists the immutable bills and payments of a group.
// Records are only ever created or deleted, never updated.
type LedgerStore interface {
	CreateBill(ctx context.Context, bill *models.Bill) error
	GetBill(ctx context.Context, billID string) (*models.Bill, error)
	DeleteBill(ctx context.Context, billID string) error

	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPayment(ctx context.Context, paymentID string) (*models.Payment, error)
	DeletePayment(ctx context.Context, paymentID string) error

	// Ledger returns every bill and payment of a group read from a single
	// consistent snapshot.
	Ledger(ctx context.Context, groupID string) (*Ledger, error)
}

// Ledger is a point-in-time copy of a group's bills and payments.
type Ledger struct {
	Bills    []*models.Bill
	Payments []*models.Payment
}

// Entries adapts the ledger to the balance calculator's input, bills first.
func (l *Ledger) Entries() []calculator.LedgerEntry {
	entries := make([]calculator.LedgerEntry, 0, len(l.Bills)+len(l.Payments))
	for _, b := range l.Bills {
		entries = append(entries, calculator.LedgerEntry{Bill: &calculator.BillForBalance{
			ID:      b.ID,
			PayerID: b.PayerID,
			Total:   b.Total,
			Shares:  b.Owed(),
		}})
	}
	for _, p := range l.Payments {
		entries = append(entries, calculator.LedgerEntry{Payment: &calculator.PaymentForBalance{
			ID:     p.ID,
			FromID: p.FromID,
			ToID:   p.ToID,
			Amount: p.Amount,
		}})
	}
	return entries
}

// Store defines the full storage surface used by the services.
// This abstraction allows swapping storage backends without changing the
// service layer.
type Store interface {
	GroupStore
	LedgerStore

	// Close releases any resources held by the store.
	Close() error
}
