// Package events publishes ledger changes to downstream consumers.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/money"
)

// Type names a ledger event.
type Type string

const (
	BillCreated     Type = "bill.created"
	BillDeleted     Type = "bill.deleted"
	PaymentRecorded Type = "payment.recorded"
	PaymentDeleted  Type = "payment.deleted"
)

// Event describes one change to a group's ledger.
type Event struct {
	ID         string          `json:"id"`
	Type       Type            `json:"type"`
	GroupID    string          `json:"group_id"`
	EntityID   string          `json:"entity_id"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// New builds an event with a fresh ID stamped with the current time.
func New(typ Type, groupID, entityID string, amount money.Amount) Event {
	return Event{
		ID:         uuid.New().String(),
		Type:       typ,
		GroupID:    groupID,
		EntityID:   entityID,
		Amount:     amount.Decimal(),
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
