package models

import "github.com/mmynk/splitledger/internal/money"

// Bill is a finalized expense in a group's ledger.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// GroupID is the group whose ledger this bill belongs to.
	GroupID string

	// Title is the human-readable name for the bill.
	// Auto-generated from participants when left empty.
	Title string

	// PayerID is the member who paid the bill.
	PayerID string

	// Total is the full bill amount.
	Total money.Amount

	// SplitMode records how the shares were entered ("equally", "amount" or "percent").
	SplitMode string

	// Shares are the per-participant results, in participant order.
	Shares []Share

	// CreatedAt is the Unix timestamp when the bill was recorded.
	CreatedAt int64
}

// Share is one participant's part of a bill.
type Share struct {
	// Member is the participant's name.
	Member string

	// Value is the value as entered: an amount for amount and equal splits,
	// Percent units for percent splits.
	Value int64

	// Edited marks a value the user set by hand.
	Edited bool

	// Amount is what the participant owes. Shares of a bill always sum to Total.
	Amount money.Amount
}

// Participants returns the bill's participant names in order.
func (b *Bill) Participants() []string {
	out := make([]string, len(b.Shares))
	for i, s := range b.Shares {
		out[i] = s.Member
	}
	return out
}

// Owed maps each participant to the amount they owe.
func (b *Bill) Owed() map[string]money.Amount {
	out := make(map[string]money.Amount, len(b.Shares))
	for _, s := range b.Shares {
		out[s.Member] += s.Amount
	}
	return out
}
