package models

import "github.com/mmynk/splitledger/internal/money"

// Payment represents money sent between group members to clear debts.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// GroupID is the group this payment belongs to.
	GroupID string

	// FromID is the member who paid (debtor settling up).
	FromID string

	// ToID is the member who received the payment.
	ToID string

	// Amount is the payment amount.
	Amount money.Amount

	// Note is an optional description for the payment.
	Note string

	// CreatedAt is the Unix timestamp when the payment was recorded.
	CreatedAt int64
}
