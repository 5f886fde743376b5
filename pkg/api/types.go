// Package api defines the request and response messages of the splitwiser.v1
// services. Messages travel as JSON. Money values and percentages are decimal
// strings ("12.5", "33.34") with at most two fractional digits.
package api

import "github.com/shopspring/decimal"

// Group is a member list that owns a ledger.
type Group struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Currency  string   `json:"currency"`
	Members   []string `json:"members"`
	CreatedAt int64    `json:"created_at"`
}

// Share is one participant's line in a split.
//
// Value holds what the participant entered or was assigned in the active
// mode: an amount for "equally" and "amount", a percentage for "percent".
// Amount is the resolved money amount and is only set on finalized bills and
// on Allocate responses.
type Share struct {
	Member string          `json:"member"`
	Value  decimal.Decimal `json:"value"`
	Edited bool            `json:"edited,omitempty"`
	Amount decimal.Decimal `json:"amount"`
}

// Bill is a finalized expense.
type Bill struct {
	ID        string          `json:"id"`
	GroupID   string          `json:"group_id"`
	Title     string          `json:"title"`
	PayerID   string          `json:"payer_id"`
	Total     decimal.Decimal `json:"total"`
	SplitMode string          `json:"split_mode"`
	Shares    []Share         `json:"shares"`
	CreatedAt int64           `json:"created_at"`
}

// Payment is money sent directly between two members.
type Payment struct {
	ID        string          `json:"id"`
	GroupID   string          `json:"group_id"`
	FromID    string          `json:"from_id"`
	ToID      string          `json:"to_id"`
	Amount    decimal.Decimal `json:"amount"`
	Note      string          `json:"note,omitempty"`
	CreatedAt int64           `json:"created_at"`
}

// Transfer says From owes (or should pay) To the given amount.
type Transfer struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// MemberBalance summarizes one member's position in a group.
type MemberBalance struct {
	MemberName string          `json:"member_name"`
	NetBalance decimal.Decimal `json:"net_balance"` // Positive = owed money, Negative = owes money
	TotalPaid  decimal.Decimal `json:"total_paid"`
	TotalOwed  decimal.Decimal `json:"total_owed"`
}

// SkippedEntry is a ledger record left out of the balances.
type SkippedEntry struct {
	EntryID string `json:"entry_id"`
	Reason  string `json:"reason"`
}

// SplitState is the render state of a split session.
type SplitState struct {
	SessionID    string          `json:"session_id"`
	GroupID      string          `json:"group_id"`
	Mode         string          `json:"mode"`
	Total        decimal.Decimal `json:"total"`
	Participants []string        `json:"participants"`
	Shares       []Share         `json:"shares"`
	ErroredOut   bool            `json:"errored_out"`
}

// Group service messages.

type CreateGroupRequest struct {
	Name     string   `json:"name"`
	Currency string   `json:"currency,omitempty"`
	Members  []string `json:"members"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type AddMembersRequest struct {
	GroupID string   `json:"group_id"`
	Members []string `json:"members"`
}

type AddMembersResponse struct {
	Group *Group `json:"group"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"group_id"`
}

type DeleteGroupResponse struct{}

type RecordPaymentRequest struct {
	GroupID string          `json:"group_id"`
	FromID  string          `json:"from_id"`
	ToID    string          `json:"to_id"`
	Amount  decimal.Decimal `json:"amount"`
	Note    string          `json:"note,omitempty"`
}

type RecordPaymentResponse struct {
	Payment *Payment `json:"payment"`
}

type DeleteBillRequest struct {
	BillID string `json:"bill_id"`
}

type DeleteBillResponse struct{}

type DeletePaymentRequest struct {
	PaymentID string `json:"payment_id"`
}

type DeletePaymentResponse struct{}

type ListLedgerRequest struct {
	GroupID string `json:"group_id"`
}

type ListLedgerResponse struct {
	Bills    []*Bill    `json:"bills"`
	Payments []*Payment `json:"payments"`
}

type GetGroupBalancesRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupBalancesResponse struct {
	MemberBalances []*MemberBalance `json:"member_balances"`
	// DebtMatrix lists the net debt of every member pair that is not even.
	DebtMatrix []*Transfer      `json:"debt_matrix"`
	Skipped    []*SkippedEntry `json:"skipped,omitempty"`
}

type GetSettlePlanRequest struct {
	GroupID string `json:"group_id"`
	// Simplify defaults to true. When false the plan is one transfer per
	// indebted pair.
	Simplify *bool `json:"simplify,omitempty"`
}

type GetSettlePlanResponse struct {
	Transfers []*Transfer `json:"transfers"`
	Currency  string      `json:"currency"`
}

// Split service messages.

type AllocateRequest struct {
	Total   decimal.Decimal `json:"total"`
	Members []string        `json:"members"`
	Mode    string          `json:"mode"`
	Shares  []Share         `json:"shares,omitempty"`
}

type AllocateResponse struct {
	Shares []Share `json:"shares"`
}

type StartSplitRequest struct {
	GroupID string          `json:"group_id"`
	Total   decimal.Decimal `json:"total"`
}

type ResetSplitRequest struct {
	SessionID string `json:"session_id"`
}

type SelectModeRequest struct {
	SessionID string `json:"session_id"`
	Mode      string `json:"mode"`
}

type EditShareRequest struct {
	SessionID string          `json:"session_id"`
	Member    string          `json:"member"`
	Value     decimal.Decimal `json:"value"`
}

type ClearShareEditRequest struct {
	SessionID string `json:"session_id"`
	Member    string `json:"member"`
}

type ToggleParticipantRequest struct {
	SessionID string `json:"session_id"`
	Member    string `json:"member"`
}

type SetTotalRequest struct {
	SessionID string          `json:"session_id"`
	Total     decimal.Decimal `json:"total"`
}

type GetSplitRequest struct {
	SessionID string `json:"session_id"`
}

// SplitResponse is returned by every call that reads or changes a session.
type SplitResponse struct {
	Split *SplitState `json:"split"`
}

type FinalizeBillRequest struct {
	SessionID string `json:"session_id"`
	PayerID   string `json:"payer_id"`
	Title     string `json:"title,omitempty"`
}

type FinalizeBillResponse struct {
	Bill *Bill `json:"bill"`
}

type CancelSplitRequest struct {
	SessionID string `json:"session_id"`
}

type CancelSplitResponse struct{}
