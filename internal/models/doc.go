// Package models defines the persisted domain models for splitledger.
//
// # Models
//
//   - Group: a set of members who share expenses
//   - Bill: a finalized expense, paid by one member and owed by its participants
//   - Payment: money sent directly from one member to another to settle up
//
// Bills and payments together form a group's ledger. Ledger records are never
// edited in place: a correction is a delete followed by a new record, and
// balances are always recomputed from the full remaining ledger.
//
// Members are identified by name strings, unique within a group.
// All amounts are money.Amount minor units.
package models
