package calculator

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/mmynk/splitledger/internal/money"
)

// ErrInvariantViolated marks a broken internal invariant, such as net
// balances that do not sum to zero. It signals a bug upstream of the planner,
// never bad user input.
var ErrInvariantViolated = errors.New("invariant violated")

// InvariantError carries the details of a failed invariant check.
type InvariantError struct {
	Check    string
	Residual money.Amount
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s (residual %s)", ErrInvariantViolated, e.Check, e.Residual)
}

func (e *InvariantError) Unwrap() error { return ErrInvariantViolated }

// Transfer is one settle-up instruction.
type Transfer struct {
	From   string
	To     string
	Amount money.Amount
}

// Plan produces settle-up transfers that zero out the given balances.
// See PlanNets.
func Plan(balances NetBalances) ([]Transfer, error) {
	return PlanNets(balances.MemberNets())
}

// PlanNets settles per-member net positions (positive = owed money).
//
// The planner repeatedly matches the largest debtor with the largest creditor
// and moves the smaller of the two amounts, with ties broken by member id.
// Every step zeroes at least one member, so N members with nonzero nets need
// at most N-1 transfers. This greedy matching is close to minimal in practice
// but not optimal: finding the fewest transfers is NP-hard.
func PlanNets(nets map[string]money.Amount) ([]Transfer, error) {
	var sum money.Amount
	var debtors, creditors []position
	for member, net := range nets {
		sum += net
		switch {
		case net > 0:
			creditors = append(creditors, position{member: member, amount: net})
		case net < 0:
			debtors = append(debtors, position{member: member, amount: -net})
		}
	}
	if sum != 0 {
		return nil, &InvariantError{Check: "net balances must sum to zero", Residual: sum}
	}

	var transfers []Transfer
	for len(debtors) > 0 && len(creditors) > 0 {
		di, ci := largest(debtors), largest(creditors)
		d, c := &debtors[di], &creditors[ci]

		amount := min(d.amount, c.amount)
		transfers = append(transfers, Transfer{From: d.member, To: c.member, Amount: amount})
		d.amount -= amount
		c.amount -= amount

		if d.amount == 0 {
			debtors = slices.Delete(debtors, di, di+1)
		}
		if c.amount == 0 {
			creditors = slices.Delete(creditors, ci, ci+1)
		}
	}

	if len(debtors) != 0 || len(creditors) != 0 {
		var residual money.Amount
		for _, p := range creditors {
			residual += p.amount
		}
		for _, p := range debtors {
			residual -= p.amount
		}
		return nil, &InvariantError{Check: "balances left after settlement", Residual: residual}
	}
	return transfers, nil
}

// PairwiseDebts lists every nonzero pair balance as a transfer from the
// debtor to the creditor, without simplifying across pairs.
func PairwiseDebts(balances NetBalances) []Transfer {
	pairs := balances.Pairs()
	out := make([]Transfer, 0, len(pairs))
	for _, p := range pairs {
		if p.Amount > 0 {
			out = append(out, Transfer{From: p.B, To: p.A, Amount: p.Amount})
		} else {
			out = append(out, Transfer{From: p.A, To: p.B, Amount: -p.Amount})
		}
	}
	return out
}

type position struct {
	member string
	amount money.Amount
}

func largest(ps []position) int {
	best := 0
	for i := 1; i < len(ps); i++ {
		if c := cmp.Compare(ps[i].amount, ps[best].amount); c > 0 || (c == 0 && ps[i].member < ps[best].member) {
			best = i
		}
	}
	return best
}
