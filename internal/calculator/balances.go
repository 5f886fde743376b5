package calculator

import (
	"cmp"
	"slices"

	"github.com/mmynk/splitledger/internal/money"
)

// BillForBalance is a finalized bill with the minimal information needed for
// balance calculations. Shares holds what each participant owes, the payer's
// own share included.
type BillForBalance struct {
	ID      string
	PayerID string
	Total   money.Amount
	Shares  map[string]money.Amount
}

// PaymentForBalance is a direct payment from one member to another.
type PaymentForBalance struct {
	ID     string
	FromID string // who paid (debtor settling up)
	ToID   string // who received
	Amount money.Amount
}

// LedgerEntry is either a bill or a payment. Exactly one field must be set.
type LedgerEntry struct {
	Bill    *BillForBalance
	Payment *PaymentForBalance
}

// Diagnostic describes a ledger entry that was skipped during aggregation.
type Diagnostic struct {
	EntryID string
	Reason  string
}

// Pair is an unordered member pair stored with A < B.
type Pair struct {
	A, B string
}

func newPair(x, y string) (Pair, bool) {
	if x < y {
		return Pair{A: x, B: y}, false
	}
	return Pair{A: y, B: x}, true
}

// NetBalances maps each member pair to a signed amount. A positive value means
// B owes A; a negative value means A owes B. Pairs that net to zero are absent.
type NetBalances map[Pair]money.Amount

// owe records that debtor owes creditor amount.
func (n NetBalances) owe(debtor, creditor string, amount money.Amount) {
	p, swapped := newPair(creditor, debtor)
	if swapped {
		amount = -amount
	}
	v := n[p] + amount
	if v == 0 {
		delete(n, p)
		return
	}
	n[p] = v
}

// Between returns how much y owes x. The result is negative when x owes y.
func (n NetBalances) Between(x, y string) money.Amount {
	p, swapped := newPair(x, y)
	if swapped {
		return -n[p]
	}
	return n[p]
}

// PairBalance is one entry of NetBalances.
type PairBalance struct {
	Pair
	Amount money.Amount
}

// Pairs lists the balances ordered by member ids.
func (n NetBalances) Pairs() []PairBalance {
	out := make([]PairBalance, 0, len(n))
	for p, v := range n {
		out = append(out, PairBalance{Pair: p, Amount: v})
	}
	slices.SortFunc(out, func(a, b PairBalance) int {
		if c := cmp.Compare(a.A, b.A); c != 0 {
			return c
		}
		return cmp.Compare(a.B, b.B)
	})
	return out
}

// MemberNets sums each member's pairwise balances. Positive means the member
// is owed money overall. The values always add up to zero.
func (n NetBalances) MemberNets() map[string]money.Amount {
	nets := make(map[string]money.Amount)
	for p, v := range n {
		nets[p.A] += v
		nets[p.B] -= v
	}
	return nets
}

// Aggregate reduces a ledger into net pairwise balances.
//
// Bills add a debt from every non-payer participant to the payer. Payments
// from A to B reduce what A owes B. Entries are summed with integer
// arithmetic, so the order of the ledger does not matter. Malformed entries
// are skipped and reported so one bad record does not hide the rest.
func Aggregate(ledger []LedgerEntry) (NetBalances, []Diagnostic) {
	balances := make(NetBalances)
	var skipped []Diagnostic

	for _, entry := range ledger {
		if d, ok := validate(entry); !ok {
			skipped = append(skipped, d)
			continue
		}

		if bill := entry.Bill; bill != nil {
			for participant, share := range bill.Shares {
				if participant == bill.PayerID || share == 0 {
					continue
				}
				balances.owe(participant, bill.PayerID, share)
			}
			continue
		}

		p := entry.Payment
		balances.owe(p.ToID, p.FromID, p.Amount)
	}

	return balances, skipped
}

// MemberBalance summarizes one member's activity across the ledger.
type MemberBalance struct {
	MemberName string
	NetBalance money.Amount // Positive = owed money, Negative = owes money
	TotalPaid  money.Amount // Bills paid plus payments sent
	TotalOwed  money.Amount // Own bill shares plus payments received
}

// SummarizeMembers computes paid/owed totals per member, skipping the same
// malformed entries as Aggregate. Results are ordered by member name.
func SummarizeMembers(ledger []LedgerEntry) []MemberBalance {
	balances := make(map[string]*MemberBalance)
	get := func(name string) *MemberBalance {
		b, ok := balances[name]
		if !ok {
			b = &MemberBalance{MemberName: name}
			balances[name] = b
		}
		return b
	}

	for _, entry := range ledger {
		if _, ok := validate(entry); !ok {
			continue
		}
		if bill := entry.Bill; bill != nil {
			get(bill.PayerID).TotalPaid += bill.Total
			for participant, share := range bill.Shares {
				get(participant).TotalOwed += share
			}
			continue
		}
		p := entry.Payment
		get(p.FromID).TotalPaid += p.Amount
		get(p.ToID).TotalOwed += p.Amount
	}

	out := make([]MemberBalance, 0, len(balances))
	for _, b := range balances {
		b.NetBalance = b.TotalPaid - b.TotalOwed
		out = append(out, *b)
	}
	slices.SortFunc(out, func(a, b MemberBalance) int { return cmp.Compare(a.MemberName, b.MemberName) })
	return out
}

func validate(entry LedgerEntry) (Diagnostic, bool) {
	switch {
	case entry.Bill != nil && entry.Payment != nil:
		return Diagnostic{EntryID: entry.Bill.ID, Reason: "entry is both a bill and a payment"}, false
	case entry.Bill != nil:
		return validateBill(entry.Bill)
	case entry.Payment != nil:
		return validatePayment(entry.Payment)
	default:
		return Diagnostic{Reason: "empty ledger entry"}, false
	}
}

func validateBill(b *BillForBalance) (Diagnostic, bool) {
	skip := func(reason string) (Diagnostic, bool) {
		return Diagnostic{EntryID: b.ID, Reason: reason}, false
	}
	if b.PayerID == "" {
		return skip("bill has no payer")
	}
	if b.Total < 0 {
		return skip("bill total is negative")
	}
	var sum money.Amount
	for participant, share := range b.Shares {
		if participant == "" {
			return skip("share without participant")
		}
		if share < 0 {
			return skip("negative share for " + participant)
		}
		sum += share
	}
	if sum != b.Total {
		return skip("shares sum to " + sum.String() + ", total is " + b.Total.String())
	}
	return Diagnostic{}, true
}

func validatePayment(p *PaymentForBalance) (Diagnostic, bool) {
	skip := func(reason string) (Diagnostic, bool) {
		return Diagnostic{EntryID: p.ID, Reason: reason}, false
	}
	if p.FromID == "" || p.ToID == "" {
		return skip("payment is missing a party")
	}
	if p.FromID == p.ToID {
		return skip("payment to self")
	}
	if p.Amount <= 0 {
		return skip("payment amount must be positive")
	}
	return Diagnostic{}, true
}
