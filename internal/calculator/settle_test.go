package calculator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/money"
)

// outgoing and incoming totals per member
func flows(transfers []Transfer) map[string]money.Amount {
	out := make(map[string]money.Amount)
	for _, tr := range transfers {
		out[tr.From] -= tr.Amount
		out[tr.To] += tr.Amount
	}
	return out
}

func TestPlanNets_SingleCreditor(t *testing.T) {
	transfers, err := PlanNets(map[string]money.Amount{"A": 3000, "B": -1000, "C": -2000})
	require.NoError(t, err)

	assert.Equal(t, []Transfer{
		{From: "C", To: "A", Amount: 2000},
		{From: "B", To: "A", Amount: 1000},
	}, transfers)
}

func TestPlanNets_Properties(t *testing.T) {
	tests := []struct {
		name string
		nets map[string]money.Amount
	}{
		{name: "empty", nets: map[string]money.Amount{}},
		{name: "all settled", nets: map[string]money.Amount{"A": 0, "B": 0}},
		{name: "two people", nets: map[string]money.Amount{"A": 1, "B": -1}},
		{name: "many to many", nets: map[string]money.Amount{
			"A": 5000, "B": 2500, "C": -4000, "D": -1000, "E": -2500,
		}},
		{name: "uneven cents", nets: map[string]money.Amount{
			"A": 3334, "B": -1111, "C": -1111, "D": -1112,
		}},
		{name: "ties", nets: map[string]money.Amount{
			"A": 100, "B": 100, "C": -100, "D": -100,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transfers, err := PlanNets(tt.nets)
			require.NoError(t, err)

			nonzero := 0
			for _, v := range tt.nets {
				if v != 0 {
					nonzero++
				}
			}
			if nonzero > 0 {
				assert.LessOrEqual(t, len(transfers), nonzero-1)
			} else {
				assert.Empty(t, transfers)
			}

			for _, tr := range transfers {
				assert.Positive(t, int64(tr.Amount))
				assert.NotEqual(t, tr.From, tr.To)
			}

			got := flows(transfers)
			for member, net := range tt.nets {
				assert.Equal(t, net, got[member], member)
			}
		})
	}
}

func TestPlanNets_Deterministic(t *testing.T) {
	nets := map[string]money.Amount{"A": 100, "B": 100, "C": -100, "D": -100}
	first, err := PlanNets(nets)
	require.NoError(t, err)
	for range 10 {
		again, err := PlanNets(nets)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, []Transfer{
		{From: "C", To: "A", Amount: 100},
		{From: "D", To: "B", Amount: 100},
	}, first)
}

func TestPlanNets_NonZeroSumIsAnInvariantFailure(t *testing.T) {
	_, err := PlanNets(map[string]money.Amount{"A": 100, "B": -90})
	require.ErrorIs(t, err, ErrInvariantViolated)

	var inv *InvariantError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, money.Amount(10), inv.Residual)
}

func TestPlan_FromLedger(t *testing.T) {
	balances, skipped := Aggregate(sampleLedger())
	require.Empty(t, skipped)

	transfers, err := Plan(balances)
	require.NoError(t, err)

	got := flows(transfers)
	for member, net := range balances.MemberNets() {
		assert.Equal(t, net, got[member], member)
	}
}

func TestPairwiseDebts(t *testing.T) {
	balances, _ := Aggregate([]LedgerEntry{
		bill("b1", "Alice", map[string]money.Amount{"Alice": 100, "Bob": 100}),
		bill("b2", "Bob", map[string]money.Amount{"Bob": 30, "Charlie": 30}),
	})

	assert.Equal(t, []Transfer{
		{From: "Bob", To: "Alice", Amount: 100},
		{From: "Charlie", To: "Bob", Amount: 30},
	}, PairwiseDebts(balances))
}
