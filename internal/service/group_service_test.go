package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/pkg/api"
)

func TestCreateGroup(t *testing.T) {
	env := setupTestServer(t)

	resp, err := env.groups.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{
		Name:    "Roommates",
		Members: []string{"Charlie", " Alice ", "Bob"},
	}))
	require.NoError(t, err)

	group := resp.Msg.Group
	require.NotNil(t, group)
	assert.NotEmpty(t, group.ID)
	assert.Equal(t, "Roommates", group.Name)
	assert.Equal(t, "USD", group.Currency)
	assert.Equal(t, []string{"Charlie", "Alice", "Bob"}, group.Members)
	assert.NotZero(t, group.CreatedAt)
}

func TestCreateGroup_Validation(t *testing.T) {
	env := setupTestServer(t)

	tests := []struct {
		name string
		req  *api.CreateGroupRequest
	}{
		{"empty name", &api.CreateGroupRequest{Name: " ", Members: []string{"Alice"}}},
		{"duplicate member", &api.CreateGroupRequest{Name: "Trip", Members: []string{"Alice", "Alice"}}},
		{"blank member", &api.CreateGroupRequest{Name: "Trip", Members: []string{"Alice", ""}}},
		{"bad currency", &api.CreateGroupRequest{Name: "Trip", Currency: "euro", Members: []string{"Alice"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.groups.CreateGroup(context.Background(), connect.NewRequest(tt.req))
			assertCode(t, connect.CodeInvalidArgument, err)
		})
	}
}

func TestGetGroup(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	created := env.createGroup(t, "Diana", "Eve")

	resp, err := env.groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: created.ID}))
	require.NoError(t, err)
	assert.Equal(t, created, resp.Msg.Group)

	_, err = env.groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: "nonexistent"}))
	assertCode(t, connect.CodeNotFound, err)

	_, err = env.groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{}))
	assertCode(t, connect.CodeInvalidArgument, err)
}

func TestListGroups(t *testing.T) {
	env := setupTestServer(t)
	env.createGroup(t, "Alice")
	env.createGroup(t, "Bob", "Charlie")

	resp, err := env.groups.ListGroups(context.Background(), connect.NewRequest(&api.ListGroupsRequest{}))
	require.NoError(t, err)
	assert.Len(t, resp.Msg.Groups, 2)
}

func TestAddMembers(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	group := env.createGroup(t, "Alice", "Bob")

	resp, err := env.groups.AddMembers(ctx, connect.NewRequest(&api.AddMembersRequest{
		GroupID: group.ID,
		Members: []string{"Bob", "Charlie"},
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Bob", "Charlie"}, resp.Msg.Group.Members)

	_, err = env.groups.AddMembers(ctx, connect.NewRequest(&api.AddMembersRequest{GroupID: group.ID}))
	assertCode(t, connect.CodeInvalidArgument, err)

	_, err = env.groups.AddMembers(ctx, connect.NewRequest(&api.AddMembersRequest{
		GroupID: "nonexistent",
		Members: []string{"Zed"},
	}))
	assertCode(t, connect.CodeNotFound, err)
}

func TestDeleteGroup(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	group := env.createGroup(t, "Alice")

	_, err := env.groups.DeleteGroup(ctx, connect.NewRequest(&api.DeleteGroupRequest{GroupID: group.ID}))
	require.NoError(t, err)

	_, err = env.groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: group.ID}))
	assertCode(t, connect.CodeNotFound, err)

	_, err = env.groups.DeleteGroup(ctx, connect.NewRequest(&api.DeleteGroupRequest{GroupID: group.ID}))
	assertCode(t, connect.CodeNotFound, err)
}

func TestRecordPayment(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	group := env.createGroup(t, "Alice", "Bob")

	resp, err := env.groups.RecordPayment(ctx, connect.NewRequest(&api.RecordPaymentRequest{
		GroupID: group.ID,
		FromID:  "Bob",
		ToID:    "Alice",
		Amount:  dec("12.50"),
		Note:    "groceries",
	}))
	require.NoError(t, err)

	payment := resp.Msg.Payment
	assert.NotEmpty(t, payment.ID)
	assertDecimal(t, "12.5", payment.Amount)
	assert.Equal(t, "groceries", payment.Note)

	recorded := env.recorder.Events()
	require.Len(t, recorded, 1)
	assert.Equal(t, events.PaymentRecorded, recorded[0].Type)
	assert.Equal(t, group.ID, recorded[0].GroupID)
	assert.Equal(t, payment.ID, recorded[0].EntityID)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.PaymentsRecorded))

	_, err = env.groups.DeletePayment(ctx, connect.NewRequest(&api.DeletePaymentRequest{PaymentID: payment.ID}))
	require.NoError(t, err)
	assert.Equal(t, events.PaymentDeleted, env.recorder.Events()[1].Type)

	_, err = env.groups.DeletePayment(ctx, connect.NewRequest(&api.DeletePaymentRequest{PaymentID: payment.ID}))
	assertCode(t, connect.CodeNotFound, err)
}

func TestRecordPayment_Validation(t *testing.T) {
	env := setupTestServer(t)
	group := env.createGroup(t, "Alice", "Bob")

	tests := []struct {
		name string
		req  *api.RecordPaymentRequest
		code connect.Code
	}{
		{"to self", &api.RecordPaymentRequest{GroupID: group.ID, FromID: "Bob", ToID: "Bob", Amount: dec("1")}, connect.CodeInvalidArgument},
		{"zero", &api.RecordPaymentRequest{GroupID: group.ID, FromID: "Bob", ToID: "Alice", Amount: dec("0")}, connect.CodeInvalidArgument},
		{"negative", &api.RecordPaymentRequest{GroupID: group.ID, FromID: "Bob", ToID: "Alice", Amount: dec("-3")}, connect.CodeInvalidArgument},
		{"sub-cent", &api.RecordPaymentRequest{GroupID: group.ID, FromID: "Bob", ToID: "Alice", Amount: dec("0.001")}, connect.CodeInvalidArgument},
		{"not a member", &api.RecordPaymentRequest{GroupID: group.ID, FromID: "Zed", ToID: "Alice", Amount: dec("1")}, connect.CodeInvalidArgument},
		{"unknown group", &api.RecordPaymentRequest{GroupID: "nope", FromID: "Bob", ToID: "Alice", Amount: dec("1")}, connect.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.groups.RecordPayment(context.Background(), connect.NewRequest(tt.req))
			assertCode(t, tt.code, err)
		})
	}
	assert.Empty(t, env.recorder.Events())
}

// finalizeEqual records a bill split equally over the whole group.
func (e *testEnv) finalizeEqual(t *testing.T, groupID, total, payer string) *api.Bill {
	t.Helper()
	ctx := context.Background()
	start, err := e.splits.StartSplit(ctx, connect.NewRequest(&api.StartSplitRequest{GroupID: groupID, Total: dec(total)}))
	require.NoError(t, err)
	resp, err := e.splits.FinalizeBill(ctx, connect.NewRequest(&api.FinalizeBillRequest{
		SessionID: start.Msg.Split.SessionID,
		PayerID:   payer,
	}))
	require.NoError(t, err)
	return resp.Msg.Bill
}

func transfers(ts []*api.Transfer) []string {
	out := make([]string, len(ts))
	for i, tr := range ts {
		out[i] = tr.From + "->" + tr.To + " " + tr.Amount.StringFixed(2)
	}
	return out
}

func TestGroupBalancesAndSettlePlan(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	group := env.createGroup(t, "Alice", "Bob", "Charlie")

	env.finalizeEqual(t, group.ID, "30", "Alice")
	groceries := env.finalizeEqual(t, group.ID, "6", "Bob")
	_, err := env.groups.RecordPayment(ctx, connect.NewRequest(&api.RecordPaymentRequest{
		GroupID: group.ID, FromID: "Charlie", ToID: "Alice", Amount: dec("5"),
	}))
	require.NoError(t, err)
	_, err = env.groups.AddMembers(ctx, connect.NewRequest(&api.AddMembersRequest{
		GroupID: group.ID, Members: []string{"Dana"},
	}))
	require.NoError(t, err)

	balances, err := env.groups.GetGroupBalances(ctx, connect.NewRequest(&api.GetGroupBalancesRequest{GroupID: group.ID}))
	require.NoError(t, err)

	want := map[string][3]string{
		"Alice":   {"13", "30", "17"},
		"Bob":     {"-6", "6", "12"},
		"Charlie": {"-7", "5", "12"},
		"Dana":    {"0", "0", "0"},
	}
	require.Len(t, balances.Msg.MemberBalances, 4)
	for i, name := range []string{"Alice", "Bob", "Charlie", "Dana"} {
		b := balances.Msg.MemberBalances[i]
		require.Equal(t, name, b.MemberName)
		assertDecimal(t, want[name][0], b.NetBalance)
		assertDecimal(t, want[name][1], b.TotalPaid)
		assertDecimal(t, want[name][2], b.TotalOwed)
	}
	assert.Equal(t, []string{"Bob->Alice 8.00", "Charlie->Alice 5.00", "Charlie->Bob 2.00"},
		transfers(balances.Msg.DebtMatrix))
	assert.Empty(t, balances.Msg.Skipped)

	plan, err := env.groups.GetSettlePlan(ctx, connect.NewRequest(&api.GetSettlePlanRequest{GroupID: group.ID}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Charlie->Alice 7.00", "Bob->Alice 6.00"}, transfers(plan.Msg.Transfers))
	assert.Equal(t, "USD", plan.Msg.Currency)

	pairwise := false
	plan, err = env.groups.GetSettlePlan(ctx, connect.NewRequest(&api.GetSettlePlanRequest{GroupID: group.ID, Simplify: &pairwise}))
	require.NoError(t, err)
	assert.Equal(t, transfers(balances.Msg.DebtMatrix), transfers(plan.Msg.Transfers))

	ledger, err := env.groups.ListLedger(ctx, connect.NewRequest(&api.ListLedgerRequest{GroupID: group.ID}))
	require.NoError(t, err)
	assert.Len(t, ledger.Msg.Bills, 2)
	assert.Len(t, ledger.Msg.Payments, 1)

	// removing a bill is reflected in the next computation
	_, err = env.groups.DeleteBill(ctx, connect.NewRequest(&api.DeleteBillRequest{BillID: groceries.ID}))
	require.NoError(t, err)

	plan, err = env.groups.GetSettlePlan(ctx, connect.NewRequest(&api.GetSettlePlanRequest{GroupID: group.ID}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob->Alice 10.00", "Charlie->Alice 5.00"}, transfers(plan.Msg.Transfers))

	var types []events.Type
	for _, e := range env.recorder.Events() {
		types = append(types, e.Type)
	}
	assert.Equal(t, []events.Type{events.BillCreated, events.BillCreated, events.PaymentRecorded, events.BillDeleted}, types)
}

func TestGroupBalances_UnknownGroup(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	_, err := env.groups.GetGroupBalances(ctx, connect.NewRequest(&api.GetGroupBalancesRequest{GroupID: "nope"}))
	assertCode(t, connect.CodeNotFound, err)

	_, err = env.groups.GetSettlePlan(ctx, connect.NewRequest(&api.GetSettlePlanRequest{GroupID: "nope"}))
	assertCode(t, connect.CodeNotFound, err)

	_, err = env.groups.ListLedger(ctx, connect.NewRequest(&api.ListLedgerRequest{GroupID: "nope"}))
	assertCode(t, connect.CodeNotFound, err)
}
