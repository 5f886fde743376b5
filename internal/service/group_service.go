package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

var _ apiconnect.GroupServiceHandler = (*GroupService)(nil)

// GroupService implements the Connect GroupService
type GroupService struct {
	deps Deps
}

// NewGroupService creates a new GroupService with the given dependencies.
func NewGroupService(deps Deps) *GroupService {
	return &GroupService{deps: deps.withDefaults()}
}

// CreateGroup creates a new group.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
	)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("name required")
	}
	members, err := normalizeMembers(req.Msg.Members)
	if err != nil {
		return nil, err
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Msg.Currency))
	if currency == "" {
		currency = s.deps.DefaultCurrency
	}
	if len(currency) != 3 {
		return nil, invalidArgument("currency %q is not an ISO code", req.Msg.Currency)
	}

	group := &models.Group{
		Name:     name,
		Currency: currency,
		Members:  members,
	}

	// Save to storage (generates ID and CreatedAt)
	if err := s.deps.Store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group created", "group_id", group.ID)

	return connect.NewResponse(&api.CreateGroupResponse{Group: groupToAPI(group)}), nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	if err := requireID("group_id", req.Msg.GroupID); err != nil {
		return nil, err
	}

	group, err := s.deps.Store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("GetGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetGroupResponse{Group: groupToAPI(group)}), nil
}

// ListGroups retrieves all groups.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	groups, err := s.deps.Store.ListGroups(ctx)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Group, len(groups))
	for i, group := range groups {
		out[i] = groupToAPI(group)
	}

	slog.Info("ListGroups successful", "count", len(groups))

	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// AddMembers appends members to a group. Names already in the group are
// ignored. Open split sessions keep their membership until they are reset.
func (s *GroupService) AddMembers(ctx context.Context, req *connect.Request[api.AddMembersRequest]) (*connect.Response[api.AddMembersResponse], error) {
	slog.Info("AddMembers request received",
		"group_id", req.Msg.GroupID,
		"members_count", len(req.Msg.Members),
	)

	if err := requireID("group_id", req.Msg.GroupID); err != nil {
		return nil, err
	}
	members, err := normalizeMembers(req.Msg.Members)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, invalidArgument("members required")
	}

	if err := s.deps.Store.AddGroupMembers(ctx, req.Msg.GroupID, members); err != nil {
		slog.Error("AddMembers failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	group, err := s.deps.Store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("Failed to fetch updated group", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Members added", "group_id", group.ID, "members_count", len(group.Members))

	return connect.NewResponse(&api.AddMembersResponse{Group: groupToAPI(group)}), nil
}

// DeleteGroup removes a group and its ledger.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	if err := requireID("group_id", req.Msg.GroupID); err != nil {
		return nil, err
	}

	if err := s.deps.Store.DeleteGroup(ctx, req.Msg.GroupID); err != nil {
		slog.Error("DeleteGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group deleted", "group_id", req.Msg.GroupID)

	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// RecordPayment adds a direct payment between two members to the ledger.
func (s *GroupService) RecordPayment(ctx context.Context, req *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	msg := req.Msg
	slog.Info("RecordPayment request received",
		"group_id", msg.GroupID,
		"from", msg.FromID,
		"to", msg.ToID,
		"amount", msg.Amount,
	)

	if err := requireID("group_id", msg.GroupID); err != nil {
		return nil, err
	}
	if msg.FromID == msg.ToID {
		return nil, invalidArgument("payer and recipient must differ")
	}
	amount, err := parseAmount("amount", msg.Amount)
	if err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, invalidArgument("amount must be positive")
	}

	group, err := s.deps.Store.GetGroup(ctx, msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}
	for _, member := range []string{msg.FromID, msg.ToID} {
		if !group.HasMember(member) {
			return nil, invalidArgument("%q is not a member of the group", member)
		}
	}

	payment := &models.Payment{
		GroupID: group.ID,
		FromID:  msg.FromID,
		ToID:    msg.ToID,
		Amount:  amount,
		Note:    strings.TrimSpace(msg.Note),
	}
	if err := s.deps.Store.CreatePayment(ctx, payment); err != nil {
		slog.Error("RecordPayment failed", "error", err)
		return nil, toConnectError(err)
	}
	s.deps.Metrics.PaymentsRecorded.Inc()
	publish(ctx, s.deps, events.New(events.PaymentRecorded, payment.GroupID, payment.ID, payment.Amount))

	slog.Info("Payment recorded", "payment_id", payment.ID, "group_id", payment.GroupID)

	return connect.NewResponse(&api.RecordPaymentResponse{Payment: paymentToAPI(payment)}), nil
}

// DeleteBill removes a bill from its group's ledger.
func (s *GroupService) DeleteBill(ctx context.Context, req *connect.Request[api.DeleteBillRequest]) (*connect.Response[api.DeleteBillResponse], error) {
	slog.Info("DeleteBill request received", "bill_id", req.Msg.BillID)

	if err := requireID("bill_id", req.Msg.BillID); err != nil {
		return nil, err
	}

	bill, err := s.deps.Store.GetBill(ctx, req.Msg.BillID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := s.deps.Store.DeleteBill(ctx, bill.ID); err != nil {
		slog.Error("DeleteBill failed", "bill_id", bill.ID, "error", err)
		return nil, toConnectError(err)
	}
	publish(ctx, s.deps, events.New(events.BillDeleted, bill.GroupID, bill.ID, bill.Total))

	slog.Info("Bill deleted", "bill_id", bill.ID, "group_id", bill.GroupID)

	return connect.NewResponse(&api.DeleteBillResponse{}), nil
}

// DeletePayment removes a payment from its group's ledger.
func (s *GroupService) DeletePayment(ctx context.Context, req *connect.Request[api.DeletePaymentRequest]) (*connect.Response[api.DeletePaymentResponse], error) {
	slog.Info("DeletePayment request received", "payment_id", req.Msg.PaymentID)

	if err := requireID("payment_id", req.Msg.PaymentID); err != nil {
		return nil, err
	}

	payment, err := s.deps.Store.GetPayment(ctx, req.Msg.PaymentID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := s.deps.Store.DeletePayment(ctx, payment.ID); err != nil {
		slog.Error("DeletePayment failed", "payment_id", payment.ID, "error", err)
		return nil, toConnectError(err)
	}
	publish(ctx, s.deps, events.New(events.PaymentDeleted, payment.GroupID, payment.ID, payment.Amount))

	slog.Info("Payment deleted", "payment_id", payment.ID, "group_id", payment.GroupID)

	return connect.NewResponse(&api.DeletePaymentResponse{}), nil
}

// ListLedger returns every bill and payment of a group, oldest first.
func (s *GroupService) ListLedger(ctx context.Context, req *connect.Request[api.ListLedgerRequest]) (*connect.Response[api.ListLedgerResponse], error) {
	if err := requireID("group_id", req.Msg.GroupID); err != nil {
		return nil, err
	}

	ledger, err := s.deps.Store.Ledger(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ListLedger failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	resp := &api.ListLedgerResponse{
		Bills:    make([]*api.Bill, len(ledger.Bills)),
		Payments: make([]*api.Payment, len(ledger.Payments)),
	}
	for i, b := range ledger.Bills {
		resp.Bills[i] = billToAPI(b)
	}
	for i, p := range ledger.Payments {
		resp.Payments[i] = paymentToAPI(p)
	}

	slog.Info("ListLedger successful",
		"group_id", req.Msg.GroupID,
		"bills_count", len(resp.Bills),
		"payments_count", len(resp.Payments),
	)

	return connect.NewResponse(resp), nil
}

// GetGroupBalances calculates balances across the whole ledger of a group.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	groupID := req.Msg.GroupID
	slog.Info("GetGroupBalances request received", "group_id", groupID)

	if err := requireID("group_id", groupID); err != nil {
		return nil, err
	}

	group, err := s.deps.Store.GetGroup(ctx, groupID)
	if err != nil {
		slog.Error("GetGroupBalances failed - group not found", "group_id", groupID, "error", err)
		return nil, toConnectError(err)
	}
	entries, err := s.ledgerEntries(ctx, groupID)
	if err != nil {
		return nil, err
	}

	balances, skipped := s.aggregate(groupID, entries)

	// members without any activity still show up, at zero
	summaries := calculator.SummarizeMembers(entries)
	seen := make(map[string]bool, len(summaries))
	out := make([]*api.MemberBalance, 0, len(group.Members))
	for _, b := range summaries {
		seen[b.MemberName] = true
		out = append(out, &api.MemberBalance{
			MemberName: b.MemberName,
			NetBalance: b.NetBalance.Decimal(),
			TotalPaid:  b.TotalPaid.Decimal(),
			TotalOwed:  b.TotalOwed.Decimal(),
		})
	}
	for _, m := range group.Members {
		if !seen[m] {
			out = append(out, &api.MemberBalance{MemberName: m})
		}
	}
	slices.SortFunc(out, func(a, b *api.MemberBalance) int { return cmp.Compare(a.MemberName, b.MemberName) })

	debts := calculator.PairwiseDebts(balances)
	resp := &api.GetGroupBalancesResponse{
		MemberBalances: out,
		DebtMatrix:     transfersToAPI(debts),
	}
	for _, d := range skipped {
		resp.Skipped = append(resp.Skipped, &api.SkippedEntry{EntryID: d.EntryID, Reason: d.Reason})
	}

	slog.Info("GetGroupBalances successful",
		"group_id", groupID,
		"entries_count", len(entries),
		"members_count", len(out),
		"debts_count", len(debts),
		"skipped_count", len(skipped),
	)

	return connect.NewResponse(resp), nil
}

// GetSettlePlan suggests the transfers that would settle every debt in the
// group.
func (s *GroupService) GetSettlePlan(ctx context.Context, req *connect.Request[api.GetSettlePlanRequest]) (*connect.Response[api.GetSettlePlanResponse], error) {
	groupID := req.Msg.GroupID
	simplify := req.Msg.Simplify == nil || *req.Msg.Simplify
	slog.Info("GetSettlePlan request received", "group_id", groupID, "simplify", simplify)

	if err := requireID("group_id", groupID); err != nil {
		return nil, err
	}

	group, err := s.deps.Store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, toConnectError(err)
	}
	entries, err := s.ledgerEntries(ctx, groupID)
	if err != nil {
		return nil, err
	}
	balances, _ := s.aggregate(groupID, entries)

	var transfers []calculator.Transfer
	if simplify {
		transfers, err = calculator.Plan(balances)
		if err != nil {
			slog.Error("GetSettlePlan failed - invariant check", "group_id", groupID, "error", err)
			return nil, toConnectError(err)
		}
	} else {
		transfers = calculator.PairwiseDebts(balances)
	}

	slog.Info("GetSettlePlan successful", "group_id", groupID, "transfers_count", len(transfers))

	return connect.NewResponse(&api.GetSettlePlanResponse{
		Transfers: transfersToAPI(transfers),
		Currency:  group.Currency,
	}), nil
}

func (s *GroupService) ledgerEntries(ctx context.Context, groupID string) ([]calculator.LedgerEntry, error) {
	ledger, err := s.deps.Store.Ledger(ctx, groupID)
	if err != nil {
		slog.Error("Failed to read ledger", "group_id", groupID, "error", err)
		return nil, toConnectError(fmt.Errorf("read ledger: %w", err))
	}
	return ledger.Entries(), nil
}

// aggregate nets the ledger and reports skipped entries in logs and metrics.
func (s *GroupService) aggregate(groupID string, entries []calculator.LedgerEntry) (calculator.NetBalances, []calculator.Diagnostic) {
	balances, skipped := calculator.Aggregate(entries)
	for _, d := range skipped {
		slog.Warn("Skipped ledger entry", "group_id", groupID, "entry_id", d.EntryID, "reason", d.Reason)
	}
	s.deps.Metrics.SkippedEntries.Add(float64(len(skipped)))
	return balances, skipped
}
