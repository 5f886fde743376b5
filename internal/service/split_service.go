package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

var _ apiconnect.SplitServiceHandler = (*SplitService)(nil)

// SplitService implements the Connect SplitService: a stateless allocator and
// server-side split sessions that end in a finalized bill.
type SplitService struct {
	deps     Deps
	sessions *sessionRegistry
}

// NewSplitService creates a new SplitService with the given dependencies.
func NewSplitService(deps Deps) *SplitService {
	deps = deps.withDefaults()
	return &SplitService{
		deps:     deps,
		sessions: newSessionRegistry(deps.SessionIdleTimeout, deps.Metrics.ActiveSessions),
	}
}

// Allocate distributes a total across members without keeping any state.
func (s *SplitService) Allocate(ctx context.Context, req *connect.Request[api.AllocateRequest]) (*connect.Response[api.AllocateResponse], error) {
	msg := req.Msg
	slog.Debug("Allocate request received",
		"total", msg.Total,
		"mode", msg.Mode,
		"members", msg.Members,
	)

	total, err := parseAmount("total", msg.Total)
	if err != nil {
		return nil, err
	}
	mode, err := calculator.ParseSplitMode(msg.Mode)
	if err != nil {
		return nil, toConnectError(err)
	}

	current := make(calculator.ShareMap, len(msg.Shares))
	for _, share := range msg.Shares {
		value, err := shareValueFromAPI(mode, share.Value)
		if err != nil {
			return nil, err
		}
		current[share.Member] = calculator.ShareEntry{Member: share.Member, Value: value, Edited: share.Edited}
	}

	shares, err := calculator.Allocate(total, msg.Members, mode, current)
	if err != nil {
		slog.Debug("Allocate rejected", "error", err)
		return nil, toConnectError(err)
	}
	amounts, err := calculator.ResolveAmounts(total, msg.Members, mode, shares)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.AllocateResponse{
		Shares: sharesToAPI(mode, msg.Members, shares, amounts),
	}), nil
}

// StartSplit opens a split session for a new bill over the group's current
// members, split equally.
func (s *SplitService) StartSplit(ctx context.Context, req *connect.Request[api.StartSplitRequest]) (*connect.Response[api.SplitResponse], error) {
	slog.Info("StartSplit request received", "group_id", req.Msg.GroupID, "total", req.Msg.Total)

	if err := requireID("group_id", req.Msg.GroupID); err != nil {
		return nil, err
	}
	total, err := parseAmount("total", req.Msg.Total)
	if err != nil {
		return nil, err
	}

	group, err := s.deps.Store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("StartSplit failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	if len(group.Members) == 0 {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errors.New("group has no members"))
	}

	calc, err := calculator.NewSplitSession(total, group.Members)
	if err != nil {
		return nil, toConnectError(err)
	}
	session := s.sessions.add(group.ID, calc)
	session.mu.Lock()
	state := splitState(session)
	session.mu.Unlock()

	slog.Info("Split started", "session_id", session.id, "group_id", group.ID)

	return connect.NewResponse(&api.SplitResponse{Split: state}), nil
}

// ResetSplit re-reads the group's membership and starts the session over.
func (s *SplitService) ResetSplit(ctx context.Context, req *connect.Request[api.ResetSplitRequest]) (*connect.Response[api.SplitResponse], error) {
	return s.mutate(req.Msg.SessionID, "ResetSplit", func(session *splitSession) error {
		group, err := s.deps.Store.GetGroup(ctx, session.groupID)
		if err != nil {
			return err
		}
		return session.calc.Reset(group.Members)
	})
}

// SelectMode switches the split mode, dropping every edit.
func (s *SplitService) SelectMode(ctx context.Context, req *connect.Request[api.SelectModeRequest]) (*connect.Response[api.SplitResponse], error) {
	return s.mutate(req.Msg.SessionID, "SelectMode", func(session *splitSession) error {
		mode, err := calculator.ParseSplitMode(req.Msg.Mode)
		if err != nil {
			return err
		}
		return session.calc.SelectMode(mode)
	})
}

// EditShare locks one member's value in amount or percent mode.
func (s *SplitService) EditShare(ctx context.Context, req *connect.Request[api.EditShareRequest]) (*connect.Response[api.SplitResponse], error) {
	return s.mutate(req.Msg.SessionID, "EditShare", func(session *splitSession) error {
		value, err := shareValueFromAPI(session.calc.Mode(), req.Msg.Value)
		if err != nil {
			return err
		}
		return session.calc.EditMember(req.Msg.Member, value)
	})
}

// ClearShareEdit unlocks one member's value.
func (s *SplitService) ClearShareEdit(ctx context.Context, req *connect.Request[api.ClearShareEditRequest]) (*connect.Response[api.SplitResponse], error) {
	return s.mutate(req.Msg.SessionID, "ClearShareEdit", func(session *splitSession) error {
		return session.calc.ClearEdit(req.Msg.Member)
	})
}

// ToggleParticipant includes or excludes a member from an equal split.
func (s *SplitService) ToggleParticipant(ctx context.Context, req *connect.Request[api.ToggleParticipantRequest]) (*connect.Response[api.SplitResponse], error) {
	return s.mutate(req.Msg.SessionID, "ToggleParticipant", func(session *splitSession) error {
		return session.calc.ToggleMember(req.Msg.Member)
	})
}

// SetTotal changes the bill total.
func (s *SplitService) SetTotal(ctx context.Context, req *connect.Request[api.SetTotalRequest]) (*connect.Response[api.SplitResponse], error) {
	return s.mutate(req.Msg.SessionID, "SetTotal", func(session *splitSession) error {
		total, err := parseAmount("total", req.Msg.Total)
		if err != nil {
			return err
		}
		return session.calc.SetTotal(total)
	})
}

// GetSplit returns the session state without changing it.
func (s *SplitService) GetSplit(ctx context.Context, req *connect.Request[api.GetSplitRequest]) (*connect.Response[api.SplitResponse], error) {
	return s.mutate(req.Msg.SessionID, "GetSplit", func(*splitSession) error { return nil })
}

// FinalizeBill writes the session's split to the ledger as a bill and ends
// the session. Sessions whose edits do not add up are rejected.
func (s *SplitService) FinalizeBill(ctx context.Context, req *connect.Request[api.FinalizeBillRequest]) (*connect.Response[api.FinalizeBillResponse], error) {
	msg := req.Msg
	slog.Info("FinalizeBill request received", "session_id", msg.SessionID, "payer_id", msg.PayerID)

	if err := requireID("session_id", msg.SessionID); err != nil {
		return nil, err
	}
	if err := requireID("payer_id", msg.PayerID); err != nil {
		return nil, err
	}

	var bill *models.Bill
	err := s.sessions.do(msg.SessionID, func(session *splitSession) error {
		group, err := s.deps.Store.GetGroup(ctx, session.groupID)
		if err != nil {
			return err
		}
		if !group.HasMember(msg.PayerID) {
			return invalidArgument("payer %q is not a member of the group", msg.PayerID)
		}

		st := session.calc.State()
		if st.ErroredOut {
			return connect.NewError(connect.CodeFailedPrecondition,
				errors.New("shares do not add up to the total"))
		}
		amounts, err := session.calc.Amounts()
		if err != nil {
			return err
		}

		bill = &models.Bill{
			GroupID:   session.groupID,
			Title:     strings.TrimSpace(msg.Title),
			PayerID:   msg.PayerID,
			Total:     st.Total,
			SplitMode: st.Mode.String(),
		}
		for _, e := range st.Shares.Ordered(st.Participants) {
			bill.Shares = append(bill.Shares, models.Share{
				Member: e.Member,
				Value:  e.Value,
				Edited: e.Edited,
				Amount: amounts[e.Member],
			})
		}

		if err := s.deps.Store.CreateBill(ctx, bill); err != nil {
			return err
		}
		session.closed = true
		return nil
	})
	if err != nil {
		slog.Error("FinalizeBill failed", "session_id", msg.SessionID, "error", err)
		return nil, toConnectError(err)
	}

	s.deps.Metrics.BillsFinalized.Inc()
	publish(ctx, s.deps, events.New(events.BillCreated, bill.GroupID, bill.ID, bill.Total))

	slog.Info("Bill finalized",
		"bill_id", bill.ID,
		"group_id", bill.GroupID,
		"total", bill.Total,
		"split_mode", bill.SplitMode,
	)

	return connect.NewResponse(&api.FinalizeBillResponse{Bill: billToAPI(bill)}), nil
}

// CancelSplit ends a session without writing anything.
func (s *SplitService) CancelSplit(ctx context.Context, req *connect.Request[api.CancelSplitRequest]) (*connect.Response[api.CancelSplitResponse], error) {
	err := s.sessions.do(req.Msg.SessionID, func(session *splitSession) error {
		session.closed = true
		return nil
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("Split cancelled", "session_id", req.Msg.SessionID)
	return connect.NewResponse(&api.CancelSplitResponse{}), nil
}

// mutate applies fn to a session and returns the resulting state.
func (s *SplitService) mutate(sessionID, op string, fn func(*splitSession) error) (*connect.Response[api.SplitResponse], error) {
	if err := requireID("session_id", sessionID); err != nil {
		return nil, err
	}

	var state *api.SplitState
	err := s.sessions.do(sessionID, func(session *splitSession) error {
		if err := fn(session); err != nil {
			return err
		}
		state = splitState(session)
		return nil
	})
	if err != nil {
		slog.Warn(op+" failed", "session_id", sessionID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Debug(op+" applied", "session_id", sessionID, "mode", state.Mode, "errored_out", state.ErroredOut)

	return connect.NewResponse(&api.SplitResponse{Split: state}), nil
}

// splitState renders a session. The caller holds the session lock.
func splitState(session *splitSession) *api.SplitState {
	st := session.calc.State()

	var amounts map[string]money.Amount
	if !st.ErroredOut {
		amounts, _ = session.calc.Amounts()
	}

	return &api.SplitState{
		SessionID:    session.id,
		GroupID:      session.groupID,
		Mode:         st.Mode.String(),
		Total:        st.Total.Decimal(),
		Participants: st.Participants,
		Shares:       sharesToAPI(st.Mode, st.Participants, st.Shares, amounts),
		ErroredOut:   st.ErroredOut,
	}
}
