package calculator

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/mmynk/splitledger/internal/money"
)

var (
	// ErrModeMismatch is returned when an operation is not available in the active mode.
	ErrModeMismatch = errors.New("operation not allowed in current split mode")

	// ErrUnknownMember is returned when a member is not part of the session.
	ErrUnknownMember = errors.New("unknown member")
)

// SplitSession tracks one bill-creation flow: the active mode, the equal-split
// participants, the locked edits of the active mode and whether the current
// edits can be completed into a valid split.
//
// A session belongs to a single bill. Call Reset whenever a new bill is
// started or the group membership changes. SplitSession is not safe for
// concurrent use.
type SplitSession struct {
	total        money.Amount
	members      []string
	participants map[string]bool
	mode         SplitMode
	edits        map[string]int64
	shares       ShareMap
	erroredOut   bool
}

// SessionState is a snapshot of a session, safe to hand to callers.
type SessionState struct {
	Mode         SplitMode
	Total        money.Amount
	Participants []string
	Shares       ShareMap
	ErroredOut   bool
}

// NewSplitSession starts a session for total over members in Equally mode.
func NewSplitSession(total money.Amount, members []string) (*SplitSession, error) {
	s := &SplitSession{total: total}
	if err := s.Reset(members); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset puts every member back in the split, clears all edits and the error
// flag, and returns to Equally mode. The total is kept.
func (s *SplitSession) Reset(members []string) error {
	if len(members) == 0 {
		return ErrEmptyParticipantSet
	}
	if err := checkUnique(members); err != nil {
		return err
	}

	s.members = slices.Clone(members)
	s.participants = make(map[string]bool, len(members))
	for _, m := range members {
		s.participants[m] = true
	}
	s.mode = Equally
	s.edits = make(map[string]int64)
	s.erroredOut = false
	return s.recompute()
}

// SelectMode switches the split mode. Edits are local to a mode, so all of
// them are dropped and the new mode starts from an even split.
func (s *SplitSession) SelectMode(mode SplitMode) error {
	switch mode {
	case Equally, ByAmount, ByPercent:
	default:
		return fmt.Errorf("%w: %d", ErrUnknownMode, int(mode))
	}
	s.mode = mode
	clear(s.edits)
	return s.recompute()
}

// EditMember locks member's share at value (minor units in ByAmount, Percent
// units in ByPercent) and redistributes the rest among unedited members.
func (s *SplitSession) EditMember(member string, value int64) error {
	if s.mode == Equally {
		return fmt.Errorf("%w: cannot edit shares when splitting equally", ErrModeMismatch)
	}
	if !s.participants[member] {
		return fmt.Errorf("%w: %s", ErrUnknownMember, member)
	}
	s.edits[member] = value
	return s.recompute()
}

// ClearEdit unlocks member's share so it is auto-filled again. Other locked
// shares are untouched.
func (s *SplitSession) ClearEdit(member string) error {
	if !s.participants[member] {
		return fmt.Errorf("%w: %s", ErrUnknownMember, member)
	}
	if _, ok := s.edits[member]; !ok {
		return nil
	}
	delete(s.edits, member)
	return s.recompute()
}

// ToggleMember adds or removes member from the equal split.
// The last remaining participant cannot be removed.
func (s *SplitSession) ToggleMember(member string) error {
	if s.mode != Equally {
		return fmt.Errorf("%w: participants can only be toggled when splitting equally", ErrModeMismatch)
	}
	if !slices.Contains(s.members, member) {
		return fmt.Errorf("%w: %s", ErrUnknownMember, member)
	}
	if s.participants[member] && len(s.participants) == 1 {
		return ErrEmptyParticipantSet
	}

	if s.participants[member] {
		delete(s.participants, member)
	} else {
		s.participants[member] = true
	}
	return s.recompute()
}

// SetTotal changes the bill total and redistributes the unedited shares.
func (s *SplitSession) SetTotal(total money.Amount) error {
	s.total = total
	return s.recompute()
}

// State returns a snapshot of the session.
func (s *SplitSession) State() SessionState {
	return SessionState{
		Mode:         s.mode,
		Total:        s.total,
		Participants: s.participantList(),
		Shares:       s.shares.Clone(),
		ErroredOut:   s.erroredOut,
	}
}

// Mode returns the active split mode.
func (s *SplitSession) Mode() SplitMode { return s.mode }

// ErroredOut reports whether the current edits cannot form a valid split.
func (s *SplitSession) ErroredOut() bool { return s.erroredOut }

// Amounts resolves the current shares into owed amounts.
func (s *SplitSession) Amounts() (map[string]money.Amount, error) {
	if s.erroredOut {
		return nil, ErrInvalidAllocation
	}
	return ResolveAmounts(s.total, s.participantList(), s.mode, s.shares)
}

// participantList keeps the original member order so the remainder rule
// stays stable when members are toggled off and on again.
func (s *SplitSession) participantList() []string {
	out := make([]string, 0, len(s.participants))
	for _, m := range s.members {
		if s.participants[m] {
			out = append(out, m)
		}
	}
	return out
}

func (s *SplitSession) recompute() error {
	participants := s.participantList()
	current := make(ShareMap, len(s.edits))
	for m, v := range s.edits {
		current[m] = ShareEntry{Member: m, Value: v, Edited: true}
	}

	shares, err := Allocate(s.total, participants, s.mode, current)
	if errors.Is(err, ErrInvalidAllocation) {
		s.erroredOut = true
		s.shares = pendingShares(participants, current)
		return nil
	}
	if err != nil {
		return err
	}
	s.erroredOut = false
	s.shares = shares
	return nil
}

// pendingShares is what an errored session shows: the locked values as
// entered and zero for everyone else.
func pendingShares(participants []string, edited ShareMap) ShareMap {
	shares := make(ShareMap, len(participants))
	for _, m := range participants {
		shares[m] = ShareEntry{Member: m}
	}
	maps.Copy(shares, edited)
	return shares
}
