package calculator

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/mmynk/splitledger/internal/money"
)

var (
	// ErrInvalidAllocation means the edited shares cannot be completed into a
	// split that sums exactly to the target. It is an expected user-input
	// state: sessions surface it as ErroredOut instead of failing.
	ErrInvalidAllocation = errors.New("invalid allocation")

	// ErrEmptyParticipantSet is returned when there is nobody to split among.
	ErrEmptyParticipantSet = errors.New("must have at least one participant")

	// ErrDuplicateMember is returned when a participant is listed twice.
	ErrDuplicateMember = errors.New("duplicate participant")

	// ErrUnknownMode is returned for a SplitMode outside the known set.
	ErrUnknownMode = errors.New("unknown split mode")
)

// SplitMode selects how a bill total is distributed.
type SplitMode int

const (
	// Equally splits the total evenly across all participants.
	Equally SplitMode = iota
	// ByAmount lets members lock fixed amounts; the rest share the remainder.
	ByAmount
	// ByPercent lets members lock percentages; the rest share what is left of 100%.
	ByPercent
)

func (m SplitMode) String() string {
	switch m {
	case Equally:
		return "equally"
	case ByAmount:
		return "amount"
	case ByPercent:
		return "percent"
	default:
		return fmt.Sprintf("SplitMode(%d)", int(m))
	}
}

// ParseSplitMode accepts the names produced by SplitMode.String.
func ParseSplitMode(s string) (SplitMode, error) {
	switch s {
	case "equally", "equal", "":
		return Equally, nil
	case "amount":
		return ByAmount, nil
	case "percent":
		return ByPercent, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// ShareEntry is one participant's share.
// Value is minor units for Equally and ByAmount, and money.Percent units for ByPercent.
type ShareEntry struct {
	Member string
	Value  int64
	Edited bool
}

// ShareMap holds exactly one entry per participant.
type ShareMap map[string]ShareEntry

// Sum adds up every Value in the map.
func (s ShareMap) Sum() int64 {
	var total int64
	for _, e := range s {
		total += e.Value
	}
	return total
}

// Ordered returns the entries following the given member order, skipping
// members that have no entry.
func (s ShareMap) Ordered(members []string) []ShareEntry {
	out := make([]ShareEntry, 0, len(s))
	for _, m := range members {
		if e, ok := s[m]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Allocate distributes total across members according to mode.
//
// In ByAmount and ByPercent modes, entries in current marked Edited are kept
// verbatim and the remaining target (total, or 100%) is split evenly across
// the unedited members. Leftover minor units go one at a time to members in
// the order given, so the result sums exactly to the target and repeated
// calls with the same inputs return the same map. Equally ignores current.
//
// Allocate never modifies current.
func Allocate(total money.Amount, members []string, mode SplitMode, current ShareMap) (ShareMap, error) {
	if len(members) == 0 {
		return nil, ErrEmptyParticipantSet
	}
	if err := checkUnique(members); err != nil {
		return nil, err
	}
	if total < 0 {
		return nil, fmt.Errorf("%w: negative total %s", ErrInvalidAllocation, total)
	}

	switch mode {
	case Equally:
		shares := make(ShareMap, len(members))
		for i, v := range distribute(int64(total), len(members)) {
			shares[members[i]] = ShareEntry{Member: members[i], Value: v}
		}
		return shares, nil
	case ByAmount:
		return allocateLocked(int64(total), members, current, false)
	case ByPercent:
		return allocateLocked(int64(money.FullPercent), members, current, true)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(mode))
	}
}

func allocateLocked(target int64, members []string, current ShareMap, percent bool) (ShareMap, error) {
	shares := make(ShareMap, len(members))
	var locked int64
	var unedited []string

	for _, m := range members {
		e, ok := current[m]
		if !ok || !e.Edited {
			unedited = append(unedited, m)
			continue
		}
		if e.Value < 0 {
			return nil, fmt.Errorf("%w: negative share for %s", ErrInvalidAllocation, m)
		}
		if percent && e.Value > int64(money.FullPercent) {
			return nil, fmt.Errorf("%w: %s exceeds 100%%", ErrInvalidAllocation, money.Percent(e.Value))
		}
		locked += e.Value
		shares[m] = ShareEntry{Member: m, Value: e.Value, Edited: true}
	}

	remainder := target - locked
	if remainder < 0 {
		return nil, fmt.Errorf("%w: edited shares total %d, target %d", ErrInvalidAllocation, locked, target)
	}
	if len(unedited) == 0 {
		if remainder != 0 {
			return nil, fmt.Errorf("%w: %d left unassigned and no unedited members", ErrInvalidAllocation, remainder)
		}
		return shares, nil
	}

	for i, v := range distribute(remainder, len(unedited)) {
		shares[unedited[i]] = ShareEntry{Member: unedited[i], Value: v}
	}
	return shares, nil
}

// distribute splits a non-negative total into n parts that differ by at most
// one unit; the first total%n parts get the extra unit.
func distribute(total int64, n int) []int64 {
	parts := make([]int64, n)
	base, extra := total/int64(n), total%int64(n)
	for i := range parts {
		parts[i] = base
		if int64(i) < extra {
			parts[i]++
		}
	}
	return parts
}

func checkUnique(members []string) error {
	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		if _, ok := seen[m]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateMember, m)
		}
		seen[m] = struct{}{}
	}
	return nil
}

// ResolveAmounts converts a valid share map into the amount each member owes.
//
// Amount-valued modes are returned as-is. ByPercent floors each member's
// percentage of total and hands the leftover minor units to the largest
// fractional remainders, breaking ties by member order, so the amounts sum to
// total exactly.
func ResolveAmounts(total money.Amount, members []string, mode SplitMode, shares ShareMap) (map[string]money.Amount, error) {
	if len(members) == 0 {
		return nil, ErrEmptyParticipantSet
	}
	if err := checkUnique(members); err != nil {
		return nil, err
	}
	if total < 0 {
		return nil, fmt.Errorf("%w: negative total %s", ErrInvalidAllocation, total)
	}
	target := int64(total)
	if mode == ByPercent {
		target = int64(money.FullPercent)
	}
	if got := shares.Ordered(members); len(got) != len(members) || shares.Sum() != target {
		return nil, fmt.Errorf("%w: shares do not cover the target", ErrInvalidAllocation)
	}

	amounts := make(map[string]money.Amount, len(members))
	if mode != ByPercent {
		for _, m := range members {
			amounts[m] = money.Amount(shares[m].Value)
		}
		return amounts, nil
	}

	type frac struct {
		member string
		rem    int64
	}
	fracs := make([]frac, 0, len(members))
	var assigned money.Amount
	for _, m := range members {
		a, rem := money.Percent(shares[m].Value).Of(total)
		amounts[m] = a
		assigned += a
		fracs = append(fracs, frac{member: m, rem: rem})
	}

	// stable sort keeps member order among equal remainders
	slices.SortStableFunc(fracs, func(a, b frac) int { return cmp.Compare(b.rem, a.rem) })
	for i := 0; assigned < total; i++ {
		amounts[fracs[i].member]++
		assigned++
	}
	return amounts, nil
}

// Clone returns a copy of the map.
func (s ShareMap) Clone() ShareMap {
	return maps.Clone(s)
}
