package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/money"
)

type splitFlags struct {
	Total   string
	Members []string
	Mode    string
	Set     []string
}

type SplitCommandRunner struct {
	flags *splitFlags
}

func NewSplitCmd() *cobra.Command {
	flags := &splitFlags{}

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a total between members without touching the ledger",
		Long: `Split a total between members and print each member's share.
In amount and percent mode, --set locks a member's value and the rest is
divided evenly among everyone else.`,
		Example: `  splitwiser split --total 100 --members alice,bob,carol
  splitwiser split --total 100 --members alice,bob,carol --mode amount --set alice=40
  splitwiser split --total 50 --members alice,bob,carol --mode percent --set alice=70`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := &SplitCommandRunner{flags: flags}
			out, err := runner.Run()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.Total, "total", "t", "", "Bill total, e.g. 42.50")
	cmd.Flags().StringSliceVarP(&flags.Members, "members", "m", nil, "Comma-separated member names")
	cmd.Flags().StringVar(&flags.Mode, "mode", "equally", "Split mode (equally, amount, percent)")
	cmd.Flags().StringArrayVarP(&flags.Set, "set", "s", nil, "Lock a member's value as name=value (repeatable)")
	_ = cmd.MarkFlagRequired("total")
	_ = cmd.MarkFlagRequired("members")

	return cmd
}

// Run allocates the total and returns the rendered table.
func (r *SplitCommandRunner) Run() (string, error) {
	total, err := money.ParseAmount(r.flags.Total)
	if err != nil {
		return "", err
	}
	if total < 0 {
		return "", fmt.Errorf("total must not be negative")
	}
	mode, err := calculator.ParseSplitMode(r.flags.Mode)
	if err != nil {
		return "", err
	}

	members := make([]string, 0, len(r.flags.Members))
	for _, m := range r.flags.Members {
		if m = strings.TrimSpace(m); m != "" {
			members = append(members, m)
		}
	}

	current, err := r.parseEdits(mode, members)
	if err != nil {
		return "", err
	}

	shares, err := calculator.Allocate(total, members, mode, current)
	if err != nil {
		return "", fmt.Errorf("cannot split %s: %w", total, err)
	}
	amounts, err := calculator.ResolveAmounts(total, members, mode, shares)
	if err != nil {
		return "", err
	}

	return renderShares(mode, members, shares, amounts)
}

func (r *SplitCommandRunner) parseEdits(mode calculator.SplitMode, members []string) (calculator.ShareMap, error) {
	if len(r.flags.Set) > 0 && mode == calculator.Equally {
		return nil, fmt.Errorf("--set needs --mode amount or --mode percent")
	}

	current := make(calculator.ShareMap, len(r.flags.Set))
	for _, kv := range r.flags.Set {
		name, raw, ok := strings.Cut(kv, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q, want name=value", kv)
		}
		if !slices.Contains(members, name) {
			return nil, fmt.Errorf("%w: %s", calculator.ErrUnknownMember, name)
		}

		var value int64
		if mode == calculator.ByPercent {
			p, err := money.ParsePercent(strings.TrimSpace(raw))
			if err != nil {
				return nil, err
			}
			value = int64(p)
		} else {
			a, err := money.ParseAmount(strings.TrimSpace(raw))
			if err != nil {
				return nil, err
			}
			value = int64(a)
		}
		current[name] = calculator.ShareEntry{Member: name, Value: value, Edited: true}
	}
	return current, nil
}

func renderShares(mode calculator.SplitMode, members []string, shares calculator.ShareMap, amounts map[string]money.Amount) (string, error) {
	header := []string{"Member", "Owes"}
	if mode == calculator.ByPercent {
		header = []string{"Member", "Percent", "Owes"}
	}
	data := pterm.TableData{header}

	for _, e := range shares.Ordered(members) {
		name := e.Member
		if e.Edited {
			name += " *"
		}
		row := []string{name}
		if mode == calculator.ByPercent {
			row = append(row, money.Percent(e.Value).String())
		}
		row = append(row, amounts[e.Member].String())
		data = append(data, row)
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", err
	}
	return table + "\n", nil
}
