package cli

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
)

type settleFlags struct {
	GroupID  string
	Pairwise bool
}

type SettleCommandRunner struct {
	opts  *rootOptions
	flags *settleFlags
	out   io.Writer
}

func NewSettleCmd(opts *rootOptions) *cobra.Command {
	flags := &settleFlags{}

	cmd := &cobra.Command{
		Use:   "settle",
		Short: "Show a group's balances and the transfers that settle them",
		Long: `Read a group's ledger from the database, print every member's net balance
and the transfers that bring all balances to zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := &SettleCommandRunner{
				opts:  opts,
				flags: flags,
				out:   cmd.OutOrStdout(),
			}
			return runner.Run(cmd)
		},
	}

	cmd.Flags().StringVarP(&flags.GroupID, "group", "g", "", "Group ID")
	cmd.Flags().BoolVar(&flags.Pairwise, "pairwise", false, "Show raw pairwise debts instead of the simplified plan")
	_ = cmd.MarkFlagRequired("group")

	return cmd
}

func (r *SettleCommandRunner) Run(cmd *cobra.Command) error {
	ctx := cmd.Context()

	store, err := sqlite.New(r.opts.cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	group, err := store.GetGroup(ctx, r.flags.GroupID)
	if err != nil {
		return fmt.Errorf("failed to get group: %w", err)
	}
	ledger, err := store.Ledger(ctx, group.ID)
	if err != nil {
		return fmt.Errorf("failed to read ledger: %w", err)
	}

	entries := ledger.Entries()
	balances, skipped := calculator.Aggregate(entries)
	for _, d := range skipped {
		fmt.Fprint(r.out, pterm.Warning.Sprintfln("Skipped %s: %s", d.EntryID, d.Reason))
	}

	var transfers []calculator.Transfer
	if r.flags.Pairwise {
		transfers = calculator.PairwiseDebts(balances)
	} else {
		transfers, err = calculator.Plan(balances)
		if err != nil {
			return err
		}
	}

	fmt.Fprint(r.out, pterm.DefaultSection.Sprintf("%s balances (%s)", group.Name, group.Currency))
	if err := r.printBalances(group.Members, calculator.SummarizeMembers(entries)); err != nil {
		return err
	}

	fmt.Fprint(r.out, pterm.DefaultSection.Sprint("Settle up"))
	if len(transfers) == 0 {
		fmt.Fprintln(r.out, "All settled up.")
		return nil
	}
	return r.printTransfers(transfers)
}

func (r *SettleCommandRunner) printBalances(members []string, summaries []calculator.MemberBalance) error {
	byName := make(map[string]calculator.MemberBalance, len(summaries))
	for _, s := range summaries {
		byName[s.MemberName] = s
	}
	for _, m := range members {
		if _, ok := byName[m]; !ok {
			byName[m] = calculator.MemberBalance{MemberName: m}
		}
	}
	rows := make([]calculator.MemberBalance, 0, len(byName))
	for _, b := range byName {
		rows = append(rows, b)
	}
	slices.SortFunc(rows, func(a, b calculator.MemberBalance) int { return cmp.Compare(a.MemberName, b.MemberName) })

	data := pterm.TableData{{"Member", "Paid", "Owed", "Net"}}
	for _, b := range rows {
		data = append(data, []string{b.MemberName, b.TotalPaid.String(), b.TotalOwed.String(), signed(b.NetBalance)})
	}
	return r.render(data)
}

func (r *SettleCommandRunner) printTransfers(transfers []calculator.Transfer) error {
	data := pterm.TableData{{"From", "To", "Amount"}}
	for _, t := range transfers {
		data = append(data, []string{t.From, t.To, t.Amount.String()})
	}
	return r.render(data)
}

func (r *SettleCommandRunner) render(data pterm.TableData) error {
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(r.out, table)
	return err
}

func signed(a money.Amount) string {
	if a > 0 {
		return "+" + a.String()
	}
	return a.String()
}
