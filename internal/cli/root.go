// Package cli implements the splitwiser command line: the API server and
// offline split and settle-up commands.
package cli

import (
	"context"
	"os"
	"unicode"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/pkg/logging"
)

// rootOptions are shared by every subcommand. cfg is filled in before any
// subcommand runs.
type rootOptions struct {
	configFile string
	logLevel   string
	cfg        *config.Config
}

// NewRootCmd builds the splitwiser command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "splitwiser",
		Short:         "splitwiser splits shared bills and plans who pays whom",
		Long:          `splitwiser splits shared bills between group members, keeps a ledger of bills and payments, and suggests the transfers that settle every debt.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configFile)
			if err != nil {
				return err
			}
			if opts.logLevel != "" {
				cfg.Log.Level = opts.logLevel
			}
			logging.Setup(cfg.Log.Level)
			opts.cfg = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "set the config file path (default ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	rootCmd.AddCommand(NewServeCmd(opts))
	rootCmd.AddCommand(NewSplitCmd())
	rootCmd.AddCommand(NewSettleCmd(opts))
	rootCmd.AddCommand(NewGroupsCmd(opts))

	return rootCmd
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " ERROR ",
		Style: pterm.NewStyle(pterm.BgLightRed, pterm.FgBlack),
	}

	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		pterm.Error.Println(capitalize(err.Error()))
		os.Exit(1)
	}
}

func capitalize(s string) string {
	if len(s) == 0 {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
