package main

import (
	"github.com/alejandrodnm/offtake/internal/adapters/export"
	"github.com/spf13/cobra"
)

func newMarketCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "market",
		Short: "Summarise the CfD allocation dataset",
		Long: `Load market.dataset and print column distributions, spreads by
technology and year, subsidy per technology, yearly cashflows with
NPV/IRR, average strike by reference price and the derived CfD / PPA /
Merchant profiles.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			compact, _ := cmd.Flags().GetBool("compact")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if path, _ := cmd.Flags().GetString("dataset"); path != "" {
				cfg.Market.Dataset = path
			}
			a, err := newApp(cfg, cmd.OutOrStdout(), appOptions{compact: compact})
			if err != nil {
				return err
			}
			defer a.Close()

			rep, err := a.svc.MarketReport(cmd.Context())
			if err != nil {
				return err
			}
			a.console.PrintMarket(rep)
			return nil
		},
	}
	cmd.Flags().String("dataset", "", "Processed CfD CSV (default market.dataset)")
	cmd.Flags().Bool("compact", false, "Print only the market snapshot")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [sweep-id]",
		Short: "List archived sweeps, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			csvOut, _ := cmd.Flags().GetBool("csv")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(cfg, cmd.OutOrStdout(), appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			if len(args) == 0 {
				sweeps, err := a.svc.History(cmd.Context(), limit)
				if err != nil {
					return err
				}
				a.console.PrintHistory(sweeps)
				return nil
			}

			sweep, err := a.svc.GetSweep(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if csvOut {
				return export.WriteSelections(cmd.OutOrStdout(), sweep.Series)
			}
			a.console.PrintSweep(sweep)
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "Maximum sweeps to list")
	cmd.Flags().Bool("csv", false, "Write the selected sweep as CSV")
	return cmd
}
