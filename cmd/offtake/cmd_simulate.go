package main

import (
	"github.com/alejandrodnm/offtake/internal/adapters/export"
	"github.com/alejandrodnm/offtake/internal/application/planner"
	"github.com/spf13/cobra"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run one strategy-selection simulation",
		Long: `Draw one value per strategy per trial and count how often each
strategy has the highest value. Ties go to the first-listed profile.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(cfg, cmd.OutOrStdout(), appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			profiles, err := a.profiles(cmd)
			if err != nil {
				return err
			}
			n := intFlag(cmd, "samples", cfg.Simulation.MaxSamples)

			run, err := a.svc.Simulate(profiles, n, seedFlag(cmd, cfg))
			if err != nil {
				return err
			}
			a.console.PrintRun(run)
			return nil
		},
	}
	addProfileFlags(cmd)
	cmd.Flags().IntP("samples", "n", 0, "Number of trials (default simulation.max_samples)")
	return cmd
}

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a convergence sweep over increasing sample sizes",
		Long: `Run one simulation per sample size and print how the selection
counts converge. With --save the sweep is archived in storage.dsn.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			csvOut, _ := cmd.Flags().GetBool("csv")
			compact, _ := cmd.Flags().GetBool("compact")
			save, _ := cmd.Flags().GetBool("save")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(cfg, cmd.OutOrStdout(), appOptions{compact: compact, notify: !csvOut})
			if err != nil {
				return err
			}
			defer a.Close()

			profiles, err := a.profiles(cmd)
			if err != nil {
				return err
			}
			sizes, err := sweepSizes(cmd, cfg)
			if err != nil {
				return err
			}

			sweep, err := a.svc.RunSweep(cmd.Context(), planner.SweepRequest{
				Profiles: profiles,
				Sizes:    sizes,
				Seed:     seedFlag(cmd, cfg),
				Save:     save,
			})
			if err != nil {
				return err
			}
			if csvOut {
				return export.WriteSelections(cmd.OutOrStdout(), sweep.Series)
			}
			return nil
		},
	}
	addProfileFlags(cmd)
	addSizeFlags(cmd)
	cmd.Flags().Bool("save", false, "Archive the sweep in storage")
	cmd.Flags().Bool("csv", false, "Write selection counts as CSV instead of a table")
	cmd.Flags().Bool("compact", false, "Print a one-line summary")
	return cmd
}

func newRevenueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revenue",
		Short: "Show mean drawn value per strategy across a sweep",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			profiles, err := a.profiles(cmd)
			if err != nil {
				return err
			}
			sizes, err := sweepSizes(cmd, cfg)
			if err != nil {
				return err
			}

			sweep, err := a.svc.RunSweep(cmd.Context(), planner.SweepRequest{
				Profiles: profiles,
				Sizes:    sizes,
				Seed:     seedFlag(cmd, cfg),
			})
			if err != nil {
				return err
			}
			if csvOut {
				return export.WriteRevenue(cmd.OutOrStdout(), sweep.Series)
			}
			a.console.PrintRevenue(sweep)
			return nil
		},
	}
	addProfileFlags(cmd)
	addSizeFlags(cmd)
	cmd.Flags().Bool("csv", false, "Write mean values as CSV instead of a table")
	return cmd
}
