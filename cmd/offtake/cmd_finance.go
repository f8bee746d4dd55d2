package main

import (
	"fmt"

	"github.com/alejandrodnm/offtake/internal/adapters/export"
	"github.com/alejandrodnm/offtake/internal/adapters/notify"
	"github.com/alejandrodnm/offtake/internal/application/planner"
	"github.com/alejandrodnm/offtake/internal/domain"
	"github.com/spf13/cobra"
)

func newBidCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bid",
		Short: "Simulate a CfD auction bid against uncertain market prices",
		Args:  cobra.NoArgs,
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

			d := bidParams(cfg)
			p := domain.BidParams{
				BidPrice:    floatFlag(cmd, "bid", d.BidPrice),
				MarketPrice: floatFlag(cmd, "market", d.MarketPrice),
				PriceSD:     floatFlag(cmd, "sd", d.PriceSD),
				Generation:  floatFlag(cmd, "generation", d.Generation),
				Draws:       intFlag(cmd, "draws", d.Draws),
			}
			out, err := a.svc.SimulateBid(p, seedFlag(cmd, cfg))
			if err != nil {
				return err
			}
			a.console.PrintBid(out)
			return nil
		},
	}
	cmd.Flags().Float64("bid", 0, "Strike bid £/MWh (default bidding.bid_price)")
	cmd.Flags().Float64("market", 0, "Expected market price £/MWh (default bidding.market_price)")
	cmd.Flags().Float64("sd", 0, "Market price standard deviation (default bidding.price_sd)")
	cmd.Flags().Float64("generation", 0, "Annual generation MWh (default bidding.generation_mwh)")
	cmd.Flags().Int("draws", 0, "Price scenarios (default bidding.draws)")
	cmd.Flags().Uint64("seed", 0, "Random seed (default simulation.seed)")
	return cmd
}

func newStressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Apply a market price shock to CfD, PPA and merchant revenue",
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

			d := stressParams(cfg)
			res, err := a.svc.Stress(domain.StressParams{
				Generation:  floatFlag(cmd, "generation", d.Generation),
				BasePrice:   floatFlag(cmd, "base", d.BasePrice),
				Strike:      floatFlag(cmd, "strike", d.Strike),
				ShockPct:    floatFlag(cmd, "shock", d.ShockPct),
				PPADiscount: floatFlag(cmd, "ppa-discount", d.PPADiscount),
			})
			if err != nil {
				return err
			}
			if csvOut {
				return export.WriteStress(cmd.OutOrStdout(), res)
			}
			a.console.PrintStress(res)
			return nil
		},
	}
	cmd.Flags().Float64("generation", 0, "Annual generation MWh (default stress.generation_mwh)")
	cmd.Flags().Float64("base", 0, "Base market price £/MWh (default stress.base_price)")
	cmd.Flags().Float64("strike", 0, "CfD strike £/MWh (default stress.strike)")
	cmd.Flags().Float64("shock", 0, "Price shock in percent, -20 = 20% drop (default stress.shock_pct)")
	cmd.Flags().Float64("ppa-discount", 0, "PPA discount to market £/MWh (default market.ppa_discount)")
	cmd.Flags().Bool("csv", false, "Write rows as CSV instead of a table")
	return cmd
}

func newNPVCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "npv",
		Short: "Discount a cashflow series and compute NPV and IRR",
		Long: `Discount a cashflow series. The first cashflow is t=0 and is not
discounted. Negative values need the = form: --cashflows=-100,30,40.`,
		Example: "  offtake npv --rate 0.08 --cashflows=-1000,300,400,500",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cashflows, _ := cmd.Flags().GetFloat64Slice("cashflows")
			if len(cashflows) == 0 {
				return fmt.Errorf("%w: --cashflows is required", domain.ErrInvalidArgument)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			res, err := domain.AnalyzeCashflows(floatFlag(cmd, "rate", cfg.Finance.DiscountRate), cashflows)
			if err != nil {
				return err
			}
			notify.NewConsoleWriter(cmd.OutOrStdout(), false).PrintCashflows(res, nil)
			return nil
		},
	}
	cmd.Flags().Float64("rate", 0, "Discount rate, 0.06 = 6% (default finance.discount_rate)")
	cmd.Flags().Float64Slice("cashflows", nil, "Cashflows t=0..n")
	return cmd
}

func newROICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roi",
		Short: "Lifetime ROI of each offtake strategy",
		Long: `Compute lifetime ROI for CfD, PPA and merchant offtake. With --market
the prices are explicit; otherwise they are the averages of the
configured dataset.`,
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

			d := roiParams(cfg)
			p := domain.ROIParams{
				CapexPerMW:      floatFlag(cmd, "capex", d.CapexPerMW),
				CapacityMW:      floatFlag(cmd, "capacity", d.CapacityMW),
				OMCostPerMWh:    floatFlag(cmd, "om", d.OMCostPerMWh),
				DegradationRate: floatFlag(cmd, "degradation", d.DegradationRate),
				LifetimeYears:   intFlag(cmd, "years", d.LifetimeYears),
			}

			var results []domain.ROIResult
			if cmd.Flags().Changed("market") {
				market := floatFlag(cmd, "market", 0)
				results, err = planner.StrategyROIAt(p,
					floatFlag(cmd, "strike", market),
					market,
					floatFlag(cmd, "ppa-discount", cfg.Market.PPADiscount),
					floatFlag(cmd, "generation", cfg.Finance.AnnualGeneration),
				)
			} else {
				results, err = a.svc.StrategyROI(cmd.Context(), p)
			}
			if err != nil {
				return err
			}
			a.console.PrintROI(results)
			return nil
		},
	}
	cmd.Flags().Float64("market", 0, "Market price £/MWh; omit to use dataset averages")
	cmd.Flags().Float64("strike", 0, "CfD strike £/MWh (default = --market)")
	cmd.Flags().Float64("ppa-discount", 0, "PPA discount to market £/MWh (default market.ppa_discount)")
	cmd.Flags().Float64("generation", 0, "Annual generation MWh (default finance.annual_generation_mwh)")
	cmd.Flags().Float64("capex", 0, "Capex £/MW (default finance.capex_per_mw)")
	cmd.Flags().Float64("capacity", 0, "Capacity MW (default finance.capacity_mw)")
	cmd.Flags().Float64("om", 0, "O&M cost £/MWh (default finance.om_cost_per_mwh)")
	cmd.Flags().Float64("degradation", 0, "Annual degradation, 0.01 = 1% (default finance.degradation_rate)")
	cmd.Flags().Int("years", 0, "Asset life in years (default finance.asset_life_years)")
	return cmd
}
