package main

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alejandrodnm/offtake/config"
	"github.com/alejandrodnm/offtake/internal/adapters/dataset"
	"github.com/alejandrodnm/offtake/internal/adapters/httpapi"
	"github.com/alejandrodnm/offtake/internal/adapters/notify"
	"github.com/alejandrodnm/offtake/internal/adapters/storage"
	"github.com/alejandrodnm/offtake/internal/application/montecarlo"
	"github.com/alejandrodnm/offtake/internal/application/planner"
	"github.com/alejandrodnm/offtake/internal/domain"
	"github.com/alejandrodnm/offtake/internal/metrics"
	"github.com/alejandrodnm/offtake/internal/ports"
	"github.com/spf13/cobra"
)

type appOptions struct {
	compact bool
	notify  bool             // el planner imprime cada barrido
	metrics *metrics.Metrics // nil = sin métricas
}

// app agrupa las dependencias construidas a partir de la configuración.
type app struct {
	cfg     *config.Config
	svc     *planner.Service
	console *notify.Console
	store   *storage.SQLiteStorage // nil si storage.dsn está vacío
}

// newApp conecta simulador, archivo, dataset y consola. out nil = stdout.
func newApp(cfg *config.Config, out io.Writer, opts appOptions) (*app, error) {
	a := &app{cfg: cfg}
	if out == nil {
		a.console = notify.NewConsole(opts.compact)
	} else {
		a.console = notify.NewConsoleWriter(out, opts.compact)
	}

	var obs montecarlo.Observer
	if opts.metrics != nil {
		obs = opts.metrics
	}
	sim := montecarlo.New(montecarlo.Config{Workers: cfg.Simulation.Workers}, obs)

	var store ports.SweepStore
	if cfg.Storage.DSN != "" {
		s, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("open storage %q: %w", cfg.Storage.DSN, err)
		}
		a.store = s
		store = s
	}

	var ds ports.MarketDataset
	if cfg.Market.Dataset != "" {
		from, to, err := cfg.DateWindow()
		if err != nil {
			a.Close()
			return nil, err
		}
		ds = dataset.NewCSVDataset(cfg.Market.Dataset, domain.DateWindow{From: from, To: to})
	}

	var notifier ports.Notifier
	if opts.notify {
		notifier = a.console
	}

	a.svc = planner.New(plannerConfig(cfg), sim, store, ds, notifier)
	return a, nil
}

// Close libera el storage si está abierto.
func (a *app) Close() error {
	if a.store == nil {
		return nil
	}
	if err := a.store.Close(); err != nil {
		slog.Warn("close storage", "err", err)
		return err
	}
	return nil
}

// profiles devuelve los perfiles de --profile o, si no hay, los del planner.
func (a *app) profiles(cmd *cobra.Command) ([]domain.StrategyProfile, error) {
	raw, _ := cmd.Flags().GetStringArray("profile")
	if len(raw) > 0 {
		return parseProfiles(raw)
	}
	return a.svc.Profiles(cmd.Context())
}

func plannerConfig(cfg *config.Config) planner.Config {
	profiles := make([]domain.StrategyProfile, 0, len(cfg.Simulation.Profiles))
	for _, p := range cfg.Simulation.Profiles {
		profiles = append(profiles, domain.StrategyProfile{Name: p.Name, MeanValue: p.Mean, Spread: p.Spread})
	}
	return planner.Config{
		Seed:       cfg.Simulation.Seed,
		Step:       cfg.Simulation.Step,
		MaxSamples: cfg.Simulation.MaxSamples,
		Profiles:   profiles,
		Market: planner.MarketConfig{
			Volatility:     cfg.Market.Volatility,
			PriceDraws:     cfg.Market.PriceDraws,
			PPADiscount:    cfg.Market.PPADiscount,
			DeriveProfiles: cfg.Market.DeriveProfiles,
		},
		DiscountRate: cfg.Finance.DiscountRate,
	}
}

func bidParams(cfg *config.Config) domain.BidParams {
	b := cfg.Bidding
	return domain.BidParams{
		BidPrice:    b.BidPrice,
		MarketPrice: b.MarketPrice,
		PriceSD:     b.PriceSD,
		Generation:  b.GenerationMWh,
		Draws:       b.Draws,
	}
}

func stressParams(cfg *config.Config) domain.StressParams {
	s := cfg.Stress
	return domain.StressParams{
		Generation:  s.GenerationMWh,
		BasePrice:   s.BasePrice,
		Strike:      s.Strike,
		ShockPct:    s.ShockPct,
		PPADiscount: cfg.Market.PPADiscount,
	}
}

func roiParams(cfg *config.Config) domain.ROIParams {
	f := cfg.Finance
	return domain.ROIParams{
		CapexPerMW:      f.CapexPerMW,
		CapacityMW:      f.CapacityMW,
		OMCostPerMWh:    f.OMCostPerMWh,
		DegradationRate: f.DegradationRate,
		LifetimeYears:   f.AssetLifeYears,
	}
}

func httpOptions(cfg *config.Config) httpapi.Options {
	return httpapi.Options{
		RatePerSec:  cfg.API.RatePerSec,
		Burst:       cfg.API.Burst,
		CORSOrigins: cfg.API.CORSOrigins,
		ReleaseMode: cfg.API.ReleaseMode,
		Defaults: httpapi.Defaults{
			Bid:              bidParams(cfg),
			Stress:           stressParams(cfg),
			ROI:              roiParams(cfg),
			AnnualGeneration: cfg.Finance.AnnualGeneration,
		},
	}
}

// parseProfiles interpreta perfiles con formato name:mean:spread.
func parseProfiles(raw []string) ([]domain.StrategyProfile, error) {
	out := make([]domain.StrategyProfile, 0, len(raw))
	for _, r := range raw {
		parts := strings.Split(r, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("%w: profile %q: want name:mean:spread", domain.ErrInvalidArgument, r)
		}
		mean, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: profile %q: mean: %v", domain.ErrInvalidArgument, r, err)
		}
		spread, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: profile %q: spread: %v", domain.ErrInvalidArgument, r, err)
		}
		out = append(out, domain.StrategyProfile{Name: strings.TrimSpace(parts[0]), MeanValue: mean, Spread: spread})
	}
	return out, nil
}

// --- flag helpers ---

func addProfileFlags(cmd *cobra.Command) {
	cmd.Flags().StringArray("profile", nil, "Strategy profile name:mean:spread (repeatable; default from config)")
	cmd.Flags().Uint64("seed", 0, "Random seed (default simulation.seed)")
}

func addSizeFlags(cmd *cobra.Command) {
	cmd.Flags().IntSlice("sizes", nil, "Explicit sample sizes, e.g. 100,500,1000")
	cmd.Flags().Int("step", 0, "Sample size step (default simulation.step)")
	cmd.Flags().Int("max", 0, "Largest sample size (default simulation.max_samples)")
}

func seedFlag(cmd *cobra.Command, cfg *config.Config) uint64 {
	if !cmd.Flags().Changed("seed") {
		return cfg.Simulation.Seed
	}
	seed, _ := cmd.Flags().GetUint64("seed")
	return seed
}

// sweepSizes devuelve --sizes, o step..max si se pasó alguno de los dos.
// nil deja que el planner use la configuración.
func sweepSizes(cmd *cobra.Command, cfg *config.Config) ([]int, error) {
	if cmd.Flags().Changed("sizes") {
		sizes, _ := cmd.Flags().GetIntSlice("sizes")
		return sizes, nil
	}
	if !cmd.Flags().Changed("step") && !cmd.Flags().Changed("max") {
		return nil, nil
	}
	step := intFlag(cmd, "step", cfg.Simulation.Step)
	maxSamples := intFlag(cmd, "max", cfg.Simulation.MaxSamples)
	return domain.StepSizes(step, maxSamples)
}

func floatFlag(cmd *cobra.Command, name string, def float64) float64 {
	if !cmd.Flags().Changed(name) {
		return def
	}
	v, _ := cmd.Flags().GetFloat64(name)
	return v
}

func intFlag(cmd *cobra.Command, name string, def int) int {
	if !cmd.Flags().Changed(name) {
		return def
	}
	v, _ := cmd.Flags().GetInt(name)
	return v
}
