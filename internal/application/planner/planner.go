package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/offtake/internal/application/analysis"
	"github.com/alejandrodnm/offtake/internal/application/montecarlo"
	"github.com/alejandrodnm/offtake/internal/domain"
	"github.com/alejandrodnm/offtake/internal/ports"
)

var (
	// ErrStorageDisabled se devuelve cuando se pide el archivo sin storage configurado.
	ErrStorageDisabled = errors.New("sweep archive not configured")
	// ErrNoDataset se devuelve cuando se pide análisis de mercado sin dataset.
	ErrNoDataset = errors.New("market dataset not configured")
)

// MarketConfig controla la derivación de perfiles desde el dataset.
type MarketConfig struct {
	Volatility     float64 // desviación del precio por sorteo, £/MWh
	PriceDraws     int     // sorteos de precio promediados por trial
	PPADiscount    float64 // £/MWh
	DeriveProfiles bool    // usar el dataset en vez de los perfiles configurados
}

// Config contiene la configuración del planner.
type Config struct {
	Seed         uint64
	Step         int
	MaxSamples   int
	Profiles     []domain.StrategyProfile // vacío = domain.DefaultProfiles()
	Market       MarketConfig
	DiscountRate float64
}

// Service es el orquestador que comparten la CLI y la API HTTP.
type Service struct {
	cfg      Config
	sim      *montecarlo.Simulator
	store    ports.SweepStore    // opcional
	dataset  ports.MarketDataset // opcional
	notifier ports.Notifier      // opcional
}

// New crea un Service con todas las dependencias inyectadas. store, dataset y
// notifier pueden ser nil.
func New(
	cfg Config,
	sim *montecarlo.Simulator,
	store ports.SweepStore,
	dataset ports.MarketDataset,
	notifier ports.Notifier,
) *Service {
	return &Service{
		cfg:      cfg,
		sim:      sim,
		store:    store,
		dataset:  dataset,
		notifier: notifier,
	}
}

// Config devuelve la configuración efectiva.
func (s *Service) Config() Config { return s.cfg }

// HasArchive indica si hay storage configurado para archivar barridos.
func (s *Service) HasArchive() bool { return s.store != nil }

// HasDataset indica si hay dataset de mercado configurado.
func (s *Service) HasDataset() bool { return s.dataset != nil }

// Profiles resuelve los perfiles a simular: derivados del dataset si
// Market.DeriveProfiles, si no los configurados, si no los de referencia.
func (s *Service) Profiles(ctx context.Context) ([]domain.StrategyProfile, error) {
	if s.cfg.Market.DeriveProfiles {
		return s.MarketProfiles(ctx)
	}
	if len(s.cfg.Profiles) > 0 {
		return append([]domain.StrategyProfile(nil), s.cfg.Profiles...), nil
	}
	return domain.DefaultProfiles(), nil
}

// MarketProfiles deriva CfD / PPA / Merchant de las medias del dataset.
func (s *Service) MarketProfiles(ctx context.Context) ([]domain.StrategyProfile, error) {
	records, err := s.loadRecords(ctx)
	if err != nil {
		return nil, err
	}
	m := s.cfg.Market
	profiles, err := analysis.ProfilesFromMarket(analysis.MarketSnapshot(records), m.Volatility, m.PriceDraws, m.PPADiscount)
	if err != nil {
		return nil, fmt.Errorf("planner.MarketProfiles: %w", err)
	}
	return profiles, nil
}

// DefaultSizes construye step, 2·step, ..., max_samples desde la configuración.
func (s *Service) DefaultSizes() ([]int, error) {
	return domain.StepSizes(s.cfg.Step, s.cfg.MaxSamples)
}

// Simulate ejecuta un único run.
func (s *Service) Simulate(profiles []domain.StrategyProfile, sampleSize int, seed uint64) (domain.SimulationRun, error) {
	return s.sim.Simulate(profiles, sampleSize, seed)
}

// SweepRequest describe un barrido de convergencia.
type SweepRequest struct {
	Profiles []domain.StrategyProfile
	Sizes    []int // vacío = DefaultSizes()
	Seed     uint64
	Save     bool
}

// RunSweep ejecuta el barrido, lo archiva si se pide y notifica el resultado.
func (s *Service) RunSweep(ctx context.Context, req SweepRequest) (domain.Sweep, error) {
	start := time.Now()

	sizes := req.Sizes
	if len(sizes) == 0 {
		var err error
		if sizes, err = s.DefaultSizes(); err != nil {
			return domain.Sweep{}, fmt.Errorf("planner.RunSweep: %w", err)
		}
	}
	if req.Save && s.store == nil {
		return domain.Sweep{}, fmt.Errorf("planner.RunSweep: %w", ErrStorageDisabled)
	}

	series, err := s.sim.Sweep(ctx, req.Profiles, sizes, req.Seed)
	if err != nil {
		return domain.Sweep{}, fmt.Errorf("planner.RunSweep: %w", err)
	}
	sweep := domain.NewSweep(req.Seed, req.Profiles, series)

	if req.Save {
		if err := s.store.SaveSweep(ctx, sweep); err != nil {
			return sweep, fmt.Errorf("planner.RunSweep: %w", err)
		}
	}

	if s.notifier != nil {
		if err := s.notifier.NotifySweep(ctx, sweep); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}

	sum := sweep.Summary()
	slog.Info("sweep done",
		"id", sweep.ID,
		"steps", sum.Steps,
		"dominant", sum.Dominant,
		"share", fmt.Sprintf("%.3f", sum.DominantShare),
		"saved", req.Save,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return sweep, nil
}

// History devuelve los barridos archivados más recientes.
func (s *Service) History(ctx context.Context, limit int) ([]domain.SweepSummary, error) {
	if s.store == nil {
		return nil, fmt.Errorf("planner.History: %w", ErrStorageDisabled)
	}
	return s.store.ListSweeps(ctx, limit)
}

// GetSweep devuelve un barrido archivado.
func (s *Service) GetSweep(ctx context.Context, id string) (domain.Sweep, error) {
	if s.store == nil {
		return domain.Sweep{}, fmt.Errorf("planner.GetSweep: %w", ErrStorageDisabled)
	}
	return s.store.GetSweep(ctx, id)
}

// SimulateBid ejecuta el simulador de pujas.
func (s *Service) SimulateBid(p domain.BidParams, seed uint64) (domain.BidOutcome, error) {
	return s.sim.SimulateBid(p, seed)
}

// Stress aplica el shock de precio. Los defaults los resuelve el llamador:
// PPADiscount 0 significa PPA sin descuento.
func (s *Service) Stress(p domain.StressParams) (domain.StressResult, error) {
	return domain.StressTest(p)
}

func (s *Service) loadRecords(ctx context.Context) ([]domain.MarketRecord, error) {
	if s.dataset == nil {
		return nil, ErrNoDataset
	}
	records, err := s.dataset.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset has no records in window: %w", domain.ErrInvalidArgument)
	}
	return records, nil
}
