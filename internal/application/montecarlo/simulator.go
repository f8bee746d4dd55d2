package montecarlo

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/alejandrodnm/offtake/internal/domain"
)

// Observer recibe notificaciones de cada simulación (métricas, progreso).
// El core no conoce la implementación.
type Observer interface {
	ObserveRun(run domain.SimulationRun)
	ObserveBid(draws int)
	ObserveSweep(steps int, elapsed time.Duration)
}

// Config controla el simulador.
type Config struct {
	Workers int // goroutines para los pasos de un sweep (0 = NumCPU)
}

// Simulator es el StrategySelectionSimulator: sin estado entre llamadas
// salvo la configuración y el observer.
type Simulator struct {
	cfg      Config
	observer Observer
	onStep   func(index int) // tests
}

// New crea un Simulator. observer puede ser nil.
func New(cfg Config, observer Observer) *Simulator {
	return &Simulator{cfg: cfg, observer: observer}
}

// Simulate ejecuta sampleSize trials con la fuente derivada de seed.
// Misma entrada + misma semilla = mismos counts.
func (s *Simulator) Simulate(profiles []domain.StrategyProfile, sampleSize int, seed uint64) (domain.SimulationRun, error) {
	return s.SimulateWithSource(NewSource(seed), profiles, sampleSize)
}

// SimulateWithSource es Simulate con una fuente inyectada por el caller.
// Las precondiciones se validan antes de consumir la fuente.
func (s *Simulator) SimulateWithSource(src rand.Source, profiles []domain.StrategyProfile, sampleSize int) (domain.SimulationRun, error) {
	if err := validateRun(profiles, sampleSize); err != nil {
		return domain.SimulationRun{}, err
	}
	run := simulate(src, profiles, sampleSize)
	if s.observer != nil {
		s.observer.ObserveRun(run)
	}
	return run, nil
}

// Sweep ejecuta un Simulate por tamaño de muestra, en orden de entrada.
// Los pasos se reparten entre workers; la semilla de cada paso se deriva de
// (seed, índice), por lo que la serie es la misma con 1 o N workers.
// Si ctx se cancela entre pasos devuelve ctx.Err() sin serie parcial.
func (s *Simulator) Sweep(ctx context.Context, profiles []domain.StrategyProfile, sampleSizes []int, seed uint64) (domain.ConvergenceSeries, error) {
	if err := domain.ValidateProfiles(profiles); err != nil {
		return nil, err
	}
	if err := domain.ValidateSampleSizes(sampleSizes); err != nil {
		return nil, err
	}

	start := time.Now()
	series, err := sweepConcurrent(ctx, profiles, sampleSizes, seed, s.cfg.Workers, s.onStep)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	if s.observer != nil {
		for _, run := range series {
			s.observer.ObserveRun(run)
		}
		s.observer.ObserveSweep(len(series), elapsed)
	}

	slog.Debug("sweep complete",
		"steps", len(series),
		"profiles", len(profiles),
		"seed", seed,
		"elapsed", elapsed,
	)
	return series, nil
}

func validateRun(profiles []domain.StrategyProfile, sampleSize int) error {
	if err := domain.ValidateProfiles(profiles); err != nil {
		return err
	}
	return domain.ValidateSampleSizes([]int{sampleSize})
}
