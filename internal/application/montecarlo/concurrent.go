package montecarlo

// concurrent.go — worker pool para los pasos de un sweep.
//
// Cada paso tiene su propia fuente derivada de (seed, índice) y su resultado
// se guarda en su posición: la serie no depende del orden de los workers.

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/alejandrodnm/offtake/internal/domain"
)

// sweepConcurrent ejecuta todos los pasos usando un worker pool.
// Si workers <= 0 usa runtime.NumCPU(). onStep, si no es nil, se llama
// tras cada paso completado.
func sweepConcurrent(
	ctx context.Context,
	profiles []domain.StrategyProfile,
	sizes []int,
	seed uint64,
	workers int,
	onStep func(index int),
) (domain.ConvergenceSeries, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(sizes) {
		workers = len(sizes)
	}

	type result struct {
		index int
		run   domain.SimulationRun
	}

	workCh := make(chan int, len(sizes))
	resultCh := make(chan result, len(sizes))

	// Cada worker comprueba ctx antes de empezar un paso: cancelación cooperativa.
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range workCh {
				if ctx.Err() != nil {
					continue
				}
				src := NewSource(DeriveSeed(seed, idx))
				resultCh <- result{index: idx, run: simulate(src, profiles, sizes[idx])}
				if onStep != nil {
					onStep(idx)
				}
			}
		}()
	}

	for idx := range sizes {
		workCh <- idx
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	series := make(domain.ConvergenceSeries, len(sizes))
	done := 0
	for r := range resultCh {
		series[r.index] = r.run
		done++
	}

	if err := ctx.Err(); err != nil {
		slog.Debug("sweep cancelled", "done", done, "steps", len(sizes))
		return nil, err
	}

	slog.Debug("concurrent sweep complete",
		"steps", len(sizes),
		"workers", workers,
	)
	return series, nil
}
