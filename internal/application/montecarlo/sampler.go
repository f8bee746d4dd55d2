package montecarlo

import (
	"math/rand/v2"

	"github.com/alejandrodnm/offtake/internal/domain"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// drawBatch llena dst con realizaciones de Normal(MeanValue, Spread).
// Spread 0 degenera en la constante MeanValue y no consume la fuente.
func drawBatch(dst []float64, p domain.StrategyProfile, src rand.Source) {
	if p.Spread == 0 {
		for i := range dst {
			dst[i] = p.MeanValue
		}
		return
	}
	dist := distuv.Normal{Mu: p.MeanValue, Sigma: p.Spread, Src: src}
	for i := range dst {
		dst[i] = dist.Rand()
	}
}

// simulate ejecuta n trials sin validar. Los valores se sacan en bloque por
// perfil (perfil 0 completo, luego perfil 1, ...) y después se hace un pase
// de argmax por trial.
//
// Desempate: gana el primer perfil listado (comparación estricta).
func simulate(src rand.Source, profiles []domain.StrategyProfile, n int) domain.SimulationRun {
	draws := make([][]float64, len(profiles))
	for i, p := range profiles {
		draws[i] = make([]float64, n)
		drawBatch(draws[i], p, src)
	}

	counts := make([]int, len(profiles))
	for t := 0; t < n; t++ {
		best := 0
		for i := 1; i < len(draws); i++ {
			if draws[i][t] > draws[best][t] {
				best = i
			}
		}
		counts[best]++
	}

	run := domain.NewSimulationRun(n, domain.ProfileNames(profiles))
	for i, p := range profiles {
		run.Counts[p.Name] = counts[i]
		run.MeanValues[p.Name] = stat.Mean(draws[i], nil)
	}
	return run
}
