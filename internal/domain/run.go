package domain

import (
	"time"

	"github.com/google/uuid"
)

// SimulationRun es el resultado de un Simulate: cuántas veces fue elegida
// cada estrategia en SampleSize trials.
//
// Invariante: la suma de Counts es SampleSize y cada perfil de entrada
// aparece como key (aunque sea con 0).
type SimulationRun struct {
	SampleSize int
	Order      []string           // nombres en el orden de entrada
	Counts     map[string]int     // estrategia → veces elegida
	MeanValues map[string]float64 // estrategia → valor medio muestreado
}

// NewSimulationRun crea un run vacío con una entrada a 0 por estrategia.
func NewSimulationRun(sampleSize int, names []string) SimulationRun {
	run := SimulationRun{
		SampleSize: sampleSize,
		Order:      append([]string(nil), names...),
		Counts:     make(map[string]int, len(names)),
		MeanValues: make(map[string]float64, len(names)),
	}
	for _, n := range names {
		run.Counts[n] = 0
		run.MeanValues[n] = 0
	}
	return run
}

// Total devuelve la suma de los counts.
func (r SimulationRun) Total() int {
	total := 0
	for _, c := range r.Counts {
		total += c
	}
	return total
}

// Share devuelve la fracción de trials en que se eligió name (0 – 1).
func (r SimulationRun) Share(name string) float64 {
	if r.SampleSize <= 0 {
		return 0
	}
	return float64(r.Counts[name]) / float64(r.SampleSize)
}

// Dominant devuelve la estrategia más elegida. En empate gana la primera
// en Order, igual que en la selección por trial.
func (r SimulationRun) Dominant() (string, int) {
	best, bestCount := "", -1
	for _, name := range r.Order {
		if c := r.Counts[name]; c > bestCount {
			best, bestCount = name, c
		}
	}
	if bestCount < 0 {
		return "", 0
	}
	return best, bestCount
}

// ConvergenceSeries es la secuencia de runs de un sweep, alineada por índice
// con los tamaños de muestra pedidos.
type ConvergenceSeries []SimulationRun

// Final devuelve el último run de la serie.
func (s ConvergenceSeries) Final() (SimulationRun, bool) {
	if len(s) == 0 {
		return SimulationRun{}, false
	}
	return s[len(s)-1], true
}

// SelectionRow es una fila tabular (sample_size, strategy, count).
type SelectionRow struct {
	SampleSize int
	Strategy   string
	Count      int
	MeanValue  float64
}

// Rows aplana la serie: una fila por (sample_size, strategy) en orden.
func (s ConvergenceSeries) Rows() []SelectionRow {
	var rows []SelectionRow
	for _, run := range s {
		for _, name := range run.Order {
			rows = append(rows, SelectionRow{
				SampleSize: run.SampleSize,
				Strategy:   name,
				Count:      run.Counts[name],
				MeanValue:  run.MeanValues[name],
			})
		}
	}
	return rows
}

// Sweep agrupa una serie de convergencia con los parámetros que la generaron.
type Sweep struct {
	ID        string
	CreatedAt time.Time
	Seed      uint64
	Profiles  []StrategyProfile
	Series    ConvergenceSeries
}

// NewSweep crea un Sweep con ID nuevo.
func NewSweep(seed uint64, profiles []StrategyProfile, series ConvergenceSeries) Sweep {
	return Sweep{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Seed:      seed,
		Profiles:  append([]StrategyProfile(nil), profiles...),
		Series:    series,
	}
}

// SampleSizes devuelve los tamaños de muestra de la serie.
func (s Sweep) SampleSizes() []int {
	sizes := make([]int, len(s.Series))
	for i, run := range s.Series {
		sizes[i] = run.SampleSize
	}
	return sizes
}

// SweepSummary es la vista ligera de un sweep archivado.
type SweepSummary struct {
	ID              string
	CreatedAt       time.Time
	Seed            uint64
	Steps           int
	FinalSampleSize int
	Dominant        string
	DominantShare   float64
}

// Summary resume el sweep para listados.
func (s Sweep) Summary() SweepSummary {
	sum := SweepSummary{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Seed:      s.Seed,
		Steps:     len(s.Series),
	}
	if final, ok := s.Series.Final(); ok {
		sum.FinalSampleSize = final.SampleSize
		sum.Dominant, _ = final.Dominant()
		sum.DominantShare = final.Share(sum.Dominant)
	}
	return sum
}

// Límites de un run y de un sweep. Los draws se reservan de una vez por
// perfil, así que n acota la memoria de cada paso.
const (
	MaxSampleSize = 10_000_000
	MaxSweepSteps = 1_000
)

// StepSizes construye la secuencia step, 2*step, ..., <= max.
func StepSizes(step, max int) ([]int, error) {
	if step <= 0 {
		return nil, invalidf("step must be > 0, got %d", step)
	}
	if max < step {
		return nil, invalidf("max (%d) must be >= step (%d)", max, step)
	}
	if max > MaxSampleSize {
		return nil, invalidf("max (%d) exceeds %d", max, MaxSampleSize)
	}
	if steps := max / step; steps > MaxSweepSteps {
		return nil, invalidf("%d steps exceed %d, use a larger step", steps, MaxSweepSteps)
	}
	sizes := make([]int, 0, max/step)
	for n := step; n <= max; n += step {
		sizes = append(sizes, n)
	}
	return sizes, nil
}

// ValidateSampleSizes exige que todos los tamaños estén en [1, MaxSampleSize]
// y que no haya más de MaxSweepSteps.
func ValidateSampleSizes(sizes []int) error {
	if len(sizes) == 0 {
		return invalidf("no sample sizes")
	}
	if len(sizes) > MaxSweepSteps {
		return invalidf("%d sample sizes exceed %d", len(sizes), MaxSweepSteps)
	}
	for i, n := range sizes {
		if n <= 0 {
			return invalidf("sample size at index %d must be > 0, got %d", i, n)
		}
		if n > MaxSampleSize {
			return invalidf("sample size at index %d exceeds %d, got %d", i, MaxSampleSize, n)
		}
	}
	return nil
}
