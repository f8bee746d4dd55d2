// Package metrics expone las métricas Prometheus del simulador y de la API.
package metrics

import (
	"strconv"
	"time"

	"github.com/alejandrodnm/offtake/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "offtake"

// Kinds de simulación para offtake_simulations_total.
const (
	KindRun   = "run"
	KindSweep = "sweep"
	KindBid   = "bid"
)

// Metrics implementa montecarlo.Observer sobre un registry Prometheus.
type Metrics struct {
	simulations *prometheus.CounterVec
	trials      prometheus.Counter
	selections  *prometheus.CounterVec
	sweepTime   prometheus.Histogram
	requests    *prometheus.CounterVec
}

// New crea y registra las métricas en reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		simulations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulations_total",
			Help:      "Total number of simulations by kind",
		}, []string{"kind"}),
		trials: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trials_total",
			Help:      "Total number of Monte Carlo trials drawn",
		}),
		selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "strategy_selections_total",
			Help:      "Number of trials in which each strategy had the highest sampled value",
		}, []string{"strategy"}),
		sweepTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Wall time of convergence sweeps",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"route", "code"}),
	}
	reg.MustRegister(m.simulations, m.trials, m.selections, m.sweepTime, m.requests)
	return m
}

// ObserveRun registra un run: trials y selecciones por estrategia.
func (m *Metrics) ObserveRun(run domain.SimulationRun) {
	m.simulations.WithLabelValues(KindRun).Inc()
	m.trials.Add(float64(run.SampleSize))
	for name, count := range run.Counts {
		m.selections.WithLabelValues(strategyLabel(name)).Add(float64(count))
	}
}

// LabelCustom agrupa los perfiles que no son las estrategias por defecto:
// los nombres llegan de los requests y no pueden ser labels.
const LabelCustom = "custom"

func strategyLabel(name string) string {
	switch name {
	case domain.StrategyCfD, domain.StrategyPPA, domain.StrategyMerchant:
		return name
	}
	return LabelCustom
}

// ObserveBid registra una simulación de puja.
func (m *Metrics) ObserveBid(draws int) {
	m.simulations.WithLabelValues(KindBid).Inc()
	m.trials.Add(float64(draws))
}

// ObserveSweep registra la duración de un sweep completo.
func (m *Metrics) ObserveSweep(_ int, elapsed time.Duration) {
	m.simulations.WithLabelValues(KindSweep).Inc()
	m.sweepTime.Observe(elapsed.Seconds())
}

// ObserveRequest registra una petición HTTP ya respondida.
func (m *Metrics) ObserveRequest(route string, code int) {
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
